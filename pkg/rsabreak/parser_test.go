package rsabreak

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestJSONParser_ParseTargets(t *testing.T) {
	targets, err := loadTestTargets("targets_tiny.json")
	if err != nil {
		t.Fatalf("Failed to parse targets: %v", err)
	}

	if len(targets) != 1 {
		t.Fatalf("Expected 1 target, got %d", len(targets))
	}

	tgt := targets[0]
	if tgt.Label != "textbook" {
		t.Errorf("Expected label textbook, got %s", tgt.Label)
	}
	if tgt.N.Int64() != 33 || tgt.E.Int64() != 7 || tgt.C.Int64() != 14 {
		t.Errorf("Unexpected target values: n=%s e=%s c=%s", tgt.N, tgt.E, tgt.C)
	}
}

func TestJSONParser_SingleObject(t *testing.T) {
	targets, err := loadTestTargets("targets_close_primes.json")
	if err != nil {
		t.Fatalf("Failed to parse targets: %v", err)
	}

	if len(targets) != 1 {
		t.Fatalf("Expected 1 target, got %d", len(targets))
	}
	if targets[0].N.Cmp(mustBig(t, closeN)) != 0 {
		t.Errorf("Modulus mismatch. Got: %s", targets[0].N)
	}
	if targets[0].C == nil {
		t.Error("Expected ciphertext to be parsed")
	}
}

func TestJSONParser_AllFixtures(t *testing.T) {
	fixtures := map[string]int{
		"targets_tiny.json":         1,
		"targets_close_primes.json": 1,
		"targets_shared_prime.json": 3,
	}

	for fixture, want := range fixtures {
		t.Run(fixture, func(t *testing.T) {
			targets, err := loadTestTargets(fixture)
			if err != nil {
				t.Fatalf("Failed to parse %s: %v", fixture, err)
			}
			if len(targets) != want {
				t.Errorf("Expected %d targets, got %d", want, len(targets))
			}
			for i, tgt := range targets {
				if tgt.N == nil || tgt.N.Sign() <= 0 {
					t.Errorf("Target %d: invalid modulus", i)
				}
			}
		})
	}
}

func TestJSONParser_CustomFields(t *testing.T) {
	path := writeTempFile(t, "custom.json", []byte(`[{"name": "x", "modulus": "0x21", "exponent": "7"}]`))

	parser := &JSONParser{LabelField: "name", NField: "modulus", EField: "exponent"}
	targets, err := parser.ParseTargets(path)
	if err != nil {
		t.Fatalf("Failed to parse targets: %v", err)
	}
	if targets[0].Label != "x" || targets[0].N.Int64() != 33 || targets[0].E.Int64() != 7 {
		t.Errorf("Unexpected target: %+v", targets[0])
	}
	if targets[0].C != nil {
		t.Errorf("Expected nil ciphertext, got %s", targets[0].C)
	}
}

func TestJSONParser_Errors(t *testing.T) {
	parser := &JSONParser{}

	inputs := map[string]string{
		"missing n":   `[{"e": 3}]`,
		"bad n":       `[{"n": "xyz"}]`,
		"not objects": `[1, 2]`,
		"scalar":      `42`,
		"malformed":   `[{"n":`,
	}
	for name, body := range inputs {
		t.Run(name, func(t *testing.T) {
			path := writeTempFile(t, "bad.json", []byte(body))
			if _, err := parser.ParseTargets(path); err == nil {
				t.Error("Expected parse error")
			}
		})
	}

	if _, err := parser.ParseTargets(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestCSVParser_ParseTargets(t *testing.T) {
	parser := &CSVParser{}

	targets, err := parser.ParseTargets(filepath.Join(fixturesDir(), "targets.csv"))
	if err != nil {
		t.Fatalf("Failed to parse targets: %v", err)
	}

	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}

	if targets[0].Label != "textbook" || targets[0].N.Int64() != 33 || targets[0].C.Int64() != 14 {
		t.Errorf("Unexpected first target: %+v", targets[0])
	}
	if targets[1].N.Cmp(mustBig(t, closeN)) != 0 {
		t.Errorf("Modulus mismatch. Got: %s", targets[1].N)
	}
	if targets[2].Label != "target_2" || targets[2].N.Int64() != 33 {
		t.Errorf("Unexpected third target: %+v", targets[2])
	}
	if targets[2].E != nil || targets[2].C != nil {
		t.Error("Empty cells should leave E and C nil")
	}
}

func TestCSVParser_MissingColumn(t *testing.T) {
	path := writeTempFile(t, "bad.csv", []byte("label,e\nx,3\n"))

	if _, err := (&CSVParser{}).ParseTargets(path); err == nil {
		t.Error("Expected error for missing n column")
	}
}

func TestSSHKeyParser_ParseTargets(t *testing.T) {
	n := mustBig(t, wideN)

	rsaKey, err := ssh.NewPublicKey(&rsa.PublicKey{N: n, E: 65537})
	if err != nil {
		t.Fatalf("Failed to build RSA ssh key: %v", err)
	}
	edKey, err := ssh.NewPublicKey(ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)).Public())
	if err != nil {
		t.Fatalf("Failed to build ed25519 ssh key: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("# challenge keys\n\n")
	sb.WriteString(strings.TrimSpace(string(ssh.MarshalAuthorizedKey(rsaKey))) + " alice@ctf\n")
	sb.Write(ssh.MarshalAuthorizedKey(edKey))
	sb.Write(ssh.MarshalAuthorizedKey(rsaKey))

	path := writeTempFile(t, "authorized_keys", []byte(sb.String()))

	targets, err := (&SSHKeyParser{}).ParseTargets(path)
	if err != nil {
		t.Fatalf("Failed to parse keys: %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("Expected 2 RSA targets, got %d", len(targets))
	}
	if targets[0].Label != "alice@ctf" {
		t.Errorf("Expected label alice@ctf, got %s", targets[0].Label)
	}
	if targets[1].Label != "line_5" {
		t.Errorf("Expected label line_5, got %s", targets[1].Label)
	}
	for i, tgt := range targets {
		if tgt.N.Cmp(n) != 0 {
			t.Errorf("Target %d: modulus mismatch", i)
		}
		if tgt.E.Int64() != 65537 {
			t.Errorf("Target %d: expected e=65537, got %s", i, tgt.E)
		}
	}
}

func TestSSHKeyParser_InvalidLine(t *testing.T) {
	path := writeTempFile(t, "authorized_keys", []byte("ssh-rsa not-base64!!\n"))

	if _, err := (&SSHKeyParser{}).ParseTargets(path); err == nil {
		t.Error("Expected error for malformed key line")
	}
}

func TestSSHKeyParser_NoRSAKeys(t *testing.T) {
	edKey, err := ssh.NewPublicKey(ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)).Public())
	if err != nil {
		t.Fatalf("Failed to build ed25519 ssh key: %v", err)
	}

	inputs := map[string][]byte{
		"only ed25519":  ssh.MarshalAuthorizedKey(edKey),
		"only comments": []byte("# nothing here\n\n"),
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			path := writeTempFile(t, "authorized_keys", data)
			targets, err := (&SSHKeyParser{}).ParseTargets(path)
			if err == nil {
				t.Errorf("Expected error for file without RSA keys, got %d targets", len(targets))
			}
		})
	}
}

func TestPEMParser_ParseTargets(t *testing.T) {
	pub := &rsa.PublicKey{N: mustBig(t, wideN), E: 65537}

	pkix, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("Failed to marshal PKIX key: %v", err)
	}

	var data []byte
	data = append(data, pem.EncodeToMemory(&pem.Block{
		Type:    "PUBLIC KEY",
		Headers: map[string]string{"Label": "alice"},
		Bytes:   pkix,
	})...)
	data = append(data, pem.EncodeToMemory(&pem.Block{
		Type:  "EC PARAMETERS",
		Bytes: []byte{0x06, 0x01, 0x00},
	})...)
	data = append(data, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(pub),
	})...)

	path := writeTempFile(t, "keys.pem", data)

	targets, err := (&PEMParser{}).ParseTargets(path)
	if err != nil {
		t.Fatalf("Failed to parse PEM: %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("Expected 2 targets, got %d", len(targets))
	}
	if targets[0].Label != "alice" || targets[1].Label != "block_2" {
		t.Errorf("Unexpected labels: %s, %s", targets[0].Label, targets[1].Label)
	}
	for i, tgt := range targets {
		if tgt.N.Cmp(pub.N) != 0 || tgt.E.Cmp(big.NewInt(65537)) != 0 {
			t.Errorf("Target %d: key mismatch", i)
		}
	}
}

func TestPEMParser_NoKeys(t *testing.T) {
	path := writeTempFile(t, "empty.pem", []byte("not pem at all\n"))

	if _, err := (&PEMParser{}).ParseTargets(path); err == nil {
		t.Error("Expected error for file without RSA keys")
	}
}
