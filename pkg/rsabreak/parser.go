package rsabreak

import (
	"bufio"
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/csv"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"

	"github.com/mahdiidarabi/rsa-weakkey/internal/parser"
)

// TargetParser defines the interface for parsing challenge targets from
// various sources.
type TargetParser interface {
	// ParseTargets parses targets from a source and returns them.
	ParseTargets(source string) ([]*Target, error)
}

// JSONParser parses targets from JSON files.
type JSONParser struct {
	LabelField string // Field name for label (default: "label")
	NField     string // Field name for modulus (default: "n")
	EField     string // Field name for exponent (default: "e")
	CField     string // Field name for ciphertext (default: "c")
}

// ParseTargets parses targets from a JSON file.
//
// Expected format, a single object or an array of them:
// [
//
//	{"label": "alice", "n": "0x...", "e": 65537, "c": "123..."},
//	{"n": "123..."}
//
// ]
func (p *JSONParser) ParseTargets(jsonFile string) ([]*Target, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber() // Preserve large numbers as json.Number instead of float64

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse JSON")
	}

	var items []map[string]interface{}
	switch v := raw.(type) {
	case map[string]interface{}:
		items = append(items, v)
	case []interface{}:
		for i, elem := range v {
			obj, ok := elem.(map[string]interface{})
			if !ok {
				return nil, errors.Errorf("item %d is not an object", i)
			}
			items = append(items, obj)
		}
	default:
		return nil, errors.Errorf("expected object or array, got %T", raw)
	}

	labelField := fieldOr(p.LabelField, "label")
	nField := fieldOr(p.NField, "n")
	eField := fieldOr(p.EField, "e")
	cField := fieldOr(p.CField, "c")

	targets := make([]*Target, 0, len(items))
	for i, item := range items {
		t := &Target{Label: fmt.Sprintf("target_%d", i)}

		if v, ok := item[labelField]; ok {
			t.Label = fmt.Sprint(v)
		}

		nVal, ok := item[nField]
		if !ok {
			return nil, errors.Errorf("item %d: missing %s field", i, nField)
		}
		if t.N, err = parser.ParseBigInt(nVal); err != nil {
			return nil, errors.Wrapf(err, "item %d: failed to parse %s", i, nField)
		}

		if v, ok := item[eField]; ok {
			if t.E, err = parser.ParseBigInt(v); err != nil {
				return nil, errors.Wrapf(err, "item %d: failed to parse %s", i, eField)
			}
		}

		if v, ok := item[cField]; ok {
			if t.C, err = parser.ParseBigInt(v); err != nil {
				return nil, errors.Wrapf(err, "item %d: failed to parse %s", i, cField)
			}
		}

		targets = append(targets, t)
	}

	return targets, nil
}

// CSVParser parses targets from CSV files with a header row.
type CSVParser struct {
	LabelCol string // Column name for label (default: "label")
	NCol     string // Column name for modulus (default: "n")
	ECol     string // Column name for exponent (default: "e")
	CCol     string // Column name for ciphertext (default: "c")
}

// ParseTargets parses targets from a CSV file. Empty e and c cells are
// treated as absent.
func (p *CSVParser) ParseTargets(csvFile string) ([]*Target, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	labelCol := fieldOr(p.LabelCol, "label")
	nCol := fieldOr(p.NCol, "n")
	eCol := fieldOr(p.ECol, "e")
	cCol := fieldOr(p.CCol, "c")

	labelIdx, nIdx, eIdx, cIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case labelCol:
			labelIdx = i
		case nCol:
			nIdx = i
		case eCol:
			eIdx = i
		case cCol:
			cIdx = i
		}
	}

	if nIdx == -1 {
		return nil, errors.Errorf("missing required column: %s", nCol)
	}

	targets := make([]*Target, 0)

	for row := 0; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read record")
		}

		t := &Target{Label: fmt.Sprintf("target_%d", row)}

		if labelIdx >= 0 && labelIdx < len(record) && record[labelIdx] != "" {
			t.Label = record[labelIdx]
		}

		if nIdx >= len(record) {
			return nil, errors.Errorf("row %d: %s column index out of range", row, nCol)
		}
		if t.N, err = parser.ParseBigInt(record[nIdx]); err != nil {
			return nil, errors.Wrapf(err, "row %d: failed to parse %s", row, nCol)
		}

		if eIdx >= 0 && eIdx < len(record) && record[eIdx] != "" {
			if t.E, err = parser.ParseBigInt(record[eIdx]); err != nil {
				return nil, errors.Wrapf(err, "row %d: failed to parse %s", row, eCol)
			}
		}

		if cIdx >= 0 && cIdx < len(record) && record[cIdx] != "" {
			if t.C, err = parser.ParseBigInt(record[cIdx]); err != nil {
				return nil, errors.Wrapf(err, "row %d: failed to parse %s", row, cCol)
			}
		}

		targets = append(targets, t)
	}

	return targets, nil
}

// SSHKeyParser reads RSA public keys from an OpenSSH authorized_keys file.
// Non-RSA keys are skipped; a file without any RSA key is an error.
type SSHKeyParser struct{}

// ParseTargets parses targets from an authorized_keys file. The key comment
// becomes the label.
func (p *SSHKeyParser) ParseTargets(keysFile string) ([]*Target, error) {
	data, err := os.ReadFile(keysFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	targets := make([]*Target, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for line := 1; scanner.Scan(); line++ {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 || text[0] == '#' {
			continue
		}

		pub, comment, _, _, err := ssh.ParseAuthorizedKey(text)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		rsaPub, ok := sshRSAKey(pub)
		if !ok {
			continue
		}

		label := comment
		if label == "" {
			label = fmt.Sprintf("line_%d", line)
		}
		targets = append(targets, &Target{
			Label: label,
			N:     new(big.Int).Set(rsaPub.N),
			E:     big.NewInt(int64(rsaPub.E)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan file")
	}

	if len(targets) == 0 {
		return nil, errors.New("no RSA public keys found in authorized_keys data")
	}
	return targets, nil
}

func sshRSAKey(pub ssh.PublicKey) (*rsa.PublicKey, bool) {
	if pub.Type() != ssh.KeyAlgoRSA {
		return nil, false
	}
	cryptoPub, ok := pub.(ssh.CryptoPublicKey)
	if !ok {
		return nil, false
	}
	rsaPub, ok := cryptoPub.CryptoPublicKey().(*rsa.PublicKey)
	return rsaPub, ok
}

// PEMParser reads RSA public keys from PEM blocks: PKIX "PUBLIC KEY",
// PKCS#1 "RSA PUBLIC KEY" and "CERTIFICATE". Other blocks are skipped; a
// file without any RSA key is an error.
type PEMParser struct{}

// ParseTargets parses every RSA key in a PEM file.
func (p *PEMParser) ParseTargets(pemFile string) ([]*Target, error) {
	data, err := os.ReadFile(pemFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	targets := make([]*Target, 0)
	for blockIdx := 0; ; blockIdx++ {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		var pub interface{}
		switch block.Type {
		case "PUBLIC KEY":
			pub, err = x509.ParsePKIXPublicKey(block.Bytes)
		case "RSA PUBLIC KEY":
			pub, err = x509.ParsePKCS1PublicKey(block.Bytes)
		case "CERTIFICATE":
			var cert *x509.Certificate
			cert, err = x509.ParseCertificate(block.Bytes)
			if err == nil {
				pub = cert.PublicKey
			}
		default:
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "block %d (%s)", blockIdx, block.Type)
		}

		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			continue
		}

		label := block.Headers["Label"]
		if label == "" {
			label = fmt.Sprintf("block_%d", blockIdx)
		}
		targets = append(targets, &Target{
			Label: label,
			N:     new(big.Int).Set(rsaPub.N),
			E:     big.NewInt(int64(rsaPub.E)),
		})
	}

	if len(targets) == 0 {
		return nil, errors.New("no RSA public keys found in PEM data")
	}
	return targets, nil
}

func fieldOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
