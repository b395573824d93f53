package rsakey

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
)

func TestNewPrivateKey(t *testing.T) {
	key, err := NewPrivateKey(big.NewInt(7), ints(3, 11))
	if err != nil {
		t.Fatalf("Failed to build key: %v", err)
	}

	if key.N.Cmp(big.NewInt(33)) != 0 {
		t.Errorf("Expected N=33, got %s", key.N)
	}
	if key.D.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("Expected D=3, got %s", key.D)
	}
	if err := key.Validate(); err != nil {
		t.Errorf("Key should validate: %v", err)
	}

	tot, err := key.Totient()
	if err != nil {
		t.Fatalf("Totient failed: %v", err)
	}
	if tot.Int64() != 20 {
		t.Errorf("Expected totient 20, got %s", tot)
	}
}

func TestNewPrivateKey_CopiesInputs(t *testing.T) {
	primes := ints(3, 11)
	e := big.NewInt(7)

	key, err := NewPrivateKey(e, primes)
	if err != nil {
		t.Fatalf("Failed to build key: %v", err)
	}

	primes[0].SetInt64(5)
	e.SetInt64(9)

	if key.Primes[0].Int64() != 3 {
		t.Errorf("Key primes alias caller slice: %s", key.Primes[0])
	}
	if key.E.Int64() != 7 {
		t.Errorf("Key exponent aliases caller value: %s", key.E)
	}
}

func TestNewPrivateKey_NotInvertible(t *testing.T) {
	_, err := NewPrivateKey(big.NewInt(5), ints(3, 11))
	if !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Expected ErrNotInvertible, got %v", err)
	}
}

func TestPrivateKey_EncryptDecrypt(t *testing.T) {
	key, err := NewPrivateKey(big.NewInt(7), ints(3, 7, 11))
	if err != nil {
		t.Fatalf("Failed to build key: %v", err)
	}

	m := big.NewInt(200)
	c, err := key.Encrypt(m)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err := key.Decrypt(c)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got.Cmp(m) != 0 {
		t.Errorf("Expected %s, got %s", m, got)
	}
}

func TestPrivateKey_Validate_Mismatch(t *testing.T) {
	key, err := NewPrivateKey(big.NewInt(7), ints(3, 11))
	if err != nil {
		t.Fatalf("Failed to build key: %v", err)
	}

	key.N = big.NewInt(35)
	if err := key.Validate(); err == nil {
		t.Error("Expected modulus mismatch error")
	}

	key.N = big.NewInt(33)
	key.D = big.NewInt(4)
	if err := key.Validate(); !errors.Is(err, ErrNotInvertible) {
		t.Errorf("Expected ErrNotInvertible for wrong D, got %v", err)
	}
}
