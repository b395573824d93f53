package rsakey

import (
	"math/big"

	"github.com/pkg/errors"
)

// DefaultExponent is the public exponent assumed when a challenge omits e.
var DefaultExponent = big.NewInt(65537)

// PublicKey is an RSA modulus and public exponent.
type PublicKey struct {
	N *big.Int // Modulus
	E *big.Int // Public exponent
}

// PrivateKey holds the derived private exponent and the factors it came from.
type PrivateKey struct {
	PublicKey
	D      *big.Int   // Private exponent, e⁻¹ mod totient
	Primes []*big.Int // Prime factors of N, in the order supplied
}

// NewPrivateKey derives N and D from e and the prime factors.
func NewPrivateKey(e *big.Int, primes []*big.Int) (*PrivateKey, error) {
	n, err := Modulus(primes)
	if err != nil {
		return nil, err
	}

	d, err := PrivateExponent(e, primes)
	if err != nil {
		return nil, err
	}

	copied := make([]*big.Int, len(primes))
	for i, p := range primes {
		copied[i] = new(big.Int).Set(p)
	}

	return &PrivateKey{
		PublicKey: PublicKey{N: n, E: new(big.Int).Set(e)},
		D:         d,
		Primes:    copied,
	}, nil
}

// Encrypt returns m^E mod N.
func (pub *PublicKey) Encrypt(m *big.Int) (*big.Int, error) {
	return Encrypt(m, pub.E, pub.N)
}

// Decrypt returns c^D mod N.
func (priv *PrivateKey) Decrypt(c *big.Int) (*big.Int, error) {
	return Decrypt(c, priv.D, priv.N)
}

// Totient recomputes the totient from the key's primes.
func (priv *PrivateKey) Totient() (*big.Int, error) {
	return Totient(priv.Primes)
}

// Validate checks that N is the product of the primes and that
// E·D ≡ 1 (mod totient).
func (priv *PrivateKey) Validate() error {
	n, err := Modulus(priv.Primes)
	if err != nil {
		return err
	}
	if priv.N == nil || n.Cmp(priv.N) != 0 {
		return errors.New("rsakey: modulus does not match prime product")
	}

	t, err := Totient(priv.Primes)
	if err != nil {
		return err
	}
	if priv.E == nil || priv.D == nil {
		return ErrInvalidExponent
	}
	if t.Sign() == 0 {
		return errors.Wrap(ErrNotInvertible, "totient is zero")
	}

	ed := new(big.Int).Mul(priv.E, priv.D)
	if ed.Mod(ed, t).Cmp(one) != 0 && t.Cmp(one) != 0 {
		return errors.Wrap(ErrNotInvertible, "e·d is not 1 modulo totient")
	}
	return nil
}
