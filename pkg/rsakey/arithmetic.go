package rsakey

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrNoPrimes is returned when an operation receives an empty prime list.
	ErrNoPrimes = errors.New("rsakey: prime list is empty")

	// ErrInvalidPrime is returned when a prime factor is nil or not positive.
	ErrInvalidPrime = errors.New("rsakey: prime factors must be positive")

	// ErrInvalidModulus is returned when a modulus is nil or not positive.
	ErrInvalidModulus = errors.New("rsakey: modulus must be positive")

	// ErrInvalidExponent is returned for nil or negative exponents.
	ErrInvalidExponent = errors.New("rsakey: exponent must be non-negative")

	// ErrNotInvertible is returned when gcd(e, totient) != 1.
	ErrNotInvertible = errors.New("rsakey: exponent not invertible modulo totient")
)

var one = big.NewInt(1)

// Modulus returns the product of all primes.
func Modulus(primes []*big.Int) (*big.Int, error) {
	if err := checkPrimes(primes); err != nil {
		return nil, err
	}

	n := big.NewInt(1)
	for _, p := range primes {
		n.Mul(n, p)
	}
	return n, nil
}

// Totient computes (n / ∏p) · ∏(p-1) over the distinct primes of the list.
//
// For a square-free list this is Euler's φ(n). Repeated primes keep their
// extra powers in the n / ∏p prefix.
func Totient(primes []*big.Int) (*big.Int, error) {
	n, err := Modulus(primes)
	if err != nil {
		return nil, err
	}

	unique := distinct(primes)

	prefix := new(big.Int).Set(n)
	rem := new(big.Int)
	for _, p := range unique {
		prefix.QuoRem(prefix, p, rem)
		if rem.Sign() != 0 {
			// Unreachable: every distinct prime divides the product.
			return nil, errors.Errorf("rsakey: %s does not divide modulus", p)
		}
	}

	t := prefix
	pm1 := new(big.Int)
	for _, p := range unique {
		t.Mul(t, pm1.Sub(p, one))
	}
	return t, nil
}

// PrivateExponent returns d = e⁻¹ mod totient(primes).
//
// Returns ErrNotInvertible if e shares a factor with the totient.
func PrivateExponent(e *big.Int, primes []*big.Int) (*big.Int, error) {
	if e == nil || e.Sign() < 0 {
		return nil, ErrInvalidExponent
	}

	t, err := Totient(primes)
	if err != nil {
		return nil, err
	}

	// a factor of 1 contributes (1-1) and zeroes the totient
	if t.Sign() == 0 {
		return nil, errors.Wrap(ErrNotInvertible, "totient is zero")
	}

	d := new(big.Int).ModInverse(e, t)
	if d == nil {
		return nil, errors.Wrapf(ErrNotInvertible, "gcd(%s, %s) != 1", e, t)
	}
	return d, nil
}

// Encrypt returns m^e mod n.
//
// m is not range checked; callers must keep m < n for a round trip.
func Encrypt(m, e, n *big.Int) (*big.Int, error) {
	return expMod(m, e, n)
}

// Decrypt returns c^d mod n.
func Decrypt(c, d, n *big.Int) (*big.Int, error) {
	return expMod(c, d, n)
}

func checkPrimes(primes []*big.Int) error {
	if len(primes) == 0 {
		return ErrNoPrimes
	}
	for i, p := range primes {
		if p == nil || p.Sign() <= 0 {
			return errors.Wrapf(ErrInvalidPrime, "factor %d", i)
		}
	}
	return nil
}

// distinct returns the unique values of primes in first-seen order.
func distinct(primes []*big.Int) []*big.Int {
	seen := make(map[string]struct{}, len(primes))
	unique := make([]*big.Int, 0, len(primes))
	for _, p := range primes {
		k := p.Text(16)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}
