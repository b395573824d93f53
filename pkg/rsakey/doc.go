// Package rsakey provides textbook RSA arithmetic over an arbitrary list of
// prime factors.
//
// Every function is a pure computation on *big.Int values: the modulus is the
// product of the primes, the totient is computed from the distinct primes, and
// the private exponent is the inverse of e modulo the totient. No primality
// checks are performed; callers supply the factors.
//
// # Quick Start
//
//	primes := []*big.Int{big.NewInt(3), big.NewInt(11)}
//	e := big.NewInt(7)
//
//	key, err := rsakey.NewPrivateKey(e, primes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	c, _ := key.Encrypt(big.NewInt(5))
//	m, _ := key.Decrypt(c) // m == 5
//
// The free functions Modulus, Totient, PrivateExponent, Encrypt and Decrypt
// expose the same arithmetic without building a key.
//
// WARNING: this is unpadded RSA intended for CTF analysis. It must not be used
// to protect real data.
package rsakey
