package rsabreak

import (
	"math/big"

	"github.com/mahdiidarabi/rsa-weakkey/pkg/rsakey"
)

// Method names reported in RecoveryResult.Method.
const (
	MethodNearPrimes  = "near_primes"
	MethodFermat      = "fermat"
	MethodSharedPrime = "shared_prime"
)

// Target is one RSA challenge: a modulus with an optional public exponent
// and ciphertext.
type Target struct {
	Label string   // Human-readable name (file label, key comment)
	N     *big.Int // Modulus
	E     *big.Int // Public exponent, nil = rsakey.DefaultExponent
	C     *big.Int // Ciphertext to decrypt once factored, may be nil
}

// SharedPrime is the outcome of a successful shared-prime attack on two
// moduli n1 = p·q and n2 = p·r.
type SharedPrime struct {
	Prime     *big.Int // p, common to both moduli
	Cofactor1 *big.Int // q = n1 / p
	Cofactor2 *big.Int // r = n2 / p
}

// SharedPrimeMatch is a SharedPrime found while scanning many moduli.
type SharedPrimeMatch struct {
	SharedPrime
	Pair [2]int // Indices of the two moduli
}

// RecoveryResult contains the result of factoring one target.
type RecoveryResult struct {
	TargetIndex int                // Index of the target in the input slice
	Label       string             // Target label
	Factors     []*big.Int         // Recovered factors, smallest first
	Method      string             // Attack that produced the factors
	PrivateKey  *rsakey.PrivateKey // Derived key, set by Client
	Plaintext   *big.Int           // Decrypted C, set by Client when C is present
	Err         error              // Key derivation or decryption failure, set by Client
}
