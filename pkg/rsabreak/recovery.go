package rsabreak

import (
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidModulus is returned when a modulus is nil or not positive.
	ErrInvalidModulus = errors.New("rsabreak: modulus must be positive")

	// ErrInvalidRadius is returned for a negative or oversized search radius.
	ErrInvalidRadius = errors.New("rsabreak: invalid search radius")

	// ErrPrimeNotShared is returned when two moduli do not share exactly one
	// prime with distinct cofactors. The result would be meaningless, so no
	// factors are returned.
	ErrPrimeNotShared = errors.New("rsabreak: primes were not reused")

	// ErrSearchLimit is returned when a search stops at
	// SearchConfig.MaxIterations before covering the whole window.
	ErrSearchLimit = errors.New("rsabreak: search iteration limit reached")
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// NearPrimes looks for a factor of n within radius of ⌊√n⌋.
//
// Candidates p are tried in increasing order over
// [max(⌊√n⌋-radius, 2), ⌊√n⌋+radius) and the first divisor wins, so the
// smaller factor comes first. A miss returns nil, nil and a nil error; retry
// with a larger radius.
//
// When n < ⌊√n⌋+radius and no smaller divisor lies in the window, n itself
// is the first hit and the result is the trivial split (n, 1). Callers must
// check q == 1.
func NearPrimes(n *big.Int, radius int64) (p, q *big.Int, err error) {
	lo, count, err := nearPrimeWindow(n, radius)
	if err != nil {
		return nil, nil, err
	}

	cand := new(big.Int).Set(lo)
	rem := new(big.Int)
	for i := int64(0); i < count; i++ {
		if rem.Mod(n, cand).Sign() == 0 {
			return cand, new(big.Int).Quo(n, cand), nil
		}
		cand.Add(cand, one)
	}
	return nil, nil, nil
}

// nearPrimeWindow returns the first candidate and the number of candidates
// for a near-prime scan.
func nearPrimeWindow(n *big.Int, radius int64) (*big.Int, int64, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, 0, ErrInvalidModulus
	}
	if radius < 0 {
		return nil, 0, errors.Wrapf(ErrInvalidRadius, "radius %d", radius)
	}

	r := big.NewInt(radius)
	center := new(big.Int).Sqrt(n)

	lo := new(big.Int).Sub(center, r)
	if lo.Cmp(two) < 0 {
		lo.Set(two)
	}
	hi := new(big.Int).Add(center, r)

	if lo.Cmp(hi) >= 0 {
		return lo, 0, nil
	}

	count := new(big.Int).Sub(hi, lo)
	if !count.IsInt64() {
		return nil, 0, errors.Wrapf(ErrInvalidRadius, "radius %d spans too many candidates", radius)
	}
	return lo, count.Int64(), nil
}

// FermatFactor factors n as a² - b² = (a-b)(a+b), walking a upward from
// ⌈√n⌉ for at most rounds steps. It succeeds quickly when the two factors
// are close. A miss returns nil, nil and a nil error.
func FermatFactor(n *big.Int, rounds int) (p, q *big.Int, err error) {
	if n == nil || n.Sign() <= 0 {
		return nil, nil, ErrInvalidModulus
	}
	if rounds < 0 {
		return nil, nil, errors.Errorf("rsabreak: negative round count %d", rounds)
	}

	if n.Bit(0) == 0 {
		if n.Cmp(two) <= 0 {
			return nil, nil, nil
		}
		return new(big.Int).Set(two), new(big.Int).Rsh(n, 1), nil
	}

	a := new(big.Int).Sqrt(n)
	b2 := new(big.Int).Mul(a, a)
	if b2.Cmp(n) == 0 {
		if a.Cmp(one) == 0 {
			return nil, nil, nil
		}
		return a, new(big.Int).Set(a), nil
	}

	a.Add(a, one)
	b2.Mul(a, a).Sub(b2, n)

	b := new(big.Int)
	bb := new(big.Int)
	for i := 0; i < rounds; i++ {
		b.Sqrt(b2)
		if bb.Mul(b, b).Cmp(b2) == 0 {
			p = new(big.Int).Sub(a, b)
			if p.Cmp(one) <= 0 {
				// reached the trivial split 1·n
				return nil, nil, nil
			}
			return p, new(big.Int).Add(a, b), nil
		}

		// (a+1)² - n = b2 + 2a + 1
		b2.Add(b2, a).Add(b2, a).Add(b2, one)
		a.Add(a, one)
	}
	return nil, nil, nil
}

// SharedPrimeFactors recovers the prime shared by n1 = p·q and n2 = p·r.
//
// The ratio n1/n2 is reduced to lowest terms q'/r', which cancels p. Then
// p = n1/q' = n2/r'. ErrPrimeNotShared is returned when the two quotients
// disagree, when the moduli are coprime, or when one modulus divides the
// other.
func SharedPrimeFactors(n1, n2 *big.Int) (*SharedPrime, error) {
	if n1 == nil || n1.Sign() <= 0 || n2 == nil || n2.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	ratio := new(big.Rat).SetFrac(n1, n2)
	q := new(big.Int).Set(ratio.Num())
	r := new(big.Int).Set(ratio.Denom())

	p1, rem1 := new(big.Int).QuoRem(n1, q, new(big.Int))
	p2, rem2 := new(big.Int).QuoRem(n2, r, new(big.Int))

	if rem1.Sign() != 0 || rem2.Sign() != 0 || p1.Cmp(p2) != 0 {
		return nil, errors.Wrapf(ErrPrimeNotShared, "n1/q=%s, n2/r=%s", p1, p2)
	}
	if p1.Cmp(one) == 0 {
		return nil, errors.Wrap(ErrPrimeNotShared, "moduli are coprime")
	}
	if q.Cmp(one) == 0 || r.Cmp(one) == 0 {
		return nil, errors.Wrap(ErrPrimeNotShared, "one modulus divides the other")
	}

	return &SharedPrime{
		Prime:     p1,
		Cofactor1: q,
		Cofactor2: r,
	}, nil
}

// SharedPrimeScan runs SharedPrimeFactors over every pair of moduli and
// returns the pairs that share a prime, ordered by (i, j).
func SharedPrimeScan(moduli []*big.Int) ([]*SharedPrimeMatch, error) {
	for i, n := range moduli {
		if n == nil || n.Sign() <= 0 {
			return nil, errors.Wrapf(ErrInvalidModulus, "modulus %d", i)
		}
	}

	var matches []*SharedPrimeMatch
	for i := 0; i < len(moduli); i++ {
		for j := i + 1; j < len(moduli); j++ {
			sp, err := SharedPrimeFactors(moduli[i], moduli[j])
			if err != nil {
				continue
			}
			matches = append(matches, &SharedPrimeMatch{
				SharedPrime: *sp,
				Pair:        [2]int{i, j},
			})
		}
	}
	return matches, nil
}
