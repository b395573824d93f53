package rsabreak

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
)

// SharedPrimeStrategy runs the pairwise shared-prime attack over all targets.
type SharedPrimeStrategy struct {
	out io.Writer
}

// NewSharedPrimeStrategy creates a shared-prime strategy that reports to stdout.
func NewSharedPrimeStrategy() *SharedPrimeStrategy {
	return &SharedPrimeStrategy{out: os.Stdout}
}

// WithOutput sets where progress is written.
func (s *SharedPrimeStrategy) WithOutput(w io.Writer) *SharedPrimeStrategy {
	s.out = w
	return s
}

// Name returns the name of this strategy.
func (s *SharedPrimeStrategy) Name() string {
	return "SharedPrime"
}

// Search implements the FactorStrategy interface.
func (s *SharedPrimeStrategy) Search(ctx context.Context, targets []*Target) []*RecoveryResult {
	out := s.out
	if out == nil {
		out = io.Discard
	}
	if ctx.Err() != nil {
		return nil
	}

	found := make(map[int]*RecoveryResult)
	searchSharedPrimes(out, targets, found)
	return sortedResults(found)
}

// searchSharedPrimes records both sides of every shared-prime pair. The
// first pair found for a target wins.
func searchSharedPrimes(out io.Writer, targets []*Target, found map[int]*RecoveryResult) {
	index := make([]int, 0, len(targets))
	moduli := make([]*big.Int, 0, len(targets))
	for i, t := range targets {
		if !validTarget(t) {
			continue
		}
		index = append(index, i)
		moduli = append(moduli, t.N)
	}

	matches, err := SharedPrimeScan(moduli)
	if err != nil {
		fmt.Fprintf(out, "  shared prime scan failed: %v\n", err)
		return
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "No shared primes found")
		return
	}

	for _, m := range matches {
		i, j := index[m.Pair[0]], index[m.Pair[1]]
		fmt.Fprintf(out, "✓ Targets %d and %d share a prime\n", i, j)
		if _, ok := found[i]; !ok {
			found[i] = newResult(i, targets[i], MethodSharedPrime, m.Prime, m.Cofactor1)
		}
		if _, ok := found[j]; !ok {
			found[j] = newResult(j, targets[j], MethodSharedPrime, m.Prime, m.Cofactor2)
		}
	}
}
