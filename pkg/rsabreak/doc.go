// Package rsabreak recovers the prime factors of RSA moduli whose parameters
// were chosen unsafely.
//
// Two weaknesses are covered:
//
//   - near primes: the two factors of n are close to √n, so a short scan
//     around ⌊√n⌋ (NearPrimes, NearPrimesContext) or Fermat's method
//     (FermatFactor) finds them;
//   - shared primes: two moduli n1 = p·q and n2 = p·r reuse p, which falls
//     out of reducing n1/n2 to lowest terms (SharedPrimeFactors,
//     SharedPrimeScan).
//
// A search that finds nothing returns nil factors and a nil error; widen the
// radius and retry. A shared-prime attack whose precondition does not hold
// returns ErrPrimeNotShared instead of a meaningless factor.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/rsa-weakkey/pkg/rsabreak"
//
//	p, q, err := rsabreak.NearPrimes(n, 1<<16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if p == nil {
//	    // widen the radius
//	}
//
// # Client
//
// Client takes a challenge file (JSON, CSV, authorized_keys or PEM), runs a
// FactorStrategy over every modulus, and derives private keys and
// plaintexts with package rsakey:
//
//	client := rsabreak.NewClient().WithParser(&rsabreak.SSHKeyParser{})
//
//	results, err := client.RecoverKeys(ctx, "authorized_keys")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range results {
//	    fmt.Printf("%s: %s via %s\n", r.Label, r.Factors, r.Method)
//	}
//
// # Custom Strategies
//
// Implement the FactorStrategy interface to create custom attacks:
//
//	type MyStrategy struct{}
//
//	func (s *MyStrategy) Search(ctx context.Context, targets []*rsabreak.Target) []*rsabreak.RecoveryResult {
//	    // Your custom factoring logic
//	}
//
//	func (s *MyStrategy) Name() string {
//	    return "MyCustomStrategy"
//	}
//
//	client := rsabreak.NewClient().WithStrategy(&MyStrategy{})
package rsabreak
