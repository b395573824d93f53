package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"unicode"

	"github.com/mahdiidarabi/rsa-weakkey/internal/parser"
	"github.com/mahdiidarabi/rsa-weakkey/pkg/rsabreak"
	"github.com/mahdiidarabi/rsa-weakkey/pkg/rsakey"
)

func main() {
	var (
		targetsFile   = flag.String("targets", "", "Path to challenge file with RSA targets")
		format        = flag.String("format", "json", "Challenge file format (json, csv, ssh or pem)")
		nearPrimes    = flag.Bool("near-primes", false, "Scan around isqrt(n) for close primes")
		sharedPrime   = flag.Bool("shared-prime", false, "Look for a prime shared between moduli")
		derive        = flag.Bool("derive", false, "Derive the key from known primes (-primes and -e)")
		modulus       = flag.String("n", "", "Modulus (decimal or 0x-prefixed hex)")
		modulus2      = flag.String("n2", "", "Second modulus for -shared-prime")
		exponent      = flag.String("e", "65537", "Public exponent")
		ciphertext    = flag.String("c", "", "Ciphertext to decrypt once the key is recovered")
		message       = flag.String("m", "", "Message to encrypt with a derived key")
		primes        = flag.String("primes", "", "Comma-separated prime factors for -derive")
		radius        = flag.Int64("radius", 0, "Near-prime search radius around isqrt(n) (0 = widen through the default phases)")
		numWorkers    = flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect based on CPU cores)")
		maxIterations = flag.Int64("max-iterations", 0, "Maximum candidates to test per modulus (0 = unlimited)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := mustParse("e", *exponent)
	searchConfig := rsabreak.SearchConfig{
		Radius:        *radius,
		ChunkSize:     rsabreak.DefaultSearchConfig().ChunkSize,
		NumWorkers:    *numWorkers,
		MaxIterations: *maxIterations,
	}

	if *derive {
		if *primes == "" {
			fatalf("-primes is required with -derive")
		}
		factors, err := parser.ParseBigIntList(*primes)
		if err != nil {
			fatalf("parsing -primes: %v", err)
		}
		key, err := rsakey.NewPrivateKey(e, factors)
		if err != nil {
			fatalf("%v", err)
		}
		t, _ := key.Totient()

		fmt.Printf("[+] Derived private key:\n")
		fmt.Printf("    n: %s\n", key.N)
		fmt.Printf("    φ: %s\n", t)
		fmt.Printf("    d: %s\n", key.D)

		if *message != "" {
			c, err := key.Encrypt(mustParse("m", *message))
			if err != nil {
				fatalf("%v", err)
			}
			fmt.Printf("    Ciphertext: %s\n", c)
		}
		if *ciphertext != "" {
			printPlaintext(key, mustParse("c", *ciphertext))
		}
		return
	}

	if *targetsFile != "" {
		var targetParser rsabreak.TargetParser
		switch *format {
		case "json":
			targetParser = &rsabreak.JSONParser{}
		case "csv":
			targetParser = &rsabreak.CSVParser{}
		case "ssh":
			targetParser = &rsabreak.SSHKeyParser{}
		case "pem":
			targetParser = &rsabreak.PEMParser{}
		default:
			fatalf("unknown format %q", *format)
		}

		client := rsabreak.NewClient().
			WithParser(targetParser).
			WithStrategy(newStrategy(*nearPrimes, *sharedPrime, searchConfig))

		fmt.Printf("Loading targets from %s...\n", *targetsFile)
		results, err := client.RecoverKeys(ctx, *targetsFile)
		if err != nil {
			fatalf("%v", err)
		}
		for _, r := range results {
			printResult(r)
		}
		return
	}

	if *modulus == "" {
		fmt.Fprintf(os.Stderr, "Error: -targets, -n or -derive is required\n")
		flag.Usage()
		os.Exit(1)
	}
	n := mustParse("n", *modulus)

	if *sharedPrime && *modulus2 != "" {
		n2 := mustParse("n2", *modulus2)
		sp, err := rsabreak.SharedPrimeFactors(n, n2)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("\n[+] Moduli share a prime:\n")
		fmt.Printf("    p:  %s\n", sp.Prime)
		fmt.Printf("    q1: %s\n", sp.Cofactor1)
		fmt.Printf("    q2: %s\n", sp.Cofactor2)
		return
	}

	if *nearPrimes && !*sharedPrime {
		config := searchConfig
		if config.Radius <= 0 {
			config.Radius = rsabreak.DefaultSearchConfig().Radius
		}
		fmt.Printf("Scanning ±%d around isqrt(n)...\n", config.Radius)
		p, q, err := rsabreak.NearPrimesContext(ctx, n, config)
		if err != nil {
			fatalf("%v", err)
		}
		if p == nil || q.Cmp(big.NewInt(1)) == 0 {
			fmt.Println("No factors found, try a wider -radius")
			os.Exit(2)
		}
		fmt.Printf("\n[+] Found near primes:\n")
		fmt.Printf("    p: %s\n", p)
		fmt.Printf("    q: %s\n", q)
		return
	}

	var c *big.Int
	if *ciphertext != "" {
		c = mustParse("c", *ciphertext)
	}

	client := rsabreak.NewClient().WithStrategy(newStrategy(*nearPrimes, *sharedPrime, searchConfig))
	result, err := client.RecoverKey(ctx, n, e, c)
	if err != nil {
		fatalf("%v", err)
	}
	printResult(result)
}

func newStrategy(nearPrimes, sharedPrime bool, config rsabreak.SearchConfig) rsabreak.FactorStrategy {
	switch {
	case nearPrimes && !sharedPrime:
		strategy := rsabreak.NewNearPrimeStrategy().WithSearchConfig(config)
		if config.Radius > 0 {
			strategy = strategy.WithRadius(config.Radius)
		}
		return strategy
	case sharedPrime && !nearPrimes:
		return rsabreak.NewSharedPrimeStrategy()
	default:
		phases := rsabreak.DefaultPhaseConfig()
		if config.Radius > 0 {
			phases.Radii = []int64{config.Radius}
		}
		return rsabreak.NewSmartStrategy().
			WithSearchConfig(config).
			WithPhaseConfig(phases).
			WithOutput(os.Stdout)
	}
}

func printResult(r *rsabreak.RecoveryResult) {
	fmt.Printf("\n[+] Factored %s via %s:\n", r.Label, r.Method)
	for i, f := range r.Factors {
		fmt.Printf("    p%d: %s\n", i+1, f)
	}
	if r.Err != nil {
		fmt.Printf("    ✗ %v\n", r.Err)
		return
	}
	if r.PrivateKey != nil {
		fmt.Printf("    d:  %s\n", r.PrivateKey.D)
	}
	if r.Plaintext != nil {
		fmt.Printf("    Plaintext: %s\n", r.Plaintext)
		if text, ok := printable(r.Plaintext); ok {
			fmt.Printf("    Text: %s\n", text)
		}
	}
}

func printPlaintext(key *rsakey.PrivateKey, c *big.Int) {
	m, err := key.Decrypt(c)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("    Plaintext: %s\n", m)
	if text, ok := printable(m); ok {
		fmt.Printf("    Text: %s\n", text)
	}
}

// printable reports the big-endian bytes of m as text when every rune is
// printable.
func printable(m *big.Int) (string, bool) {
	if m.Sign() <= 0 {
		return "", false
	}
	text := string(m.Bytes())
	for _, r := range text {
		if r == unicode.ReplacementChar || !(unicode.IsPrint(r) || unicode.IsSpace(r)) {
			return "", false
		}
	}
	return text, true
}

func mustParse(name, value string) *big.Int {
	z, err := parser.ParseBigInt(value)
	if err != nil {
		fatalf("parsing -%s: %v", name, err)
	}
	return z
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
