package rsabreak

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

// NearPrimesContext is the parallel form of NearPrimes.
//
// The window is split into chunks of cfg.ChunkSize candidates that are
// scanned by cfg.NumWorkers goroutines. The lowest chunk holding a divisor
// always finishes, so the result equals the sequential upward scan. When
// cfg.MaxIterations is set only the first MaxIterations candidates are
// tested and a miss is reported as ErrSearchLimit. Like NearPrimes it may
// return the trivial split (n, 1).
func NearPrimesContext(ctx context.Context, n *big.Int, cfg SearchConfig) (p, q *big.Int, err error) {
	lo, count, err := nearPrimeWindow(n, cfg.Radius)
	if err != nil {
		return nil, nil, err
	}

	limited := false
	if cfg.MaxIterations > 0 && count > cfg.MaxIterations {
		count = cfg.MaxIterations
		limited = true
	}
	if count == 0 {
		return nil, nil, nil
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultSearchConfig().ChunkSize
	}
	numChunks := (count + chunkSize - 1) / chunkSize

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if int64(numWorkers) > numChunks {
		numWorkers = int(numChunks)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// best is the lowest chunk index with a divisor, numChunks = none yet
	var best atomic.Int64
	best.Store(numChunks)
	var mu sync.Mutex
	var bestP *big.Int

	workChan := make(chan int64, numWorkers*4)

	// Generate work
	go func() {
		defer close(workChan)
		for k := int64(0); k < numChunks; k++ {
			if k > best.Load() {
				return
			}
			select {
			case <-searchCtx.Done():
				return
			case workChan <- k:
			}
		}
	}()

	// Start workers
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cand := new(big.Int)
			rem := new(big.Int)
			for k := range workChan {
				if k > best.Load() {
					continue
				}

				start := k * chunkSize
				end := start + chunkSize
				if end > count {
					end = count
				}

				cand.SetInt64(start).Add(cand, lo)
				for i := start; i < end; i++ {
					if (i-start)%1024 == 0 {
						if searchCtx.Err() != nil || best.Load() < k {
							break
						}
					}
					if rem.Mod(n, cand).Sign() == 0 {
						mu.Lock()
						if k < best.Load() {
							best.Store(k)
							bestP = new(big.Int).Set(cand)
						}
						mu.Unlock()
						break
					}
					cand.Add(cand, one)
				}
			}
		}()
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if best.Load() < numChunks {
		return bestP, new(big.Int).Quo(n, bestP), nil
	}
	if limited {
		return nil, nil, ErrSearchLimit
	}
	return nil, nil, nil
}

// NearPrimeStrategy factors each target with a near-prime window scan,
// widening the radius phase by phase.
type NearPrimeStrategy struct {
	SearchConfig SearchConfig
	PhaseConfig  PhaseConfig
	out          io.Writer
}

// NewNearPrimeStrategy creates a near-prime strategy with default settings.
func NewNearPrimeStrategy() *NearPrimeStrategy {
	return &NearPrimeStrategy{
		SearchConfig: DefaultSearchConfig(),
		PhaseConfig:  DefaultPhaseConfig(),
		out:          os.Stdout,
	}
}

// WithSearchConfig sets the window scan configuration.
func (s *NearPrimeStrategy) WithSearchConfig(config SearchConfig) *NearPrimeStrategy {
	s.SearchConfig = config
	return s
}

// WithRadius replaces the expanding phases with a single radius.
func (s *NearPrimeStrategy) WithRadius(radius int64) *NearPrimeStrategy {
	s.PhaseConfig.Radii = []int64{radius}
	return s
}

// WithOutput sets where progress is written.
func (s *NearPrimeStrategy) WithOutput(w io.Writer) *NearPrimeStrategy {
	s.out = w
	return s
}

// Name returns the name of this strategy.
func (s *NearPrimeStrategy) Name() string {
	return "NearPrime"
}

// Search implements the FactorStrategy interface.
func (s *NearPrimeStrategy) Search(ctx context.Context, targets []*Target) []*RecoveryResult {
	found := make(map[int]*RecoveryResult)
	searchNearPrimes(ctx, s.output(), targets, s.SearchConfig, s.PhaseConfig.Radii, found)
	return sortedResults(found)
}

func (s *NearPrimeStrategy) output() io.Writer {
	if s.out == nil {
		return io.Discard
	}
	return s.out
}

// SmartStrategy is a multi-phase strategy: shared primes across all targets
// first, then Fermat, then expanding near-prime scans.
type SmartStrategy struct {
	SearchConfig SearchConfig
	PhaseConfig  PhaseConfig
	out          io.Writer
}

// NewSmartStrategy creates a new smart strategy with default settings.
func NewSmartStrategy() *SmartStrategy {
	return &SmartStrategy{
		SearchConfig: DefaultSearchConfig(),
		PhaseConfig:  DefaultPhaseConfig(),
		out:          os.Stdout,
	}
}

// WithSearchConfig sets the window scan configuration.
func (s *SmartStrategy) WithSearchConfig(config SearchConfig) *SmartStrategy {
	s.SearchConfig = config
	return s
}

// WithPhaseConfig sets the phase configuration.
func (s *SmartStrategy) WithPhaseConfig(config PhaseConfig) *SmartStrategy {
	s.PhaseConfig = config
	return s
}

// WithOutput sets where progress is written.
func (s *SmartStrategy) WithOutput(w io.Writer) *SmartStrategy {
	s.out = w
	return s
}

// Name returns the name of this strategy.
func (s *SmartStrategy) Name() string {
	return "Smart"
}

// Search implements the FactorStrategy interface.
func (s *SmartStrategy) Search(ctx context.Context, targets []*Target) []*RecoveryResult {
	out := s.out
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintf(out, "Starting factorization of %d targets...\n", len(targets))
	found := make(map[int]*RecoveryResult)

	// Phase 0: shared primes need at least two moduli
	if s.PhaseConfig.IncludeSharedPrime && len(targets) > 1 {
		fmt.Fprintln(out, "Phase 0: Checking for shared primes...")
		searchSharedPrimes(out, targets, found)
	}

	if len(found) == countValid(targets) {
		return sortedResults(found)
	}

	// Phase 1: Fermat
	if s.PhaseConfig.FermatRounds > 0 {
		fmt.Fprintf(out, "Phase 1: Fermat factorization (%d rounds)...\n", s.PhaseConfig.FermatRounds)
		searchFermat(ctx, out, targets, s.PhaseConfig.FermatRounds, found)
	}

	if len(found) == countValid(targets) {
		return sortedResults(found)
	}

	// Phase 2: expanding near-prime windows
	fmt.Fprintln(out, "Phase 2: Near-prime window search...")
	searchNearPrimes(ctx, out, targets, s.SearchConfig, s.PhaseConfig.Radii, found)

	if len(found) < countValid(targets) {
		fmt.Fprintf(out, "All phases completed, %d of %d targets factored\n", len(found), countValid(targets))
	}
	return sortedResults(found)
}

// searchFermat runs FermatFactor on every target not in found.
func searchFermat(ctx context.Context, out io.Writer, targets []*Target, rounds int, found map[int]*RecoveryResult) {
	for i, t := range targets {
		if _, ok := found[i]; ok || !validTarget(t) {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		p, q, err := FermatFactor(t.N, rounds)
		if err != nil || p == nil {
			continue
		}
		fmt.Fprintf(out, "✓ Fermat factored target %d\n", i)
		found[i] = newResult(i, t, MethodFermat, p, q)
	}
}

// searchNearPrimes runs the window scan for each radius on every target
// not in found.
func searchNearPrimes(ctx context.Context, out io.Writer, targets []*Target, cfg SearchConfig, radii []int64, found map[int]*RecoveryResult) {
	if len(radii) == 0 {
		radii = []int64{cfg.Radius}
	}

	for i, t := range targets {
		if _, ok := found[i]; ok || !validTarget(t) {
			continue
		}

		for _, radius := range radii {
			if ctx.Err() != nil {
				return
			}

			phase := cfg
			phase.Radius = radius
			fmt.Fprintf(out, "  target %d: scanning ±%d around √n...\n", i, radius)

			p, q, err := NearPrimesContext(ctx, t.N, phase)
			if err != nil {
				fmt.Fprintf(out, "  target %d: %v\n", i, err)
				continue
			}
			if p != nil && q.Cmp(one) == 0 {
				// n itself is the first divisor, wider windows find nothing else
				fmt.Fprintf(out, "  target %d: only the trivial split n·1\n", i)
				break
			}
			if p != nil {
				fmt.Fprintf(out, "✓ Found near primes for target %d (radius %d)\n", i, radius)
				found[i] = newResult(i, t, MethodNearPrimes, p, q)
				break
			}
		}
	}
}

func newResult(i int, t *Target, method string, factors ...*big.Int) *RecoveryResult {
	sorted := append([]*big.Int(nil), factors...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Cmp(sorted[b]) < 0 })
	return &RecoveryResult{
		TargetIndex: i,
		Label:       t.Label,
		Factors:     sorted,
		Method:      method,
	}
}

func sortedResults(found map[int]*RecoveryResult) []*RecoveryResult {
	if len(found) == 0 {
		return nil
	}
	results := make([]*RecoveryResult, 0, len(found))
	for _, r := range found {
		results = append(results, r)
	}
	sort.Slice(results, func(a, b int) bool { return results[a].TargetIndex < results[b].TargetIndex })
	return results
}

func validTarget(t *Target) bool {
	return t != nil && t.N != nil && t.N.Sign() > 0
}

func countValid(targets []*Target) int {
	c := 0
	for _, t := range targets {
		if validTarget(t) {
			c++
		}
	}
	return c
}
