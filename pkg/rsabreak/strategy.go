package rsabreak

import (
	"context"
)

// FactorStrategy defines the interface for factoring strategies.
// Implement this interface to plug a custom attack into Client.
type FactorStrategy interface {
	// Search attempts to factor the targets. It returns one result per
	// target it factored, ordered by TargetIndex, and nil if none fell.
	// The context can be used for cancellation.
	Search(ctx context.Context, targets []*Target) []*RecoveryResult

	// Name returns a human-readable name for this strategy.
	Name() string
}

// SearchConfig configures a single near-prime window scan.
type SearchConfig struct {
	// Radius is the half-width of the window around ⌊√n⌋
	Radius int64

	// ChunkSize is the number of candidates handed to a worker at a time
	ChunkSize int64

	// NumWorkers controls parallelization (0 = auto-detect)
	NumWorkers int

	// MaxIterations caps the number of candidates tested (0 = no cap)
	MaxIterations int64
}

// DefaultSearchConfig returns a sensible default configuration.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Radius:        1 << 16,
		ChunkSize:     4096,
		NumWorkers:    0, // Auto-detect
		MaxIterations: 0,
	}
}

// PhaseConfig configures the expanding phases of the multi-target strategies.
type PhaseConfig struct {
	// Radii are tried in order for targets still unfactored
	Radii []int64

	// FermatRounds bounds the difference-of-squares walk (0 = skip Fermat)
	FermatRounds int

	// IncludeSharedPrime runs the pairwise shared-prime attack first
	IncludeSharedPrime bool
}

// DefaultPhaseConfig returns phases suited to CTF-scale moduli.
func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{
		Radii:              []int64{1 << 10, 1 << 16, 1 << 20},
		FermatRounds:       100000,
		IncludeSharedPrime: true,
	}
}
