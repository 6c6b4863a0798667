package nullmodel

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TrialConfig parameterizes one permutation run.
//
// Fields:
//   - Trials  — number of randomization trials (> 0).
//   - Workers — concurrent trial workers; <= 0 means GOMAXPROCS. Worker
//     count never affects output, only wall-clock time.
//   - Seed    — base seed; trial t uses an independent generator seeded
//     with Seed+t, making parallel and serial runs bit-identical.
type TrialConfig struct {
	Trials  int
	Workers int
	Seed    int64
}

// DefaultTrialConfig returns the documented defaults with the given seed.
func DefaultTrialConfig(seed int64) TrialConfig {
	return TrialConfig{Trials: DefaultTrials, Workers: 0, Seed: seed}
}

// Distribution is an ordered collection of null-statistic samples.
// Create-once, read-only: it is consumed by sigtest and discarded.
type Distribution struct {
	// Samples holds the completed trial statistics in trial order.
	Samples []float64

	// Requested is the configured trial count; len(Samples) may be lower
	// when the run was cancelled.
	Requested int

	// Partial reports that the run was cancelled before all requested
	// trials completed. Significance computed from a partial distribution
	// carries the reduced count, never the requested one.
	Partial bool
}

// RunTrials executes fn once per trial on a bounded worker pool and
// collects the results in trial order.
//
// Implementation:
//   - Stage 1: validate; derive per-trial seeds Seed+t.
//   - Stage 2: errgroup with SetLimit(Workers); each worker checks ctx
//     before computing and records completion per trial.
//   - Stage 3: on cancellation, compact the completed prefix-preserving
//     sample set into a Partial distribution instead of failing.
//
// Behavior highlights:
//   - fn receives its own *rand.Rand; it must not share mutable state
//     across trials.
//   - The first non-nil fn error aborts the run and is returned as-is
//     (wrapped with the trial index).
//
// Determinism:
//   - Output is a pure function of (cfg, fn); scheduling order never leaks
//     into the samples because each trial owns its seed and slot.
//
// Complexity:
//   - Time O(Trials × cost(fn) / Workers), Space O(Trials).
func RunTrials(ctx context.Context, cfg TrialConfig, fn func(trial int, rng *rand.Rand) (float64, error)) (*Distribution, error) {
	if cfg.Trials <= 0 {
		return nil, ErrBadTrialCount
	}
	if fn == nil {
		return nil, ErrNilStatistic
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	samples := make([]float64, cfg.Trials)
	done := make([]bool, cfg.Trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < cfg.Trials; t++ {
		t := t
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil // cancelled before start; slot stays incomplete
			default:
			}
			v, err := fn(t, rand.New(rand.NewSource(cfg.Seed+int64(t))))
			if err != nil {
				return fmt.Errorf("nullmodel: trial %d: %w", t, err)
			}
			samples[t] = v
			done[t] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := make([]float64, 0, cfg.Trials)
	for t := 0; t < cfg.Trials; t++ {
		if done[t] {
			completed = append(completed, samples[t])
		}
	}

	return &Distribution{
		Samples:   completed,
		Requested: cfg.Trials,
		Partial:   len(completed) < cfg.Trials,
	}, nil
}
