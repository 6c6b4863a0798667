package nullmodel

import (
	"context"
	"errors"
	"math/rand"

	"github.com/epilectrik/voynich-sub006/corpus"
)

var (
	// ErrNoContexts indicates an empty context slice.
	ErrNoContexts = errors.New("nullmodel: no contexts")

	// ErrBadTrialCount indicates a non-positive trial count.
	ErrBadTrialCount = errors.New("nullmodel: trial count must be > 0")

	// ErrNilStatistic indicates a nil statistic callback.
	ErrNilStatistic = errors.New("nullmodel: nil statistic function")
)

// DefaultTrials is the suggested permutation trial count. More trials
// lower the p-value granularity floor of 1/(N+1); fewer make long
// exploratory sweeps cheaper. Callers override per hypothesis.
const DefaultTrials = 1000

// Generator produces frequency- and length-preserving shuffles of one
// fixed corpus. The zero value is not usable; construct with NewGenerator.
//
// A Generator is cheap and immutable: it snapshots the pooled occurrence
// sequence and the context-length skeleton once, then every Shuffle call
// derives a fresh randomized copy from an explicit seed.
type Generator struct {
	pool    []int    // all symbol occurrences, in corpus order, with multiplicity
	keys    []string // context keys, original order
	lengths []int    // context lengths, original order
}

// NewGenerator snapshots the corpus structure a shuffle must preserve.
//
// Errors:
//   - ErrNoContexts on an empty slice.
//
// Complexity:
//   - Time O(Σ|c|), Space O(Σ|c|).
func NewGenerator(contexts []corpus.Context) (*Generator, error) {
	if len(contexts) == 0 {
		return nil, ErrNoContexts
	}

	g := &Generator{
		keys:    make([]string, len(contexts)),
		lengths: make([]int, len(contexts)),
	}
	for i, c := range contexts {
		g.keys[i] = c.Key
		g.lengths[i] = len(c.Symbols)
		g.pool = append(g.pool, c.Symbols...)
	}

	return g, nil
}

// Shuffle returns one randomized reconstruction of the corpus: the pooled
// occurrence sequence under a uniform Fisher–Yates permutation drawn from
// rng, re-partitioned into contexts along the original length sequence in
// original order.
//
// Determinism:
//   - Bit-reproducible for a given rng seed.
//
// Invariants (checked by tests):
//   - Multiset of symbols identical to the original corpus.
//   - Context count, keys and per-context lengths identical.
//
// Complexity:
//   - Time O(Σ|c|), Space O(Σ|c|).
func (g *Generator) Shuffle(rng *rand.Rand) []corpus.Context {
	shuffled := make([]int, len(g.pool))
	copy(shuffled, g.pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	out := make([]corpus.Context, len(g.lengths))
	offset := 0
	for i, length := range g.lengths {
		out[i] = corpus.Context{
			Key:     g.keys[i],
			Symbols: shuffled[offset : offset+length : offset+length],
		}
		offset += length
	}

	return out
}

// Distribution builds the null distribution of a corpus-level statistic:
// trials × (Shuffle → stat), run on the shared trial pool.
//
// The statistic must treat its argument as read-only; each trial owns its
// randomized copy, so stat may be called concurrently.
//
// Errors:
//   - ErrBadTrialCount, ErrNilStatistic; the first stat error aborts.
//
// Cancellation:
//   - See RunTrials: a cancelled run returns the completed trials with
//     Partial set.
func (g *Generator) Distribution(ctx context.Context, cfg TrialConfig, stat func([]corpus.Context) (float64, error)) (*Distribution, error) {
	if stat == nil {
		return nil, ErrNilStatistic
	}

	return RunTrials(ctx, cfg, func(_ int, rng *rand.Rand) (float64, error) {
		return stat(g.Shuffle(rng))
	})
}
