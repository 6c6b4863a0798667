package coherence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/epilectrik/voynich-sub006/nullmodel"
	"github.com/epilectrik/voynich-sub006/sigtest"
	"github.com/epilectrik/voynich-sub006/spectral"
)

var (
	// ErrInsufficientData indicates a subset too small to have pairwise
	// structure (fewer than two symbols).
	ErrInsufficientData = errors.New("coherence: subset needs at least two symbols")

	// ErrIndexOutOfRange indicates a subset index outside the embedding.
	ErrIndexOutOfRange = errors.New("coherence: subset index out of range")

	// ErrDuplicateIndex indicates a symbol listed twice in the subset.
	ErrDuplicateIndex = errors.New("coherence: duplicate subset index")

	// ErrSubsetTooLarge indicates a subset larger than the symbol set, so
	// no size-matched random subset exists.
	ErrSubsetTooLarge = errors.New("coherence: subset larger than symbol set")
)

// SuggestedZThreshold is the conventional cut at which a subset is
// usually called coherent (|z| ≥ 2). It is advisory only: Analyze
// reports raw z-scores and p-values and never applies the cut itself.
const SuggestedZThreshold = 2.0

// Config parameterizes Analyze.
//
// Fields:
//   - Trials         — random size-matched subsets per null (> 0;
//     default nullmodel.DefaultTrials).
//   - Workers        — concurrent trial workers; <= 0 means GOMAXPROCS.
//   - Seed           — base seed. The cosine null uses Seed; the
//     centroid-distance null uses Seed+Trials so the two draws never
//     share a per-trial stream.
//   - AllowSmallNull — forwarded to the significance evaluation.
type Config struct {
	Trials         int
	Workers        int
	Seed           int64
	AllowSmallNull bool
}

// Result carries both coherence tests for one subset.
type Result struct {
	// SubsetSize is the number of symbols tested.
	SubsetSize int `json:"subset_size"`

	// Cosine tests mean pairwise cosine, upper tail: a coherent subset
	// scores higher than random ones.
	Cosine sigtest.TestResult `json:"cosine"`

	// CentroidDist tests mean distance to the subset centroid, lower
	// tail: a coherent subset is tighter than random ones.
	CentroidDist sigtest.TestResult `json:"centroid_dist"`
}

// Analyze tests whether subset is tighter in emb than chance predicts.
//
// Implementation:
//   - Stage 1: validate the subset (size, range, duplicates).
//   - Stage 2: observed mean pairwise cosine and mean centroid distance.
//   - Stage 3: two null distributions from uniform size-matched subsets
//     (nullmodel.RunTrials, seeded per Config), one per statistic.
//   - Stage 4: significance via sigtest, Greater tail for cosine, Less
//     tail for centroid distance.
//
// Behavior highlights:
//   - Cancellation mid-null yields partial distributions; the results
//     then carry sigtest.FlagPartialNull with the reduced trial count.
//
// Errors:
//   - ErrInsufficientData, ErrIndexOutOfRange, ErrDuplicateIndex,
//     ErrSubsetTooLarge on bad subsets.
//   - sigtest.ErrInsufficientSamples when too few trials survive and
//     AllowSmallNull is unset.
//
// Determinism:
//   - Output is a pure function of (emb, subset, cfg); worker count never
//     affects it.
//
// Complexity:
//   - Time O(Trials × s² × K / Workers) for subset size s.
func Analyze(ctx context.Context, emb *spectral.Embedding, subset []int, cfg Config) (*Result, error) {
	if err := validateSubset(emb, subset); err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}

	trials := cfg.Trials
	if trials <= 0 {
		trials = nullmodel.DefaultTrials
	}

	obsCos, err := meanPairwiseCosine(emb, subset)
	if err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}
	obsDist, err := meanCentroidDist(emb, subset)
	if err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}

	n := emb.Rows()
	size := len(subset)

	cosNull, err := nullmodel.RunTrials(ctx,
		nullmodel.TrialConfig{Trials: trials, Workers: cfg.Workers, Seed: cfg.Seed},
		func(_ int, rng *rand.Rand) (float64, error) {
			return meanPairwiseCosine(emb, randomSubset(rng, n, size))
		})
	if err != nil {
		return nil, fmt.Errorf("Analyze: cosine null: %w", err)
	}

	distNull, err := nullmodel.RunTrials(ctx,
		nullmodel.TrialConfig{Trials: trials, Workers: cfg.Workers, Seed: cfg.Seed + int64(trials)},
		func(_ int, rng *rand.Rand) (float64, error) {
			return meanCentroidDist(emb, randomSubset(rng, n, size))
		})
	if err != nil {
		return nil, fmt.Errorf("Analyze: distance null: %w", err)
	}

	cosRes, err := sigtest.Evaluate(obsCos, cosNull,
		sigtest.Config{Tail: sigtest.Greater, AllowSmallNull: cfg.AllowSmallNull})
	if err != nil {
		return nil, fmt.Errorf("Analyze: cosine: %w", err)
	}
	distRes, err := sigtest.Evaluate(obsDist, distNull,
		sigtest.Config{Tail: sigtest.Less, AllowSmallNull: cfg.AllowSmallNull})
	if err != nil {
		return nil, fmt.Errorf("Analyze: distance: %w", err)
	}

	return &Result{SubsetSize: size, Cosine: cosRes, CentroidDist: distRes}, nil
}

func validateSubset(emb *spectral.Embedding, subset []int) error {
	if len(subset) < 2 {
		return fmt.Errorf("size %d: %w", len(subset), ErrInsufficientData)
	}
	if len(subset) > emb.Rows() {
		return fmt.Errorf("size %d > n %d: %w", len(subset), emb.Rows(), ErrSubsetTooLarge)
	}

	seen := make(map[int]bool, len(subset))
	for _, i := range subset {
		if i < 0 || i >= emb.Rows() {
			return fmt.Errorf("i=%d n=%d: %w", i, emb.Rows(), ErrIndexOutOfRange)
		}
		if seen[i] {
			return fmt.Errorf("i=%d: %w", i, ErrDuplicateIndex)
		}
		seen[i] = true
	}

	return nil
}

// randomSubset draws size distinct indices from [0, n) uniformly.
func randomSubset(rng *rand.Rand, n, size int) []int {
	return rng.Perm(n)[:size]
}

func meanPairwiseCosine(emb *spectral.Embedding, subset []int) (float64, error) {
	sum, pairs := 0.0, 0
	for a := 0; a < len(subset); a++ {
		for b := a + 1; b < len(subset); b++ {
			c, err := emb.Cosine(subset[a], subset[b])
			if err != nil {
				return 0, err
			}
			sum += c
			pairs++
		}
	}

	return sum / float64(pairs), nil
}

func meanCentroidDist(emb *spectral.Embedding, subset []int) (float64, error) {
	centroid, err := emb.Centroid(subset)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, i := range subset {
		d, err := emb.DistTo(i, centroid)
		if err != nil {
			return 0, err
		}
		sum += d
	}

	return sum / float64(len(subset)), nil
}
