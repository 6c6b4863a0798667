package dimselect

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/sigtest"
	"github.com/epilectrik/voynich-sub006/spectral"
)

var (
	// ErrNoCandidates indicates an empty candidate dimensionality grid.
	ErrNoCandidates = errors.New("dimselect: no candidate dimensionalities")

	// ErrBadCandidate indicates a non-positive candidate dimensionality.
	ErrBadCandidate = errors.New("dimselect: candidate dimensionality must be > 0")

	// ErrBadFoldCount indicates a non-positive fold count.
	ErrBadFoldCount = errors.New("dimselect: fold count must be > 0")

	// ErrInsufficientData indicates that the matrix has no positive or no
	// negative off-diagonal pairs, so link prediction cannot be scored.
	ErrInsufficientData = errors.New("dimselect: no scorable pairs")
)

// Defaults for Config. More folds tighten the AUC estimate; larger
// samples tighten each fold at the cost of masking more structure.
const (
	DefaultFolds      = 5
	DefaultSampleSize = 50
)

// Config parameterizes Select.
//
// Fields:
//   - Folds      — cross-validation folds (> 0; default DefaultFolds).
//   - SampleSize — held-out pairs per class per fold; shrinks to the
//     smaller pool when pairs are scarce (default DefaultSampleSize).
//   - Workers    — concurrent fold workers; <= 0 means one per fold.
//   - Seed       — base seed; fold f samples with Seed+f, so runs are
//     reproducible and worker count never affects output.
//   - Embed      — embedding options shared by every candidate.
type Config struct {
	Folds      int
	SampleSize int
	Workers    int
	Seed       int64
	Embed      spectral.Options
}

// DefaultConfig returns the documented defaults with the given seed.
func DefaultConfig(seed int64) Config {
	return Config{Folds: DefaultFolds, SampleSize: DefaultSampleSize, Seed: seed}
}

// KResult aggregates link-prediction quality for one candidate
// dimensionality.
type KResult struct {
	K       int       `json:"k"`
	MeanAUC float64   `json:"mean_auc"`
	StdAUC  float64   `json:"std_auc"`
	AUCs    []float64 `json:"aucs"`
	Flags   []string  `json:"flags,omitempty"`
}

// Result is the outcome of one dimensionality sweep.
type Result struct {
	// BestK is the candidate with the highest mean AUC; exact ties go to
	// the smaller candidate.
	BestK int `json:"best_k"`

	// ByK holds one entry per candidate, in the caller's grid order.
	ByK []KResult `json:"auc_by_k"`
}

// Select sweeps the candidate dimensionalities and picks the one whose
// embedding best predicts held-out co-occurrence links.
//
// Implementation:
//   - Stage 1: validate; enumerate positive (count > 0) and negative
//     (count == 0) off-diagonal pairs once.
//   - Stage 2: per fold (errgroup, bounded): sample balanced pair sets
//     with rand seeded Seed+fold, zero the sampled positives in a clone,
//     embed the clone at every candidate K, score pairs by dot product,
//     compute the rank AUC per K.
//   - Stage 3: aggregate mean/std per K; pick BestK.
//
// Behavior highlights:
//   - A pool smaller than SampleSize shrinks the per-fold sample and
//     flags the candidate results with sigtest.FlagSmallSample.
//   - Cancellation aborts the sweep with the context error; fold results
//     are not meaningful in partial form.
//
// Errors:
//   - ErrNoCandidates, ErrBadCandidate, ErrBadFoldCount.
//   - ErrInsufficientData when either pair pool is empty.
//   - spectral and dense sentinels (wrapped) from embedding.
//
// Complexity:
//   - Time O(Folds × |ks| × N³), Space O(N²) per concurrent fold.
func Select(ctx context.Context, m *dense.Dense, ks []int, cfg Config) (*Result, error) {
	if err := dense.ValidateSymmetric(m, dense.DefaultEpsilon); err != nil {
		return nil, fmt.Errorf("Select: %w", err)
	}
	if len(ks) == 0 {
		return nil, fmt.Errorf("Select: %w", ErrNoCandidates)
	}
	for _, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("Select: k=%d: %w", k, ErrBadCandidate)
		}
	}
	folds := cfg.Folds
	if folds <= 0 {
		if cfg.Folds < 0 {
			return nil, fmt.Errorf("Select: folds=%d: %w", cfg.Folds, ErrBadFoldCount)
		}
		folds = DefaultFolds
	}
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	pos, neg := pairPools(m)
	if len(pos) == 0 || len(neg) == 0 {
		return nil, fmt.Errorf("Select: %d positive / %d negative pairs: %w",
			len(pos), len(neg), ErrInsufficientData)
	}

	perClass := sampleSize
	small := false
	if len(pos) < perClass {
		perClass = len(pos)
		small = true
	}
	if len(neg) < perClass {
		perClass = len(neg)
		small = true
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = folds
	}

	// aucs[f][d] is fold f's AUC for candidate ks[d].
	aucs := make([][]float64, folds)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for f := 0; f < folds; f++ {
		f := f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := runFold(m, ks, pos, neg, perClass, cfg, f)
			if err != nil {
				return fmt.Errorf("dimselect: fold %d: %w", f, err)
			}
			aucs[f] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{ByK: make([]KResult, len(ks))}
	bestMean := math.Inf(-1)
	for d, k := range ks {
		perFold := make([]float64, folds)
		for f := 0; f < folds; f++ {
			perFold[f] = aucs[f][d]
		}
		meanAUC, stdAUC := stat.PopMeanStdDev(perFold, nil)

		kr := KResult{K: k, MeanAUC: meanAUC, StdAUC: stdAUC, AUCs: perFold}
		if small {
			kr.Flags = append(kr.Flags, sigtest.FlagSmallSample)
		}
		res.ByK[d] = kr

		if meanAUC > bestMean || (meanAUC == bestMean && k < res.BestK) {
			bestMean = meanAUC
			res.BestK = k
		}
	}

	return res, nil
}

// pair is an unordered off-diagonal symbol pair, stored with i < j.
type pair struct{ i, j int }

func pairPools(m *dense.Dense) (pos, neg []pair) {
	n := m.Rows()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.MustAt(i, j) > 0 {
				pos = append(pos, pair{i, j})
			} else {
				neg = append(neg, pair{i, j})
			}
		}
	}

	return pos, neg
}

// runFold masks one balanced sample of positives and scores every
// candidate dimensionality on the same masked matrix.
func runFold(m *dense.Dense, ks []int, pos, neg []pair, perClass int, cfg Config, fold int) ([]float64, error) {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(fold)))
	heldPos := samplePairs(pos, perClass, rng)
	heldNeg := samplePairs(neg, perClass, rng)

	masked := m.Clone()
	for _, p := range heldPos {
		if err := masked.Set(p.i, p.j, 0); err != nil {
			return nil, err
		}
		if err := masked.Set(p.j, p.i, 0); err != nil {
			return nil, err
		}
	}

	out := make([]float64, len(ks))
	for d, k := range ks {
		emb, err := spectral.Embed(masked, k, cfg.Embed)
		if err != nil {
			return nil, fmt.Errorf("k=%d: %w", k, err)
		}

		posScores, err := scorePairs(emb, heldPos)
		if err != nil {
			return nil, err
		}
		negScores, err := scorePairs(emb, heldNeg)
		if err != nil {
			return nil, err
		}
		out[d] = rankAUC(posScores, negScores)
	}

	return out, nil
}

func samplePairs(pool []pair, count int, rng *rand.Rand) []pair {
	idx := rng.Perm(len(pool))[:count]
	out := make([]pair, count)
	for i, p := range idx {
		out[i] = pool[p]
	}

	return out
}

func scorePairs(emb *spectral.Embedding, pairs []pair) ([]float64, error) {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		score, err := emb.Dot(p.i, p.j)
		if err != nil {
			return nil, err
		}
		out[i] = score
	}

	return out, nil
}
