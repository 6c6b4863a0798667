package mantel

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/nullmodel"
	"github.com/epilectrik/voynich-sub006/sigtest"
)

var (
	// ErrInsufficientData indicates fewer than three symbols; the strict
	// upper triangle then has fewer than three pairs, too few to rank.
	ErrInsufficientData = errors.New("mantel: need at least three symbols")

	// ErrConstantStructure indicates a structure whose upper triangle has
	// zero variance; correlation against it is undefined.
	ErrConstantStructure = errors.New("mantel: structure has constant pairwise values")
)

// Config parameterizes Test and PartialTest.
//
// Fields:
//   - Trials         — symbol-order permutations for the null (> 0;
//     default nullmodel.DefaultTrials).
//   - Workers        — concurrent trial workers; <= 0 means GOMAXPROCS.
//   - Seed           — base seed; trial t permutes with Seed+t.
//   - Tail           — alternative hypothesis (default sigtest.TwoSided;
//     use sigtest.Greater when only positive alignment is of interest).
//   - AllowSmallNull — forwarded to the significance evaluation.
type Config struct {
	Trials         int
	Workers        int
	Seed           int64
	Tail           sigtest.Tail
	AllowSmallNull bool
}

// Test computes the Mantel alignment of structures a and b.
//
// Implementation:
//   - Stage 1: validate (symmetric, same shape, n ≥ 3); extract and rank
//     both strict upper triangles; reject zero-variance triangles.
//   - Stage 2: observed Spearman = Pearson of the tie-averaged ranks.
//   - Stage 3: null via nullmodel.RunTrials — each trial draws a uniform
//     symbol permutation, applies dense.PermuteSymmetric to b,
//     re-extracts and re-ranks the triangle, recorrelates against a.
//   - Stage 4: z and permutation p via sigtest.
//
// Errors:
//   - ErrInsufficientData, ErrConstantStructure.
//   - dense validation sentinels (wrapped) on bad matrices.
//   - sigtest.ErrInsufficientSamples per the small-null policy.
//
// Determinism:
//   - Pure function of (a, b, cfg); worker count never affects output.
//
// Complexity:
//   - Time O(Trials × n² log n / Workers), Space O(n²).
func Test(ctx context.Context, a, b *dense.Dense, cfg Config) (sigtest.TestResult, error) {
	rankA, _, err := validatedRanks(a, b)
	if err != nil {
		return sigtest.TestResult{}, fmt.Errorf("Test: %w", err)
	}

	return permutationTest(ctx, rankA, b, cfg, func(tri []float64) []float64 {
		return ranks(tri)
	})
}

// PartialTest computes the Mantel alignment of a and b after removing
// the shared confound z from both.
//
// Both triangles and the confound triangle are rank-transformed; a and b
// ranks are then residualized on the confound ranks by least squares,
// and the residuals are correlated. The null permutes b's symbol order
// exactly as in Test; the permuted triangle is re-ranked and
// re-residualized on the fixed confound before recorrelating.
//
// Errors: as Test, plus ErrConstantStructure when the confound triangle
// has zero variance.
func PartialTest(ctx context.Context, a, b, z *dense.Dense, cfg Config) (sigtest.TestResult, error) {
	rankA, _, err := validatedRanks(a, b)
	if err != nil {
		return sigtest.TestResult{}, fmt.Errorf("PartialTest: %w", err)
	}
	if err := dense.ValidateSymmetric(z, dense.DefaultEpsilon); err != nil {
		return sigtest.TestResult{}, fmt.Errorf("PartialTest: confound: %w", err)
	}
	if err := dense.ValidateSameShape(a, z); err != nil {
		return sigtest.TestResult{}, fmt.Errorf("PartialTest: confound: %w", err)
	}

	triZ, err := dense.UpperTriangle(z)
	if err != nil {
		return sigtest.TestResult{}, fmt.Errorf("PartialTest: confound: %w", err)
	}
	rankZ := ranks(triZ)
	if constant(rankZ) {
		return sigtest.TestResult{}, fmt.Errorf("PartialTest: confound: %w", ErrConstantStructure)
	}

	residA := residualize(rankA, rankZ)

	return permutationTest(ctx, residA, b, cfg, func(tri []float64) []float64 {
		return residualize(ranks(tri), rankZ)
	})
}

// validatedRanks checks the matrix pair and returns a's triangle ranks.
func validatedRanks(a, b *dense.Dense) ([]float64, []float64, error) {
	if err := dense.ValidateSymmetric(a, dense.DefaultEpsilon); err != nil {
		return nil, nil, err
	}
	if err := dense.ValidateSymmetric(b, dense.DefaultEpsilon); err != nil {
		return nil, nil, err
	}
	if err := dense.ValidateSameShape(a, b); err != nil {
		return nil, nil, err
	}
	if a.Rows() < 3 {
		return nil, nil, fmt.Errorf("n=%d: %w", a.Rows(), ErrInsufficientData)
	}

	triA, err := dense.UpperTriangle(a)
	if err != nil {
		return nil, nil, err
	}
	triB, err := dense.UpperTriangle(b)
	if err != nil {
		return nil, nil, err
	}

	rankA, rankB := ranks(triA), ranks(triB)
	if constant(rankA) || constant(rankB) {
		return nil, nil, ErrConstantStructure
	}

	return rankA, rankB, nil
}

// permutationTest correlates refA against transform(b's triangle), then
// builds the null by permuting b's symbol order.
func permutationTest(ctx context.Context, refA []float64, b *dense.Dense, cfg Config,
	transform func(tri []float64) []float64) (sigtest.TestResult, error) {
	trials := cfg.Trials
	if trials <= 0 {
		trials = nullmodel.DefaultTrials
	}

	triB, err := dense.UpperTriangle(b)
	if err != nil {
		return sigtest.TestResult{}, err
	}
	observed := stat.Correlation(refA, transform(triB), nil)

	n := b.Rows()
	null, err := nullmodel.RunTrials(ctx,
		nullmodel.TrialConfig{Trials: trials, Workers: cfg.Workers, Seed: cfg.Seed},
		func(_ int, rng *rand.Rand) (float64, error) {
			permuted, err := dense.PermuteSymmetric(b, rng.Perm(n))
			if err != nil {
				return 0, err
			}
			tri, err := dense.UpperTriangle(permuted)
			if err != nil {
				return 0, err
			}
			return stat.Correlation(refA, transform(tri), nil), nil
		})
	if err != nil {
		return sigtest.TestResult{}, fmt.Errorf("mantel: null: %w", err)
	}

	return sigtest.Evaluate(observed, null,
		sigtest.Config{Tail: cfg.Tail, AllowSmallNull: cfg.AllowSmallNull})
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}

	return true
}

// residualize returns y minus its least-squares fit on x.
func residualize(y, x []float64) []float64 {
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] - (alpha + beta*x[i])
	}

	return out
}
