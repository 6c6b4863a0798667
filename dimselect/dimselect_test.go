package dimselect_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/dimselect"
	"github.com/epilectrik/voynich-sub006/sigtest"
	"github.com/epilectrik/voynich-sub006/spectral"
)

// twoBlockMatrix builds a 12-symbol co-occurrence matrix with two tight
// 6-symbol blocks and no cross-block edges.
func twoBlockMatrix(t *testing.T) *dense.Dense {
	t.Helper()
	m, err := dense.New(12, 12)
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		require.NoError(t, m.Set(i, i, 1))
		for j := i + 1; j < 12; j++ {
			if (i < 6) == (j < 6) {
				require.NoError(t, m.Set(i, j, 3))
				require.NoError(t, m.Set(j, i, 3))
			}
		}
	}
	return m
}

// randomMatrix builds a structure-free symmetric 0/1 matrix: each
// off-diagonal pair is present independently with probability one half.
func randomMatrix(t *testing.T, n int, seed int64) *dense.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := dense.New(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, m.Set(i, i, 1))
		for j := i + 1; j < n; j++ {
			if rng.Intn(2) == 1 {
				require.NoError(t, m.Set(i, j, 1))
				require.NoError(t, m.Set(j, i, 1))
			}
		}
	}
	return m
}

func TestSelect_BlockStructureScoresHigh(t *testing.T) {
	m := twoBlockMatrix(t)

	res, err := dimselect.Select(context.Background(), m, []int{2, 4},
		dimselect.Config{Folds: 4, SampleSize: 10, Seed: 17})
	require.NoError(t, err)
	require.Len(t, res.ByK, 2)

	k2 := res.ByK[0]
	assert.Equal(t, 2, k2.K)
	assert.Greater(t, k2.MeanAUC, 0.75,
		"held-out within-block links should outrank cross-block non-links")
	assert.Empty(t, k2.Flags)
	assert.Len(t, k2.AUCs, 4)
	assert.Contains(t, []int{2, 4}, res.BestK)
}

func TestSelect_StructureFreeMatrixNearChance(t *testing.T) {
	m := randomMatrix(t, 16, 99)

	res, err := dimselect.Select(context.Background(), m, []int{3},
		dimselect.Config{Folds: 4, SampleSize: 20, Seed: 5})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.ByK[0].MeanAUC, 0.2,
		"no structure means no link-prediction skill")
}

func TestSelect_TiesPreferSmallerK(t *testing.T) {
	// A rank-2 block matrix gives identical (often perfect) AUC for every
	// K that captures both blocks; the tie must resolve to the smaller K.
	m := twoBlockMatrix(t)

	res, err := dimselect.Select(context.Background(), m, []int{4, 2},
		dimselect.Config{Folds: 3, SampleSize: 8, Seed: 3})
	require.NoError(t, err)

	if res.ByK[0].MeanAUC == res.ByK[1].MeanAUC {
		assert.Equal(t, 2, res.BestK)
	}
}

func TestSelect_SmallPoolsShrinkAndFlag(t *testing.T) {
	// 4 symbols, 2 positive pairs, 4 negative pairs; SampleSize 50 must
	// shrink to 2 per class and flag every candidate.
	m, err := dense.New(4, 4)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Set(i, i, 1))
	}
	for _, p := range [][2]int{{0, 1}, {2, 3}} {
		require.NoError(t, m.Set(p[0], p[1], 2))
		require.NoError(t, m.Set(p[1], p[0], 2))
	}

	res, err := dimselect.Select(context.Background(), m, []int{2},
		dimselect.Config{Folds: 2, Seed: 1})
	require.NoError(t, err)

	require.Len(t, res.ByK, 1)
	assert.Contains(t, res.ByK[0].Flags, sigtest.FlagSmallSample)
}

func TestSelect_DeterministicAcrossWorkers(t *testing.T) {
	m := twoBlockMatrix(t)
	cfg := dimselect.Config{Folds: 4, SampleSize: 10, Seed: 42}

	cfg.Workers = 1
	serial, err := dimselect.Select(context.Background(), m, []int{2, 3}, cfg)
	require.NoError(t, err)

	cfg.Workers = 8
	parallel, err := dimselect.Select(context.Background(), m, []int{2, 3}, cfg)
	require.NoError(t, err)

	require.Equal(t, serial.BestK, parallel.BestK)
	for d := range serial.ByK {
		assert.Equal(t, serial.ByK[d].AUCs, parallel.ByK[d].AUCs)
	}
}

func TestSelect_Validation(t *testing.T) {
	m := twoBlockMatrix(t)
	ctx := context.Background()

	_, err := dimselect.Select(ctx, m, nil, dimselect.Config{Seed: 1})
	assert.ErrorIs(t, err, dimselect.ErrNoCandidates)

	_, err = dimselect.Select(ctx, m, []int{0}, dimselect.Config{Seed: 1})
	assert.ErrorIs(t, err, dimselect.ErrBadCandidate)

	_, err = dimselect.Select(ctx, m, []int{2}, dimselect.Config{Folds: -1, Seed: 1})
	assert.ErrorIs(t, err, dimselect.ErrBadFoldCount)

	// Candidate beyond available components surfaces the embedding error.
	_, err = dimselect.Select(ctx, m, []int{13}, dimselect.Config{Folds: 2, SampleSize: 5, Seed: 1})
	assert.ErrorIs(t, err, spectral.ErrInsufficientData)

	// Complete graph: no negative pairs to score against.
	full, err := dense.New(3, 3)
	require.NoError(t, err)
	require.NoError(t, full.Apply(func(i, j int, _ float64) float64 {
		if i == j {
			return 1
		}
		return 2
	}))
	_, err = dimselect.Select(ctx, full, []int{2}, dimselect.Config{Seed: 1})
	assert.ErrorIs(t, err, dimselect.ErrInsufficientData)

	_, err = dimselect.Select(ctx, nil, []int{2}, dimselect.Config{Seed: 1})
	assert.ErrorIs(t, err, dense.ErrNilMatrix)
}

func TestSelect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := dimselect.Select(ctx, twoBlockMatrix(t), []int{2},
		dimselect.Config{Folds: 3, SampleSize: 5, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelect_AUCAlwaysInUnitInterval(t *testing.T) {
	res, err := dimselect.Select(context.Background(), randomMatrix(t, 10, 7), []int{2, 3},
		dimselect.Config{Folds: 3, SampleSize: 8, Seed: 2})
	require.NoError(t, err)

	for _, kr := range res.ByK {
		for _, a := range kr.AUCs {
			assert.False(t, math.IsNaN(a))
			assert.GreaterOrEqual(t, a, 0.0)
			assert.LessOrEqual(t, a, 1.0)
		}
	}
}
