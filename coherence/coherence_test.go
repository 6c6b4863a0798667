package coherence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilectrik/voynich-sub006/coherence"
	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/sigtest"
	"github.com/epilectrik/voynich-sub006/spectral"
)

// contrastEmbedding embeds a 20-symbol two-block affinity matrix into
// its contrastive direction: block 0 symbols and block 1 symbols land on
// opposite sides of the origin.
func contrastEmbedding(t *testing.T) *spectral.Embedding {
	t.Helper()
	const n, half = 20, 10
	m, err := dense.New(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, m.Set(i, i, 1))
		for j := i + 1; j < n; j++ {
			// Weak cross-block coupling keeps the spectrum non-degenerate,
			// so the contrastive direction is well defined.
			v := 0.5
			if (i < half) == (j < half) {
				v = 4
			}
			require.NoError(t, m.Set(i, j, v))
			require.NoError(t, m.Set(j, i, v))
		}
	}

	emb, err := spectral.Embed(m, 1, spectral.Options{
		Normalization: spectral.SymmetricDegree,
		SkipLeading:   1,
	})
	require.NoError(t, err)
	return emb
}

func TestAnalyze_BlockSubsetIsCoherent(t *testing.T) {
	emb := contrastEmbedding(t)
	cfg := coherence.Config{Trials: 300, Workers: 4, Seed: 21}

	res, err := coherence.Analyze(context.Background(), emb, []int{0, 1, 2, 3, 4, 5}, cfg)
	require.NoError(t, err)

	assert.Equal(t, 6, res.SubsetSize)
	assert.Greater(t, res.Cosine.ZScore, coherence.SuggestedZThreshold)
	assert.Less(t, res.Cosine.PValue, 0.05)
	assert.Equal(t, 300, res.Cosine.NTrials)

	assert.Less(t, res.CentroidDist.ZScore, 0.0)
	assert.Less(t, res.CentroidDist.PValue, 0.05)
}

func TestAnalyze_MixedSubsetIsNot(t *testing.T) {
	emb := contrastEmbedding(t)
	cfg := coherence.Config{Trials: 300, Workers: 4, Seed: 22}

	// Three symbols from each block: as incoherent as subsets get here.
	res, err := coherence.Analyze(context.Background(), emb, []int{0, 1, 2, 10, 11, 12}, cfg)
	require.NoError(t, err)

	assert.Less(t, res.Cosine.ZScore, coherence.SuggestedZThreshold)
	assert.Greater(t, res.Cosine.PValue, 0.05)
}

func TestAnalyze_DeterministicAcrossWorkers(t *testing.T) {
	emb := contrastEmbedding(t)
	subset := []int{0, 1, 2, 3}

	a, err := coherence.Analyze(context.Background(), emb, subset,
		coherence.Config{Trials: 60, Workers: 1, Seed: 9})
	require.NoError(t, err)
	b, err := coherence.Analyze(context.Background(), emb, subset,
		coherence.Config{Trials: 60, Workers: 8, Seed: 9})
	require.NoError(t, err)

	assert.Equal(t, a.Cosine, b.Cosine)
	assert.Equal(t, a.CentroidDist, b.CentroidDist)
}

func TestAnalyze_SubsetValidation(t *testing.T) {
	emb := contrastEmbedding(t)
	ctx := context.Background()
	cfg := coherence.Config{Trials: 40, Seed: 1}

	_, err := coherence.Analyze(ctx, emb, []int{3}, cfg)
	assert.ErrorIs(t, err, coherence.ErrInsufficientData)

	_, err = coherence.Analyze(ctx, emb, []int{0, 20}, cfg)
	assert.ErrorIs(t, err, coherence.ErrIndexOutOfRange)

	_, err = coherence.Analyze(ctx, emb, []int{0, 1, 0}, cfg)
	assert.ErrorIs(t, err, coherence.ErrDuplicateIndex)

	wide := make([]int, 21)
	for i := range wide {
		wide[i] = i
	}
	_, err = coherence.Analyze(ctx, emb, wide, cfg)
	assert.ErrorIs(t, err, coherence.ErrSubsetTooLarge)
}

func TestAnalyze_SmallNullPolicy(t *testing.T) {
	emb := contrastEmbedding(t)
	subset := []int{0, 1, 2}

	_, err := coherence.Analyze(context.Background(), emb, subset,
		coherence.Config{Trials: 10, Seed: 4})
	assert.ErrorIs(t, err, sigtest.ErrInsufficientSamples)

	res, err := coherence.Analyze(context.Background(), emb, subset,
		coherence.Config{Trials: 10, Seed: 4, AllowSmallNull: true})
	require.NoError(t, err)
	assert.True(t, res.Cosine.Flagged(sigtest.FlagSmallSample))
	assert.True(t, res.CentroidDist.Flagged(sigtest.FlagSmallSample))
}
