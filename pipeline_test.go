package voynich_test

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilectrik/voynich-sub006/coherence"
	"github.com/epilectrik/voynich-sub006/cooccur"
	"github.com/epilectrik/voynich-sub006/corpus"
	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/dimselect"
	"github.com/epilectrik/voynich-sub006/mantel"
	"github.com/epilectrik/voynich-sub006/nullmodel"
	"github.com/epilectrik/voynich-sub006/report"
	"github.com/epilectrik/voynich-sub006/sigtest"
	"github.com/epilectrik/voynich-sub006/spectral"
)

// syntheticCorpus builds 42 lines over ten symbols in two latent classes
// (a1..a5, b1..b5): twenty pure a-lines, twenty pure b-lines, and two
// mixed lines that keep the co-occurrence graph connected.
func syntheticCorpus(t *testing.T) []corpus.TokenRecord {
	t.Helper()
	rng := rand.New(rand.NewSource(1))

	group := func(prefix string) []string {
		out := make([]string, 5)
		for i := range out {
			out[i] = fmt.Sprintf("%s%d", prefix, i+1)
		}
		return out
	}
	as, bs := group("a"), group("b")

	var records []corpus.TokenRecord
	line := 0
	addLine := func(symbols []string) {
		line++
		key := fmt.Sprintf("l%02d", line)
		for _, s := range symbols {
			records = append(records, corpus.TokenRecord{ContextKey: key, Symbol: s})
		}
	}
	pick := func(pool []string) []string {
		idx := rng.Perm(len(pool))[:3]
		out := make([]string, 3)
		for i, p := range idx {
			out[i] = pool[p]
		}
		return out
	}

	for i := 0; i < 20; i++ {
		addLine(pick(as))
	}
	for i := 0; i < 20; i++ {
		addLine(pick(bs))
	}
	addLine([]string{"a1", "b1", "a2"})
	addLine([]string{"b2", "a3", "b3"})

	return records
}

// sameGroupFraction is the fraction of contexts whose symbols all fall
// in one latent class (indices 0..4 vs 5..9 in sorted vocabulary order).
func sameGroupFraction(contexts []corpus.Context) (float64, error) {
	pure := 0
	for _, c := range contexts {
		allA, allB := true, true
		for _, s := range c.Symbols {
			if s < 5 {
				allB = false
			} else {
				allA = false
			}
		}
		if allA || allB {
			pure++
		}
	}
	return float64(pure) / float64(len(contexts)), nil
}

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	records := syntheticCorpus(t)

	// Vocabulary and contexts.
	vocab, err := corpus.NewVocabulary(records, 1)
	require.NoError(t, err)
	require.Equal(t, 10, vocab.Size())
	assert.Equal(t, "a1", vocab.Symbols()[0], "vocabulary is sorted")

	contexts, err := corpus.Contexts(records, vocab)
	require.NoError(t, err)
	require.Len(t, contexts, 42)

	// Co-occurrence structure.
	cooc, err := cooccur.Build(contexts, vocab.Size())
	require.NoError(t, err)
	require.NoError(t, dense.ValidateSymmetric(cooc, dense.DefaultEpsilon))

	// The class structure is significant against frequency- and
	// length-preserving nulls.
	gen, err := nullmodel.NewGenerator(contexts)
	require.NoError(t, err)
	observed, err := sameGroupFraction(contexts)
	require.NoError(t, err)
	assert.Greater(t, observed, 0.9)

	null, err := gen.Distribution(ctx, nullmodel.TrialConfig{Trials: 99, Workers: 4, Seed: 7},
		sameGroupFraction)
	require.NoError(t, err)
	sig, err := sigtest.Evaluate(observed, null, sigtest.Config{Tail: sigtest.Greater})
	require.NoError(t, err)
	assert.InDelta(t, 1.0/100.0, sig.PValue, 1e-12,
		"no random reassignment reproduces near-perfect class purity")
	assert.Greater(t, sig.ZScore, 2.0)

	// Embedding separates the classes.
	emb, err := spectral.Embed(cooc, 2, spectral.Options{})
	require.NoError(t, err)

	// Dimensionality selection runs over a small grid.
	sel, err := dimselect.Select(ctx, cooc, []int{2, 3},
		dimselect.Config{Folds: 3, SampleSize: 8, Seed: 11})
	require.NoError(t, err)
	assert.Contains(t, []int{2, 3}, sel.BestK)
	assert.Greater(t, sel.ByK[0].MeanAUC, 0.6,
		"held-out within-class links should be recoverable")

	// The a-class is a coherent subset.
	coh, err := coherence.Analyze(ctx, emb, []int{0, 1, 2, 3, 4},
		coherence.Config{Trials: 300, Workers: 4, Seed: 13})
	require.NoError(t, err)
	assert.Greater(t, coh.Cosine.ZScore, coherence.SuggestedZThreshold)
	assert.Less(t, coh.Cosine.PValue, 0.05)

	// Two disjoint halves of the corpus agree on the pairwise structure.
	evens := make([]corpus.Context, 0, 21)
	odds := make([]corpus.Context, 0, 21)
	for i, c := range contexts {
		if i%2 == 0 {
			evens = append(evens, c)
		} else {
			odds = append(odds, c)
		}
	}
	coocEven, err := cooccur.Build(evens, vocab.Size())
	require.NoError(t, err)
	coocOdd, err := cooccur.Build(odds, vocab.Size())
	require.NoError(t, err)

	align, err := mantel.Test(ctx, coocEven, coocOdd,
		mantel.Config{Trials: 99, Workers: 4, Seed: 17, Tail: sigtest.Greater})
	require.NoError(t, err)
	assert.Greater(t, align.Statistic, 0.5)
	assert.Less(t, align.PValue, 0.05)

	// Artifacts round-trip.
	var buf bytes.Buffer
	require.NoError(t, report.WriteMatrix(&buf, cooc))
	restored, err := report.ReadMatrix(&buf)
	require.NoError(t, err)
	diff, err := dense.MaxAbsDiff(cooc, restored)
	require.NoError(t, err)
	assert.Zero(t, diff)

	var jsonBuf bytes.Buffer
	require.NoError(t, report.WriteJSON(&jsonBuf, &report.Summary{
		Vocabulary:     vocab.Symbols(),
		Spectral:       &report.SpectralSummary{K: 2, Eigenvalues: emb.Eigenvalues()},
		Dimensionality: sel,
		Coherence:      map[string]*coherence.Result{"class-a": coh},
		Alignment:      &report.AlignmentSummary{Test: align},
	}))
	assert.Contains(t, jsonBuf.String(), `"best_k"`)
	assert.Contains(t, jsonBuf.String(), `"z_score"`)
}
