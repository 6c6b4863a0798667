package cooccur

import (
	"fmt"
	"sort"

	"github.com/epilectrik/voynich-sub006/corpus"
	"github.com/epilectrik/voynich-sub006/dense"
)

// trigram is the ordered key (prev, cur, next) of one three-symbol window.
type trigram struct {
	prev, cur, next int
}

// ConditionalTensor holds within-context trigram counts, from which the
// conditional transition probabilities P(next | cur, prev) and their
// frequency-weighted marginalization are derived on demand.
//
// The tensor is stored sparsely: observed trigram windows are a tiny
// fraction of n³ for real corpora. All derivations iterate keys in sorted
// order so floating-point accumulation is bit-reproducible.
type ConditionalTensor struct {
	n      int
	counts map[trigram]float64
}

// NewConditionalTensor counts all within-context trigram windows over a
// vocabulary of size n.
//
// Errors:
//   - ErrNoContexts, ErrBadVocabularySize, ErrIndexOutOfVocabulary.
//
// Complexity:
//   - Time O(Σ|c|), Space O(#distinct trigrams).
func NewConditionalTensor(contexts []corpus.Context, n int) (*ConditionalTensor, error) {
	if len(contexts) == 0 {
		return nil, ErrNoContexts
	}
	if n <= 0 {
		return nil, ErrBadVocabularySize
	}

	counts := make(map[trigram]float64)
	for ci, ctx := range contexts {
		for p := 0; p+2 < len(ctx.Symbols); p++ {
			k, i, j := ctx.Symbols[p], ctx.Symbols[p+1], ctx.Symbols[p+2]
			if k < 0 || k >= n || i < 0 || i >= n || j < 0 || j >= n {
				return nil, fmt.Errorf("NewConditionalTensor: context %d (%q): %w", ci, ctx.Key, ErrIndexOutOfVocabulary)
			}
			counts[trigram{k, i, j}]++
		}
	}

	return &ConditionalTensor{n: n, counts: counts}, nil
}

// Size returns the vocabulary size the tensor was counted over.
func (t *ConditionalTensor) Size() int { return t.n }

// Windows returns the total number of trigram windows counted.
func (t *ConditionalTensor) Windows() int {
	total := 0.0
	for _, c := range t.counts {
		total += c
	}

	return int(total)
}

// Prob returns the conditional transition probability
// P(next=j | cur=i, prev=k), or 0 when the (k,i) condition was never
// observed.
func (t *ConditionalTensor) Prob(k, i, j int) float64 {
	cond := 0.0
	for key, c := range t.counts {
		if key.prev == k && key.cur == i {
			cond += c
		}
	}
	if cond == 0 {
		return 0
	}

	return t.counts[trigram{k, i, j}] / cond
}

// sortedKeys returns the trigram keys in fixed (prev, cur, next) order so
// every accumulation below is deterministic.
func (t *ConditionalTensor) sortedKeys() []trigram {
	keys := make([]trigram, 0, len(t.counts))
	for key := range t.counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].prev != keys[b].prev {
			return keys[a].prev < keys[b].prev
		}
		if keys[a].cur != keys[b].cur {
			return keys[a].cur < keys[b].cur
		}
		return keys[a].next < keys[b].next
	})

	return keys
}

// Marginalize collapses the conditioning dimension: each conditional slice
// P(·|·, prev=k) is weighted by the observed frequency of its conditioning
// symbol among the windows sharing the same current symbol,
//
//	M[i,j] = Σ_k  w(k|i) · P(j | i, k),   w(k|i) = #(k,i,*) / #(*,i,*).
//
// By construction this must reproduce TransitionMatrix() within
// floating-point tolerance; the pair acts as a round-trip check on the
// counting code.
//
// Complexity:
//   - Time O(T log T + n²) for T observed trigrams, Space O(n²).
func (t *ConditionalTensor) Marginalize() (*dense.Dense, error) {
	m, err := dense.New(t.n, t.n)
	if err != nil {
		return nil, fmt.Errorf("Marginalize: %w", err)
	}
	data := m.Data()

	keys := t.sortedKeys()

	// condTotal[(k,i)] = #(k,i,*); curTotal[i] = #(*,i,*).
	condTotal := make(map[[2]int]float64, len(keys))
	curTotal := make([]float64, t.n)
	for _, key := range keys {
		c := t.counts[key]
		condTotal[[2]int{key.prev, key.cur}] += c
		curTotal[key.cur] += c
	}

	for _, key := range keys {
		cond := condTotal[[2]int{key.prev, key.cur}]
		if cond == 0 || curTotal[key.cur] == 0 {
			continue
		}
		weight := cond / curTotal[key.cur]
		prob := t.counts[key] / cond
		data[key.cur*t.n+key.next] += weight * prob
	}

	return m, nil
}

// TransitionMatrix returns the unconditional transition matrix restricted
// to trigram-supported positions: M[i,j] = #(*,i,j) / #(*,i,*). This is
// the reference the marginalization round-trip is compared against.
//
// Complexity:
//   - Time O(T log T + n²), Space O(n²).
func (t *ConditionalTensor) TransitionMatrix() (*dense.Dense, error) {
	m, err := dense.New(t.n, t.n)
	if err != nil {
		return nil, fmt.Errorf("TransitionMatrix: %w", err)
	}
	data := m.Data()

	keys := t.sortedKeys()
	curTotal := make([]float64, t.n)
	for _, key := range keys {
		curTotal[key.cur] += t.counts[key]
	}
	for _, key := range keys {
		if curTotal[key.cur] == 0 {
			continue
		}
		data[key.cur*t.n+key.next] += t.counts[key] / curTotal[key.cur]
	}

	return m, nil
}
