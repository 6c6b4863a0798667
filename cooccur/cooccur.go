package cooccur

import (
	"errors"
	"fmt"
	"sort"

	"github.com/epilectrik/voynich-sub006/corpus"
	"github.com/epilectrik/voynich-sub006/dense"
)

var (
	// ErrNoContexts indicates an empty context slice.
	ErrNoContexts = errors.New("cooccur: no contexts")

	// ErrBadVocabularySize indicates a non-positive vocabulary size.
	ErrBadVocabularySize = errors.New("cooccur: vocabulary size must be > 0")

	// ErrIndexOutOfVocabulary indicates a context referencing a symbol
	// index outside [0, n).
	ErrIndexOutOfVocabulary = errors.New("cooccur: symbol index out of vocabulary range")
)

// Build constructs the n×n co-occurrence matrix over a vocabulary of size
// n from context-grouped symbol sequences.
//
// Implementation:
//   - Stage 1: validate inputs; allocate the zero matrix.
//   - Stage 2: per context, deduplicate to the sorted set of distinct
//     symbols present; increment every unordered pair by exactly 1.
//   - Stage 3: set every diagonal entry to 1 (self-compatibility
//     convention; NOT a co-occurrence count).
//
// Behavior highlights:
//   - Contexts with 0 or 1 distinct symbols contribute nothing.
//   - A symbol that never co-occurs keeps an all-zero off-diagonal
//     row/column ("isolated") — a valid, reportable state.
//
// Invariants (checked by tests):
//   - Result is symmetric; diagonal ∈ {1}; off-diagonal ≤ len(contexts).
//
// Errors:
//   - ErrNoContexts, ErrBadVocabularySize, ErrIndexOutOfVocabulary.
//
// Determinism:
//   - Per-context distinct sets are sorted before pair enumeration, so
//     increments happen in a fixed order.
//
// Complexity:
//   - Time O(Σ|c| + Σ d_c²) for d_c distinct symbols per context,
//     Space O(n²).
func Build(contexts []corpus.Context, n int) (*dense.Dense, error) {
	if len(contexts) == 0 {
		return nil, ErrNoContexts
	}
	if n <= 0 {
		return nil, ErrBadVocabularySize
	}

	m, err := dense.New(n, n)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	data := m.Data()

	seen := make([]bool, n)
	distinct := make([]int, 0, 16)
	for ci, ctx := range contexts {
		distinct = distinct[:0]
		for _, s := range ctx.Symbols {
			if s < 0 || s >= n {
				return nil, fmt.Errorf("Build: context %d (%q) symbol %d: %w", ci, ctx.Key, s, ErrIndexOutOfVocabulary)
			}
			if !seen[s] {
				seen[s] = true
				distinct = append(distinct, s)
			}
		}
		sort.Ints(distinct)
		for a := 0; a < len(distinct); a++ {
			seen[distinct[a]] = false // reset for the next context
			for b := a + 1; b < len(distinct); b++ {
				i, j := distinct[a], distinct[b]
				data[i*n+j]++
				data[j*n+i]++
			}
		}
	}

	for i := 0; i < n; i++ {
		data[i*n+i] = 1.0
	}

	return m, nil
}

// Transition constructs the row-stochastic first-order transition matrix
// from within-context bigrams: entry (i,j) estimates P(next=j | cur=i)
// over all adjacent occurrence pairs. Rows for symbols never observed in a
// bigram-start position stay all-zero (no estimate, not uniform).
//
// Errors:
//   - ErrNoContexts, ErrBadVocabularySize, ErrIndexOutOfVocabulary.
//
// Complexity:
//   - Time O(Σ|c| + n²), Space O(n²).
func Transition(contexts []corpus.Context, n int) (*dense.Dense, error) {
	if len(contexts) == 0 {
		return nil, ErrNoContexts
	}
	if n <= 0 {
		return nil, ErrBadVocabularySize
	}

	m, err := dense.New(n, n)
	if err != nil {
		return nil, fmt.Errorf("Transition: %w", err)
	}
	data := m.Data()

	for ci, ctx := range contexts {
		for p := 0; p+1 < len(ctx.Symbols); p++ {
			i, j := ctx.Symbols[p], ctx.Symbols[p+1]
			if i < 0 || i >= n || j < 0 || j >= n {
				return nil, fmt.Errorf("Transition: context %d (%q): %w", ci, ctx.Key, ErrIndexOutOfVocabulary)
			}
			data[i*n+j]++
		}
	}

	// Normalize rows in place; zero rows stay zero.
	var i, j, base int
	var rowSum float64
	for i = 0; i < n; i++ {
		base = i * n
		rowSum = 0.0
		for j = 0; j < n; j++ {
			rowSum += data[base+j]
		}
		if rowSum == 0 {
			continue
		}
		inv := 1.0 / rowSum
		for j = 0; j < n; j++ {
			data[base+j] *= inv
		}
	}

	return m, nil
}
