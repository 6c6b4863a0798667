package corpus

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoRecords indicates an empty input stream.
	ErrNoRecords = errors.New("corpus: no token records")

	// ErrEmptyVocabulary indicates that no symbol survived the
	// min-occurrence filter.
	ErrEmptyVocabulary = errors.New("corpus: empty vocabulary after filtering")

	// ErrUnknownSymbol indicates a lookup for a symbol outside the
	// vocabulary.
	ErrUnknownSymbol = errors.New("corpus: unknown symbol")
)

// TokenRecord is one occurrence of a symbol inside a context, as produced
// by the external loader. The engine does not care how either string was
// derived.
type TokenRecord struct {
	ContextKey string // grouping key, e.g. "f1r.3"
	Symbol     string // analysis unit, e.g. a token or its middle segment
}

// Segmenter is the contract of the external morphological segmenter.
// Caller scripts may use it to choose which field of a token becomes the
// symbol fed into this engine; the engine itself never calls it.
type Segmenter interface {
	Segment(token string) (prefix, middle, suffix string)
}

// Vocabulary is the fixed, lexicographically sorted symbol set of one
// corpus. Index assignment is deterministic: symbols[i] < symbols[i+1].
type Vocabulary struct {
	symbols []string
	index   map[string]int
}

// NewVocabulary builds the sorted vocabulary from a record stream,
// excluding symbols that occur fewer than minCount times. minCount <= 1
// keeps every symbol; the floor is caller policy, never hard-coded.
//
// Errors:
//   - ErrNoRecords on an empty stream.
//   - ErrEmptyVocabulary when the filter removes every symbol.
func NewVocabulary(records []TokenRecord, minCount int) (*Vocabulary, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	counts := make(map[string]int, len(records))
	for _, rec := range records {
		counts[rec.Symbol]++
	}

	symbols := make([]string, 0, len(counts))
	for sym, n := range counts {
		if n >= minCount {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyVocabulary
	}
	sort.Strings(symbols) // stable lexicographic index assignment

	index := make(map[string]int, len(symbols))
	for i, sym := range symbols {
		index[sym] = i
	}

	return &Vocabulary{symbols: symbols, index: index}, nil
}

// Size returns the number of symbols. Complexity: O(1).
func (v *Vocabulary) Size() int { return len(v.symbols) }

// Symbols returns the sorted symbol slice. Callers must not mutate it.
func (v *Vocabulary) Symbols() []string { return v.symbols }

// Index returns the stable index of sym.
//
// Errors:
//   - ErrUnknownSymbol when sym is not in the vocabulary.
func (v *Vocabulary) Index(sym string) (int, error) {
	i, ok := v.index[sym]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, sym)
	}

	return i, nil
}

// Contains reports whether sym survived the frequency filter.
func (v *Vocabulary) Contains(sym string) bool {
	_, ok := v.index[sym]
	return ok
}

// Context is the ordered sequence of vocabulary indices observed within
// one grouping key. Multiplicity is preserved: a symbol occurring twice in
// a line appears twice here. Deduplication happens only where a specific
// statistic requires it (co-occurrence counting).
type Context struct {
	Key     string
	Symbols []int
}

// Len returns the number of symbol occurrences in the context.
func (c Context) Len() int { return len(c.Symbols) }

// Contexts groups records by context key, preserving the encounter order
// of each key's first appearance and the within-context occurrence order.
// Records whose symbol fell below the vocabulary's frequency floor are
// dropped; a context may legitimately end up with zero or one symbol (it
// then contributes nothing to pairwise statistics, which is valid).
//
// Errors:
//   - ErrNoRecords on an empty stream.
func Contexts(records []TokenRecord, vocab *Vocabulary) ([]Context, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	order := make([]string, 0)
	byKey := make(map[string][]int)
	for _, rec := range records {
		if _, seen := byKey[rec.ContextKey]; !seen {
			order = append(order, rec.ContextKey)
			byKey[rec.ContextKey] = []int{}
		}
		idx, ok := vocab.index[rec.Symbol]
		if !ok {
			continue // filtered symbol; the context itself survives
		}
		byKey[rec.ContextKey] = append(byKey[rec.ContextKey], idx)
	}

	out := make([]Context, len(order))
	for i, key := range order {
		out[i] = Context{Key: key, Symbols: byKey[key]}
	}

	return out, nil
}

// TotalOccurrences sums context lengths; the pooled occurrence count every
// frequency-preserving null model must conserve.
func TotalOccurrences(contexts []Context) int {
	total := 0
	for _, c := range contexts {
		total += len(c.Symbols)
	}

	return total
}
