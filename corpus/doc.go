// Package corpus defines the boundary types between the external corpus
// loader and the statistical engine.
//
// The loader (out of scope here) parses a transcription table into an
// ordered stream of token records, each carrying a context key (e.g. a
// folio+line identifier) and a symbol string (a token or a morphological
// segment of one). This package turns that stream into the two immutable
// artifacts every downstream component consumes:
//
//   - Vocabulary: the sorted, stable symbol→index mapping. Lexicographic
//     order is a contract, not a convenience — it fixes matrix row/column
//     identity across re-runs and across serialized artifacts.
//   - []Context: per-context ordered symbol index sequences, grouped by
//     context key in first-appearance order.
//
// Data-shape errors (no records, empty vocabulary after filtering) are
// raised here, at the boundary, so the numeric layers can assume
// well-formed inputs.
package corpus
