// Package cooccur turns context-grouped symbol sequences into the
// symmetric compatibility structures the spectral and permutation layers
// consume.
//
// The central artifact is the co-occurrence matrix: entry (i,j), i≠j,
// counts the DISTINCT contexts in which symbols i and j both appear —
// multiplicity within a context never inflates a pair. The diagonal is
// fixed to 1 by convention (self-compatibility), not a count.
//
// The package also derives sequential statistics from the same contexts:
// the first-order transition matrix over within-context bigrams, and the
// conditional transition tensor over trigrams whose frequency-weighted
// marginalization must reproduce the trigram-supported transition matrix
// exactly (a built-in consistency check on the counting code).
package cooccur
