// Package spectral turns a symmetric co-occurrence matrix into a
// low-dimensional coordinate system for its symbols.
//
// The pipeline is: optional degree normalization (D^-1/2 M D^-1/2),
// full symmetric eigendecomposition, eigenpairs sorted by eigenvalue
// descending, optional dropping of leading components, then scaling each
// retained eigenvector by the square root of its (non-negative-clipped)
// eigenvalue so that dot products in the embedding approximate the
// original affinities.
//
// Eigenvector signs are arbitrary: an eigensolver may negate any column
// and still be correct. Every consumer in this module is therefore built
// on sign-invariant quantities (pairwise cosines, distances, alignment
// correlations), and the tests pin that property down.
package spectral
