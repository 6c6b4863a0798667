// Package voynich is a statistical-inference engine for discovering and
// validating latent structure in large sets of discrete symbols that
// co-occur within bounded contexts (lines of a transcription).
//
// The engine is deliberately small and exact. Every stochastic component
// takes an explicit seed, every matrix artifact is immutable once built,
// and every significance test reports its own validity flags, so a caller
// can always distinguish "no effect" from "not meaningfully computable".
//
// Subpackages, in dependency order:
//
//	dense/     — row-major float64 matrices, validators, symmetric kernels
//	corpus/    — token records, contexts, sorted vocabulary
//	cooccur/   — co-occurrence matrices and transition statistics
//	nullmodel/ — frequency- and length-preserving randomization, trial pool
//	sigtest/   — z-scores and Monte-Carlo p-values over null distributions
//	spectral/  — eigendecomposition into low-dimensional embeddings
//	dimselect/ — cross-validated dimensionality selection (link-prediction AUC)
//	coherence/ — geometric coherence tests for named symbol subsets
//	mantel/    — object-permutation Mantel tests between pairwise structures
//	report/    — flat binary matrix artifacts and JSON summaries
//	params/    — caller-facing parameter files (YAML)
//
// The corpus loader and the morphological segmenter are external
// collaborators: the engine consumes (context key, symbol) pairs and never
// inspects how either string was derived.
package voynich
