// Package coherence asks whether a designated subset of symbols is
// geometrically tighter in an embedding than a random subset of the same
// size would be.
//
// Two complementary statistics are tested: mean pairwise cosine over the
// subset's unordered pairs (higher is tighter) and mean Euclidean
// distance to the subset centroid (lower is tighter). Each gets its own
// null distribution, built from uniformly drawn size-matched subsets of
// the full symbol set, and both go through the shared significance
// machinery, so the result carries z-scores, permutation p-values and
// validity flags rather than a bare yes/no.
//
// Both statistics depend only on cosines and distances, so they are
// invariant to the arbitrary sign of any embedding axis.
package coherence
