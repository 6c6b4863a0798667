// Package dimselect chooses an embedding dimensionality by
// cross-validated link prediction instead of by eyeballing a scree plot.
//
// Each fold samples a balanced set of positive pairs (co-occurring,
// off-diagonal count > 0) and negative pairs (never co-occurring), masks
// the sampled positives out of a cloned matrix, re-embeds the masked
// matrix at each candidate dimensionality, and scores every held-out pair
// by the dot product of its two symbol vectors. The fold's quality is the
// Mann–Whitney AUC of positive scores over negative scores, computed on
// tie-averaged ranks, so it is invariant to monotone rescaling of the
// scores and to eigenvector sign.
//
// The selected dimensionality is the candidate with the highest mean AUC
// across folds; exact ties go to the smaller candidate.
package dimselect
