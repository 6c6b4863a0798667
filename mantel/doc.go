// Package mantel tests whether two symmetric pairwise structures over
// the same symbol set are aligned: does proximity in one predict
// proximity in the other?
//
// The observed statistic is the Spearman rank correlation of the two
// strict upper triangles. The null is built by permuting the SYMBOL
// ORDER of the second structure (a joint row/column reorder) and
// recorrelating. Permuting symbols preserves each structure's internal
// geometry and breaks only the cross-structure alignment, which is the
// hypothesis under test; shuffling individual matrix entries would also
// destroy within-structure geometry and test the wrong thing, so it is
// deliberately not offered.
//
// PartialTest additionally removes a shared confound: both structures
// are rank-residualized on a third symmetric structure before
// correlating, answering whether alignment survives after the confound
// explains what it can.
package mantel
