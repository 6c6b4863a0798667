// Package nullmodel produces randomized reconstructions of a corpus that
// exactly preserve two invariants while destroying the association under
// test:
//
//   - the global multiset of symbol occurrences (every symbol keeps its
//     total count, with multiplicity), and
//   - the ordered sequence of context lengths (same number of contexts,
//     each with its original occurrence count, in original order).
//
// Only the assignment of which symbol occupies which context slot is
// randomized: all occurrences are pooled, Fisher–Yates shuffled, and
// re-partitioned along the original length sequence.
//
// The package also hosts the seeded trial runner shared by every
// permutation-based component. Trial t always draws from a generator
// seeded with base+t, so a parallel run is bit-identical to a serial one,
// and cancelling mid-run yields the completed trials as a partial null
// distribution (never a full-N p-value from a partial sample).
package nullmodel
