// SPDX-License-Identifier: MIT
// Package dense: symmetric kernels used by the statistical layers.
//
// Purpose:
//   - Degree extraction (RowSums) and symmetric degree normalization
//     D^-1/2 M D^-1/2 with the documented zero-degree flooring policy.
//   - Joint row/column permutation (the object-level reorder behind the
//     Mantel null model).
//   - Upper-triangle extraction and elementwise comparison helpers.
//
// Determinism & Performance:
//   - Fixed i→j traversal everywhere; results are stable across runs.
//   - All kernels allocate fresh outputs and never mutate their inputs.

package dense

import (
	"fmt"
	"log/slog"
	"math"
)

// Operation tags for unified error wrapping.
const (
	opRowSums       = "RowSums"
	opNormalize     = "SymmetricNormalize"
	opPermute       = "PermuteSymmetric"
	opUpperTriangle = "UpperTriangle"
	opMaxAbsDiff    = "MaxAbsDiff"
)

// kernelErrorf wraps err with an operation tag, preserving errors.Is.
func kernelErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// RowSums returns the per-row sums of a square matrix (the degree vector
// of an adjacency/co-occurrence matrix).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n²), Space O(n).
func RowSums(m *Dense) ([]float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, kernelErrorf(opRowSums, err)
	}
	n := m.r
	sums := make([]float64, n)
	var i, j, base int
	var s float64
	for i = 0; i < n; i++ {
		s = 0.0
		base = i * n
		for j = 0; j < n; j++ {
			s += m.data[base+j]
		}
		sums[i] = s
	}

	return sums, nil
}

// SymmetricNormalize computes D^-1/2 M D^-1/2 where D is the diagonal of
// row sums.
//
// Implementation:
//   - Stage 1: validate symmetric square input; compute row sums.
//   - Stage 2: floor zero degrees to 1 (isolated symbols stay representable
//     instead of producing a divide-by-zero); log each flooring at Warn.
//   - Stage 3: emit out[i,j] = m[i,j] / sqrt(d[i]*d[j]).
//
// Behavior highlights:
//   - A single degenerate row is handled locally; only a matrix whose rows
//     ALL sum to zero (no edges at all) raises ErrDegenerateMatrix, so one
//     isolated symbol cannot abort a long permutation run.
//
// Inputs:
//   - m: symmetric matrix (within DefaultEpsilon).
//   - logger: destination for flooring warnings; nil means slog.Default().
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrDegenerateMatrix.
//
// Determinism:
//   - Fixed i→j fill order; no randomness.
//
// Complexity:
//   - Time O(n²), Space O(n²).
func SymmetricNormalize(m *Dense, logger *slog.Logger) (*Dense, error) {
	if err := ValidateSymmetric(m, DefaultEpsilon); err != nil {
		return nil, kernelErrorf(opNormalize, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	degrees, err := RowSums(m)
	if err != nil {
		return nil, kernelErrorf(opNormalize, err)
	}

	// Zero-degree policy: floor to 1, unless the whole matrix is edgeless.
	n := m.r
	floored := 0
	var i int
	for i = 0; i < n; i++ {
		if degrees[i] == 0 {
			floored++
		}
	}
	if floored == n {
		return nil, kernelErrorf(opNormalize, ErrDegenerateMatrix)
	}
	if floored > 0 {
		logger.Warn("flooring zero-degree rows during symmetric normalization",
			slog.Int("rows", floored), slog.Int("n", n))
	}

	invSqrt := make([]float64, n)
	for i = 0; i < n; i++ {
		d := degrees[i]
		if d == 0 {
			d = 1.0
		}
		invSqrt[i] = 1.0 / math.Sqrt(d)
	}

	out, err := New(n, n)
	if err != nil {
		return nil, kernelErrorf(opNormalize, err)
	}
	var j, base int
	for i = 0; i < n; i++ {
		base = i * n
		for j = 0; j < n; j++ {
			out.data[base+j] = m.data[base+j] * invSqrt[i] * invSqrt[j]
		}
	}

	return out, nil
}

// PermuteSymmetric reorders rows and columns of a square matrix jointly:
// out[i,j] = m[perm[i], perm[j]].
//
// This is the object-level permutation required by Mantel-style null
// models: the entity ORDER is shuffled while every pairwise relation stays
// attached to its entities. Permuting the flattened pairwise entries
// independently would break that attachment and badly shrink the null
// variance.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//   - ErrBadPermutation when perm is not a bijection on [0, n).
//
// Complexity:
//   - Time O(n²), Space O(n²).
func PermuteSymmetric(m *Dense, perm []int) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, kernelErrorf(opPermute, err)
	}
	n := m.r
	if len(perm) != n {
		return nil, kernelErrorf(opPermute, ErrBadPermutation)
	}
	seen := make([]bool, n)
	for _, p := range perm {
		if p < 0 || p >= n || seen[p] {
			return nil, kernelErrorf(opPermute, ErrBadPermutation)
		}
		seen[p] = true
	}

	out, err := New(n, n)
	if err != nil {
		return nil, kernelErrorf(opPermute, err)
	}
	var i, j int
	for i = 0; i < n; i++ {
		srcBase := perm[i] * n
		dstBase := i * n
		for j = 0; j < n; j++ {
			out.data[dstBase+j] = m.data[srcBase+perm[j]]
		}
	}

	return out, nil
}

// UpperTriangle extracts the strict upper triangle (i<j) of a square
// matrix into a flat vector in fixed row-major pair order. The order is
// part of the contract: two extractions from same-shaped matrices are
// entrywise aligned.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n²), Space O(n(n-1)/2).
func UpperTriangle(m *Dense) ([]float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, kernelErrorf(opUpperTriangle, err)
	}
	n := m.r
	out := make([]float64, 0, n*(n-1)/2)
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			out = append(out, m.data[i*n+j])
		}
	}

	return out, nil
}

// MaxAbsDiff returns the largest absolute elementwise difference between
// two same-shaped matrices. Used by round-trip checks with a documented
// floating-point tolerance.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func MaxAbsDiff(a, b *Dense) (float64, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return 0, kernelErrorf(opMaxAbsDiff, err)
	}
	var maxDiff, d float64
	for idx := range a.data {
		d = math.Abs(a.data[idx] - b.data[idx])
		if d > maxDiff {
			maxDiff = d
		}
	}

	return maxDiff, nil
}
