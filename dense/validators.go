// SPDX-License-Identifier: MIT
// Package dense: canonical validation checks.
//
// Purpose:
//   - Provide a single source of truth for nil/shape/symmetry guards.
//   - Return plain sentinel errors (no wrapping) so call sites can wrap
//     uniformly with their operation tag.
//
// Determinism & Performance:
//   - All checks are pure, deterministic and allocate nothing.
//   - The symmetry check runs O(n²) on the upper triangle only.

package dense

import "math"

// DefaultEpsilon is the tolerance used by symmetry checks when callers do
// not supply their own.
const DefaultEpsilon = 1e-9

// ValidateNotNil ensures the matrix reference is non-nil.
// Returns ErrNilMatrix if m == nil. Complexity: O(1).
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return ErrNilMatrix
	}

	return nil
}

// ValidateSquare ensures m is non-nil and square.
// Returns ErrNilMatrix or ErrNonSquare. Complexity: O(1).
func ValidateSquare(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.r != m.c {
		return ErrNonSquare
	}

	return nil
}

// ValidateSameShape ensures a and b are non-nil with equal dimensions.
// Returns ErrNilMatrix or ErrDimensionMismatch. Complexity: O(1).
func ValidateSameShape(a, b *Dense) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.r != b.r || a.c != b.c {
		return ErrDimensionMismatch
	}

	return nil
}

// ValidateSymmetric ensures m is non-nil, square, and symmetric within eps
// (|m[i,j]-m[j,i]| ≤ eps for every upper-triangle pair).
//
// Returns ErrNilMatrix, ErrNonSquare or ErrAsymmetry.
// Complexity: O(n²) on the upper triangle.
func ValidateSymmetric(m *Dense, eps float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	n := m.r
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if math.Abs(m.data[i*n+j]-m.data[j*n+i]) > eps {
				return ErrAsymmetry
			}
		}
	}

	return nil
}
