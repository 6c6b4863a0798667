// SPDX-License-Identifier: MIT
// Package dense: sentinel error set.
// This file defines ONLY package-level sentinel errors. All kernels return
// these sentinels and tests check them via errors.Is. No kernel panics on
// user-triggered conditions; panics are reserved for programmer errors.

package dense

import "errors"

var (
	// ErrInvalidDimensions is returned when requested dimensions are non-positive.
	ErrInvalidDimensions = errors.New("dense: dimensions must be > 0")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("dense: index out of range")

	// ErrDimensionMismatch indicates incompatible shapes between operands.
	ErrDimensionMismatch = errors.New("dense: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but not supplied.
	ErrNonSquare = errors.New("dense: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the configured tolerance.
	ErrAsymmetry = errors.New("dense: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf where finite values are required.
	ErrNaNInf = errors.New("dense: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil *Dense was passed to a kernel.
	ErrNilMatrix = errors.New("dense: nil matrix")

	// ErrDegenerateMatrix is returned when an entire matrix has zero row
	// sums, so no normalization or spectral statement about it is
	// meaningful. A single zero-degree row is handled by flooring instead.
	ErrDegenerateMatrix = errors.New("dense: matrix has no edges (all row sums zero)")

	// ErrBadPermutation indicates that a permutation slice is not a
	// bijection on [0, n).
	ErrBadPermutation = errors.New("dense: invalid permutation")
)
