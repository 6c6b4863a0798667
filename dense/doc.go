// SPDX-License-Identifier: MIT

// Package dense provides the row-major float64 matrix substrate shared by
// every analysis component of the engine.
//
// The package provides:
//
//   - Dense, a cache-friendly row-major buffer with the explicit index
//     formula i*cols + j and safe At/Set accessors (errors, never panics).
//   - Centralized validators (ValidateNotNil, ValidateSquare,
//     ValidateSymmetric) so kernels share one source of truth for guards.
//   - Symmetric kernels used by the statistical layers: degree extraction,
//     symmetric degree normalization with documented flooring, joint
//     row/column permutation, and upper-triangle extraction.
//
// All loops run in fixed i→j order; no map iteration, no hidden
// randomness. Matrices handed to downstream components are treated as
// immutable once built — kernels allocate fresh results and never mutate
// their inputs.
package dense
