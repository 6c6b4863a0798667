// SPDX-License-Identifier: MIT

// Package dense - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index
//     formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead
//     of panicking.
//   - Keep algorithmic determinism (fixed loop orders, no map iteration).
//
// Complexity quicksheet:
//   - New: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c).

package dense

import (
	"fmt"
	"math"
	"strings"
)

// Error context tags used by method wrappers.
const (
	ctxAt    = "At"
	ctxSet   = "Set"
	ctxApply = "Apply"
)

// Dense is a concrete row-major matrix.
//   - r, c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset i*c+j).
type Dense struct {
	r, c int
	data []float64
}

var _ fmt.Stringer = (*Dense)(nil)

// denseErrorf wraps a sentinel with method context and coordinates.
// Keeps a stable "Dense.<method>(row,col): <underlying>" shape so call
// sites log uniformly while errors.Is still matches.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// New creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate a zero-filled contiguous buffer.
//
// Returns:
//   - *Dense: newly allocated matrix.
//
// Errors:
//   - ErrInvalidDimensions on a non-positive shape.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func New(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{
		r:    rows,
		c:    cols,
		data: make([]float64, rows*cols),
	}, nil
}

// FromSlice builds an r×c matrix from a row-major flat slice.
// The slice is copied; the caller retains ownership of vals.
//
// Errors:
//   - ErrInvalidDimensions on a non-positive shape.
//   - ErrDimensionMismatch when len(vals) != rows*cols.
//   - ErrNaNInf when vals contains a non-finite value.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func FromSlice(rows, cols int, vals []float64) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(vals) != rows*cols {
		return nil, fmt.Errorf("FromSlice: len=%d want %d: %w", len(vals), rows*cols, ErrDimensionMismatch)
	}
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("FromSlice: index %d: %w", i, ErrNaNInf)
		}
	}
	buf := make([]float64, len(vals))
	copy(buf, vals)

	return &Dense{r: rows, c: cols, data: buf}, nil
}

// Identity returns the n×n identity matrix.
// Complexity: O(n²).
func Identity(n int) (*Dense, error) {
	m, err := New(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1.0
	}

	return m, nil
}

// Rows returns the row count. Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call. Complexity: O(1).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// Data exposes the backing row-major slice for read-only kernel fast paths.
// Mutating the returned slice breaks the immutability contract; kernels in
// this module never do.
// Complexity: O(1).
func (m *Dense) Data() []float64 { return m.data }

// indexOf bounds-checks (row, col) and computes the flat row-major offset.
// Returns the bare ErrOutOfRange sentinel; public methods wrap it with
// coordinates and method name.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// MustAt returns the value at (row, col), panicking on out-of-range access.
// Intended for hot inner loops that have already validated shapes; public
// entry points must use At.
func (m *Dense) MustAt(row, col int) float64 {
	return m.data[row*m.c+col]
}

// Set stores v at (row, col). NaN and ±Inf are rejected: every matrix in
// the engine represents counts, similarities or coordinates, all finite.
//
// Errors:
//   - ErrOutOfRange on invalid indices.
//   - ErrNaNInf on non-finite v.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy with an independent buffer.
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// Do visits each element (i,j) in row-major order and calls f(i,j,v);
// stops early when f returns false.
//
// Determinism:
//   - Fixed i→j order.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Do(f func(i, j int, v float64) bool) {
	var i, j, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			if !f(i, j, m.data[base+j]) {
				return
			}
		}
	}
}

// Apply replaces each element with f(i,j,v) in-place, rejecting non-finite
// results. Elements written before an error remain updated; callers that
// need all-or-nothing semantics should Apply on a Clone and swap.
//
// Errors:
//   - ErrNaNInf when the transformer produced a non-finite value.
//
// Complexity:
//   - Time O(r*c), Space O(1).
func (m *Dense) Apply(f func(i, j int, v float64) float64) error {
	var i, j, base int
	var nv float64
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < m.c; j++ {
			nv = f(i, j, m.data[base+j])
			if math.IsNaN(nv) || math.IsInf(nv, 0) {
				return denseErrorf(ctxApply, i, j, ErrNaNInf)
			}
			m.data[base+j] = nv
		}
	}

	return nil
}

// String renders rows as bracketed comma-separated lines. Diagnostics only;
// not for hot paths.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString("[")
		base = i * m.c
		for j = 0; j < m.c; j++ {
			fmt.Fprintf(&b, "%g", m.data[base+j])
			if j+1 < m.c {
				b.WriteString(", ")
			}
		}
		b.WriteString("]\n")
	}

	return b.String()
}
