package spectral

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIndexOutOfRange indicates a symbol index outside [0, N).
	ErrIndexOutOfRange = errors.New("spectral: symbol index out of range")

	// ErrEmptySubset indicates an empty subset passed to Centroid.
	ErrEmptySubset = errors.New("spectral: empty subset")
)

// Embedding is an immutable N×K coordinate assignment for N symbols.
// Construct via Embed; the zero value is not usable.
type Embedding struct {
	n, k        int
	coords      []float64 // row-major, n×k
	eigenvalues []float64 // all n eigenvalues, descending
}

// Rows returns the number of embedded symbols N.
func (e *Embedding) Rows() int { return e.n }

// Dim returns the embedding dimensionality K.
func (e *Embedding) Dim() int { return e.k }

// Eigenvalues returns a copy of the full descending eigenvalue spectrum
// (all N values, before any skipping or clipping).
func (e *Embedding) Eigenvalues() []float64 {
	out := make([]float64, len(e.eigenvalues))
	copy(out, e.eigenvalues)

	return out
}

// Vector returns a copy of symbol i's K-dimensional coordinates.
func (e *Embedding) Vector(i int) ([]float64, error) {
	if i < 0 || i >= e.n {
		return nil, fmt.Errorf("Vector: i=%d n=%d: %w", i, e.n, ErrIndexOutOfRange)
	}

	out := make([]float64, e.k)
	copy(out, e.coords[i*e.k:(i+1)*e.k])

	return out, nil
}

// Dot returns the inner product of symbols i and j. Sign-invariant only
// in aggregate comparisons; prefer Cosine for similarity structure.
func (e *Embedding) Dot(i, j int) (float64, error) {
	if err := e.checkPair(i, j); err != nil {
		return 0, fmt.Errorf("Dot: %w", err)
	}

	return dot(e.row(i), e.row(j)), nil
}

// Cosine returns the cosine similarity of symbols i and j. A zero-norm
// vector (a symbol projected to the origin) yields similarity 0 rather
// than NaN.
func (e *Embedding) Cosine(i, j int) (float64, error) {
	if err := e.checkPair(i, j); err != nil {
		return 0, fmt.Errorf("Cosine: %w", err)
	}

	a, b := e.row(i), e.row(j)
	na, nb := norm(a), norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}

	return dot(a, b) / (na * nb), nil
}

// EuclideanDist returns the Euclidean distance between symbols i and j.
func (e *Embedding) EuclideanDist(i, j int) (float64, error) {
	if err := e.checkPair(i, j); err != nil {
		return 0, fmt.Errorf("EuclideanDist: %w", err)
	}

	a, b := e.row(i), e.row(j)
	sum := 0.0
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}

	return math.Sqrt(sum), nil
}

// Centroid returns the mean coordinate vector of the given symbol subset.
//
// Errors:
//   - ErrEmptySubset on an empty subset.
//   - ErrIndexOutOfRange on any invalid index.
func (e *Embedding) Centroid(subset []int) ([]float64, error) {
	if len(subset) == 0 {
		return nil, fmt.Errorf("Centroid: %w", ErrEmptySubset)
	}

	out := make([]float64, e.k)
	for _, i := range subset {
		if i < 0 || i >= e.n {
			return nil, fmt.Errorf("Centroid: i=%d n=%d: %w", i, e.n, ErrIndexOutOfRange)
		}
		row := e.row(i)
		for d := range out {
			out[d] += row[d]
		}
	}
	inv := 1.0 / float64(len(subset))
	for d := range out {
		out[d] *= inv
	}

	return out, nil
}

// DistTo returns the Euclidean distance from symbol i to an arbitrary
// K-dimensional point (typically a Centroid).
func (e *Embedding) DistTo(i int, point []float64) (float64, error) {
	if i < 0 || i >= e.n {
		return 0, fmt.Errorf("DistTo: i=%d n=%d: %w", i, e.n, ErrIndexOutOfRange)
	}
	if len(point) != e.k {
		return 0, fmt.Errorf("DistTo: point dim %d != k %d: %w", len(point), e.k, ErrIndexOutOfRange)
	}

	row := e.row(i)
	sum := 0.0
	for d := range row {
		diff := row[d] - point[d]
		sum += diff * diff
	}

	return math.Sqrt(sum), nil
}

func (e *Embedding) row(i int) []float64 {
	return e.coords[i*e.k : (i+1)*e.k]
}

func (e *Embedding) checkPair(i, j int) error {
	if i < 0 || i >= e.n || j < 0 || j >= e.n {
		return fmt.Errorf("i=%d j=%d n=%d: %w", i, j, e.n, ErrIndexOutOfRange)
	}

	return nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for d := range a {
		sum += a[d] * b[d]
	}

	return sum
}

func norm(v []float64) float64 {
	return math.Sqrt(dot(v, v))
}
