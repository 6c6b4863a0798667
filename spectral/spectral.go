package spectral

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/epilectrik/voynich-sub006/dense"
)

var (
	// ErrInsufficientData indicates that the requested dimensionality
	// exceeds the components available after dropping leading ones.
	ErrInsufficientData = errors.New("spectral: not enough components for requested dimensionality")

	// ErrBadDimension indicates a non-positive requested dimensionality
	// or a negative SkipLeading.
	ErrBadDimension = errors.New("spectral: dimensionality parameters must be non-negative (k > 0)")

	// ErrFactorization indicates that the eigensolver failed to converge.
	ErrFactorization = errors.New("spectral: eigendecomposition failed")
)

// Normalization selects the matrix preprocessing applied before the
// eigendecomposition.
type Normalization int

const (
	// None decomposes the matrix as-is.
	None Normalization = iota

	// SymmetricDegree applies D^-1/2 M D^-1/2 (degree normalization),
	// flooring zero degrees to 1. Brings high- and low-frequency symbols
	// onto a comparable scale before factorization.
	SymmetricDegree
)

// Options parameterizes Embed.
//
// Fields:
//   - Normalization — preprocessing mode (default None).
//   - SkipLeading   — number of top eigenpairs to drop before taking K.
//     The leading component of a degree-normalized affinity matrix is
//     frequently a near-constant "volume" direction; skipping it exposes
//     the contrastive structure underneath.
//   - Logger        — sink for fallback warnings during normalization;
//     nil means slog.Default().
type Options struct {
	Normalization Normalization
	SkipLeading   int
	Logger        *slog.Logger
}

// Embed computes a K-dimensional spectral embedding of the symmetric
// matrix m.
//
// Implementation:
//   - Stage 1: validate (square, symmetric within dense.DefaultEpsilon),
//     check k against the post-skip component budget.
//   - Stage 2: optional dense.SymmetricNormalize per opts.Normalization.
//   - Stage 3: full mat.EigenSym factorization; sort eigenpairs by
//     eigenvalue descending.
//   - Stage 4: drop opts.SkipLeading pairs, take k, clip negative
//     eigenvalues to 0, scale each eigenvector by √λ into row-major
//     coordinates.
//
// Returns:
//   - *Embedding with N×k coordinates and the FULL descending eigenvalue
//     slice (all N values, pre-skip), for scree inspection by callers.
//
// Errors:
//   - ErrBadDimension on k <= 0 or SkipLeading < 0.
//   - ErrInsufficientData when k > N − SkipLeading.
//   - ErrFactorization if the eigensolver does not converge.
//   - dense validation sentinels (wrapped) on nil, non-square or
//     asymmetric input.
//
// Determinism:
//   - Output is a deterministic function of (m, k, opts) up to eigenvector
//     sign; consumers must be sign-invariant.
//
// Complexity:
//   - Time O(N³), Space O(N²).
func Embed(m *dense.Dense, k int, opts Options) (*Embedding, error) {
	if err := dense.ValidateSymmetric(m, dense.DefaultEpsilon); err != nil {
		return nil, fmt.Errorf("Embed: %w", err)
	}
	if k <= 0 || opts.SkipLeading < 0 {
		return nil, fmt.Errorf("Embed: k=%d skip=%d: %w", k, opts.SkipLeading, ErrBadDimension)
	}

	n := m.Rows()
	if k+opts.SkipLeading > n {
		return nil, fmt.Errorf("Embed: k=%d + skip=%d > n=%d: %w", k, opts.SkipLeading, n, ErrInsufficientData)
	}

	src := m
	if opts.Normalization == SymmetricDegree {
		normalized, err := dense.SymmetricNormalize(m, opts.Logger)
		if err != nil {
			return nil, fmt.Errorf("Embed: %w", err)
		}
		src = normalized
	}

	sym := mat.NewSymDense(n, src.Data())

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, fmt.Errorf("Embed: n=%d: %w", n, ErrFactorization)
	}

	// gonum reports eigenvalues in ascending order; the embedding contract
	// is descending.
	ascValues := eig.Values(nil)
	var ascVectors mat.Dense
	eig.VectorsTo(&ascVectors)

	values := make([]float64, n)
	for d := 0; d < n; d++ {
		values[d] = ascValues[n-1-d]
	}

	coords := make([]float64, n*k)
	for d := 0; d < k; d++ {
		ascCol := n - 1 - (opts.SkipLeading + d)
		scale := math.Sqrt(math.Max(values[opts.SkipLeading+d], 0))
		for i := 0; i < n; i++ {
			coords[i*k+d] = ascVectors.At(i, ascCol) * scale
		}
	}

	return &Embedding{n: n, k: k, coords: coords, eigenvalues: values}, nil
}
