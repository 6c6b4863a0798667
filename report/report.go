// Package report persists analysis artifacts: matrices as flat
// little-endian binary, summaries as JSON.
//
// Matrix files carry a fixed header (magic, rows, cols) followed by
// rows×cols float64 values in row-major order. Row and column order is
// the sorted vocabulary order of the run that produced the matrix; the
// vocabulary itself travels in the JSON summary, not in the binary file.
package report

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/epilectrik/voynich-sub006/coherence"
	"github.com/epilectrik/voynich-sub006/dense"
	"github.com/epilectrik/voynich-sub006/dimselect"
	"github.com/epilectrik/voynich-sub006/sigtest"
)

var (
	// ErrBadHeader indicates a matrix stream that does not start with the
	// expected magic, or declares an impossible shape.
	ErrBadHeader = errors.New("report: bad matrix header")

	// ErrTruncated indicates a matrix stream shorter than its header
	// promises.
	ErrTruncated = errors.New("report: truncated matrix data")
)

// matrixMagic is "VMTX" as a big-endian uint32; it guards against
// feeding arbitrary files to ReadMatrix.
const matrixMagic uint32 = 0x564D5458

// maxMatrixDim caps the declared shape so a corrupt header cannot drive
// a multi-gigabyte allocation.
const maxMatrixDim = 1 << 20

// WriteMatrix serializes m as magic, rows, cols (uint32 little-endian)
// followed by the row-major float64 payload.
func WriteMatrix(w io.Writer, m *dense.Dense) error {
	if err := dense.ValidateNotNil(m); err != nil {
		return fmt.Errorf("WriteMatrix: %w", err)
	}

	header := []uint32{matrixMagic, uint32(m.Rows()), uint32(m.Cols())}
	for _, v := range header {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("WriteMatrix: header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, m.Data()); err != nil {
		return fmt.Errorf("WriteMatrix: payload: %w", err)
	}

	return nil
}

// ReadMatrix deserializes a matrix written by WriteMatrix.
//
// Errors:
//   - ErrBadHeader on wrong magic or a zero/oversized shape.
//   - ErrTruncated when the payload ends early.
//   - dense.ErrNaNInf (wrapped) when the payload carries non-finite
//     values.
func ReadMatrix(r io.Reader) (*dense.Dense, error) {
	var header [3]uint32
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("ReadMatrix: header: %w", ErrBadHeader)
		}
	}
	if header[0] != matrixMagic {
		return nil, fmt.Errorf("ReadMatrix: magic %#x: %w", header[0], ErrBadHeader)
	}
	rows, cols := int(header[1]), int(header[2])
	if rows <= 0 || cols <= 0 || rows > maxMatrixDim || cols > maxMatrixDim {
		return nil, fmt.Errorf("ReadMatrix: shape %dx%d: %w", rows, cols, ErrBadHeader)
	}

	data := make([]float64, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("ReadMatrix: payload: %w", ErrTruncated)
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("ReadMatrix: %w", dense.ErrNaNInf)
		}
	}

	m, err := dense.FromSlice(rows, cols, data)
	if err != nil {
		return nil, fmt.Errorf("ReadMatrix: %w", err)
	}

	return m, nil
}

// WriteMatrixFile writes m to path, creating or truncating it.
func WriteMatrixFile(path string, m *dense.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteMatrixFile: %w", err)
	}
	defer f.Close()

	if err := WriteMatrix(f, m); err != nil {
		return err
	}

	return f.Close()
}

// ReadMatrixFile reads a matrix from path.
func ReadMatrixFile(path string) (*dense.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadMatrixFile: %w", err)
	}
	defer f.Close()

	return ReadMatrix(f)
}

// SpectralSummary records the embedding shape of a run.
type SpectralSummary struct {
	K           int       `json:"k"`
	SkipLeading int       `json:"skip_leading,omitempty"`
	Eigenvalues []float64 `json:"eigenvalues"`
}

// AlignmentSummary records a Mantel test, optionally with its
// confound-controlled companion.
type AlignmentSummary struct {
	Test    sigtest.TestResult  `json:"test"`
	Partial *sigtest.TestResult `json:"partial,omitempty"`
}

// Summary is the top-level JSON artifact of one analysis run. Every
// section is optional; a pipeline fills in the stages it ran.
type Summary struct {
	// Vocabulary is the sorted symbol list defining row/column order of
	// every persisted matrix from this run.
	Vocabulary []string `json:"vocabulary,omitempty"`

	Spectral       *SpectralSummary             `json:"spectral,omitempty"`
	Dimensionality *dimselect.Result            `json:"dimensionality,omitempty"`
	Coherence      map[string]*coherence.Result `json:"coherence,omitempty"`
	Alignment      *AlignmentSummary            `json:"alignment,omitempty"`
}

// WriteJSON serializes v as indented JSON. v is typically a *Summary or
// one of its sections; any JSON-taggable value works.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}

	return nil
}

// WriteJSONFile writes v to path as indented JSON.
func WriteJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteJSONFile: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, v); err != nil {
		return err
	}

	return f.Close()
}
