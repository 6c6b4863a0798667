// Package params loads and validates run parameters for analysis
// pipelines from YAML files. It exists for caller scripts: every engine
// package takes its own explicit config struct, and Params is the
// single place a pipeline maps a parameter file onto those structs.
package params

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epilectrik/voynich-sub006/dimselect"
	"github.com/epilectrik/voynich-sub006/nullmodel"
	"github.com/epilectrik/voynich-sub006/spectral"
)

var (
	// ErrInvalidParams indicates a parameter file that fails validation;
	// the wrapped message names the offending field.
	ErrInvalidParams = errors.New("params: invalid parameters")
)

// Params is the top-level run configuration.
type Params struct {
	Corpus    CorpusParams    `yaml:"corpus"`
	Null      NullParams      `yaml:"null"`
	Embedding EmbeddingParams `yaml:"embedding"`
	Selection SelectionParams `yaml:"selection"`
	Output    OutputParams    `yaml:"output"`
}

// CorpusParams controls vocabulary construction.
type CorpusParams struct {
	// MinCount drops symbols occurring fewer than this many times.
	MinCount int `yaml:"minCount"`
}

// NullParams controls every permutation null in the run.
type NullParams struct {
	Trials         int   `yaml:"trials"`
	Workers        int   `yaml:"workers"`
	Seed           int64 `yaml:"seed"`
	AllowSmallNull bool  `yaml:"allowSmallNull"`
}

// EmbeddingParams controls the spectral embedding.
type EmbeddingParams struct {
	// Normalization is "none" or "symmetric".
	Normalization string `yaml:"normalization"`
	SkipLeading   int    `yaml:"skipLeading"`
}

// SelectionParams controls the dimensionality sweep.
type SelectionParams struct {
	KGrid      []int `yaml:"kGrid"`
	Folds      int   `yaml:"folds"`
	SampleSize int   `yaml:"sampleSize"`
}

// OutputParams names the persisted artifacts.
type OutputParams struct {
	MatrixPath  string `yaml:"matrixPath"`
	SummaryPath string `yaml:"summaryPath"`
}

// Load reads a YAML parameter file (if path is non-empty), layered over
// the documented defaults, and validates the result.
func Load(path string) (*Params, error) {
	p := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("params: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("params: parsing %s: %w", path, err)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Default returns the documented defaults, mirroring each engine
// package's Default* constants.
func Default() *Params {
	return &Params{
		Corpus: CorpusParams{MinCount: 1},
		Null: NullParams{
			Trials:  nullmodel.DefaultTrials,
			Workers: 0,
			Seed:    1,
		},
		Embedding: EmbeddingParams{Normalization: "symmetric", SkipLeading: 1},
		Selection: SelectionParams{
			KGrid:      []int{2, 3, 4, 6, 8, 12},
			Folds:      dimselect.DefaultFolds,
			SampleSize: dimselect.DefaultSampleSize,
		},
		Output: OutputParams{
			MatrixPath:  "cooccurrence.mtx",
			SummaryPath: "summary.json",
		},
	}
}

// TrialConfig maps the null section onto the trial-runner config.
func (n NullParams) TrialConfig() nullmodel.TrialConfig {
	return nullmodel.TrialConfig{Trials: n.Trials, Workers: n.Workers, Seed: n.Seed}
}

// SpectralOptions maps the embedding section onto spectral options.
// Call only after Validate; an unknown normalization maps to None.
func (e EmbeddingParams) SpectralOptions(logger *slog.Logger) spectral.Options {
	norm := spectral.None
	if e.Normalization == "symmetric" {
		norm = spectral.SymmetricDegree
	}

	return spectral.Options{Normalization: norm, SkipLeading: e.SkipLeading, Logger: logger}
}

// SelectConfig maps the selection and null sections onto the
// dimensionality-sweep config.
func (p *Params) SelectConfig(logger *slog.Logger) dimselect.Config {
	return dimselect.Config{
		Folds:      p.Selection.Folds,
		SampleSize: p.Selection.SampleSize,
		Workers:    p.Null.Workers,
		Seed:       p.Null.Seed,
		Embed:      p.Embedding.SpectralOptions(logger),
	}
}

// Validate checks cross-field consistency. All violations are reported
// as ErrInvalidParams with a field-naming message.
func (p *Params) Validate() error {
	switch {
	case p.Corpus.MinCount < 1:
		return fmt.Errorf("%w: corpus.minCount %d < 1", ErrInvalidParams, p.Corpus.MinCount)
	case p.Null.Trials < 1:
		return fmt.Errorf("%w: null.trials %d < 1", ErrInvalidParams, p.Null.Trials)
	case p.Embedding.SkipLeading < 0:
		return fmt.Errorf("%w: embedding.skipLeading %d < 0", ErrInvalidParams, p.Embedding.SkipLeading)
	case p.Selection.Folds < 1:
		return fmt.Errorf("%w: selection.folds %d < 1", ErrInvalidParams, p.Selection.Folds)
	case p.Selection.SampleSize < 1:
		return fmt.Errorf("%w: selection.sampleSize %d < 1", ErrInvalidParams, p.Selection.SampleSize)
	case len(p.Selection.KGrid) == 0:
		return fmt.Errorf("%w: selection.kGrid is empty", ErrInvalidParams)
	}
	for _, k := range p.Selection.KGrid {
		if k < 1 {
			return fmt.Errorf("%w: selection.kGrid entry %d < 1", ErrInvalidParams, k)
		}
	}
	if p.Embedding.Normalization != "none" && p.Embedding.Normalization != "symmetric" {
		return fmt.Errorf("%w: embedding.normalization %q (want \"none\" or \"symmetric\")",
			ErrInvalidParams, p.Embedding.Normalization)
	}

	return nil
}
