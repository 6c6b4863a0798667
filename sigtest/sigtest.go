// Package sigtest compares an observed scalar statistic against a
// Monte-Carlo null distribution, yielding a z-score and a permutation
// p-value.
//
// The p-value is always computed as (count+1)/(N+1), which both avoids a
// zero p-value and makes the finite-sample resolution floor of 1/(N+1)
// explicit. Degenerate nulls (zero standard deviation) report z = 0 with
// an explicit flag rather than producing NaN or Inf, and results built
// from partial (cancelled) null runs carry their own flag so a caller can
// never mistake a truncated run for a full one.
//
// Evaluate is a pure function over its inputs: no logging, no globals,
// no randomness.
package sigtest

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/epilectrik/voynich-sub006/nullmodel"
)

// ErrInsufficientSamples is returned when the null distribution holds
// fewer than MinTrials samples and the caller did not opt in to small
// nulls. Below this floor the p-value resolution is statistically
// unreliable.
var ErrInsufficientSamples = errors.New("sigtest: null distribution has too few samples")

// MinTrials is the floor below which a null distribution is considered
// statistically unreliable. Callers may override via AllowSmallNull, in
// which case the result is flagged instead of rejected.
const MinTrials = 30

// Tail selects the alternative hypothesis for the p-value.
type Tail int

const (
	// TwoSided counts null samples at least as far from the null mean as
	// the observed statistic, in either direction.
	TwoSided Tail = iota

	// Greater counts null samples ≥ observed.
	Greater

	// Less counts null samples ≤ observed.
	Less
)

// Validity flags carried on a TestResult. Flags mark non-fatal conditions;
// fatal ones are errors.
const (
	// FlagDegenerateNull marks a null with zero standard deviation: every
	// trial produced the identical statistic, so the z-score is reported
	// as 0 by convention.
	FlagDegenerateNull = "degenerate_null"

	// FlagSmallSample marks a result computed from fewer samples than the
	// configured target (below MinTrials, or a reduced cross-validation
	// pool upstream).
	FlagSmallSample = "small_sample"

	// FlagPartialNull marks a result whose null distribution came from a
	// cancelled run; NTrials records the completed count, not the
	// requested one.
	FlagPartialNull = "partial_null"
)

// Config parameterizes Evaluate.
//
// Fields:
//   - Tail           — alternative hypothesis (default TwoSided).
//   - AllowSmallNull — accept nulls below MinTrials, flagging the result
//     with FlagSmallSample instead of failing. Overriding the floor is a
//     deliberate, visible decision.
type Config struct {
	Tail           Tail
	AllowSmallNull bool
}

// TestResult is the immutable outcome of one significance computation.
// The JSON field names are the serialized report contract.
type TestResult struct {
	Statistic float64  `json:"statistic"`
	NullMean  float64  `json:"null_mean"`
	NullStd   float64  `json:"null_std"`
	ZScore    float64  `json:"z_score"`
	PValue    float64  `json:"p_value"`
	NTrials   int      `json:"n_trials"`
	Flags     []string `json:"flags,omitempty"`
}

// Flagged reports whether the result carries the given validity flag.
func (r TestResult) Flagged(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}

	return false
}

// Evaluate computes z-score and permutation p-value for one observed
// statistic against a null distribution.
//
// Implementation:
//   - Stage 1: validate sample count against MinTrials (or flag).
//   - Stage 2: population mean/std of the null; std==0 ⇒ z=0 + flag.
//   - Stage 3: count extreme samples per Tail; p = (count+1)/(N+1).
//
// Errors:
//   - ErrInsufficientSamples when len(null.Samples) < MinTrials and
//     cfg.AllowSmallNull is false (an empty null always fails).
//
// Complexity:
//   - Time O(N), Space O(1).
func Evaluate(observed float64, null *nullmodel.Distribution, cfg Config) (TestResult, error) {
	n := 0
	if null != nil {
		n = len(null.Samples)
	}
	if n == 0 {
		return TestResult{}, fmt.Errorf("Evaluate: 0 of %d trials: %w", minRequested(null), ErrInsufficientSamples)
	}

	var flags []string
	if n < MinTrials {
		if !cfg.AllowSmallNull {
			return TestResult{}, fmt.Errorf("Evaluate: %d < %d trials: %w", n, MinTrials, ErrInsufficientSamples)
		}
		flags = append(flags, FlagSmallSample)
	}
	if null.Partial {
		flags = append(flags, FlagPartialNull)
	}

	mean, std := stat.PopMeanStdDev(null.Samples, nil)

	z := 0.0
	if std > 0 {
		z = (observed - mean) / std
	} else {
		flags = append(flags, FlagDegenerateNull)
	}

	count := 0
	switch cfg.Tail {
	case Greater:
		for _, v := range null.Samples {
			if v >= observed {
				count++
			}
		}
	case Less:
		for _, v := range null.Samples {
			if v <= observed {
				count++
			}
		}
	default: // TwoSided
		dev := math.Abs(observed - mean)
		for _, v := range null.Samples {
			if math.Abs(v-mean) >= dev {
				count++
			}
		}
	}

	return TestResult{
		Statistic: observed,
		NullMean:  mean,
		NullStd:   std,
		ZScore:    z,
		PValue:    float64(count+1) / float64(n+1),
		NTrials:   n,
		Flags:     flags,
	}, nil
}

func minRequested(null *nullmodel.Distribution) int {
	if null == nil {
		return 0
	}

	return null.Requested
}
