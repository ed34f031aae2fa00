package timeseries

import (
	"fmt"
	"math"
)

// Requirements describes what a lens needs from its input signal.
type Requirements struct {
	MinSamples    int  // minimum sample count, 4 if zero
	Uniform       bool // reject duplicate timestamps (uniform sampling assumed)
	NeedsVariance bool // reject zero-variance (flat) signals
}

// DefaultRequirements is the baseline contract shared by all lenses.
var DefaultRequirements = Requirements{MinSamples: 4}

// Validate checks a signal against the given requirements. It is a pure
// function: no logging, no mutation. Every lens invocation must pass through
// here first; lenses never compensate for invalid input themselves.
func Validate(s *Signal, req Requirements) error {
	minSamples := req.MinSamples
	if minSamples <= 0 {
		minSamples = DefaultRequirements.MinSamples
	}

	if s == nil || s.Len() == 0 {
		return NewAnalysisError(ErrCodeInvalidSignal, "signal is empty", nil)
	}
	if len(s.Timestamps) != len(s.Values) {
		return NewAnalysisError(ErrCodeInvalidSignal,
			fmt.Sprintf("timestamp/value length mismatch: %d vs %d", len(s.Timestamps), len(s.Values)), nil)
	}
	if s.Len() < minSamples {
		return NewAnalysisError(ErrCodeInvalidSignal,
			fmt.Sprintf("signal has %d samples, need at least %d", s.Len(), minSamples), nil)
	}

	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewAnalysisError(ErrCodeInvalidSignal,
				fmt.Sprintf("non-finite value at index %d", i), nil)
		}
	}

	distinct := 1
	for i := 1; i < len(s.Timestamps); i++ {
		if math.IsNaN(s.Timestamps[i]) || math.IsInf(s.Timestamps[i], 0) {
			return NewAnalysisError(ErrCodeInvalidSignal,
				fmt.Sprintf("non-finite timestamp at index %d", i), nil)
		}
		if s.Timestamps[i] < s.Timestamps[i-1] {
			return NewAnalysisError(ErrCodeInvalidSignal,
				fmt.Sprintf("timestamps not sorted at index %d", i), nil)
		}
		if s.Timestamps[i] == s.Timestamps[i-1] {
			if req.Uniform {
				return NewAnalysisError(ErrCodeInvalidSignal,
					fmt.Sprintf("duplicate timestamp at index %d with uniform sampling", i), nil)
			}
		} else {
			distinct++
		}
	}
	if distinct < 2 {
		return NewAnalysisError(ErrCodeInvalidSignal, "signal needs at least two distinct timestamps", nil)
	}

	if req.NeedsVariance && s.Variance() == 0 {
		return NewAnalysisError(ErrCodeInvalidSignal, "signal has zero variance", nil)
	}

	return nil
}
