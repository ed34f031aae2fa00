package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Signal is an ordered sequence of (timestamp, value) samples. Timestamps are
// seconds, monotone non-decreasing, not required to be uniformly spaced. All
// frequency and period arithmetic downstream uses seconds and Hz; producers
// must convert before constructing a Signal.
//
// A Signal is read-only once built. Lenses copy the value slice before any
// in-place computation.
type Signal struct {
	Timestamps []float64 `json:"timestamps"`
	Values     []float64 `json:"values"`
}

// New creates a signal from parallel timestamp and value slices.
func New(timestamps, values []float64) (*Signal, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("timestamp/value length mismatch: %d vs %d", len(timestamps), len(values))
	}
	return &Signal{Timestamps: timestamps, Values: values}, nil
}

// NewUniform creates a uniformly sampled signal starting at start seconds.
func NewUniform(values []float64, sampleRate, start float64) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	timestamps := make([]float64, len(values))
	dt := 1.0 / sampleRate
	for i := range values {
		timestamps[i] = start + float64(i)*dt
	}
	return &Signal{Timestamps: timestamps, Values: values}, nil
}

// Len returns the number of samples.
func (s *Signal) Len() int {
	return len(s.Values)
}

// Duration returns the span between first and last timestamp in seconds.
func (s *Signal) Duration() float64 {
	if len(s.Timestamps) < 2 {
		return 0
	}
	return s.Timestamps[len(s.Timestamps)-1] - s.Timestamps[0]
}

// MinSpacing returns the smallest positive gap between consecutive timestamps.
func (s *Signal) MinSpacing() float64 {
	minGap := math.Inf(1)
	for i := 1; i < len(s.Timestamps); i++ {
		gap := s.Timestamps[i] - s.Timestamps[i-1]
		if gap > 0 && gap < minGap {
			minGap = gap
		}
	}
	if math.IsInf(minGap, 1) {
		return 0
	}
	return minGap
}

// SampleRate infers the sampling rate in Hz from the mean timestamp spacing.
func (s *Signal) SampleRate() float64 {
	d := s.Duration()
	if d <= 0 || len(s.Values) < 2 {
		return 0
	}
	return float64(len(s.Values)-1) / d
}

// Mean returns the arithmetic mean of the values.
func (s *Signal) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the population variance of the values.
func (s *Signal) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	mean := stat.Mean(s.Values, nil)
	sum := 0.0
	for _, v := range s.Values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(s.Values))
}

// RMS returns the root-mean-square of the values.
func (s *Signal) RMS() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Values {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(s.Values)))
}

// PeakToPeak returns max - min of the values.
func (s *Signal) PeakToPeak() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	lo, hi := s.Values[0], s.Values[0]
	for _, v := range s.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

// Detrended returns a copy of the values with the mean removed.
func (s *Signal) Detrended() []float64 {
	mean := s.Mean()
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v - mean
	}
	return out
}

// CopyValues returns a fresh copy of the value slice.
func (s *Signal) CopyValues() []float64 {
	out := make([]float64, len(s.Values))
	copy(out, s.Values)
	return out
}
