package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New([]float64{0, 1}, []float64{1})
	assert.Error(t, err)
}

func TestNewUniform(t *testing.T) {
	sig, err := NewUniform([]float64{1, 2, 3, 4, 5}, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 5, sig.Len())
	assert.Equal(t, 10.0, sig.Timestamps[0])
	assert.InDelta(t, 12.0, sig.Timestamps[4], 1e-12)
	assert.InDelta(t, 2.0, sig.SampleRate(), 1e-12)
	assert.InDelta(t, 2.0, sig.Duration(), 1e-12)

	_, err = NewUniform([]float64{1}, 0, 0)
	assert.Error(t, err)
}

func TestSignalStatistics(t *testing.T) {
	sig, err := New(
		[]float64{0, 1, 2, 3},
		[]float64{1, -1, 1, -1},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, sig.Mean(), 1e-12)
	assert.InDelta(t, 1.0, sig.Variance(), 1e-12)
	assert.InDelta(t, 1.0, sig.RMS(), 1e-12)
	assert.InDelta(t, 2.0, sig.PeakToPeak(), 1e-12)
}

func TestMinSpacingIgnoresDuplicates(t *testing.T) {
	sig := &Signal{
		Timestamps: []float64{0, 0.5, 0.5, 2},
		Values:     []float64{1, 2, 3, 4},
	}
	assert.InDelta(t, 0.5, sig.MinSpacing(), 1e-12)
}

func TestDetrendedDoesNotMutate(t *testing.T) {
	sig, err := New([]float64{0, 1, 2, 3}, []float64{2, 4, 6, 8})
	require.NoError(t, err)

	detrended := sig.Detrended()
	sum := 0.0
	for _, v := range detrended {
		sum += v
	}
	assert.InDelta(t, 0.0, sum, 1e-12)
	assert.Equal(t, []float64{2, 4, 6, 8}, sig.Values)
}

func TestIsCodeUnwraps(t *testing.T) {
	err := NewAnalysisError(ErrCodeConfiguration, "bad option", nil)
	wrapped := wrapError(err)
	assert.True(t, IsCode(wrapped, ErrCodeConfiguration))
	assert.False(t, IsCode(wrapped, ErrCodeInvalidSignal))
	assert.False(t, IsCode(nil, ErrCodeConfiguration))
}

func wrapError(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestSampleRateDegenerate(t *testing.T) {
	sig := &Signal{Timestamps: []float64{1, 1}, Values: []float64{0, 0}}
	assert.Equal(t, 0.0, sig.SampleRate())
	assert.Equal(t, 0.0, sig.MinSpacing())
	assert.False(t, math.IsNaN(sig.Variance()))
}
