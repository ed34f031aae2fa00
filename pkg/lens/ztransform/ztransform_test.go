package ztransform

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// offsetSineSignal is a slow sinusoid riding on a DC offset with additive
// white noise, sampled at the given rate.
func offsetSineSignal(n int, rate, period, offset, noise float64, seed int64) *timeseries.Signal {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		t := float64(i) / rate
		values[i] = offset + math.Sin(2*math.Pi*t/period) + noise*rng.NormFloat64()
	}
	sig, _ := timeseries.NewUniform(values, rate, 0)
	return sig
}

func TestKalmanReducesNoise(t *testing.T) {
	sig := offsetSineSignal(512, 10, 20, 5, 0.3, 1)

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{FilterType: FilterKalman})
	require.NoError(t, err)

	assert.Equal(t, FilterKalman, result.FilterType)
	require.Len(t, result.FilteredSignal, sig.Len())
	assert.Greater(t, result.NoiseReductionRatio, 0.0)
	assert.LessOrEqual(t, result.NoiseReductionRatio, 1.0)
	require.Len(t, result.Coefficients, 3)
	gain := result.Coefficients[0]
	assert.Greater(t, gain, 0.0)
	assert.Less(t, gain, 1.0)
}

func TestMovingAverageReducesNoise(t *testing.T) {
	sig := offsetSineSignal(512, 10, 20, 5, 0.3, 2)

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{FilterType: FilterMovAvg, CutoffFrequency: 1})
	require.NoError(t, err)

	assert.Equal(t, FilterMovAvg, result.FilterType)
	assert.Greater(t, result.NoiseReductionRatio, 0.0)

	// Box taps sum to one so DC passes untouched.
	tapSum := 0.0
	for _, c := range result.Coefficients {
		tapSum += c
	}
	assert.InDelta(t, 1.0, tapSum, 1e-12)
}

func TestFilteringPreservesMean(t *testing.T) {
	for _, filterType := range []string{FilterKalman, FilterMovAvg} {
		t.Run(filterType, func(t *testing.T) {
			sig := offsetSineSignal(1024, 10, 20, 5, 0.2, 3)

			lensUnderTest := NewLens(logging.NewNopLogger())
			result, err := lensUnderTest.Analyze(sig, Config{FilterType: filterType})
			require.NoError(t, err)

			assert.InDelta(t, 0.0, result.MeanShift, 0.1)
			assert.InDelta(t, sig.Mean(), stat.Mean(result.FilteredSignal, nil), 0.1)
		})
	}
}

func TestFilteredSignalTracksCleanWaveform(t *testing.T) {
	rate, period := 10.0, 20.0
	sig := offsetSineSignal(512, rate, period, 0, 0.4, 4)
	clean := make([]float64, sig.Len())
	for i := range clean {
		clean[i] = math.Sin(2 * math.Pi * float64(i) / rate / period)
	}

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{FilterType: FilterMovAvg, CutoffFrequency: 0.5})
	require.NoError(t, err)

	filteredErr := stat.Variance(residuals(result.FilteredSignal, clean), nil)
	noisyErr := stat.Variance(residuals(sig.Values, clean), nil)
	assert.Less(t, filteredErr, noisyErr, "filtering must move the signal toward the clean waveform")
}

func residuals(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func TestExplicitKalmanTuning(t *testing.T) {
	sig := offsetSineSignal(256, 10, 20, 0, 0.3, 5)

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{
		FilterType:       FilterKalman,
		ProcessNoise:     1e-4,
		MeasurementNoise: 0.09,
	})
	require.NoError(t, err)
	assert.Equal(t, 1e-4, result.Coefficients[1])
	assert.Equal(t, 0.09, result.Coefficients[2])
}

func TestCutoffAtNyquistRejected(t *testing.T) {
	sig := offsetSineSignal(64, 10, 4, 0, 0.1, 6)

	lensUnderTest := NewLens(logging.NewNopLogger())
	_, err := lensUnderTest.Analyze(sig, Config{CutoffFrequency: 5})
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
}

func TestNegativeNoiseRejected(t *testing.T) {
	sig := offsetSineSignal(64, 10, 4, 0, 0.1, 7)

	lensUnderTest := NewLens(logging.NewNopLogger())
	_, err := lensUnderTest.Analyze(sig, Config{ProcessNoise: -1})
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
}

func TestUnknownFilterTypeRejected(t *testing.T) {
	sig := offsetSineSignal(64, 10, 4, 0, 0.1, 8)

	lensUnderTest := NewLens(logging.NewNopLogger())
	_, err := lensUnderTest.Analyze(sig, Config{FilterType: "butterworth"})
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
}

func TestHighpassResidualIsolatesNoiseBand(t *testing.T) {
	// Eight full cycles over 256 samples at 10 Hz is a 0.3125 Hz tone,
	// exactly on an FFT bin below the 0.5 Hz cutoff.
	rate := 10.0
	values := make([]float64, 256)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * 8 * float64(i) / 256)
	}

	residual := highpassResidual(values, rate, 0.5)
	assert.Less(t, stat.Variance(residual, nil), 1e-6*stat.Variance(values, nil))
}
