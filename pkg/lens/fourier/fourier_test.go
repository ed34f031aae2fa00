package fourier

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

func sinusoid(n int, dt, period, amplitude, phase float64) *timeseries.Signal {
	timestamps := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		t := float64(i) * dt
		timestamps[i] = t
		values[i] = amplitude * math.Sin(2*math.Pi*t/period+phase)
	}
	return &timeseries.Signal{Timestamps: timestamps, Values: values}
}

func TestDominantPeriodRecovery(t *testing.T) {
	// 8-second period over a 64-second window: 8 full cycles.
	sig := sinusoid(256, 0.25, 8, 1.0, 0)

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{})
	require.NoError(t, err)

	require.True(t, result.Detected)
	assert.InEpsilon(t, 8.0, result.DominantPeriod, 0.05)
	assert.InDelta(t, 1.0, result.Amplitude, 0.1)
	assert.NotNil(t, result.Spectrum)
}

func TestUnitConsistencyAcrossTimeMagnitudes(t *testing.T) {
	// The same waveform expressed in different absolute time units must
	// report its period in the same unit as the input timestamps. A
	// mismatch between timestamp spacing and frequency-grid construction
	// would break the scaling relationship checked here.
	small := sinusoid(512, 0.5, 24, 1.0, 0)

	scale := 3600.0
	bigTimestamps := make([]float64, small.Len())
	for i, ts := range small.Timestamps {
		bigTimestamps[i] = ts * scale
	}
	big := &timeseries.Signal{Timestamps: bigTimestamps, Values: small.Values}

	lensUnderTest := NewLens(logging.NewNopLogger())

	smallResult, err := lensUnderTest.Analyze(small, Config{})
	require.NoError(t, err)
	bigResult, err := lensUnderTest.Analyze(big, Config{})
	require.NoError(t, err)

	require.True(t, smallResult.Detected)
	require.True(t, bigResult.Detected)
	assert.InEpsilon(t, 24.0, smallResult.DominantPeriod, 0.05)
	assert.InEpsilon(t, 24.0*scale, bigResult.DominantPeriod, 0.05)
}

func TestMultiHarmonicDetection(t *testing.T) {
	// Two-tone signal: 16-second and 5-second periods.
	n, dt := 320, 0.25
	timestamps := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		t := float64(i) * dt
		timestamps[i] = t
		values[i] = math.Sin(2*math.Pi*t/16) + 0.6*math.Sin(2*math.Pi*t/5)
	}
	sig := &timeseries.Signal{Timestamps: timestamps, Values: values}

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{
		DetectHarmonics: true,
		MaxHarmonics:    3,
	})
	require.NoError(t, err)

	require.True(t, result.Detected)
	require.GreaterOrEqual(t, len(result.Harmonics), 2)
	assert.LessOrEqual(t, len(result.Harmonics), 3)

	periods := make([]float64, len(result.Harmonics))
	for i, h := range result.Harmonics {
		periods[i] = h.Period
	}
	assertContainsPeriod(t, periods, 16.0)
	assertContainsPeriod(t, periods, 5.0)
}

func assertContainsPeriod(t *testing.T, periods []float64, want float64) {
	t.Helper()
	for _, p := range periods {
		if math.Abs(p-want)/want < 0.05 {
			return
		}
	}
	t.Errorf("no period within 5%% of %g in %v", want, periods)
}

func TestNoiseOnlyYieldsNoDetection(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 128)
	timestamps := make([]float64, 128)
	for i := range values {
		timestamps[i] = float64(i)
		values[i] = rng.NormFloat64()
	}
	sig := &timeseries.Signal{Timestamps: timestamps, Values: values}

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{})
	require.NoError(t, err)

	if !result.Detected {
		assert.Zero(t, result.DominantPeriod)
		assert.NotEmpty(t, result.Diagnostic)
	}
}

func TestIrregularSamplingRecovery(t *testing.T) {
	// Lomb-Scargle's reason to exist: gaps and jitter in the sampling.
	rng := rand.New(rand.NewSource(3))
	var timestamps, values []float64
	t0 := 0.0
	for t0 < 120 {
		timestamps = append(timestamps, t0)
		values = append(values, math.Sin(2*math.Pi*t0/12))
		t0 += 0.4 + 0.3*rng.Float64()
	}
	sig := &timeseries.Signal{Timestamps: timestamps, Values: values}

	lensUnderTest := NewLens(logging.NewNopLogger())
	result, err := lensUnderTest.Analyze(sig, Config{})
	require.NoError(t, err)

	require.True(t, result.Detected)
	assert.InEpsilon(t, 12.0, result.DominantPeriod, 0.05)
}

func TestPeriodRangeRestriction(t *testing.T) {
	sig := sinusoid(256, 0.25, 8, 1.0, 0)

	lensUnderTest := NewLens(logging.NewNopLogger())

	// Searching only long periods must not report the 8-second component.
	result, err := lensUnderTest.Analyze(sig, Config{PeriodRange: [2]float64{20, 60}})
	require.NoError(t, err)
	if result.Detected {
		assert.Greater(t, result.DominantPeriod, 20.0)
	}

	// An impossible range is a configuration error.
	_, err = lensUnderTest.Analyze(sig, Config{PeriodRange: [2]float64{100, 200}})
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
}

func TestFlatSignalRejected(t *testing.T) {
	sig, err := timeseries.NewUniform([]float64{3, 3, 3, 3, 3, 3}, 1, 0)
	require.NoError(t, err)

	lensUnderTest := NewLens(logging.NewNopLogger())
	_, err = lensUnderTest.Analyze(sig, Config{})
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeInvalidSignal))
}

func TestFitSinusoidRecoversPhaseAndAmplitude(t *testing.T) {
	n, dt, period := 200, 0.1, 4.0
	amplitude, phase := 2.5, 0.8

	timestamps := make([]float64, n)
	values := make([]float64, n)
	for i := range values {
		ts := float64(i) * dt
		timestamps[i] = ts
		values[i] = amplitude * math.Sin(2*math.Pi*ts/period+phase)
	}

	gotAmp, gotPhase, _ := fitSinusoid(timestamps, values, 1/period)
	assert.InDelta(t, amplitude, gotAmp, 1e-6)
	assert.InDelta(t, phase, gotPhase, 1e-6)
}
