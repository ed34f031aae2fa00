package lens

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourlens/fourlens/pkg/lens/fourier"
	"github.com/fourlens/fourlens/pkg/lens/laplace"
	"github.com/fourlens/fourlens/pkg/lens/wavelet"
	"github.com/fourlens/fourlens/pkg/lens/ztransform"
	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

func periodicSignal(n int, rate, period, noise float64, seed int64) *timeseries.Signal {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		t := float64(i) / rate
		values[i] = math.Sin(2*math.Pi*t/period) + noise*rng.NormFloat64()
	}
	sig, _ := timeseries.NewUniform(values, rate, 0)
	return sig
}

func TestAnalyzeAllSucceedsOnWellFormedSignal(t *testing.T) {
	sig := periodicSignal(256, 4, 8, 0.1, 1)

	analyzer := NewSystemAnalyzer(Config{EnableMRA: true, MRALevels: 3}, logging.NewNopLogger())
	report, err := analyzer.AnalyzeAll(sig)
	require.NoError(t, err)

	assert.Nil(t, report.Errors)
	require.NotNil(t, report.Fourier)
	require.NotNil(t, report.Wavelet)
	require.NotNil(t, report.Laplace)
	require.NotNil(t, report.ZTransform)

	assert.True(t, report.Fourier.Detected)
	assert.InEpsilon(t, 8.0, report.Fourier.DominantPeriod, 0.1)
	require.NotNil(t, report.Wavelet.MRA)
	require.NotNil(t, report.Laplace.IsStable)
	assert.Len(t, report.ZTransform.FilteredSignal, sig.Len())
}

func TestAnalyzeAllContainsPerLensFailures(t *testing.T) {
	// Six samples pass the baseline check and the Fourier minimum of four,
	// but fall short of the eight every other lens requires.
	sig := periodicSignal(6, 4, 1, 0.1, 2)

	analyzer := NewSystemAnalyzer(Config{}, logging.NewNopLogger())
	report, err := analyzer.AnalyzeAll(sig)
	require.NoError(t, err)

	assert.NotNil(t, report.Fourier)
	assert.Nil(t, report.Wavelet)
	assert.Nil(t, report.Laplace)
	assert.Nil(t, report.ZTransform)

	require.NotNil(t, report.Errors)
	assert.NotContains(t, report.Errors, KindFourier)
	assert.Contains(t, report.Errors, KindWavelet)
	assert.Contains(t, report.Errors, KindLaplace)
	assert.Contains(t, report.Errors, KindZTransform)
}

func TestAnalyzeAllFlatSignal(t *testing.T) {
	values := make([]float64, 64)
	for i := range values {
		values[i] = 3.5
	}
	sig, err := timeseries.NewUniform(values, 4, 0)
	require.NoError(t, err)

	analyzer := NewSystemAnalyzer(Config{}, logging.NewNopLogger())
	report, err := analyzer.AnalyzeAll(sig)
	require.NoError(t, err)

	// Fourier and wavelet require variance; laplace and ztransform run and
	// degrade gracefully instead.
	require.NotNil(t, report.Errors)
	assert.Contains(t, report.Errors, KindFourier)
	assert.Contains(t, report.Errors, KindWavelet)
	require.NotNil(t, report.Laplace)
	require.NotNil(t, report.ZTransform)
}

func TestAnalyzeAllRejectsBrokenSignal(t *testing.T) {
	sig := &timeseries.Signal{
		Timestamps: []float64{0, 1, 2},
		Values:     []float64{1, math.NaN(), 3},
	}

	analyzer := NewSystemAnalyzer(Config{}, logging.NewNopLogger())
	_, err := analyzer.AnalyzeAll(sig)
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeInvalidSignal))
}

func TestAnalyzeAllRejectsBadConfiguration(t *testing.T) {
	sig := periodicSignal(64, 4, 8, 0.1, 3)

	analyzer := NewSystemAnalyzer(Config{PeriodRange: [2]float64{50, 10}}, logging.NewNopLogger())
	_, err := analyzer.AnalyzeAll(sig)
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
}

func TestTypedLensEntryPoints(t *testing.T) {
	sig := periodicSignal(256, 4, 8, 0.1, 4)
	analyzer := NewSystemAnalyzer(Config{EnableMRA: true, MRALevels: 3}, logging.NewNopLogger())

	fourierResult, err := analyzer.AnalyzeFourier(sig)
	require.NoError(t, err)
	assert.True(t, fourierResult.Detected)

	waveletResult, err := analyzer.AnalyzeWavelet(sig)
	require.NoError(t, err)
	assert.Equal(t, wavelet.Morlet, waveletResult.RequestedWavelet)

	laplaceResult, err := analyzer.AnalyzeLaplace(sig)
	require.NoError(t, err)
	assert.Equal(t, laplace.DomainDiscrete, laplaceResult.Domain)

	ztResult, err := analyzer.AnalyzeZTransform(sig)
	require.NoError(t, err)
	assert.Equal(t, ztransform.FilterKalman, ztResult.FilterType)
}

func TestTypedEntryPointRejectsShortSignal(t *testing.T) {
	sig := periodicSignal(6, 4, 1, 0.1, 5)
	analyzer := NewSystemAnalyzer(Config{}, logging.NewNopLogger())

	_, err := analyzer.AnalyzeWavelet(sig)
	require.Error(t, err)
	assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeInvalidSignal),
		"wrapped validation errors must keep their code")
}

func TestDefaultsMerging(t *testing.T) {
	analyzer := NewSystemAnalyzer(Config{ModelOrder: 2}, logging.NewNopLogger())
	defaults := analyzer.Defaults()

	assert.Equal(t, 2, defaults.ModelOrder)
	assert.Equal(t, 3, defaults.MaxHarmonics)
	assert.Equal(t, wavelet.Morlet, defaults.Wavelet)
	assert.Equal(t, 5, defaults.MRALevels)
	assert.Equal(t, laplace.DomainDiscrete, defaults.StabilityDomain)
	assert.Equal(t, ztransform.FilterKalman, defaults.FilterType)
}

func TestConfigValidateTable(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative sample rate", Config{SampleRate: -1}},
		{"inverted period range", Config{PeriodRange: [2]float64{10, 2}}},
		{"unknown wavelet", Config{Wavelet: "ricker5000"}},
		{"threshold above one", Config{DenoiseThreshold: 1.5}},
		{"unknown domain", Config{StabilityDomain: "hybrid"}},
		{"unknown filter", Config{FilterType: "chebyshev"}},
		{"negative cutoff", Config{CutoffFrequency: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, timeseries.IsCode(err, timeseries.ErrCodeConfiguration))
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestFourierBridgeCarriesOptions(t *testing.T) {
	cfg := Config{
		PeriodRange:     [2]float64{4, 32},
		DetectHarmonics: true,
		MaxHarmonics:    5,
	}
	fc := cfg.fourierConfig()
	assert.Equal(t, fourier.Config{
		PeriodRange:     [2]float64{4, 32},
		DetectHarmonics: true,
		MaxHarmonics:    5,
	}, fc)
}
