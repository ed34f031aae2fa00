package ztransform

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// Filter types.
const (
	FilterKalman = "kalman"
	FilterMovAvg = "movavg"
)

// Config holds the Z-transform lens parameters for one analysis call.
type Config struct {
	// FilterType selects the denoiser. Defaults to kalman.
	FilterType string

	// ProcessNoise and MeasurementNoise tune the Kalman filter. Zero
	// values are estimated from the signal itself.
	ProcessNoise     float64
	MeasurementNoise float64

	// CutoffFrequency (Hz) sizes the moving-average window and the
	// high-frequency band used for the noise-reduction ratio. Defaults to
	// a tenth of the sampling rate.
	CutoffFrequency float64
}

// Result holds the outcome of discrete filtering.
type Result struct {
	FilterType          string    `json:"filter_type"`
	FilteredSignal      []float64 `json:"filtered_signal"`
	NoiseReductionRatio float64   `json:"noise_reduction_ratio"` // in [0,1]
	Coefficients        []float64 `json:"filter_coefficients"`
	MeanShift           float64   `json:"mean_shift"`
	Diagnostic          string    `json:"diagnostic,omitempty"`
}

// Lens applies discrete-domain filtering for noise reduction.
type Lens struct {
	logger logging.Logger
}

// NewLens creates a Z-transform lens.
func NewLens(logger logging.Logger) *Lens {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Lens{
		logger: logger.WithFields(logging.Fields{"component": "ztransform_lens"}),
	}
}

// Requirements returns the validation contract for this lens.
func (l *Lens) Requirements() timeseries.Requirements {
	return timeseries.Requirements{MinSamples: 8}
}

// Analyze filters the signal and reports how much high-frequency noise the
// filter removed. A pure denoiser must not shift the signal mean; MeanShift
// reports the residual bias for the caller to check.
func (l *Lens) Analyze(sig *timeseries.Signal, cfg Config) (*Result, error) {
	if err := timeseries.Validate(sig, l.Requirements()); err != nil {
		return nil, err
	}

	rate := sig.SampleRate()
	if rate <= 0 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeInvalidSignal,
			"cannot infer sampling rate from timestamps", nil)
	}

	cutoff := cfg.CutoffFrequency
	if cutoff <= 0 {
		cutoff = rate / 10
	}
	if cutoff >= rate/2 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("cutoff frequency %g Hz at or above Nyquist %g Hz", cutoff, rate/2), nil)
	}
	if cfg.ProcessNoise < 0 || cfg.MeasurementNoise < 0 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			"noise estimates cannot be negative", nil)
	}

	filterType := cfg.FilterType
	if filterType == "" {
		filterType = FilterKalman
	}

	var (
		filtered []float64
		coeffs   []float64
	)
	switch filterType {
	case FilterKalman:
		filtered, coeffs = kalmanFilter(sig.Values, cfg.ProcessNoise, cfg.MeasurementNoise)
	case FilterMovAvg:
		filtered, coeffs = movingAverage(sig.Values, rate, cutoff)
	default:
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("unknown filter type %q", cfg.FilterType), nil)
	}

	ratio := noiseReduction(sig.Values, filtered, rate, cutoff)
	meanShift := stat.Mean(filtered, nil) - sig.Mean()

	l.logger.Debug("filtering complete", logging.Fields{
		"filter":          filterType,
		"noise_reduction": ratio,
		"mean_shift":      meanShift,
	})

	return &Result{
		FilterType:          filterType,
		FilteredSignal:      filtered,
		NoiseReductionRatio: ratio,
		Coefficients:        coeffs,
		MeanShift:           meanShift,
	}, nil
}

// kalmanFilter runs a scalar constant-level Kalman estimator. Unset noise
// parameters are derived from the signal: measurement noise from the
// first-difference variance, process noise as a small fraction of it.
func kalmanFilter(values []float64, processNoise, measurementNoise float64) (filtered, coeffs []float64) {
	if measurementNoise <= 0 {
		measurementNoise = diffVariance(values) / 2
		if measurementNoise <= 0 {
			measurementNoise = 1e-9
		}
	}
	if processNoise <= 0 {
		processNoise = measurementNoise / 100
	}

	filtered = make([]float64, len(values))
	estimate := values[0]
	covariance := measurementNoise
	gain := 0.0

	for i, z := range values {
		covariance += processNoise
		gain = covariance / (covariance + measurementNoise)
		estimate += gain * (z - estimate)
		covariance *= 1 - gain
		filtered[i] = estimate
	}

	// Steady-state gain plus the tuned noise levels describe the filter.
	return filtered, []float64{gain, processNoise, measurementNoise}
}

// movingAverage applies an odd-length FIR box filter sized so its first
// spectral null lands near the cutoff frequency. Window edges shrink so the
// output length matches the input and DC gain stays at one.
func movingAverage(values []float64, rate, cutoff float64) (filtered, coeffs []float64) {
	window := int(math.Round(rate / cutoff))
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	filtered = make([]float64, len(values))
	for i := range values {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(values) {
			hi = len(values) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		filtered[i] = sum / float64(hi-lo+1)
	}

	coeffs = make([]float64, window)
	for i := range coeffs {
		coeffs[i] = 1 / float64(window)
	}
	return filtered, coeffs
}

// noiseReduction compares the high-frequency residual variance before and
// after filtering: 1 - var(filtered residual)/var(original residual),
// clamped to [0,1].
func noiseReduction(original, filtered []float64, rate, cutoff float64) float64 {
	origResidual := highpassResidual(original, rate, cutoff)
	filtResidual := highpassResidual(filtered, rate, cutoff)

	origVar := stat.Variance(origResidual, nil)
	if origVar == 0 {
		return 0
	}

	ratio := 1 - stat.Variance(filtResidual, nil)/origVar
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// highpassResidual isolates content above the cutoff by zeroing the low
// spectrum bins and inverting the FFT.
func highpassResidual(values []float64, rate, cutoff float64) []float64 {
	n := len(values)
	spectrum := fft.FFTReal(values)

	for k := range spectrum {
		freq := float64(k) * rate / float64(n)
		if k > n/2 {
			freq = float64(n-k) * rate / float64(n)
		}
		if freq < cutoff {
			spectrum[k] = 0
		}
	}

	inverse := fft.IFFT(spectrum)
	residual := make([]float64, n)
	for i, v := range inverse {
		residual[i] = real(v)
	}
	return residual
}

// diffVariance is the variance of first differences, a quick estimate of
// twice the measurement noise for a slowly varying signal.
func diffVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	return stat.Variance(diffs, nil)
}
