package fourier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

const (
	defaultOversample   = 10
	defaultMaxHarmonics = 3
	defaultPowerFloor   = 0.05

	// Peaks below noiseFloorFactor times the median spectrum power are
	// treated as noise and reported as "no period detected".
	noiseFloorFactor = 10.0
)

// Config holds the Fourier lens parameters for one analysis call.
type Config struct {
	// PeriodRange bounds the period search in seconds {min, max}. Zero
	// values fall back to the Nyquist-consistent floor (twice the minimum
	// sample spacing) and the signal duration.
	PeriodRange [2]float64

	DetectHarmonics bool
	MaxHarmonics    int

	// HarmonicPowerFloor stops harmonic extraction once the strongest
	// remaining component carries less than this fraction of the original
	// signal variance.
	HarmonicPowerFloor float64

	// Oversample controls frequency grid density relative to 1/duration.
	Oversample int
}

// Harmonic is a single extracted sinusoidal component.
type Harmonic struct {
	Period        float64 `json:"period"`    // seconds
	Frequency     float64 `json:"frequency"` // Hz
	Amplitude     float64 `json:"amplitude"`
	Phase         float64 `json:"phase"` // radians
	PowerFraction float64 `json:"power_fraction"`
}

// Result holds the outcome of a Fourier analysis.
type Result struct {
	Detected       bool         `json:"detected"`
	DominantPeriod float64      `json:"dominant_period"` // seconds, 0 when not detected
	Power          float64      `json:"power"`           // normalized peak power
	Amplitude      float64      `json:"amplitude"`
	Phase          float64      `json:"phase"`
	Harmonics      []Harmonic   `json:"harmonics,omitempty"`
	HarmonicPower  float64      `json:"harmonic_power"` // variance fraction captured
	Spectrum       *Periodogram `json:"spectrum,omitempty"`
	Diagnostic     string       `json:"diagnostic,omitempty"`
}

// Lens locates dominant periodicities with a Lomb-Scargle periodogram, which
// tolerates the irregular sampling typical of biological series.
type Lens struct {
	logger logging.Logger
}

// NewLens creates a Fourier lens.
func NewLens(logger logging.Logger) *Lens {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Lens{
		logger: logger.WithFields(logging.Fields{"component": "fourier_lens"}),
	}
}

// Requirements returns the validation contract for this lens.
func (l *Lens) Requirements() timeseries.Requirements {
	return timeseries.Requirements{MinSamples: 4, NeedsVariance: true}
}

// Analyze computes the periodogram and, when configured, iteratively extracts
// multiple harmonics from the residual signal.
func (l *Lens) Analyze(sig *timeseries.Signal, cfg Config) (*Result, error) {
	if err := timeseries.Validate(sig, l.Requirements()); err != nil {
		return nil, err
	}

	fMin, fMax, err := l.frequencyBounds(sig, cfg)
	if err != nil {
		return nil, err
	}

	freqs := frequencyGrid(fMin, fMax, sig.Duration(), cfg.Oversample)
	if len(freqs) == 0 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("empty frequency grid for period range [%g, %g]", cfg.PeriodRange[0], cfg.PeriodRange[1]), nil)
	}

	l.logger.Debug("computing Lomb-Scargle periodogram", logging.Fields{
		"samples":   sig.Len(),
		"freq_bins": len(freqs),
		"f_min":     fMin,
		"f_max":     fMax,
	})

	power := lombScargle(sig.Timestamps, sig.Values, freqs)
	result := &Result{Spectrum: &Periodogram{Frequencies: freqs, Power: power}}

	idx := peakIndex(power)
	floor := noiseFloorFactor * medianPower(power)
	if power[idx] <= floor || power[idx] == 0 {
		result.Diagnostic = "no spectral peak above noise floor"
		l.logger.Debug("no dominant period detected", logging.Fields{
			"peak_power":  power[idx],
			"noise_floor": floor,
		})
		return result, nil
	}

	peakFreq := refinePeak(freqs, power, idx)
	amp, phase, _ := fitSinusoid(sig.Timestamps, sig.Detrended(), peakFreq)

	result.Detected = true
	result.DominantPeriod = 1.0 / peakFreq
	result.Power = power[idx]
	result.Amplitude = amp
	result.Phase = phase

	if cfg.DetectHarmonics {
		result.Harmonics, result.HarmonicPower = l.extractHarmonics(sig, cfg, fMin, fMax)
	}

	return result, nil
}

// frequencyBounds derives the search band in Hz from config and signal
// geometry. Periods at or beyond the signal duration, or at or below twice
// the minimum sample spacing, are rejected.
func (l *Lens) frequencyBounds(sig *timeseries.Signal, cfg Config) (float64, float64, error) {
	duration := sig.Duration()
	minSpacing := sig.MinSpacing()
	if duration <= 0 || minSpacing <= 0 {
		return 0, 0, timeseries.NewAnalysisError(timeseries.ErrCodeInvalidSignal,
			"signal has no usable time extent", nil)
	}

	minPeriod := 2 * minSpacing
	maxPeriod := duration

	if cfg.PeriodRange[0] > 0 && cfg.PeriodRange[0] > minPeriod {
		minPeriod = cfg.PeriodRange[0]
	}
	if cfg.PeriodRange[1] > 0 && cfg.PeriodRange[1] < maxPeriod {
		maxPeriod = cfg.PeriodRange[1]
	}
	if minPeriod >= maxPeriod {
		return 0, 0, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("period range [%g, %g] leaves no searchable band", minPeriod, maxPeriod), nil)
	}

	return 1.0 / maxPeriod, 1.0 / minPeriod, nil
}

// extractHarmonics repeatedly fits and subtracts the strongest sinusoid from
// the working residual until the remaining component falls below the power
// floor or the maximum harmonic count is reached.
func (l *Lens) extractHarmonics(sig *timeseries.Signal, cfg Config, fMin, fMax float64) ([]Harmonic, float64) {
	maxHarmonics := cfg.MaxHarmonics
	if maxHarmonics <= 0 {
		maxHarmonics = defaultMaxHarmonics
	}
	powerFloor := cfg.HarmonicPowerFloor
	if powerFloor <= 0 {
		powerFloor = defaultPowerFloor
	}

	totalVariance := sig.Variance()
	if totalVariance == 0 {
		return nil, 0
	}

	residual := sig.Detrended()
	freqs := frequencyGrid(fMin, fMax, sig.Duration(), cfg.Oversample)
	harmonics := make([]Harmonic, 0, maxHarmonics)
	captured := 0.0

	for len(harmonics) < maxHarmonics {
		power := lombScargle(sig.Timestamps, residual, freqs)
		idx := peakIndex(power)
		if power[idx] <= noiseFloorFactor*medianPower(power) {
			break
		}

		freq := refinePeak(freqs, power, idx)
		amp, phase, coeffs := fitSinusoid(sig.Timestamps, residual, freq)

		fraction := (amp * amp / 2) / totalVariance
		if fraction < powerFloor {
			break
		}

		harmonics = append(harmonics, Harmonic{
			Period:        1.0 / freq,
			Frequency:     freq,
			Amplitude:     amp,
			Phase:         phase,
			PowerFraction: fraction,
		})
		captured += fraction

		omega := 2 * math.Pi * freq
		for i, t := range sig.Timestamps {
			residual[i] -= coeffs[0]*math.Sin(omega*t) + coeffs[1]*math.Cos(omega*t)
		}

		l.logger.Debug("extracted harmonic", logging.Fields{
			"period":         1.0 / freq,
			"amplitude":      amp,
			"power_fraction": fraction,
		})
	}

	return harmonics, captured
}

// fitSinusoid solves the least-squares fit y ~ a*sin(wt) + b*cos(wt) and
// returns amplitude sqrt(a^2+b^2), phase atan2(b, a) and the raw {a, b}.
func fitSinusoid(t, y []float64, freq float64) (amplitude, phase float64, coeffs [2]float64) {
	omega := 2 * math.Pi * freq

	design := mat.NewDense(len(t), 2, nil)
	rhs := mat.NewVecDense(len(t), nil)
	for i, ti := range t {
		design.Set(i, 0, math.Sin(omega*ti))
		design.Set(i, 1, math.Cos(omega*ti))
		rhs.SetVec(i, y[i])
	}

	var solution mat.VecDense
	if err := solution.SolveVec(design, rhs); err != nil {
		return 0, 0, coeffs
	}

	a, b := solution.AtVec(0), solution.AtVec(1)
	coeffs = [2]float64{a, b}
	return math.Hypot(a, b), math.Atan2(b, a), coeffs
}
