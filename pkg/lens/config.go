package lens

import (
	"fmt"

	"github.com/fourlens/fourlens/pkg/lens/fourier"
	"github.com/fourlens/fourlens/pkg/lens/laplace"
	"github.com/fourlens/fourlens/pkg/lens/wavelet"
	"github.com/fourlens/fourlens/pkg/lens/ztransform"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// Config carries every recognized analysis option for one call. It is
// immutable for the duration of the call; the zero value of any field falls
// back to the engine default.
type Config struct {
	// SampleRate is a hint in Hz for producers building signals from raw
	// value sequences. Lenses themselves infer timing from timestamps.
	SampleRate float64 `json:"sample_rate"`

	// Fourier
	PeriodRange        [2]float64 `json:"period_search_range"` // seconds {min, max}
	DetectHarmonics    bool       `json:"detect_harmonics"`
	MaxHarmonics       int        `json:"max_harmonics"`
	HarmonicPowerFloor float64    `json:"harmonic_power_floor"`

	// Wavelet
	Wavelet           string  `json:"wavelet"`
	AutoSelectWavelet bool    `json:"auto_select_wavelet"`
	EnableMRA         bool    `json:"enable_mra"`
	MRALevels         int     `json:"mra_levels"`
	DenoiseThreshold  float64 `json:"denoise_threshold"`

	// Laplace
	StabilityDomain string `json:"stability_domain"` // continuous | discrete
	ModelOrder      int    `json:"model_order"`

	// Z-transform
	FilterType       string  `json:"filter_type"` // kalman | movavg
	ProcessNoise     float64 `json:"process_noise"`
	MeasurementNoise float64 `json:"measurement_noise"`
	CutoffFrequency  float64 `json:"cutoff_frequency"` // Hz
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxHarmonics:       3,
		HarmonicPowerFloor: 0.05,
		Wavelet:            wavelet.Morlet,
		MRALevels:          5,
		DenoiseThreshold:   0.5,
		StabilityDomain:    laplace.DomainDiscrete,
		ModelOrder:         4,
		FilterType:         ztransform.FilterKalman,
	}
}

// Validate rejects contradictory option combinations before any computation
// begins. Signal-dependent limits (such as decomposition depth against
// signal length) are checked by the lens that owns them.
func (c Config) Validate() error {
	fail := func(msg string) error {
		return timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration, msg, nil)
	}

	if c.SampleRate < 0 {
		return fail("sampling rate cannot be negative")
	}
	if c.PeriodRange[0] < 0 || c.PeriodRange[1] < 0 {
		return fail("period search range cannot be negative")
	}
	if c.PeriodRange[0] > 0 && c.PeriodRange[1] > 0 && c.PeriodRange[0] >= c.PeriodRange[1] {
		return fail(fmt.Sprintf("period search range [%g, %g] is inverted", c.PeriodRange[0], c.PeriodRange[1]))
	}
	if c.MaxHarmonics < 0 {
		return fail("max_harmonics cannot be negative")
	}
	if c.HarmonicPowerFloor < 0 || c.HarmonicPowerFloor > 1 {
		return fail("harmonic power floor must be in [0,1]")
	}
	if c.Wavelet != "" && !wavelet.IsContinuous(c.Wavelet) && !wavelet.IsOrthogonal(c.Wavelet) {
		return fail(fmt.Sprintf("unknown wavelet %q", c.Wavelet))
	}
	if c.MRALevels < 0 {
		return fail("mra_levels cannot be negative")
	}
	if c.DenoiseThreshold < 0 || c.DenoiseThreshold > 1 {
		return fail("denoise threshold must be in [0,1]")
	}
	if d := c.StabilityDomain; d != "" && d != laplace.DomainDiscrete && d != laplace.DomainContinuous {
		return fail(fmt.Sprintf("unknown stability domain %q", d))
	}
	if c.ModelOrder < 0 {
		return fail("model order cannot be negative")
	}
	if f := c.FilterType; f != "" && f != ztransform.FilterKalman && f != ztransform.FilterMovAvg {
		return fail(fmt.Sprintf("unknown filter type %q", f))
	}
	if c.ProcessNoise < 0 || c.MeasurementNoise < 0 {
		return fail("noise estimates cannot be negative")
	}
	if c.CutoffFrequency < 0 {
		return fail("cutoff frequency cannot be negative")
	}
	return nil
}

func (c Config) fourierConfig() fourier.Config {
	return fourier.Config{
		PeriodRange:        c.PeriodRange,
		DetectHarmonics:    c.DetectHarmonics,
		MaxHarmonics:       c.MaxHarmonics,
		HarmonicPowerFloor: c.HarmonicPowerFloor,
	}
}

func (c Config) waveletConfig() wavelet.Config {
	return wavelet.Config{
		Wavelet:          c.Wavelet,
		AutoSelect:       c.AutoSelectWavelet,
		EnableMRA:        c.EnableMRA,
		MRALevels:        c.MRALevels,
		DenoiseThreshold: c.DenoiseThreshold,
	}
}

func (c Config) laplaceConfig() laplace.Config {
	return laplace.Config{
		Domain:     c.StabilityDomain,
		ModelOrder: c.ModelOrder,
	}
}

func (c Config) ztransformConfig() ztransform.Config {
	return ztransform.Config{
		FilterType:       c.FilterType,
		ProcessNoise:     c.ProcessNoise,
		MeasurementNoise: c.MeasurementNoise,
		CutoffFrequency:  c.CutoffFrequency,
	}
}
