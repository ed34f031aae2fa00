package configs

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/fourlens/fourlens/pkg/lens"
	"github.com/fourlens/fourlens/pkg/lens/laplace"
	"github.com/fourlens/fourlens/pkg/lens/wavelet"
	"github.com/fourlens/fourlens/pkg/lens/ztransform"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// Analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`
}

// AnalysisConfig contains the engine settings
type AnalysisConfig struct {
	SampleRate         float64   `mapstructure:"sample_rate"`
	PeriodSearchRange  []float64 `mapstructure:"period_search_range"`
	DetectHarmonics    bool      `mapstructure:"detect_harmonics"`
	MaxHarmonics       int       `mapstructure:"max_harmonics"`
	HarmonicPowerFloor float64   `mapstructure:"harmonic_power_floor"`
	Wavelet            string    `mapstructure:"wavelet"`
	AutoSelectWavelet  bool      `mapstructure:"auto_select_wavelet"`
	EnableMRA          bool      `mapstructure:"enable_mra"`
	MRALevels          int       `mapstructure:"mra_levels"`
	DenoiseThreshold   float64   `mapstructure:"denoise_threshold"`
	StabilityDomain    string    `mapstructure:"stability_domain"`
	ModelOrder         int       `mapstructure:"model_order"`
	FilterType         string    `mapstructure:"filter_type"`
	ProcessNoise       float64   `mapstructure:"process_noise"`
	MeasurementNoise   float64   `mapstructure:"measurement_noise"`
	CutoffFrequency    float64   `mapstructure:"cutoff_frequency"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Precision       int  `mapstructure:"precision"`
	IncludeSpectrum bool `mapstructure:"include_spectrum"`
	Plots           bool `mapstructure:"plots"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Analysis.SampleRate < 0 {
		return fmt.Errorf("sample rate cannot be negative")
	}

	if r := config.Analysis.PeriodSearchRange; len(r) != 0 && len(r) != 2 {
		return fmt.Errorf("period search range needs exactly two values, got %d", len(r))
	}

	if config.Analysis.MRALevels < 0 {
		return fmt.Errorf("mra levels cannot be negative")
	}

	if d := config.Analysis.StabilityDomain; d != "" && d != laplace.DomainDiscrete && d != laplace.DomainContinuous {
		return fmt.Errorf("stability domain must be %q or %q", laplace.DomainDiscrete, laplace.DomainContinuous)
	}

	if f := config.Analysis.FilterType; f != "" && f != ztransform.FilterKalman && f != ztransform.FilterMovAvg {
		return fmt.Errorf("filter type must be %q or %q", ztransform.FilterKalman, ztransform.FilterMovAvg)
	}

	if w := config.Analysis.Wavelet; w != "" && !wavelet.IsContinuous(w) && !wavelet.IsOrthogonal(w) {
		return fmt.Errorf("unknown wavelet %q", w)
	}

	return nil
}

// LensConfig converts the application analysis section into the engine's
// per-call configuration.
func (c *Config) LensConfig() lens.Config {
	cfg := lens.Config{
		SampleRate:         c.Analysis.SampleRate,
		DetectHarmonics:    c.Analysis.DetectHarmonics,
		MaxHarmonics:       c.Analysis.MaxHarmonics,
		HarmonicPowerFloor: c.Analysis.HarmonicPowerFloor,
		Wavelet:            c.Analysis.Wavelet,
		AutoSelectWavelet:  c.Analysis.AutoSelectWavelet,
		EnableMRA:          c.Analysis.EnableMRA,
		MRALevels:          c.Analysis.MRALevels,
		DenoiseThreshold:   c.Analysis.DenoiseThreshold,
		StabilityDomain:    c.Analysis.StabilityDomain,
		ModelOrder:         c.Analysis.ModelOrder,
		FilterType:         c.Analysis.FilterType,
		ProcessNoise:       c.Analysis.ProcessNoise,
		MeasurementNoise:   c.Analysis.MeasurementNoise,
		CutoffFrequency:    c.Analysis.CutoffFrequency,
	}
	if len(c.Analysis.PeriodSearchRange) == 2 {
		cfg.PeriodRange = [2]float64{c.Analysis.PeriodSearchRange[0], c.Analysis.PeriodSearchRange[1]}
	}
	return cfg
}
