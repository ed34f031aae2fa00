package configs

import (
	"github.com/spf13/viper"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", "info")
	}
	if !v.IsSet("output_format") {
		v.SetDefault("output_format", "table")
	}

	// Analysis defaults
	if !v.IsSet("analysis.max_harmonics") {
		v.SetDefault("analysis.max_harmonics", 3)
	}
	if !v.IsSet("analysis.harmonic_power_floor") {
		v.SetDefault("analysis.harmonic_power_floor", 0.05)
	}
	if !v.IsSet("analysis.wavelet") {
		v.SetDefault("analysis.wavelet", "morlet")
	}
	if !v.IsSet("analysis.mra_levels") {
		v.SetDefault("analysis.mra_levels", 5)
	}
	if !v.IsSet("analysis.denoise_threshold") {
		v.SetDefault("analysis.denoise_threshold", 0.5)
	}
	if !v.IsSet("analysis.stability_domain") {
		v.SetDefault("analysis.stability_domain", "discrete")
	}
	if !v.IsSet("analysis.model_order") {
		v.SetDefault("analysis.model_order", 4)
	}
	if !v.IsSet("analysis.filter_type") {
		v.SetDefault("analysis.filter_type", "kalman")
	}

	// Output defaults
	if !v.IsSet("output.precision") {
		v.SetDefault("output.precision", 4)
	}
	if !v.IsSet("output.include_spectrum") {
		v.SetDefault("output.include_spectrum", false)
	}
}
