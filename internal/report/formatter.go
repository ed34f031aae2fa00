package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fourlens/fourlens/pkg/lens"
)

// Formatter renders an analysis report for output.
type Formatter interface {
	Format(report *lens.Report) ([]byte, error)
}

// NewFormatter returns the formatter for a named output format. Unknown
// names fall back to JSON.
func NewFormatter(format string) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "table":
		return &TableFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(report *lens.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(report *lens.Report) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// TableFormatter renders a human-readable summary.
type TableFormatter struct{}

func (f *TableFormatter) Format(report *lens.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("FOUR-LENS ANALYSIS SUMMARY\n")
	b.WriteString("==========================\n")

	if r := report.Fourier; r != nil {
		b.WriteString("\nFourier\n-------\n")
		if r.Detected {
			fmt.Fprintf(&b, "Dominant period:   %.4g s\n", r.DominantPeriod)
			fmt.Fprintf(&b, "Peak power:        %.4g\n", r.Power)
			fmt.Fprintf(&b, "Amplitude:         %.4g\n", r.Amplitude)
			fmt.Fprintf(&b, "Phase:             %.4g rad\n", r.Phase)
			for i, h := range r.Harmonics {
				fmt.Fprintf(&b, "Harmonic %d:        period %.4g s, amplitude %.4g (%.1f%% power)\n",
					i+1, h.Period, h.Amplitude, 100*h.PowerFraction)
			}
		} else {
			fmt.Fprintf(&b, "No dominant period (%s)\n", r.Diagnostic)
		}
	}

	if r := report.Wavelet; r != nil {
		b.WriteString("\nWavelet\n-------\n")
		fmt.Fprintf(&b, "Wavelet used:      %s", r.WaveletUsed)
		if r.Substituted {
			fmt.Fprintf(&b, " (substituted for %s)", r.RequestedWavelet)
		}
		b.WriteString("\n")
		if r.SelectionScore > 0 {
			fmt.Fprintf(&b, "Selection score:   %.3f\n", r.SelectionScore)
		}
		fmt.Fprintf(&b, "Scales analyzed:   %d\n", len(r.Scales))
		if r.MRA != nil {
			fmt.Fprintf(&b, "MRA levels:        %d (%s)\n", r.MRA.Levels, r.MRA.Wavelet)
			fmt.Fprintf(&b, "Reconstruction:    %.3g relative RMS error\n", r.MRA.ReconstructionError)
			for _, band := range r.EnergySummary() {
				fmt.Fprintf(&b, "  %-14s %6.2f%% energy, RMS %.4g\n", band.Band, band.EnergyPct, band.RMS)
			}
		}
	}

	if r := report.Laplace; r != nil {
		b.WriteString("\nLaplace\n-------\n")
		if r.IsStable == nil {
			fmt.Fprintf(&b, "Stability:         unknown (%s)\n", r.Diagnostic)
		} else {
			verdict := "UNSTABLE"
			if *r.IsStable {
				verdict = "stable"
			}
			fmt.Fprintf(&b, "Stability:         %s (%s domain)\n", verdict, r.Domain)
			fmt.Fprintf(&b, "Margin:            %.4g\n", r.StabilityMargin)
			fmt.Fprintf(&b, "Poles:             %d (order %d model)\n", len(r.Poles), r.ModelOrder)
		}
	}

	if r := report.ZTransform; r != nil {
		b.WriteString("\nZ-Transform\n-----------\n")
		fmt.Fprintf(&b, "Filter:            %s\n", r.FilterType)
		fmt.Fprintf(&b, "Noise reduction:   %.1f%%\n", 100*r.NoiseReductionRatio)
		fmt.Fprintf(&b, "Mean shift:        %.3g\n", r.MeanShift)
	}

	for kind, msg := range report.Errors {
		fmt.Fprintf(&b, "\n%s lens failed: %s\n", kind, msg)
	}

	return []byte(b.String()), nil
}
