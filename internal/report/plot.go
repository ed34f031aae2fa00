package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fourlens/fourlens/pkg/lens/fourier"
	"github.com/fourlens/fourlens/pkg/lens/wavelet"
)

// SavePeriodogram writes the Lomb-Scargle power spectrum as a PNG.
func SavePeriodogram(res *fourier.Result, path string) error {
	if res == nil || res.Spectrum == nil {
		return fmt.Errorf("no spectrum to plot")
	}

	p := plot.New()
	p.Title.Text = "Lomb-Scargle Periodogram"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Normalized power"

	points := make(plotter.XYs, len(res.Spectrum.Frequencies))
	for i := range points {
		points[i].X = res.Spectrum.Frequencies[i]
		points[i].Y = res.Spectrum.Power[i]
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("failed to build periodogram line: %w", err)
	}
	p.Add(line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save periodogram plot: %w", err)
	}
	return nil
}

// SaveEnergyBands writes the MRA per-band energy distribution as a PNG.
func SaveEnergyBands(res *wavelet.Result, path string) error {
	bands := res.EnergySummary()
	if len(bands) == 0 {
		return fmt.Errorf("no MRA components to plot")
	}

	p := plot.New()
	p.Title.Text = "MRA Band Energy"
	p.Y.Label.Text = "Energy (%)"

	values := make(plotter.Values, len(bands))
	names := make([]string, len(bands))
	for i, band := range bands {
		values[i] = band.EnergyPct
		names[i] = band.Band
	}

	bars, err := plotter.NewBarChart(values, vg.Points(25))
	if err != nil {
		return fmt.Errorf("failed to build energy bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save energy plot: %w", err)
	}
	return nil
}
