package app

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fourlens/fourlens/configs"
	"github.com/fourlens/fourlens/internal/report"
	"github.com/fourlens/fourlens/pkg/lens"
	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// Options carries the CLI arguments for one analysis run.
type Options struct {
	InputPath  string
	Lenses     []string
	SampleRate float64

	EnableMRA       bool
	AutoSelect      bool
	DetectHarmonics bool

	OutputFile string
	PlotDir    string
}

// App handles the analysis application lifecycle: configuration, logging,
// signal loading, lens dispatch and output.
type App struct {
	opts     Options
	config   *configs.Config
	logger   logging.Logger
	analyzer *lens.SystemAnalyzer
}

// New loads and validates configuration, sets up logging and builds the
// analyzer with merged defaults.
func New(opts Options) (*App, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogging(config)

	cfg := config.LensConfig()
	cfg.EnableMRA = cfg.EnableMRA || opts.EnableMRA
	cfg.AutoSelectWavelet = cfg.AutoSelectWavelet || opts.AutoSelect
	cfg.DetectHarmonics = cfg.DetectHarmonics || opts.DetectHarmonics

	logger.Debug("analysis application initialized", logging.Fields{
		"input":         opts.InputPath,
		"output_format": config.OutputFormat,
		"lenses":        opts.Lenses,
	})

	return &App{
		opts:     opts,
		config:   config,
		logger:   logger,
		analyzer: lens.NewSystemAnalyzer(cfg, logger),
	}, nil
}

// Run executes the analysis pipeline end to end.
func (a *App) Run() error {
	sig, err := readSignalCSV(a.opts.InputPath, a.opts.SampleRate)
	if err != nil {
		return fmt.Errorf("failed to read signal: %w", err)
	}

	a.logger.Debug("signal loaded", logging.Fields{
		"samples":  sig.Len(),
		"duration": sig.Duration(),
	})

	rep, err := a.runLenses(sig)
	if err != nil {
		return err
	}

	if err := a.outputResults(rep); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if a.opts.PlotDir != "" {
		if err := writePlots(rep, a.opts.PlotDir); err != nil {
			return err
		}
	}

	return nil
}

// runLenses dispatches to the selected lenses, or all of them. Per-lens
// failures under explicit selection are collected the same way AnalyzeAll
// collects them.
func (a *App) runLenses(sig *timeseries.Signal) (*lens.Report, error) {
	if len(a.opts.Lenses) == 0 {
		return a.analyzer.AnalyzeAll(sig)
	}

	rep := &lens.Report{Errors: map[lens.Kind]string{}}
	for _, name := range a.opts.Lenses {
		kind := lens.Kind(strings.ToLower(name))
		var err error
		switch kind {
		case lens.KindFourier:
			rep.Fourier, err = a.analyzer.AnalyzeFourier(sig)
		case lens.KindWavelet:
			rep.Wavelet, err = a.analyzer.AnalyzeWavelet(sig)
		case lens.KindLaplace:
			rep.Laplace, err = a.analyzer.AnalyzeLaplace(sig)
		case lens.KindZTransform:
			rep.ZTransform, err = a.analyzer.AnalyzeZTransform(sig)
		default:
			return nil, fmt.Errorf("unknown lens %q", name)
		}
		if err != nil {
			rep.Errors[kind] = err.Error()
		}
	}
	if len(rep.Errors) == 0 {
		rep.Errors = nil
	}
	return rep, nil
}

// outputResults formats the report and writes it to the configured target.
func (a *App) outputResults(rep *lens.Report) error {
	formatter := report.NewFormatter(a.config.OutputFormat)
	data, err := formatter.Format(rep)
	if err != nil {
		return err
	}

	if a.opts.OutputFile != "" {
		return os.WriteFile(a.opts.OutputFile, data, 0644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func setupLogging(config *configs.Config) logging.Logger {
	if config.Verbose {
		return logging.NewLogger("debug")
	}
	return logging.NewLogger(config.LogLevel)
}

// readSignalCSV parses "timestamp,value" rows, or bare value rows when a
// sample rate is given.
func readSignalCSV(path string, sampleRate float64) (*timeseries.Signal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var timestamps, values []float64
	for i, row := range records {
		if len(row) == 0 {
			continue
		}

		first, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				// Header row
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if len(row) >= 2 {
			value, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			timestamps = append(timestamps, first)
			values = append(values, value)
		} else {
			values = append(values, first)
		}
	}

	if len(timestamps) == len(values) && len(timestamps) > 0 {
		return timeseries.New(timestamps, values)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("CSV has no timestamp column; provide --sample-rate")
	}
	return timeseries.NewUniform(values, sampleRate, 0)
}

func writePlots(rep *lens.Report, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	if rep.Fourier != nil && rep.Fourier.Spectrum != nil {
		if err := report.SavePeriodogram(rep.Fourier, filepath.Join(dir, "periodogram.png")); err != nil {
			return err
		}
	}
	if rep.Wavelet != nil && rep.Wavelet.MRA != nil {
		if err := report.SaveEnergyBands(rep.Wavelet, filepath.Join(dir, "mra_energy.png")); err != nil {
			return err
		}
	}
	return nil
}
