package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fourlens/fourlens/internal/app"
)

var (
	analyzeLenses     []string
	analyzeSampleRate float64
	analyzeMRA        bool
	analyzeAutoSelect bool
	analyzeHarmonics  bool
	analyzeOutputFile string
	analyzePlotDir    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <csv-file>",
	Short: "Run lens analysis against a CSV time series",
	Long: `Analyze a time series stored as CSV with one sample per row.

Rows are either "timestamp,value" pairs (timestamps in seconds) or bare
values, in which case --sample-rate supplies uniform timing.

Examples:
  # All four lenses with defaults
  fourlens analyze metrics.csv

  # Periodicity only, with harmonic decomposition
  fourlens analyze --lens fourier --harmonics expression.csv

  # Wavelet MRA with automatic mother selection, plots on the side
  fourlens analyze --lens wavelet --mra --auto-select --plot-dir out/ signal.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringSliceVar(&analyzeLenses, "lens", nil,
		"lenses to run (fourier, wavelet, laplace, ztransform; default all)")
	analyzeCmd.Flags().Float64Var(&analyzeSampleRate, "sample-rate", 0,
		"sampling rate in Hz for CSVs without timestamps")
	analyzeCmd.Flags().BoolVar(&analyzeMRA, "mra", false,
		"enable multi-resolution analysis")
	analyzeCmd.Flags().BoolVar(&analyzeAutoSelect, "auto-select", false,
		"auto-select the mother wavelet")
	analyzeCmd.Flags().BoolVar(&analyzeHarmonics, "harmonics", false,
		"extract multiple harmonics")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "output-file", "f", "",
		"write results to file instead of stdout")
	analyzeCmd.Flags().StringVar(&analyzePlotDir, "plot-dir", "",
		"directory for periodogram and MRA energy plots")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	application, err := app.New(app.Options{
		InputPath:       args[0],
		Lenses:          analyzeLenses,
		SampleRate:      analyzeSampleRate,
		EnableMRA:       analyzeMRA,
		AutoSelect:      analyzeAutoSelect,
		DetectHarmonics: analyzeHarmonics,
		OutputFile:      analyzeOutputFile,
		PlotDir:         analyzePlotDir,
	})
	if err != nil {
		return err
	}
	return application.Run()
}
