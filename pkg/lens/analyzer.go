package lens

import (
	"fmt"
	"sync"

	"github.com/fourlens/fourlens/pkg/lens/fourier"
	"github.com/fourlens/fourlens/pkg/lens/laplace"
	"github.com/fourlens/fourlens/pkg/lens/wavelet"
	"github.com/fourlens/fourlens/pkg/lens/ztransform"
	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// Kind names one analysis lens.
type Kind string

const (
	KindFourier    Kind = "fourier"
	KindWavelet    Kind = "wavelet"
	KindLaplace    Kind = "laplace"
	KindZTransform Kind = "ztransform"
)

// Kinds lists all lenses in report order.
var Kinds = []Kind{KindFourier, KindWavelet, KindLaplace, KindZTransform}

// Report aggregates the outcome of running all four lenses against one
// signal. Each slot is either a result or an entry in Errors; the set of
// fields is closed so callers can switch over it exhaustively.
type Report struct {
	Fourier    *fourier.Result    `json:"fourier,omitempty"`
	Wavelet    *wavelet.Result    `json:"wavelet,omitempty"`
	Laplace    *laplace.Result    `json:"laplace,omitempty"`
	ZTransform *ztransform.Result `json:"ztransform,omitempty"`
	Errors     map[Kind]string    `json:"errors,omitempty"`
}

// SystemAnalyzer owns the four lens instances and applies validation and
// configuration defaults before dispatch. It holds no mutable state after
// construction; one analyzer may serve concurrent calls.
type SystemAnalyzer struct {
	defaults   Config
	fourier    *fourier.Lens
	wavelet    *wavelet.Lens
	laplace    *laplace.Lens
	ztransform *ztransform.Lens
	logger     logging.Logger
}

// NewSystemAnalyzer creates an analyzer with constructor-injected default
// configuration. Zero-valued fields in defaults fall back to DefaultConfig.
func NewSystemAnalyzer(defaults Config, logger logging.Logger) *SystemAnalyzer {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{"component": "system_analyzer"})

	return &SystemAnalyzer{
		defaults:   mergeDefaults(defaults),
		fourier:    fourier.NewLens(logger),
		wavelet:    wavelet.NewLens(logger),
		laplace:    laplace.NewLens(logger),
		ztransform: ztransform.NewLens(logger),
		logger:     logger,
	}
}

// Defaults returns the analyzer's default configuration.
func (a *SystemAnalyzer) Defaults() Config {
	return a.defaults
}

// AnalyzeFourier runs the Fourier lens with the analyzer defaults.
func (a *SystemAnalyzer) AnalyzeFourier(sig *timeseries.Signal) (*fourier.Result, error) {
	if err := a.precheck(sig, a.fourier.Requirements()); err != nil {
		return nil, err
	}
	return a.fourier.Analyze(sig, a.defaults.fourierConfig())
}

// AnalyzeWavelet runs the wavelet lens with the analyzer defaults.
func (a *SystemAnalyzer) AnalyzeWavelet(sig *timeseries.Signal) (*wavelet.Result, error) {
	if err := a.precheck(sig, a.wavelet.Requirements()); err != nil {
		return nil, err
	}
	return a.wavelet.Analyze(sig, a.defaults.waveletConfig())
}

// AnalyzeLaplace runs the Laplace lens with the analyzer defaults.
func (a *SystemAnalyzer) AnalyzeLaplace(sig *timeseries.Signal) (*laplace.Result, error) {
	if err := a.precheck(sig, a.laplace.Requirements()); err != nil {
		return nil, err
	}
	return a.laplace.Analyze(sig, a.defaults.laplaceConfig())
}

// AnalyzeZTransform runs the Z-transform lens with the analyzer defaults.
func (a *SystemAnalyzer) AnalyzeZTransform(sig *timeseries.Signal) (*ztransform.Result, error) {
	if err := a.precheck(sig, a.ztransform.Requirements()); err != nil {
		return nil, err
	}
	return a.ztransform.Analyze(sig, a.defaults.ztransformConfig())
}

// AnalyzeAll runs every lens against one validated signal. The lenses share
// no state, so they run concurrently; a failure in one lens is recorded in
// Report.Errors and never prevents the others from completing.
func (a *SystemAnalyzer) AnalyzeAll(sig *timeseries.Signal) (*Report, error) {
	if err := a.defaults.Validate(); err != nil {
		return nil, err
	}
	// Baseline validation up front so a structurally broken signal fails
	// the whole call; per-lens requirements are re-checked by each lens.
	if err := timeseries.Validate(sig, timeseries.DefaultRequirements); err != nil {
		return nil, err
	}

	report := &Report{Errors: make(map[Kind]string)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	record := func(kind Kind, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Errors[kind] = err.Error()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		res, err := a.fourier.Analyze(sig, a.defaults.fourierConfig())
		if err != nil {
			record(KindFourier, err)
			return
		}
		report.Fourier = res
	}()
	go func() {
		defer wg.Done()
		res, err := a.wavelet.Analyze(sig, a.defaults.waveletConfig())
		if err != nil {
			record(KindWavelet, err)
			return
		}
		report.Wavelet = res
	}()
	go func() {
		defer wg.Done()
		res, err := a.laplace.Analyze(sig, a.defaults.laplaceConfig())
		if err != nil {
			record(KindLaplace, err)
			return
		}
		report.Laplace = res
	}()
	go func() {
		defer wg.Done()
		res, err := a.ztransform.Analyze(sig, a.defaults.ztransformConfig())
		if err != nil {
			record(KindZTransform, err)
			return
		}
		report.ZTransform = res
	}()
	wg.Wait()

	if len(report.Errors) == 0 {
		report.Errors = nil
	}

	a.logger.Debug("aggregate analysis complete", logging.Fields{
		"samples": sig.Len(),
		"failed":  len(report.Errors),
	})

	return report, nil
}

// precheck applies configuration validation then signal validation, in that
// order, so configuration contradictions surface before any computation.
func (a *SystemAnalyzer) precheck(sig *timeseries.Signal, req timeseries.Requirements) error {
	if err := a.defaults.Validate(); err != nil {
		return err
	}
	if err := timeseries.Validate(sig, req); err != nil {
		return fmt.Errorf("signal validation failed: %w", err)
	}
	return nil
}

// mergeDefaults fills zero-valued fields from DefaultConfig.
func mergeDefaults(c Config) Config {
	base := DefaultConfig()

	if c.MaxHarmonics == 0 {
		c.MaxHarmonics = base.MaxHarmonics
	}
	if c.HarmonicPowerFloor == 0 {
		c.HarmonicPowerFloor = base.HarmonicPowerFloor
	}
	if c.Wavelet == "" {
		c.Wavelet = base.Wavelet
	}
	if c.MRALevels == 0 {
		c.MRALevels = base.MRALevels
	}
	if c.DenoiseThreshold == 0 {
		c.DenoiseThreshold = base.DenoiseThreshold
	}
	if c.StabilityDomain == "" {
		c.StabilityDomain = base.StabilityDomain
	}
	if c.ModelOrder == 0 {
		c.ModelOrder = base.ModelOrder
	}
	if c.FilterType == "" {
		c.FilterType = base.FilterType
	}
	return c
}
