package wavelet

import (
	"fmt"
	"math"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

const (
	defaultWavelet          = Morlet
	defaultMRALevels        = 5
	defaultDenoiseThreshold = 0.5

	// Relative RMS bound for the perfect-reconstruction sanity check.
	reconstructionTolerance = 1e-3
)

// Config holds the wavelet lens parameters for one analysis call.
type Config struct {
	// Wavelet names the mother wavelet. Ignored when AutoSelect is set.
	Wavelet    string
	AutoSelect bool

	// EnableMRA switches on discrete decomposition, denoising and energy
	// accounting in addition to the continuous transform.
	EnableMRA bool
	MRALevels int

	// DenoiseThreshold scales denoising aggressiveness in [0,1];
	// 0.5 applies the plain universal threshold.
	DenoiseThreshold float64
}

// MRAResult holds a discrete multi-resolution decomposition. Component
// bands are index-aligned with the original signal and sum back to it.
type MRAResult struct {
	Wavelet             string      `json:"wavelet"`
	Levels              int         `json:"levels"`
	Approximation       []float64   `json:"approximation"`
	Details             [][]float64 `json:"details"` // Details[0] is the finest band
	DenoisedSignal      []float64   `json:"denoised_signal"`
	ReconstructionError float64     `json:"reconstruction_error"` // relative RMS
	NoiseSigma          float64     `json:"noise_sigma"`
	Threshold           float64     `json:"threshold"`
}

// BandEnergy summarizes one MRA component.
type BandEnergy struct {
	Band       string  `json:"band"`
	EnergyPct  float64 `json:"energy_pct"`
	RMS        float64 `json:"rms"`
	PeakToPeak float64 `json:"peak_to_peak"`
}

// Result holds the outcome of a wavelet analysis.
type Result struct {
	RequestedWavelet string           `json:"requested_wavelet"`
	WaveletUsed      string           `json:"wavelet_used"`
	Substituted      bool             `json:"substituted"`
	SelectionScore   float64          `json:"selection_score,omitempty"`
	Alternatives     []CandidateScore `json:"alternatives,omitempty"`
	Scales           []float64        `json:"scales"`      // seconds
	Frequencies      []float64        `json:"frequencies"` // Hz, per scale
	Magnitude        [][]float64      `json:"-"`           // scales x time coefficient magnitudes
	MRA              *MRAResult       `json:"mra,omitempty"`
	Diagnostic       string           `json:"diagnostic,omitempty"`
}

// Lens performs continuous time-frequency analysis with optional discrete
// Multi-Resolution Analysis.
type Lens struct {
	logger logging.Logger
}

// NewLens creates a wavelet lens.
func NewLens(logger logging.Logger) *Lens {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Lens{
		logger: logger.WithFields(logging.Fields{"component": "wavelet_lens"}),
	}
}

// Requirements returns the validation contract for this lens.
func (l *Lens) Requirements() timeseries.Requirements {
	return timeseries.Requirements{MinSamples: 8, NeedsVariance: true}
}

// Analyze runs the continuous transform (with auto-selection when asked)
// and, when enabled, the discrete MRA with denoising.
func (l *Lens) Analyze(sig *timeseries.Signal, cfg Config) (*Result, error) {
	if err := timeseries.Validate(sig, l.Requirements()); err != nil {
		return nil, err
	}

	rate := sig.SampleRate()
	if rate <= 0 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeInvalidSignal,
			"cannot infer sampling rate from timestamps", nil)
	}
	dt := 1.0 / rate

	requested := cfg.Wavelet
	if requested == "" {
		requested = defaultWavelet
	}
	if !cfg.AutoSelect && !IsContinuous(requested) && !IsOrthogonal(requested) {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("unknown wavelet %q", requested), nil)
	}

	values := sig.Detrended()
	scales := buildScales(len(values), dt)

	result := &Result{RequestedWavelet: requested, Scales: scales}

	var transform *cwtResult
	var err error
	if cfg.AutoSelect {
		transform, result.WaveletUsed, result.SelectionScore, result.Alternatives, err = l.selectWavelet(values, dt, scales)
		requested = result.WaveletUsed
		result.RequestedWavelet = result.WaveletUsed
	} else {
		mother := requested
		if !IsContinuous(mother) {
			// Orthogonal-only wavelets have no continuous spectrum here;
			// analyze with the default mother and keep the request for MRA.
			mother = defaultWavelet
			result.Diagnostic = fmt.Sprintf("continuous analysis uses %s for discrete wavelet %s", mother, requested)
		}
		transform, err = cwt(values, dt, scales, mother)
		result.WaveletUsed = mother
	}
	if err != nil {
		return nil, err
	}

	result.Magnitude = transform.magnitude
	result.Frequencies = scaleFrequencies(scales, result.WaveletUsed)

	if cfg.EnableMRA {
		mra, err := l.runMRA(sig, cfg, requested, result)
		if err != nil {
			return nil, err
		}
		result.MRA = mra
	}

	return result, nil
}

// selectWavelet scores every catalog mother and picks the best; catalog
// order breaks ties.
func (l *Lens) selectWavelet(values []float64, dt float64, scales []float64) (*cwtResult, string, float64, []CandidateScore, error) {
	var (
		bestTransform *cwtResult
		bestName      string
		bestScore     = math.Inf(-1)
		alternatives  []CandidateScore
	)

	for _, name := range ContinuousCatalog {
		transform, err := cwt(values, dt, scales, name)
		if err != nil {
			return nil, "", 0, nil, err
		}

		score := scoreTransform(transform)
		score.Wavelet = name
		score.combine()
		alternatives = append(alternatives, score)

		l.logger.Debug("scored candidate wavelet", logging.Fields{
			"wavelet": name,
			"score":   score.Score,
		})

		// Strict comparison keeps the earlier catalog entry on ties.
		if score.Score > bestScore {
			bestScore = score.Score
			bestName = name
			bestTransform = transform
		}
	}

	return bestTransform, bestName, bestScore, alternatives, nil
}

// runMRA performs the discrete decomposition with orthogonal substitution,
// denoising and the perfect-reconstruction check.
func (l *Lens) runMRA(sig *timeseries.Signal, cfg Config, requested string, result *Result) (*MRAResult, error) {
	orth, substituted, err := OrthogonalFor(requested)
	if err != nil {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration, err.Error(), err)
	}
	result.Substituted = substituted
	if substituted {
		result.WaveletUsed = orth
	}

	levels := cfg.MRALevels
	if levels <= 0 {
		levels = defaultMRALevels
	}
	if max := maxLevels(sig.Len(), orth); levels > max {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("mra_levels %d exceeds the %d supported by %d samples", levels, max, sig.Len()), nil)
	}

	dec, err := decompose(sig.Values, orth, levels)
	if err != nil {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeModelFitFailure, err.Error(), err)
	}

	approx, details := dec.bandSignals()

	// Perfect-reconstruction check: the bands must sum back to the input.
	recErr := reconstructionError(sig.Values, approx, details)
	if rms := sig.RMS(); rms > 0 && recErr > reconstructionTolerance {
		l.logger.Warn("reconstruction error above tolerance", logging.Fields{
			"wavelet":   orth,
			"rel_error": recErr,
		})
	}

	aggressiveness := cfg.DenoiseThreshold
	if aggressiveness <= 0 {
		aggressiveness = defaultDenoiseThreshold
	}
	denoised, sigma, threshold := dec.denoise(aggressiveness)

	l.logger.Debug("completed multi-resolution analysis", logging.Fields{
		"wavelet":     orth,
		"levels":      levels,
		"substituted": substituted,
		"rel_error":   recErr,
	})

	return &MRAResult{
		Wavelet:             orth,
		Levels:              levels,
		Approximation:       approx,
		Details:             details,
		DenoisedSignal:      denoised,
		ReconstructionError: recErr,
		NoiseSigma:          sigma,
		Threshold:           threshold,
	}, nil
}

// reconstructionError is the RMS difference between the original signal and
// the sum of all components, relative to the signal RMS.
func reconstructionError(original, approx []float64, details [][]float64) float64 {
	var diff2, orig2 float64
	for i, v := range original {
		sum := approx[i]
		for _, det := range details {
			sum += det[i]
		}
		d := v - sum
		diff2 += d * d
		orig2 += v * v
	}
	if orig2 == 0 {
		return 0
	}
	return math.Sqrt(diff2 / orig2)
}

// EnergySummary reports per-band energy share, RMS and peak-to-peak from the
// already-computed MRA components. It never recomputes the transform.
func (r *Result) EnergySummary() []BandEnergy {
	if r.MRA == nil {
		return nil
	}

	bands := make([]BandEnergy, 0, len(r.MRA.Details)+1)
	total := bandEnergy(r.MRA.Approximation)
	for _, det := range r.MRA.Details {
		total += bandEnergy(det)
	}

	bands = append(bands, bandStats("approximation", r.MRA.Approximation, total))
	for i, det := range r.MRA.Details {
		bands = append(bands, bandStats(fmt.Sprintf("detail_%d", i+1), det, total))
	}
	return bands
}

func bandEnergy(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return sum
}

func bandStats(name string, values []float64, totalEnergy float64) BandEnergy {
	energy := bandEnergy(values)
	pct := 0.0
	if totalEnergy > 0 {
		pct = 100 * energy / totalEnergy
	}

	rms := 0.0
	if len(values) > 0 {
		rms = math.Sqrt(energy / float64(len(values)))
	}

	lo, hi := 0.0, 0.0
	if len(values) > 0 {
		lo, hi = values[0], values[0]
		for _, v := range values[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	return BandEnergy{Band: name, EnergyPct: pct, RMS: rms, PeakToPeak: hi - lo}
}
