package laplace

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/fourlens/fourlens/pkg/logging"
	"github.com/fourlens/fourlens/pkg/timeseries"
)

// Stability domains.
const (
	DomainContinuous = "continuous"
	DomainDiscrete   = "discrete"
)

const defaultModelOrder = 4

// Config holds the Laplace lens parameters for one analysis call.
type Config struct {
	// Domain selects the stability boundary: unit circle for discrete,
	// imaginary axis for continuous. Defaults to discrete.
	Domain string

	// ModelOrder is the autoregressive model order p.
	ModelOrder int
}

// Pole is one root of the fitted model's characteristic polynomial.
type Pole struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
}

// Result holds the outcome of a stability analysis.
//
// IsStable is nil when model fitting did not converge; the diagnostic says
// why. A pole exactly on the stability boundary yields IsStable=false
// (marginal systems are never reported stable).
type Result struct {
	Domain          string    `json:"domain"`
	ModelOrder      int       `json:"model_order"`
	Coefficients    []float64 `json:"coefficients,omitempty"`
	Poles           []Pole    `json:"poles,omitempty"`
	StabilityMargin float64   `json:"stability_margin"`
	IsStable        *bool     `json:"is_stable"`
	Diagnostic      string    `json:"diagnostic,omitempty"`
}

// Lens classifies signal dynamics by fitting a linear autoregressive model
// and locating its poles.
type Lens struct {
	logger logging.Logger
}

// NewLens creates a Laplace lens.
func NewLens(logger logging.Logger) *Lens {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Lens{
		logger: logger.WithFields(logging.Fields{"component": "laplace_lens"}),
	}
}

// Requirements returns the validation contract for this lens.
func (l *Lens) Requirements() timeseries.Requirements {
	return timeseries.Requirements{MinSamples: 8}
}

// Analyze fits an AR(p) model and classifies stability from its pole
// locations. Fitting failures are absorbed into the result, never returned
// as an error, so that aggregate analysis can continue.
func (l *Lens) Analyze(sig *timeseries.Signal, cfg Config) (*Result, error) {
	if err := timeseries.Validate(sig, l.Requirements()); err != nil {
		return nil, err
	}

	domain := cfg.Domain
	if domain == "" {
		domain = DomainDiscrete
	}
	if domain != DomainDiscrete && domain != DomainContinuous {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("unknown stability domain %q", cfg.Domain), nil)
	}

	order := cfg.ModelOrder
	if order <= 0 {
		order = defaultModelOrder
	}
	if sig.Len() < 2*order+2 {
		return nil, timeseries.NewAnalysisError(timeseries.ErrCodeConfiguration,
			fmt.Sprintf("model order %d needs at least %d samples, have %d", order, 2*order+2, sig.Len()), nil)
	}

	result := &Result{Domain: domain, ModelOrder: order}

	coeffs, err := fitAR(sig.Detrended(), order)
	if err != nil {
		result.Diagnostic = fmt.Sprintf("%s: model fit did not converge: %v", timeseries.ErrCodeModelFitFailure, err)
		l.logger.Warn("AR fit failed", logging.Fields{"order": order, "error": err.Error()})
		return result, nil
	}
	result.Coefficients = coeffs

	roots, err := characteristicRoots(coeffs)
	if err != nil {
		result.Diagnostic = fmt.Sprintf("%s: pole extraction failed: %v", timeseries.ErrCodeModelFitFailure, err)
		l.logger.Warn("eigenvalue decomposition failed", logging.Fields{"order": order, "error": err.Error()})
		return result, nil
	}

	dt := 1.0 / sig.SampleRate()
	margin, poles := stabilityMargin(roots, domain, dt)
	stable := margin > 0

	result.Poles = poles
	result.StabilityMargin = margin
	result.IsStable = &stable

	l.logger.Debug("stability classified", logging.Fields{
		"domain": domain,
		"margin": margin,
		"stable": stable,
	})

	return result, nil
}

// fitAR estimates AR coefficients a with y[t] = sum_i a[i]*y[t-1-i] by least
// squares over all usable rows.
func fitAR(values []float64, order int) ([]float64, error) {
	rows := len(values) - order
	design := mat.NewDense(rows, order, nil)
	rhs := mat.NewVecDense(rows, nil)

	for t := 0; t < rows; t++ {
		for i := 0; i < order; i++ {
			design.Set(t, i, values[t+order-1-i])
		}
		rhs.SetVec(t, values[t+order])
	}

	var solution mat.VecDense
	if err := solution.SolveVec(design, rhs); err != nil {
		return nil, err
	}

	coeffs := make([]float64, order)
	for i := range coeffs {
		c := solution.AtVec(i)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("non-finite coefficient at lag %d", i+1)
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

// characteristicRoots finds the roots of z^p - a1*z^(p-1) - ... - ap as the
// eigenvalues of the companion matrix.
func characteristicRoots(coeffs []float64) ([]complex128, error) {
	p := len(coeffs)
	companion := mat.NewDense(p, p, nil)
	for i, c := range coeffs {
		companion.Set(0, i, c)
	}
	for i := 1; i < p; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil, fmt.Errorf("eigenvalue decomposition did not converge")
	}
	return eig.Values(nil), nil
}

// stabilityMargin computes the signed distance of the worst pole to the
// stability boundary. Discrete: 1 - max|z|. Continuous: -max Re(ln(z)/dt).
func stabilityMargin(roots []complex128, domain string, dt float64) (float64, []Pole) {
	poles := make([]Pole, len(roots))

	if domain == DomainDiscrete {
		maxMod := 0.0
		for i, z := range roots {
			poles[i] = Pole{Real: real(z), Imag: imag(z)}
			if m := cmplx.Abs(z); m > maxMod {
				maxMod = m
			}
		}
		return 1 - maxMod, poles
	}

	// Map discrete roots onto the s-plane. A root at the origin maps to
	// Re(s) = -inf, which is as stable as it gets.
	maxRe := math.Inf(-1)
	for i, z := range roots {
		var s complex128
		if z == 0 {
			s = complex(math.Inf(-1), 0)
		} else {
			s = cmplx.Log(z) / complex(dt, 0)
		}
		poles[i] = Pole{Real: real(s), Imag: imag(s)}
		if real(s) > maxRe {
			maxRe = real(s)
		}
	}
	return -maxRe, poles
}
