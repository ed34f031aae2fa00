package wavelet

import (
	"fmt"
	"math"
)

// Continuous mother wavelet names. Catalog order is also the fixed preference
// order used to break auto-selection ties.
const (
	Morlet     = "morlet"
	MexicanHat = "mexican_hat"
	Paul       = "paul"
)

// Orthogonal discrete wavelet names, used for Multi-Resolution Analysis.
const (
	Haar = "haar"
	DB2  = "db2"
	DB4  = "db4"
	Sym4 = "sym4"
)

// ContinuousCatalog lists the candidate mothers for auto-selection, in
// preference order.
var ContinuousCatalog = []string{Morlet, MexicanHat, Paul}

// morletOmega0 is the Morlet center frequency. 6 keeps the admissibility
// correction negligible.
const morletOmega0 = 6.0

// paulOrder is the order of the Paul wavelet.
const paulOrder = 4

// fourierSpectrum evaluates the Fourier transform of the named mother wavelet
// at angular frequency w (for unit scale). Analytic wavelets are zero for
// w <= 0.
func fourierSpectrum(name string, w float64) (float64, error) {
	switch name {
	case Morlet:
		if w <= 0 {
			return 0, nil
		}
		d := w - morletOmega0
		return math.Pow(math.Pi, -0.25) * math.Exp(-d*d/2), nil
	case MexicanHat:
		// DOG wavelet of order 2.
		norm := 1.0 / math.Sqrt(math.Gamma(2.5))
		return norm * w * w * math.Exp(-w*w/2), nil
	case Paul:
		if w <= 0 {
			return 0, nil
		}
		m := float64(paulOrder)
		norm := math.Pow(2, m) / math.Sqrt(m*factorial(2*paulOrder-1))
		return norm * math.Pow(w, m) * math.Exp(-w), nil
	default:
		return 0, fmt.Errorf("unknown continuous wavelet %q", name)
	}
}

// fourierFactor converts a wavelet scale to its equivalent Fourier period:
// period = factor * scale.
func fourierFactor(name string) float64 {
	switch name {
	case Morlet:
		return 4 * math.Pi / (morletOmega0 + math.Sqrt(2+morletOmega0*morletOmega0))
	case MexicanHat:
		return 2 * math.Pi / math.Sqrt(2.5)
	case Paul:
		return 4 * math.Pi / float64(2*paulOrder+1)
	default:
		return 1
	}
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// scalingFilters holds the orthonormal low-pass (scaling) coefficients per
// discrete wavelet. High-pass filters derive by quadrature mirror.
var scalingFilters = map[string][]float64{
	Haar: {
		0.7071067811865476, 0.7071067811865476,
	},
	DB2: {
		0.48296291314469025, 0.8365163037378079,
		0.2241438680420134, -0.12940952255092145,
	},
	DB4: {
		0.23037781330885523, 0.7148465705525415,
		0.6308807679295904, -0.02798376941698385,
		-0.18703481171888114, 0.030841381835986965,
		0.032883011666982945, -0.010597401784997278,
	},
	Sym4: {
		-0.07576571478927333, -0.02963552764599851,
		0.49761866763201545, 0.8037387518059161,
		0.29785779560527736, -0.09921954357684722,
		-0.012603967262037833, 0.0322231006040427,
	},
}

// orthogonalSubstitution maps each continuous mother to the orthogonal
// wavelet used in its place for discrete decomposition. The mapping is
// deliberately a visible lookup table: substitution is always reported in
// the result, never applied silently.
var orthogonalSubstitution = map[string]string{
	Morlet:     DB4,
	MexicanHat: Sym4,
	Paul:       DB2,
	Haar:       Haar,
	DB2:        DB2,
	DB4:        DB4,
	Sym4:       Sym4,
}

// OrthogonalFor resolves the orthogonal wavelet used for MRA when the
// analysis wavelet is name. The second return reports whether a substitution
// took place.
func OrthogonalFor(name string) (string, bool, error) {
	orth, ok := orthogonalSubstitution[name]
	if !ok {
		return "", false, fmt.Errorf("no orthogonal mapping for wavelet %q", name)
	}
	return orth, orth != name, nil
}

// filterBank returns the analysis low-pass and high-pass filters for an
// orthogonal wavelet.
func filterBank(name string) (lowpass, highpass []float64, err error) {
	g, ok := scalingFilters[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown orthogonal wavelet %q", name)
	}
	h := make([]float64, len(g))
	for n := range g {
		sign := 1.0
		if n%2 == 1 {
			sign = -1.0
		}
		h[n] = sign * g[len(g)-1-n]
	}
	return g, h, nil
}

// IsContinuous reports whether name is a continuous catalog mother.
func IsContinuous(name string) bool {
	for _, c := range ContinuousCatalog {
		if c == name {
			return true
		}
	}
	return false
}

// IsOrthogonal reports whether name has a discrete filter bank.
func IsOrthogonal(name string) bool {
	_, ok := scalingFilters[name]
	return ok
}
