package wavelet

import (
	"fmt"
	"math"
	"sort"
)

// decomposition is a periodized discrete wavelet decomposition. The signal
// is reflect-padded to a power of two before analysis; origLen tracks how
// much of any reconstruction is real data.
type decomposition struct {
	wavelet string
	levels  int
	approx  []float64   // coarsest approximation coefficients
	details [][]float64 // details[0] is the finest band (level 1)
	origLen int
}

// maxLevels returns how many decomposition levels the signal length
// supports for the given wavelet: every stage must stay at least as long as
// the filter.
func maxLevels(n int, wavelet string) int {
	g, ok := scalingFilters[wavelet]
	if !ok {
		return 0
	}
	length := nextPowerOfTwo(n)
	levels := 0
	for length/2 >= len(g) && length%2 == 0 {
		length /= 2
		levels++
	}
	return levels
}

// decompose runs a periodized DWT to the requested depth.
func decompose(values []float64, wavelet string, levels int) (*decomposition, error) {
	g, h, err := filterBank(wavelet)
	if err != nil {
		return nil, err
	}
	if levels < 1 {
		return nil, fmt.Errorf("decomposition depth must be at least 1, got %d", levels)
	}
	if max := maxLevels(len(values), wavelet); levels > max {
		return nil, fmt.Errorf("%d levels exceed the %d supported by %d samples with %s",
			levels, max, len(values), wavelet)
	}

	current := reflectPad(values)
	d := &decomposition{
		wavelet: wavelet,
		levels:  levels,
		details: make([][]float64, levels),
		origLen: len(values),
	}

	for level := 0; level < levels; level++ {
		approx, detail := dwtStep(current, g, h)
		d.details[level] = detail
		current = approx
	}
	d.approx = current

	return d, nil
}

// dwtStep performs one level of circular analysis filtering and decimation.
func dwtStep(x, g, h []float64) (approx, detail []float64) {
	n := len(x)
	half := n / 2
	approx = make([]float64, half)
	detail = make([]float64, half)

	for k := 0; k < half; k++ {
		var a, d float64
		for tap := range g {
			v := x[(2*k+tap)%n]
			a += g[tap] * v
			d += h[tap] * v
		}
		approx[k] = a
		detail[k] = d
	}
	return approx, detail
}

// idwtStep performs one level of circular synthesis. It is the transpose of
// dwtStep, which for an orthonormal filter bank is its exact inverse.
func idwtStep(approx, detail, g, h []float64) []float64 {
	n := 2 * len(approx)
	out := make([]float64, n)

	for k := range approx {
		for tap := range g {
			idx := (2*k + tap) % n
			out[idx] += g[tap]*approx[k] + h[tap]*detail[k]
		}
	}
	return out
}

// reconstruct inverts the full decomposition and truncates to the original
// signal length.
func (d *decomposition) reconstruct() []float64 {
	return d.reconstructWith(d.approx, d.details)
}

// reconstructWith inverts the decomposition using the supplied coefficient
// bands (same shapes as d.approx / d.details).
func (d *decomposition) reconstructWith(approx []float64, details [][]float64) []float64 {
	g, h, _ := filterBank(d.wavelet)

	current := approx
	for level := d.levels - 1; level >= 0; level-- {
		current = idwtStep(current, details[level], g, h)
	}
	return current[:d.origLen]
}

// bandSignals reconstructs every band in isolation to full signal length.
// Because the inverse transform is linear, the bands sum to the original
// signal exactly (up to float round-off).
func (d *decomposition) bandSignals() (approx []float64, details [][]float64) {
	zeroDetails := make([][]float64, d.levels)
	for i, det := range d.details {
		zeroDetails[i] = make([]float64, len(det))
	}

	approx = d.reconstructWith(d.approx, zeroDetails)

	details = make([][]float64, d.levels)
	zeroApprox := make([]float64, len(d.approx))
	for i := range d.details {
		bands := make([][]float64, d.levels)
		for j := range bands {
			if j == i {
				bands[j] = d.details[j]
			} else {
				bands[j] = zeroDetails[j]
			}
		}
		details[i] = d.reconstructWith(zeroApprox, bands)
	}
	return approx, details
}

// denoise soft-thresholds the finest detail bands and reconstructs. The
// noise level is estimated from the finest band's median absolute deviation
// and scaled to the universal threshold; aggressiveness in [0,1] scales the
// threshold, with 0.5 giving the unscaled universal threshold.
func (d *decomposition) denoise(aggressiveness float64) (denoised []float64, sigma, threshold float64) {
	sigma = medianAbs(d.details[0]) / 0.6745
	threshold = sigma * math.Sqrt(2*math.Log(float64(d.origLen))) * 2 * aggressiveness

	bands := make([][]float64, d.levels)
	copy(bands, d.details)

	// Only the 1-2 finest bands carry the high-frequency noise.
	shrinkBands := 2
	if d.levels < 2 {
		shrinkBands = 1
	}
	for i := 0; i < shrinkBands; i++ {
		bands[i] = softThreshold(d.details[i], threshold)
	}

	return d.reconstructWith(d.approx, bands), sigma, threshold
}

func softThreshold(coeffs []float64, threshold float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		switch {
		case c > threshold:
			out[i] = c - threshold
		case c < -threshold:
			out[i] = c + threshold
		}
	}
	return out
}

func medianAbs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	mid := len(abs) / 2
	if len(abs)%2 == 0 {
		return (abs[mid-1] + abs[mid]) / 2
	}
	return abs[mid]
}

// reflectPad extends values to the next power of two by mirroring the tail.
func reflectPad(values []float64) []float64 {
	n := len(values)
	padded := make([]float64, nextPowerOfTwo(n))
	copy(padded, values)

	// The padded length is below 2n, so the mirror index stays in range.
	for i := n; i < len(padded); i++ {
		padded[i] = values[2*n-2-i]
	}
	return padded
}
