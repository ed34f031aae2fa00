package wavelet

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// cwtResult holds one continuous transform: a scale x time coefficient map.
type cwtResult struct {
	scales    []float64   // seconds
	magnitude [][]float64 // scales x time
	energy    float64     // sum of squared magnitudes
}

// cwt computes the continuous wavelet transform of a uniformly resampled
// value series in the frequency domain: one forward FFT of the signal, then
// one spectrum multiply + inverse FFT per scale.
func cwt(values []float64, dt float64, scales []float64, mother string) (*cwtResult, error) {
	n := len(values)
	padded := make([]float64, nextPowerOfTwo(2*n))
	copy(padded, values)

	spectrum := fft.FFTReal(padded)
	m := len(spectrum)

	// Angular frequency for each FFT bin, negative in the upper half.
	omega := make([]float64, m)
	for k := range omega {
		if k <= m/2 {
			omega[k] = 2 * math.Pi * float64(k) / (float64(m) * dt)
		} else {
			omega[k] = -2 * math.Pi * float64(m-k) / (float64(m) * dt)
		}
	}

	result := &cwtResult{
		scales:    scales,
		magnitude: make([][]float64, len(scales)),
	}

	daughter := make([]complex128, m)
	for si, s := range scales {
		norm := math.Sqrt(2 * math.Pi * s / dt)
		for k := range daughter {
			psi, err := fourierSpectrum(mother, s*omega[k])
			if err != nil {
				return nil, err
			}
			daughter[k] = spectrum[k] * complex(norm*psi, 0)
		}

		row := fft.IFFT(daughter)
		mag := make([]float64, n)
		for i := 0; i < n; i++ {
			mag[i] = cmplx.Abs(row[i])
			result.energy += mag[i] * mag[i]
		}
		result.magnitude[si] = mag
	}

	return result, nil
}

// buildScales constructs a logarithmic scale ladder from twice the sampling
// interval up to half the signal duration, with dj voices spacing.
func buildScales(n int, dt float64) []float64 {
	const dj = 0.25

	s0 := 2 * dt
	maxScale := float64(n) * dt / 2
	if maxScale <= s0 {
		return []float64{s0}
	}

	count := int(math.Log2(maxScale/s0)/dj) + 1
	scales := make([]float64, count)
	for j := range scales {
		scales[j] = s0 * math.Pow(2, float64(j)*dj)
	}
	return scales
}

// scaleFrequencies converts scales to approximate Fourier frequencies in Hz
// for the given mother.
func scaleFrequencies(scales []float64, mother string) []float64 {
	factor := fourierFactor(mother)
	freqs := make([]float64, len(scales))
	for i, s := range scales {
		freqs[i] = 1.0 / (factor * s)
	}
	return freqs
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
