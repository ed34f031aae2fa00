package fourier

import (
	"math"
	"sort"
)

// Periodogram holds a Lomb-Scargle power spectrum over a frequency grid.
type Periodogram struct {
	Frequencies []float64 `json:"frequencies"` // Hz
	Power       []float64 `json:"power"`       // variance-normalized power
}

// lombScargle computes the variance-normalized Lomb-Scargle periodogram of
// (t, y) at the given frequencies using the tau-offset formulation, which
// keeps the estimate invariant to time-axis shifts on irregular sampling.
// Timestamps are seconds, frequencies Hz.
func lombScargle(t, y, freqs []float64) []float64 {
	n := len(y)
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	centered := make([]float64, n)
	for i, v := range y {
		centered[i] = v - mean
		variance += centered[i] * centered[i]
	}
	variance /= float64(n - 1)

	power := make([]float64, len(freqs))
	if variance == 0 {
		return power
	}

	for k, f := range freqs {
		omega := 2 * math.Pi * f

		var sin2, cos2 float64
		for _, ti := range t {
			sin2 += math.Sin(2 * omega * ti)
			cos2 += math.Cos(2 * omega * ti)
		}
		tau := math.Atan2(sin2, cos2) / (2 * omega)

		var cSum, sSum, cNorm, sNorm float64
		for i, ti := range t {
			arg := omega * (ti - tau)
			c := math.Cos(arg)
			s := math.Sin(arg)
			cSum += centered[i] * c
			sSum += centered[i] * s
			cNorm += c * c
			sNorm += s * s
		}

		p := 0.0
		if cNorm > 0 {
			p += cSum * cSum / cNorm
		}
		if sNorm > 0 {
			p += sSum * sSum / sNorm
		}
		power[k] = p / (2 * variance)
	}

	return power
}

// frequencyGrid builds a linear frequency grid between fMin and fMax with a
// resolution of 1/(oversample * duration).
func frequencyGrid(fMin, fMax, duration float64, oversample int) []float64 {
	if oversample <= 0 {
		oversample = defaultOversample
	}
	if fMax <= fMin || duration <= 0 {
		return nil
	}

	df := 1.0 / (float64(oversample) * duration)
	count := int((fMax-fMin)/df) + 1
	if count < 2 {
		count = 2
	}

	freqs := make([]float64, count)
	for i := range freqs {
		freqs[i] = fMin + float64(i)*df
	}
	return freqs
}

// peakIndex returns the index of the maximum power bin.
func peakIndex(power []float64) int {
	best := 0
	for i, p := range power {
		if p > power[best] {
			best = i
		}
	}
	return best
}

// refinePeak sharpens a peak frequency by parabolic interpolation over the
// three bins around idx. Returns the bin frequency unchanged at grid edges.
func refinePeak(freqs, power []float64, idx int) float64 {
	if idx <= 0 || idx >= len(power)-1 {
		return freqs[idx]
	}
	a, b, c := power[idx-1], power[idx], power[idx+1]
	denom := a - 2*b + c
	if denom == 0 {
		return freqs[idx]
	}
	shift := 0.5 * (a - c) / denom
	if shift < -1 || shift > 1 {
		return freqs[idx]
	}
	return freqs[idx] + shift*(freqs[idx+1]-freqs[idx])
}

// medianPower returns the median of a power spectrum, used as the noise floor
// reference.
func medianPower(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	sorted := make([]float64, len(power))
	copy(sorted, power)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
