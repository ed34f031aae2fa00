package wavelet

import (
	"math"
	"sort"
)

// CandidateScore records how one catalog mother scored during auto-selection.
type CandidateScore struct {
	Wavelet     string  `json:"wavelet"`
	Score       float64 `json:"score"`
	Energy      float64 `json:"energy_concentration"`
	TimeLocal   float64 `json:"time_localization"`
	FreqLocal   float64 `json:"frequency_localization"`
	EdgeQuality float64 `json:"edge_quality"`
}

// scoreTransform rates a coefficient map on the four selection criteria,
// each normalized to [0,1], combined with equal weights.
func scoreTransform(res *cwtResult) CandidateScore {
	return CandidateScore{
		Energy:      energyConcentration(res),
		TimeLocal:   axisLocalization(res, false),
		FreqLocal:   axisLocalization(res, true),
		EdgeQuality: edgeQuality(res),
	}
}

func (c *CandidateScore) combine() {
	c.Score = (c.Energy + c.TimeLocal + c.FreqLocal + c.EdgeQuality) / 4
}

// energyConcentration is the fraction of total transform energy held by the
// strongest 5% of coefficients.
func energyConcentration(res *cwtResult) float64 {
	if res.energy == 0 {
		return 0
	}

	var squares []float64
	for _, row := range res.magnitude {
		for _, m := range row {
			squares = append(squares, m*m)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(squares)))

	top := len(squares) / 20
	if top < 1 {
		top = 1
	}
	sum := 0.0
	for _, s := range squares[:top] {
		sum += s
	}
	return sum / res.energy
}

// axisLocalization measures coefficient compactness along one axis using a
// normalized inverse participation ratio: 1 for a single spike, near 0 for
// energy smeared evenly. With acrossScales false it rates time localization
// per scale row; with true, frequency localization per time column.
func axisLocalization(res *cwtResult, acrossScales bool) float64 {
	rows := len(res.magnitude)
	if rows == 0 {
		return 0
	}
	cols := len(res.magnitude[0])
	if cols == 0 {
		return 0
	}

	outer, inner := rows, cols
	at := func(o, i int) float64 { return res.magnitude[o][i] }
	if acrossScales {
		outer, inner = cols, rows
		at = func(o, i int) float64 { return res.magnitude[i][o] }
	}
	if inner < 2 {
		return 0
	}

	total := 0.0
	counted := 0
	for o := 0; o < outer; o++ {
		var sum2, sum4 float64
		for i := 0; i < inner; i++ {
			m := at(o, i)
			sum2 += m * m
			sum4 += m * m * m * m
		}
		if sum2 == 0 {
			continue
		}
		// Participation ratio in [1/inner, 1]; rescale so even smear -> 0.
		pr := sum4 / (sum2 * sum2)
		total += (pr - 1.0/float64(inner)) / (1 - 1.0/float64(inner))
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// edgeQuality penalizes transforms that pile energy into the boundary 10% of
// the time axis, where circular convolution distorts coefficients.
func edgeQuality(res *cwtResult) float64 {
	if res.energy == 0 {
		return 0
	}
	cols := 0
	if len(res.magnitude) > 0 {
		cols = len(res.magnitude[0])
	}
	margin := cols / 10
	if margin < 1 {
		margin = 1
	}

	edge := 0.0
	for _, row := range res.magnitude {
		for i, m := range row {
			if i < margin || i >= cols-margin {
				edge += m * m
			}
		}
	}

	fraction := edge / res.energy
	// An even energy spread puts 2*margin/cols in the edges; map that to a
	// mid score and clamp.
	expected := 2 * float64(margin) / math.Max(float64(cols), 1)
	score := 1 - fraction/(2*expected)
	if score < 0 {
		return 0
	}
	return score
}
