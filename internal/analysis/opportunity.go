package analysis

import "sort"

// Saturation levels for how much a topic already appears in another
// platform's outlier pool
const (
	SaturationAbsent = 0.0
	SaturationLow    = 0.5
	SaturationMedium = 1.0
	SaturationHigh   = 1.5
)

// SaturationLevel maps a raw match count to a saturation level:
// absent, low (1-2), medium (3-5) or high (6+)
func SaturationLevel(matches int) float64 {
	switch {
	case matches <= 0:
		return SaturationAbsent
	case matches <= 2:
		return SaturationLow
	case matches <= 5:
		return SaturationMedium
	default:
		return SaturationHigh
	}
}

// Opportunity combines a topic's normalized source-platform engagement
// (0-10 percentile scale, see NormalizeEngagement) with its saturation
// on the other platforms. High engagement somewhere plus low presence
// everywhere else scores highest. The +1 term makes the result finite
// and non-negative for any non-negative input.
func Opportunity(sourceEngagement float64, saturations map[string]float64) float64 {
	var total float64
	for _, s := range saturations {
		total += s
	}
	return (sourceEngagement * 1.5) / (total + 1)
}

// NormalizeEngagement maps a rate onto a 0-10 percentile scale relative
// to its platform's outlier pool: the fraction of pool members at or
// below the rate, times ten. An empty pool yields 0.
func NormalizeEngagement(rate float64, pool []float64) float64 {
	if len(pool) == 0 {
		return 0
	}

	sorted := make([]float64, len(pool))
	copy(sorted, pool)
	sort.Float64s(sorted)

	// first index with value > rate == number of members <= rate
	atOrBelow := sort.SearchFloat64s(sorted, rate)
	for atOrBelow < len(sorted) && sorted[atOrBelow] == rate {
		atOrBelow++
	}

	return float64(atOrBelow) / float64(len(sorted)) * 10
}
