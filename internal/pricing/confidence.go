package pricing

import "math"

// Confidence scores a refreshed snapshot in [0,1]: 0.4 for source count
// (saturating at 10), 0.3 for freshness, 0.3 for a narrow price spread.
func Confidence(sourceCount int, min, max, avg float64) float64 {
	sourceScore := math.Min(float64(sourceCount)/10, 1) * 0.4
	freshnessScore := 1.0 * 0.3

	consistencyScore := 0.0
	if avg > 0 {
		consistencyScore = math.Max(0, 1-(max-min)/avg) * 0.3
	}

	return math.Max(0, math.Min(1, sourceScore+freshnessScore+consistencyScore))
}
