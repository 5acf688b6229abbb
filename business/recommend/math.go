package recommend

import "math"

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampScore bounds scores, ratings and affinities to [0,100].
func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}

func clampUnit(v float64) float64 {
	return clamp(v, 0, 1)
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
