package calc

import "math"

// Round rounds v to the given number of decimal places, halves away from zero.
// Display only; calculators return full precision.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
