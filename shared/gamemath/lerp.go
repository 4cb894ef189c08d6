package gamemath

import "math"

// Lerp linearly interpolates between a and b. t is expected to be in [0,1];
// use ClampT first when t comes from wall-clock arithmetic.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// ClampT clamps an interpolation factor to [0,1].
func ClampT(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Dist returns the Euclidean distance between two points.
func Dist(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}
