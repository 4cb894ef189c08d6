package gamemath

import "math"

// NormalizeAngle wraps an angle in degrees to [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngleDelta returns the signed shortest rotation from a to b in degrees,
// in (-180, 180].
func AngleDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// LerpAngle interpolates between two angles in degrees along the shorter
// arc, so 350°→10° passes through 0°, never through 180°.
func LerpAngle(a, b, t float64) float64 {
	return NormalizeAngle(a + AngleDelta(a, b)*t)
}
