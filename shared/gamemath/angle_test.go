package gamemath

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeAngle(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-370, 350},
		{720, 0},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); !almostEqual(got, c.want) {
			t.Fatalf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAngleDeltaTakesShorterArc(t *testing.T) {
	t.Parallel()

	cases := []struct{ a, b, want float64 }{
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{90, 90, 0},
		{0, 270, -90},
	}
	for _, c := range cases {
		if got := AngleDelta(c.a, c.b); !almostEqual(got, c.want) {
			t.Fatalf("AngleDelta(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestLerpAngleCrossesZeroNotPi(t *testing.T) {
	t.Parallel()

	// 350°→10° halfway must be 0°, not 180°.
	if got := LerpAngle(350, 10, 0.5); !almostEqual(got, 0) {
		t.Fatalf("LerpAngle(350, 10, 0.5) = %v, want 0", got)
	}
	if got := LerpAngle(10, 350, 0.5); !almostEqual(got, 0) {
		t.Fatalf("LerpAngle(10, 350, 0.5) = %v, want 0", got)
	}
}

func TestLerpEndpointsExact(t *testing.T) {
	t.Parallel()

	if got := Lerp(3, 17, 0); got != 3 {
		t.Fatalf("Lerp at f=0 = %v, want 3", got)
	}
	if got := Lerp(3, 17, 1); got != 17 {
		t.Fatalf("Lerp at f=1 = %v, want 17", got)
	}
	if got := Lerp(10, 20, 0.25); !almostEqual(got, 12.5) {
		t.Fatalf("Lerp(10, 20, 0.25) = %v, want 12.5", got)
	}
}

func TestDist(t *testing.T) {
	t.Parallel()

	if got := Dist(0, 0, 3, 4); !almostEqual(got, 5) {
		t.Fatalf("Dist(0,0,3,4) = %v, want 5", got)
	}
}
