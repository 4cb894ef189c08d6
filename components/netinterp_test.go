package components

import (
	"math"
	"testing"

	"github.com/bitvolt/gridrunner-mp/shared/netcomponents"
)

const window = int64(500)

func sample(ts int64, x, y float64) netcomponents.EntitySnapshot {
	return netcomponents.EntitySnapshot{X: x, Y: y, Timestamp: ts}
}

func TestSampleAtInterpolatesExactly(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	d.Push(sample(1000, 0, 0), window)
	d.Push(sample(1100, 10, 20), window)

	got, ok := d.SampleAt(1050)
	if !ok {
		t.Fatalf("expected a sample")
	}
	if got.X != 5 || got.Y != 10 {
		t.Fatalf("midpoint = (%v,%v), want (5,10)", got.X, got.Y)
	}

	// f=0 and f=1 must return the endpoints exactly.
	if got, _ := d.SampleAt(1000); got.X != 0 || got.Y != 0 {
		t.Fatalf("f=0 sample = (%v,%v), want (0,0)", got.X, got.Y)
	}
	if got, _ := d.SampleAt(1100); got.X != 10 || got.Y != 20 {
		t.Fatalf("f=1 sample = (%v,%v), want (10,20)", got.X, got.Y)
	}
}

func TestSampleAtInterpolatesFacingShortestPath(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	s0 := sample(1000, 0, 0)
	s0.Facing = 350
	s1 := sample(1100, 0, 0)
	s1.Facing = 10
	d.Push(s0, window)
	d.Push(s1, window)

	got, _ := d.SampleAt(1050)
	if math.Abs(got.Facing) > 1e-9 {
		t.Fatalf("facing at midpoint = %v, want 0", got.Facing)
	}
}

func TestSampleAtFallsBackToNewestWithoutBracket(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	d.Push(sample(1000, 1, 2), window)
	d.Push(sample(1100, 3, 4), window)

	// Playback time beyond every sample: hold the newest, no extrapolation.
	got, ok := d.SampleAt(5000)
	if !ok || got.X != 3 || got.Y != 4 {
		t.Fatalf("fallback = (%v,%v) ok=%v, want (3,4) true", got.X, got.Y, ok)
	}

	// Before every sample: the oldest.
	got, _ = d.SampleAt(10)
	if got.X != 1 || got.Y != 2 {
		t.Fatalf("early fallback = (%v,%v), want (1,2)", got.X, got.Y)
	}
}

func TestSampleAtEmptyQueue(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	if _, ok := d.SampleAt(1000); ok {
		t.Fatalf("empty queue must report no sample")
	}
}

func TestPushKeepsTimestampOrder(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	d.Push(sample(1100, 0, 0), window)
	d.Push(sample(1000, 0, 0), window) // late arrival
	d.Push(sample(1200, 0, 0), window)

	for i := 1; i < len(d.Samples); i++ {
		if d.Samples[i-1].Timestamp > d.Samples[i].Timestamp {
			t.Fatalf("samples out of order at %d: %d > %d",
				i, d.Samples[i-1].Timestamp, d.Samples[i].Timestamp)
		}
	}
}

func TestPushPrunesTrailingWindow(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	d.Push(sample(1000, 0, 0), window)
	d.Push(sample(1200, 0, 0), window)
	d.Push(sample(1600, 0, 0), window) // 1000 is now older than newest-window

	if len(d.Samples) != 2 {
		t.Fatalf("len = %d, want 2", len(d.Samples))
	}
	if d.Samples[0].Timestamp != 1200 {
		t.Fatalf("oldest kept = %d, want 1200", d.Samples[0].Timestamp)
	}

	// Even a lone stale sample survives until something newer replaces it;
	// the newest sample is never pruned.
	var lone NetInterpData
	lone.Push(sample(100, 0, 0), window)
	lone.Push(sample(5000, 0, 0), window)
	if len(lone.Samples) != 1 || lone.Samples[0].Timestamp != 5000 {
		t.Fatalf("expected only the newest sample to survive, got %d samples", len(lone.Samples))
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	var d NetInterpData
	if _, ok := d.Latest(); ok {
		t.Fatalf("Latest on empty queue must be false")
	}
	d.Push(sample(1000, 7, 8), window)
	got, ok := d.Latest()
	if !ok || got.X != 7 {
		t.Fatalf("Latest = (%v,%v) ok=%v, want (7,8) true", got.X, got.Y, ok)
	}
}
