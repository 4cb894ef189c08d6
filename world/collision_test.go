package world

import "testing"

func testWorld() *CollisionWorld {
	w := New(100, 100)
	w.AddSolid(40, 40, 20, 20)
	return w
}

func TestIsBlocked(t *testing.T) {
	t.Parallel()

	w := testWorld()

	if !w.IsBlocked(50, 50) {
		t.Fatalf("point inside solid must be blocked")
	}
	if w.IsBlocked(10, 10) {
		t.Fatalf("open point must not be blocked")
	}
	if !w.IsBlocked(-5, 10) || !w.IsBlocked(10, 150) {
		t.Fatalf("out-of-bounds points must be blocked")
	}

	// Solid bounds are half-open: the top-left edge is inside, the
	// bottom-right edge is already outside.
	if !w.IsBlocked(40, 40) {
		t.Fatalf("top-left corner of solid must be blocked")
	}
	if w.IsBlocked(60, 60) {
		t.Fatalf("bottom-right corner of solid must be open")
	}
}

func TestIsMovementBlocked(t *testing.T) {
	t.Parallel()

	w := testWorld()

	if !w.IsMovementBlocked(10, 50, 90, 50) {
		t.Fatalf("path through the solid must be blocked")
	}
	if w.IsMovementBlocked(10, 10, 90, 10) {
		t.Fatalf("path above the solid must be open")
	}
	if w.IsMovementBlocked(10, 10, 10, 10) {
		t.Fatalf("zero-length move on open ground must be open")
	}
	if !w.IsMovementBlocked(50, 50, 50, 50) {
		t.Fatalf("zero-length move inside the solid must be blocked")
	}
	// A short hop that both starts and ends outside but samples inside.
	if !w.IsMovementBlocked(38, 50, 62, 50) {
		t.Fatalf("hop across the solid must be blocked")
	}
}
