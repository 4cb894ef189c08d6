package netcomponents

import "github.com/bitvolt/gridrunner-mp/shared/gamemath"

// EntitySnapshot is one observed state of an entity at a server-relative
// instant. It is immutable once created and is used both as a prediction
// record and as an interpolation sample.
type EntitySnapshot struct {
	X, Y           float64
	SpeedX, SpeedY float64
	Facing         float64 // degrees, [0, 360)
	Timestamp      int64   // server time, Unix ms
}

// LerpSnapshot blends two snapshots at fractional progress t. Position and
// velocity interpolate linearly; facing takes the shorter angular path.
// The blended timestamp interpolates linearly as well.
func LerpSnapshot(from, to EntitySnapshot, t float64) EntitySnapshot {
	return EntitySnapshot{
		X:         gamemath.Lerp(from.X, to.X, t),
		Y:         gamemath.Lerp(from.Y, to.Y, t),
		SpeedX:    gamemath.Lerp(from.SpeedX, to.SpeedX, t),
		SpeedY:    gamemath.Lerp(from.SpeedY, to.SpeedY, t),
		Facing:    gamemath.LerpAngle(from.Facing, to.Facing, t),
		Timestamp: from.Timestamp + int64(float64(to.Timestamp-from.Timestamp)*t),
	}
}
