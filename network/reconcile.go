package network

import (
	"log"

	"github.com/bitvolt/gridrunner-mp/shared/gamemath"
	"github.com/bitvolt/gridrunner-mp/shared/messages"
	"github.com/bitvolt/gridrunner-mp/shared/netcomponents"
)

// Reconciler corrects divergence between the client's predicted position
// and the position the server actually computed, for the local player only.
type Reconciler struct {
	Buffer    *PredictionBuffer
	Tolerance float64 // accepted positional drift, world units
	StepSecs  float64 // assumed time slice per replayed command

	corrections uint64
}

// NewReconciler wires a reconciler to a prediction buffer.
func NewReconciler(buf *PredictionBuffer, tolerance, stepSecs float64) *Reconciler {
	return &Reconciler{Buffer: buf, Tolerance: tolerance, StepSecs: stepSecs}
}

// HandleAck processes one server acknowledgment against the local
// authoritative state. It returns the correction distance applied, or 0
// when the prediction was within tolerance or the ack was stale.
//
// Regardless of outcome, every command at or below the acked sequence is
// garbage-collected: the server has spoken for them.
func (r *Reconciler) HandleAck(ack messages.MovementAck, pos *netcomponents.NetPositionData, vel *netcomponents.NetVelocityData) float64 {
	cmd, ok := r.Buffer.Get(ack.Sequence)
	if !ok {
		// Stale or duplicate ack — already evicted or already resolved.
		r.Buffer.AckThrough(ack.Sequence)
		return 0
	}

	dist := gamemath.Dist(cmd.Snapshot.X, cmd.Snapshot.Y, ack.X, ack.Y)
	if dist <= r.Tolerance {
		r.Buffer.AckThrough(ack.Sequence)
		return 0
	}

	// Prediction was wrong: snap to the server position, then rebuild the
	// trajectory by replaying every later unacknowledged command on top.
	pos.X = ack.X
	pos.Y = ack.Y
	for _, pending := range r.Buffer.After(ack.Sequence) {
		pos.X += pending.Snapshot.SpeedX * r.StepSecs
		pos.Y += pending.Snapshot.SpeedY * r.StepSecs
		if vel != nil {
			vel.SpeedX = pending.Snapshot.SpeedX
			vel.SpeedY = pending.Snapshot.SpeedY
		}
	}
	r.Buffer.AckThrough(ack.Sequence)

	r.corrections++
	log.Printf("[reconcile] seq=%d corrected %.2f units (%d total)", ack.Sequence, dist, r.corrections)
	return dist
}

// Corrections returns how many snap corrections have been applied.
func (r *Reconciler) Corrections() uint64 {
	return r.corrections
}
