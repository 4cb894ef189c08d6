package messages

import "github.com/leap-fish/necs/esync"

// PlayerMove is sent client→server for each sampled local movement update.
// Sequence correlates the command with its eventual MovementAck.
type PlayerMove struct {
	Sequence  uint64
	X, Y      float64
	VelX      float64
	VelY      float64
	Facing    float64 // degrees
	Timestamp int64   // server-relative Unix ms (client clock + offset)
}

// MovementAck is the server's answer to one PlayerMove: the position it
// actually computed for that sequence number.
type MovementAck struct {
	Sequence  uint64
	X, Y      float64
	Timestamp int64
}

// PlayerUpdate is broadcast server→client whenever a player's state
// changes. Updates addressed to the local player's id are authoritative
// pushes (forced respawn, teleport) and bypass reconciliation.
type PlayerUpdate struct {
	PlayerID  esync.NetworkId
	X, Y      float64
	VelX      float64
	VelY      float64
	Facing    float64
	Timestamp int64
	Sequence  uint64
}
