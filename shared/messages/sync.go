package messages

import "github.com/leap-fish/necs/esync"

// SyncRequest asks the server for a full player roster. Sent once after
// every (re)connect; stale local state must never survive a reconnect.
type SyncRequest struct {
	Timestamp int64
}

// PlayerSync is the full-state answer to a SyncRequest. Any player the
// client knows that is absent from Players no longer exists.
type PlayerSync struct {
	Players []PlayerSnapshot
}

// PlayerSnapshot is one roster entry inside a PlayerSync.
type PlayerSnapshot struct {
	PlayerID  esync.NetworkId
	Username  string
	X, Y      float64
	VelX      float64
	VelY      float64
	Facing    float64
	Timestamp int64
}
