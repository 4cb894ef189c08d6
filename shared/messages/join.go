package messages

import "github.com/leap-fish/necs/esync"

// JoinRequest is sent by a client after connecting to request joining the
// game. ReconnectToken lets the server re-associate a dropped session.
type JoinRequest struct {
	Version        string
	Username       string
	ReconnectToken string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	PlayerID       esync.NetworkId
	ReconnectToken string
	ServerName     string
	TickRate       int
}

// JoinRejected is sent by the server when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}

// PlayerJoined announces a new remote player.
type PlayerJoined struct {
	PlayerID  esync.NetworkId
	Username  string
	X, Y      float64
	Timestamp int64
}

// PlayerLeft announces that a player disconnected or was dropped.
type PlayerLeft struct {
	PlayerID esync.NetworkId
}
