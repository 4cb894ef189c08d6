// Package netconfig defines protocol constants shared between client and
// server. It must have zero dependencies on any graphics library so the
// dedicated server binary stays headless.
package netconfig

import "time"

// ProtocolVersion is echoed in the join handshake; servers reject clients
// whose version does not match.
const ProtocolVersion = "0.3"

// Movement sampling and prediction.
const (
	// MoveSendInterval is the minimum spacing between transmitted movement
	// updates (20 Hz). Calls inside the interval are sampling drops, not
	// errors.
	MoveSendInterval = 50 * time.Millisecond

	// MaxPendingCommands bounds the local prediction history. When the
	// buffer is full the single oldest command is evicted.
	MaxPendingCommands = 64

	// ReconcileTolerance is the positional error (world units) the client
	// accepts between its prediction and the server's answer before
	// snapping and replaying.
	ReconcileTolerance = 5.0

	// ReplayStepSeconds is the fixed time slice assumed per buffered
	// command when replaying after a correction. TODO: store each
	// command's true elapsed delta and replay with that instead.
	ReplayStepSeconds = 1.0 / 60.0
)

// Remote interpolation.
const (
	// InterpolationDelay is how far in the past remote entities are
	// rendered, so playback always has two real samples to blend between.
	InterpolationDelay = 100 * time.Millisecond

	// InterpolationWindow is the trailing span of samples kept per remote
	// entity; older samples are pruned relative to the newest one.
	InterpolationWindow = 500 * time.Millisecond

	// MaxPlausibleSpeed is the fastest movement (world units per second)
	// a remote sample may imply before the client stops trusting the
	// stream and forces a reconnect.
	MaxPlausibleSpeed = 600.0
)

// Session lifecycle.
const (
	// HeartbeatInterval spaces outgoing pings.
	HeartbeatInterval = 3 * time.Second

	// StaleTimeout forces a reconnect cycle when no server message has
	// arrived for this long while nominally connected.
	StaleTimeout = 10 * time.Second

	// ReconnectBaseDelay scales linearly with the attempt count
	// (attempt 1 waits 1×, attempt 2 waits 2×, ...).
	ReconnectBaseDelay = time.Second

	// MaxReconnectAttempts is the cap after which reconnection stops for
	// good and the failure is surfaced as fatal.
	MaxReconnectAttempts = 5
)
