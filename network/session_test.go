package network

import (
	"testing"
	"time"

	"github.com/bitvolt/gridrunner-mp/shared/netconfig"
)

func stopPendingRedial(s *Session) {
	s.mu.Lock()
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
	}
	s.mu.Unlock()
}

func TestReconnectStopsPermanentlyAtAttemptCap(t *testing.T) {
	s := NewSession("example.invalid:7415", "runner")

	for i := 1; i <= netconfig.MaxReconnectAttempts; i++ {
		s.mu.Lock()
		s.state = StateConnecting // simulated dial in flight
		s.mu.Unlock()

		s.handleDisconnect()
		stopPendingRedial(s)

		if got := s.State(); got != StateReconnecting {
			t.Fatalf("attempt %d: state = %v, want reconnecting", i, got)
		}
		s.mu.Lock()
		if s.reconnectAttempts != i {
			t.Fatalf("attempt counter = %d, want %d", s.reconnectAttempts, i)
		}
		s.mu.Unlock()
	}

	// One more failure exceeds the cap: fatal, no further retry.
	s.mu.Lock()
	s.state = StateConnecting
	s.mu.Unlock()
	s.handleDisconnect()

	if got := s.State(); got != StateError {
		t.Fatalf("state after cap = %v, want error", got)
	}
	if s.LastError() == nil {
		t.Fatalf("fatal condition must be reported upward")
	}

	// A further disconnect event does not resume attempts.
	s.handleDisconnect()
	if got := s.State(); got != StateError {
		t.Fatalf("disconnect after fatal changed state to %v", got)
	}
}

func TestConnectIsIdempotentWhileActive(t *testing.T) {
	s := NewSession("example.invalid:7415", "runner")

	s.mu.Lock()
	s.state = StateConnected
	s.mu.Unlock()

	s.Connect() // must not reset or redial
	if got := s.State(); got != StateConnected {
		t.Fatalf("Connect while connected moved state to %v", got)
	}
}

func TestObservePongHalvesRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSession("example.invalid:7415", "runner")

	s.observePong(1_000, 1_080) // 80 ms RTT
	if got := s.Latency(); got != 40*time.Millisecond {
		t.Fatalf("latency = %v, want 40ms", got)
	}

	// Last sample wins, no smoothing.
	s.observePong(2_000, 2_010)
	if got := s.Latency(); got != 5*time.Millisecond {
		t.Fatalf("latency = %v, want 5ms", got)
	}

	// A clock hiccup never yields negative latency.
	s.observePong(3_000, 2_990)
	if got := s.Latency(); got != 0 {
		t.Fatalf("latency = %v, want 0", got)
	}
}

func TestObserveTimeSyncOffsetsServerNow(t *testing.T) {
	t.Parallel()

	s := NewSession("example.invalid:7415", "runner")
	s.observeTimeSync(500_000, 490_000)

	if got := s.ClockOffset(); got != 10_000 {
		t.Fatalf("clock offset = %d, want 10000", got)
	}

	local := time.Now().UnixMilli()
	server := s.ServerNow()
	if diff := server - local - 10_000; diff < -50 || diff > 50 {
		t.Fatalf("ServerNow drifted %dms from expected offset", diff)
	}
}

func TestCheckHealthForcesReconnectOnSilence(t *testing.T) {
	s := NewSession("example.invalid:7415", "runner")

	s.mu.Lock()
	s.state = StateConnected
	s.lastServerMsg = time.Now().Add(-netconfig.StaleTimeout - time.Second)
	s.mu.Unlock()

	s.CheckHealth(time.Now())
	stopPendingRedial(s)

	if got := s.State(); got != StateReconnecting {
		t.Fatalf("state after silent timeout = %v, want reconnecting", got)
	}
}

func TestCheckHealthQuietWhileHealthy(t *testing.T) {
	t.Parallel()

	s := NewSession("example.invalid:7415", "runner")
	s.mu.Lock()
	s.state = StateConnected
	s.lastServerMsg = time.Now()
	s.mu.Unlock()

	s.CheckHealth(time.Now())
	if got := s.State(); got != StateConnected {
		t.Fatalf("healthy session moved to %v", got)
	}
}

func TestConnStateString(t *testing.T) {
	t.Parallel()

	cases := map[ConnState]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateConnected:    "connected",
		StateReconnecting: "reconnecting",
		StateError:        "error",
		ConnState(99):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%d.String() = %q, want %q", state, got, want)
		}
	}
}
