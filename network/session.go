package network

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bitvolt/gridrunner-mp/shared/messages"
	"github.com/bitvolt/gridrunner-mp/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	// StateError is terminal: the reconnect attempt cap was exceeded.
	// Only a fresh Connect on a new session leaves it.
	StateError
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session owns the one logical connection to the game server: dialing,
// reconnection with backoff, heartbeat, and server clock offset. Inbound
// gameplay messages are queued on typed channels and drained by the
// SyncManager each frame, so handler goroutines never touch entity state.
// All shared fields are protected by mu (router callbacks run on necs
// goroutines).
type Session struct {
	mu sync.RWMutex

	state     ConnState
	lastError error
	closed    bool

	address        string
	username       string
	reconnectToken string

	playerID   esync.NetworkId
	serverName string
	tickRate   int
	joined     bool

	conn *websocket.Conn

	clockOffsetMs int64
	latency       time.Duration
	lastServerMsg time.Time

	reconnectAttempts int
	reconnectTimer    *time.Timer

	handlersOnce  sync.Once
	heartbeatOnce sync.Once
	heartbeatDone chan struct{}

	// Inbound queues, drained by SyncManager.Update. syncCh and resetCh
	// are size-1 latest-wins; the rest preserve per-type ordering.
	resetCh  chan struct{}
	syncCh   chan messages.PlayerSync
	joinedCh chan messages.PlayerJoined
	leftCh   chan messages.PlayerLeft
	updateCh chan messages.PlayerUpdate
	ackCh    chan messages.MovementAck
}

// NewSession creates a session for the given server address. The session
// does not dial until Connect is called.
func NewSession(address, username string) *Session {
	return &Session{
		state:          StateDisconnected,
		address:        address,
		username:       username,
		reconnectToken: uuid.NewString(),
		heartbeatDone:  make(chan struct{}),
		resetCh:        make(chan struct{}, 1),
		syncCh:         make(chan messages.PlayerSync, 1),
		joinedCh:       make(chan messages.PlayerJoined, 16),
		leftCh:         make(chan messages.PlayerLeft, 16),
		updateCh:       make(chan messages.PlayerUpdate, 256),
		ackCh:          make(chan messages.MovementAck, 64),
	}
}

// Connect dials the server in a background goroutine. Idempotent: calling
// it while connecting or connected is a no-op.
func (s *Session) Connect() {
	s.mu.Lock()
	if s.closed || s.state == StateConnecting || s.state == StateConnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.lastError = nil
	s.reconnectAttempts = 0
	s.mu.Unlock()

	s.handlersOnce.Do(s.registerHandlers)
	s.heartbeatOnce.Do(func() { go s.heartbeatLoop() })
	s.dial()
}

func (s *Session) registerHandlers() {
	router.OnConnect(func(_ *router.NetworkClient) {
		log.Printf("[session] connected to %s", s.address)
		s.mu.Lock()
		s.state = StateConnected
		s.reconnectAttempts = 0
		s.lastServerMsg = time.Now()
		token := s.reconnectToken
		name := s.username
		s.mu.Unlock()

		if err := s.SendMessage(messages.JoinRequest{
			Version:        netconfig.ProtocolVersion,
			Username:       name,
			ReconnectToken: token,
		}); err != nil {
			log.Printf("[session] join request failed: %v", err)
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[session] join accepted: playerID=%d server=%s tickRate=%d",
			msg.PlayerID, msg.ServerName, msg.TickRate)
		s.mu.Lock()
		s.playerID = msg.PlayerID
		s.reconnectToken = msg.ReconnectToken
		s.serverName = msg.ServerName
		s.tickRate = msg.TickRate
		s.joined = true
		s.lastServerMsg = time.Now()
		s.mu.Unlock()

		// Full resync after every (re)join; stale rosters must not survive.
		if err := s.SendMessage(messages.SyncRequest{Timestamp: s.ServerNow()}); err != nil {
			log.Printf("[session] sync request failed: %v", err)
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		s.fail(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.PlayerSync) {
		s.noteActivity()
		select { // drain stale, push latest
		case <-s.syncCh:
		default:
		}
		s.syncCh <- msg
	})

	router.On(func(_ *router.NetworkClient, msg messages.PlayerJoined) {
		s.noteActivity()
		select {
		case s.joinedCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.PlayerLeft) {
		s.noteActivity()
		select {
		case s.leftCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.PlayerUpdate) {
		s.noteActivity()
		select {
		case s.updateCh <- msg:
		default:
			// Queue full: drop the oldest so fresh state wins.
			select {
			case <-s.updateCh:
			default:
			}
			select {
			case s.updateCh <- msg:
			default:
			}
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.MovementAck) {
		s.noteActivity()
		select {
		case s.ackCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.Pong) {
		s.noteActivity()
		s.observePong(msg.Timestamp, time.Now().UnixMilli())
	})

	router.On(func(_ *router.NetworkClient, msg messages.TimeSync) {
		s.noteActivity()
		s.observeTimeSync(msg.ServerTime, time.Now().UnixMilli())
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[session] disconnected: %v", err)
		s.handleDisconnect()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[session] transport error: %v", err)
	})
}

func (s *Session) dial() {
	go func() {
		transport := transports.NewWsClientTransport("ws://" + s.address)
		err := transport.Start(func(conn *websocket.Conn) {
			s.mu.Lock()
			s.conn = conn
			s.mu.Unlock()
		})
		if err != nil {
			log.Printf("[session] dial %s: %v", s.address, err)
			s.handleDisconnect()
		}
	}()
}

// handleDisconnect reacts to any transport-level drop: marks the session
// disconnected, signals the SyncManager to clear remote state, and
// schedules a backoff redial. Once StateError is reached further drops are
// ignored for good.
func (s *Session) handleDisconnect() {
	s.mu.Lock()
	if s.closed || s.state == StateError || s.state == StateReconnecting {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.joined = false

	s.reconnectAttempts++
	if s.reconnectAttempts > netconfig.MaxReconnectAttempts {
		s.state = StateError
		s.lastError = fmt.Errorf("connection lost: gave up after %d reconnect attempts", netconfig.MaxReconnectAttempts)
		s.mu.Unlock()
		log.Printf("[session] %v", s.lastError)
		s.signalReset()
		return
	}

	s.state = StateReconnecting
	delay := netconfig.ReconnectBaseDelay * time.Duration(s.reconnectAttempts)
	attempt := s.reconnectAttempts
	s.reconnectTimer = time.AfterFunc(delay, s.redial)
	s.mu.Unlock()

	log.Printf("[session] reconnect attempt %d/%d in %s", attempt, netconfig.MaxReconnectAttempts, delay)
	s.signalReset()
}

func (s *Session) redial() {
	s.mu.Lock()
	// Superseded by a connect or teardown while the timer was pending.
	if s.closed || s.state != StateReconnecting {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.dial()
}

func (s *Session) heartbeatLoop() {
	ticker := time.NewTicker(netconfig.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.heartbeatDone:
			return
		case <-ticker.C:
			if s.State() != StateConnected {
				continue
			}
			if err := s.SendMessage(messages.Ping{Timestamp: time.Now().UnixMilli()}); err != nil {
				log.Printf("[session] ping failed: %v", err)
			}
		}
	}
}

// CheckHealth forces a disconnect-and-reconnect cycle when the server has
// gone silent past the stale timeout, catching failures the transport
// itself never reported.
func (s *Session) CheckHealth(now time.Time) {
	s.mu.Lock()
	stale := s.state == StateConnected &&
		!s.lastServerMsg.IsZero() &&
		now.Sub(s.lastServerMsg) > netconfig.StaleTimeout
	s.mu.Unlock()

	if !stale {
		return
	}
	log.Printf("[session] no server traffic for %s, forcing reconnect", netconfig.StaleTimeout)
	s.ForceReconnect()
}

// ForceReconnect tears the current connection down and lets the normal
// backoff cycle bring it back. Used when the client decides the stream
// can no longer be trusted (silent timeout, implausible data).
func (s *Session) ForceReconnect() {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn != nil {
		_ = conn.CloseNow() // transport OnDisconnect drives the redial
	} else {
		s.handleDisconnect()
	}
}

// SendMessage serializes and transmits one message. Returns an error when
// not connected; callers treat that as a dropped packet, not a crash.
func (s *Session) SendMessage(msg any) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// Destroy tears the session down: timers cleared, connection closed,
// router reset. The session cannot be reused afterwards.
func (s *Session) Destroy() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.joined = false
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.mu.Unlock()

	close(s.heartbeatDone)
	if conn != nil {
		_ = conn.CloseNow()
	}
	router.ResetRouter()
}

// observePong folds one pong echo into the latency estimate. One-way
// latency is half the round trip; the last sample wins, no smoothing.
func (s *Session) observePong(echoedMs, nowMs int64) {
	rtt := nowMs - echoedMs
	if rtt < 0 {
		rtt = 0
	}
	s.mu.Lock()
	s.latency = time.Duration(rtt) * time.Millisecond / 2
	s.mu.Unlock()
}

// observeTimeSync stores serverTime - localTime so later outgoing
// messages carry server-relative timestamps.
func (s *Session) observeTimeSync(serverMs, nowMs int64) {
	s.mu.Lock()
	s.clockOffsetMs = serverMs - nowMs
	s.mu.Unlock()
}

func (s *Session) noteActivity() {
	s.mu.Lock()
	s.lastServerMsg = time.Now()
	s.mu.Unlock()
}

// flushInbound discards every queued inbound gameplay message. Run when
// remote state is being cleared: messages a handler enqueued before the
// transport dropped must not resurrect a stale roster afterwards.
func (s *Session) flushInbound() {
	for {
		select {
		case <-s.syncCh:
		case <-s.joinedCh:
		case <-s.leftCh:
		case <-s.updateCh:
		case <-s.ackCh:
		default:
			return
		}
	}
}

func (s *Session) signalReset() {
	select {
	case s.resetCh <- struct{}{}:
	default:
	}
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err
	s.mu.Unlock()
	log.Printf("[session] fatal: %v", err)
	s.signalReset()
}

// ServerNow returns the current time on the server clock (Unix ms), using
// the most recent TimeSync offset. Outgoing messages are stamped with this
// so timestamps are comparable across machines.
func (s *Session) ServerNow() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().UnixMilli() + s.clockOffsetMs
}

// ClockOffset returns serverTime - localTime in milliseconds.
func (s *Session) ClockOffset() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clockOffsetMs
}

func (s *Session) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// PlayerID returns the server-assigned id for the local player, or 0
// before the join handshake completes.
func (s *Session) PlayerID() esync.NetworkId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

func (s *Session) ServerName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverName
}

func (s *Session) TickRate() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickRate
}

// Joined reports whether the join handshake has completed on the current
// connection.
func (s *Session) Joined() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.joined
}

// Latency returns the most recent one-way latency estimate (RTT/2).
func (s *Session) Latency() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latency
}
