package network

import (
	"log"
	"time"

	"github.com/bitvolt/gridrunner-mp/components"
	"github.com/bitvolt/gridrunner-mp/shared/gamemath"
	"github.com/bitvolt/gridrunner-mp/shared/messages"
	"github.com/bitvolt/gridrunner-mp/shared/netcomponents"
	"github.com/bitvolt/gridrunner-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync"
	"github.com/yohamta/donburi"
)

// Options tunes the synchronization core. Zero values fall back to the
// netconfig defaults via DefaultOptions.
type Options struct {
	PredictionEnabled   bool
	SendInterval        time.Duration
	MaxPendingCommands  int
	ReconcileTolerance  float64
	ReplayStepSecs      float64
	InterpolationDelay  time.Duration
	InterpolationWindow time.Duration
}

func DefaultOptions() Options {
	return Options{
		PredictionEnabled:   true,
		SendInterval:        netconfig.MoveSendInterval,
		MaxPendingCommands:  netconfig.MaxPendingCommands,
		ReconcileTolerance:  netconfig.ReconcileTolerance,
		ReplayStepSecs:      netconfig.ReplayStepSeconds,
		InterpolationDelay:  netconfig.InterpolationDelay,
		InterpolationWindow: netconfig.InterpolationWindow,
	}
}

// PlayerView is the read model handed to every downstream consumer
// (collision checks, damage-number placement, rendering). It is a value
// copy; mutating it never touches registry state.
type PlayerView struct {
	ID       esync.NetworkId
	Username string
	X, Y     float64
	VelX     float64
	VelY     float64
	Facing   float64
	IsLocal  bool
}

// SyncManager is the single entry point the rest of the game uses for
// multiplayer state: it accepts local movement intents, exposes the
// renderable player list, and runs the per-frame update that drives
// reconciliation, interpolation, and connection health checks.
//
// All methods must be called from the game loop goroutine. Network
// handlers only enqueue onto session channels; this type is the sole
// writer of entity state.
type SyncManager struct {
	world   donburi.World
	session *Session
	opts    Options

	buffer     *PredictionBuffer
	reconciler *Reconciler
	smoother   CorrectionSmoother

	sendFn func(any) error

	seq          uint64
	lastSendTime time.Time
	localID      esync.NetworkId
	localSet     bool

	now       func() time.Time
	serverNow func() int64
}

// NewSyncManager wires the facade to a donburi world and a session. The
// session may be nil (offline/solo mode); every networked operation then
// degrades to a no-op.
func NewSyncManager(world donburi.World, sess *Session, opts Options) *SyncManager {
	if opts.SendInterval <= 0 {
		opts.SendInterval = netconfig.MoveSendInterval
	}
	if opts.MaxPendingCommands <= 0 {
		opts.MaxPendingCommands = netconfig.MaxPendingCommands
	}
	if opts.ReplayStepSecs <= 0 {
		opts.ReplayStepSecs = netconfig.ReplayStepSeconds
	}
	if opts.InterpolationDelay <= 0 {
		opts.InterpolationDelay = netconfig.InterpolationDelay
	}
	if opts.InterpolationWindow <= 0 {
		opts.InterpolationWindow = netconfig.InterpolationWindow
	}

	m := &SyncManager{
		world:   world,
		session: sess,
		opts:    opts,
		now:     time.Now,
	}
	m.buffer = NewPredictionBuffer(opts.MaxPendingCommands)
	m.reconciler = NewReconciler(m.buffer, opts.ReconcileTolerance, opts.ReplayStepSecs)
	if sess != nil {
		m.sendFn = sess.SendMessage
		m.serverNow = sess.ServerNow
	} else {
		m.serverNow = func() int64 { return time.Now().UnixMilli() }
	}
	return m
}

// Connect starts the session (no-op without one).
func (m *SyncManager) Connect() {
	if m.session != nil {
		m.session.Connect()
	}
}

// SetLocalPlayer creates (or re-targets) the locally controlled entity.
func (m *SyncManager) SetLocalPlayer(id esync.NetworkId, username string, x, y float64) {
	m.localID = id
	m.localSet = true

	entry := m.findPlayer(id)
	if entry == nil {
		m.createPlayer(id, username, netcomponents.EntitySnapshot{X: x, Y: y}, true)
		return
	}
	pos := netcomponents.NetPosition.Get(entry)
	pos.X, pos.Y = x, y
	state := netcomponents.NetPlayerState.Get(entry)
	state.Username = username
	state.IsLocal = true
}

// SendMovement samples a local movement intent: applies it immediately
// (prediction), records it for reconciliation, and transmits it. Calls
// arriving faster than the configured interval are dropped silently
// without consuming a sequence number — a sampling policy, not an error.
func (m *SyncManager) SendMovement(x, y, velX, velY, facing float64) {
	if !m.localSet || m.sendFn == nil {
		return
	}
	now := m.now()
	if !m.lastSendTime.IsZero() && now.Sub(m.lastSendTime) < m.opts.SendInterval {
		return
	}

	m.seq++
	snap := netcomponents.EntitySnapshot{
		X: x, Y: y,
		SpeedX: velX, SpeedY: velY,
		Facing:    facing,
		Timestamp: m.serverNow(),
	}

	if m.opts.PredictionEnabled {
		m.applyLocal(snap)
		m.buffer.Store(PendingCommand{
			Sequence:   m.seq,
			Snapshot:   snap,
			ClientTime: now.UnixMilli(),
		})
	}

	if err := m.sendFn(messages.PlayerMove{
		Sequence:  m.seq,
		X:         x,
		Y:         y,
		VelX:      velX,
		VelY:      velY,
		Facing:    facing,
		Timestamp: snap.Timestamp,
	}); err != nil {
		log.Printf("[sync] move send failed: %v", err)
	}
	m.lastSendTime = now
}

// SetPrediction toggles client-side prediction. Disabling it clears the
// command history; local state then follows server updates verbatim.
func (m *SyncManager) SetPrediction(enabled bool) {
	m.opts.PredictionEnabled = enabled
	if !enabled {
		m.buffer.Clear()
	}
}

// Update runs once per frame: drains queued network events, reconciles,
// advances remote interpolation, and checks connection health. dt is the
// frame delta in seconds.
func (m *SyncManager) Update(dt float64) {
	if m.session != nil {
		m.drainSession()
		m.session.CheckHealth(m.now())
	}
	m.advanceInterpolation()
	m.smoother.Update(dt)
}

func (m *SyncManager) drainSession() {
	if !m.localSet && m.session.Joined() {
		// Server assigned our id during the handshake.
		m.localID = m.session.PlayerID()
		m.localSet = m.localID != 0
	}

	select {
	case <-m.session.resetCh:
		// Anything still queued was enqueued before the drop and
		// describes the dead connection.
		m.session.flushInbound()
		m.clearRemotePlayers()
	default:
	}

	select {
	case sync := <-m.session.syncCh:
		m.applySync(sync)
	default:
	}

	for {
		select {
		case msg := <-m.session.joinedCh:
			m.applyJoined(msg)
			continue
		default:
		}
		break
	}
	for {
		select {
		case msg := <-m.session.leftCh:
			m.applyLeft(msg)
			continue
		default:
		}
		break
	}
	for {
		select {
		case msg := <-m.session.updateCh:
			m.applyUpdate(msg)
			continue
		default:
		}
		break
	}
	for {
		select {
		case ack := <-m.session.ackCh:
			m.applyAck(ack)
			continue
		default:
		}
		break
	}
}

// applySync rebuilds the roster from a full-state snapshot. Players absent
// from the sync no longer exist and are swept, except the local entity.
func (m *SyncManager) applySync(sync messages.PlayerSync) {
	present := make(map[esync.NetworkId]bool, len(sync.Players))
	for _, p := range sync.Players {
		present[p.PlayerID] = true
		snap := snapshotFromSync(p)

		entry := m.findPlayer(p.PlayerID)
		if entry == nil {
			entry = m.createPlayer(p.PlayerID, p.Username, snap, m.localSet && p.PlayerID == m.localID)
		}
		state := netcomponents.NetPlayerState.Get(entry)
		state.Username = p.Username

		if m.localSet && p.PlayerID == m.localID {
			if !m.opts.PredictionEnabled || m.buffer.Len() == 0 {
				m.setEntryState(entry, snap)
			}
			// With pending predictions, acks own local corrections.
			continue
		}
		interp := components.NetInterp.Get(entry)
		interp.Push(snap, m.opts.InterpolationWindow.Milliseconds())
	}

	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil || present[*id] {
			return
		}
		if m.localSet && *id == m.localID {
			return
		}
		entry.Remove()
	})
}

func (m *SyncManager) applyJoined(msg messages.PlayerJoined) {
	if m.localSet && msg.PlayerID == m.localID {
		return // our own join echoed back
	}
	if m.findPlayer(msg.PlayerID) != nil {
		return
	}
	m.createPlayer(msg.PlayerID, msg.Username, netcomponents.EntitySnapshot{
		X: msg.X, Y: msg.Y, Timestamp: msg.Timestamp,
	}, false)
	log.Printf("[sync] player %d (%s) joined", msg.PlayerID, msg.Username)
}

func (m *SyncManager) applyLeft(msg messages.PlayerLeft) {
	if m.localSet && msg.PlayerID == m.localID {
		return
	}
	if entry := m.findPlayer(msg.PlayerID); entry != nil {
		entry.Remove()
		log.Printf("[sync] player %d left", msg.PlayerID)
	}
}

// applyUpdate routes one inbound state update. Updates addressed to the
// local player are authoritative pushes (forced respawn, teleport): they
// bypass reconciliation and overwrite local state unconditionally. Remote
// updates become interpolation samples.
func (m *SyncManager) applyUpdate(msg messages.PlayerUpdate) {
	snap := netcomponents.EntitySnapshot{
		X: msg.X, Y: msg.Y,
		SpeedX: msg.VelX, SpeedY: msg.VelY,
		Facing:    msg.Facing,
		Timestamp: msg.Timestamp,
	}

	if m.localSet && msg.PlayerID == m.localID {
		entry := m.findPlayer(m.localID)
		if entry == nil {
			return
		}
		m.setEntryState(entry, snap)
		// Predictions made before the push describe a dead trajectory.
		m.buffer.Clear()
		return
	}

	entry := m.findPlayer(msg.PlayerID)
	if entry == nil {
		// Unknown remote id: stale or raced with the join broadcast.
		log.Printf("[sync] update for unknown player %d ignored", msg.PlayerID)
		return
	}
	state := netcomponents.NetPlayerState.Get(entry)
	if msg.Sequence > state.LastSequence {
		state.LastSequence = msg.Sequence
	}
	interp := components.NetInterp.Get(entry)

	if prev, ok := interp.Latest(); ok && snap.Timestamp > prev.Timestamp {
		elapsed := float64(snap.Timestamp-prev.Timestamp) / 1000
		if dist := gamemath.Dist(prev.X, prev.Y, snap.X, snap.Y); dist/elapsed > netconfig.MaxPlausibleSpeed {
			// Implausible jump: stop trusting the stream rather than
			// rendering garbage.
			log.Printf("[sync] player %d moved %.0f units in %.0fms, forcing reconnect",
				msg.PlayerID, dist, elapsed*1000)
			if m.session != nil {
				m.session.ForceReconnect()
			}
			return
		}
	}

	interp.Push(snap, m.opts.InterpolationWindow.Milliseconds())
}

func (m *SyncManager) applyAck(ack messages.MovementAck) {
	if !m.localSet {
		return
	}
	entry := m.findPlayer(m.localID)
	if entry == nil {
		return
	}
	state := netcomponents.NetPlayerState.Get(entry)
	if ack.Sequence > state.LastSequence {
		state.LastSequence = ack.Sequence
	}
	if !m.opts.PredictionEnabled {
		return
	}
	pos := netcomponents.NetPosition.Get(entry)
	vel := netcomponents.NetVelocity.Get(entry)

	oldX, oldY := pos.X, pos.Y
	if dist := m.reconciler.HandleAck(ack, pos, vel); dist > 0 {
		m.smoother.NoteCorrection(oldX-pos.X, oldY-pos.Y)
	}
}

// advanceInterpolation moves every remote entity to its state at
// playback time (server now minus the interpolation delay).
func (m *SyncManager) advanceInterpolation() {
	playback := m.serverNow() - m.opts.InterpolationDelay.Milliseconds()

	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		if !entry.HasComponent(components.NetInterp) {
			return
		}
		interp := components.NetInterp.Get(entry)
		snap, ok := interp.SampleAt(playback)
		if !ok {
			return
		}
		m.setEntryState(entry, snap)
	})
}

func (m *SyncManager) clearRemotePlayers() {
	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil {
			return
		}
		if m.localSet && *id == m.localID {
			return
		}
		entry.Remove()
	})
}

// RemotePlayers returns value copies of every remote player.
func (m *SyncManager) RemotePlayers() []PlayerView {
	return m.players(false)
}

// AllPlayers returns value copies of every player, local included.
func (m *SyncManager) AllPlayers() []PlayerView {
	return m.players(true)
}

func (m *SyncManager) players(includeLocal bool) []PlayerView {
	var out []PlayerView
	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		id := esync.GetNetworkId(entry)
		if id == nil {
			return
		}
		isLocal := m.localSet && *id == m.localID
		if isLocal && !includeLocal {
			return
		}
		if !entry.HasComponent(netcomponents.NetPosition) {
			return
		}
		pos := netcomponents.NetPosition.Get(entry)
		vel := netcomponents.NetVelocity.Get(entry)
		facing := netcomponents.NetFacing.Get(entry)
		state := netcomponents.NetPlayerState.Get(entry)
		out = append(out, PlayerView{
			ID:       *id,
			Username: state.Username,
			X:        pos.X,
			Y:        pos.Y,
			VelX:     vel.SpeedX,
			VelY:     vel.SpeedY,
			Facing:   facing.Angle,
			IsLocal:  isLocal,
		})
	})
	return out
}

// IsConnected reports whether the session is connected and joined.
func (m *SyncManager) IsConnected() bool {
	return m.session != nil && m.session.State() == StateConnected && m.session.Joined()
}

// Latency returns the most recent one-way latency estimate.
func (m *SyncManager) Latency() time.Duration {
	if m.session == nil {
		return 0
	}
	return m.session.Latency()
}

// LocalRenderOffset is the decaying visual offset to add to the local
// player's position when rendering, hiding reconciliation snaps.
func (m *SyncManager) LocalRenderOffset() (x, y float64) {
	return m.smoother.Offset()
}

// PendingCommands reports the current prediction backlog size.
func (m *SyncManager) PendingCommands() int {
	return m.buffer.Len()
}

// Destroy tears down the session and removes every synced entity.
func (m *SyncManager) Destroy() {
	if m.session != nil {
		m.session.Destroy()
	}
	esync.NetworkEntityQuery.Each(m.world, func(entry *donburi.Entry) {
		entry.Remove()
	})
	m.buffer.Clear()
	m.localSet = false
	m.localID = 0
}

func (m *SyncManager) findPlayer(id esync.NetworkId) *donburi.Entry {
	entity := esync.FindByNetworkId(m.world, id)
	if !m.world.Valid(entity) {
		return nil
	}
	return m.world.Entry(entity)
}

func (m *SyncManager) createPlayer(id esync.NetworkId, username string, snap netcomponents.EntitySnapshot, isLocal bool) *donburi.Entry {
	ctypes := []donburi.IComponentType{
		esync.NetworkIdComponent,
		netcomponents.NetPosition,
		netcomponents.NetVelocity,
		netcomponents.NetFacing,
		netcomponents.NetPlayerState,
	}
	if !isLocal {
		ctypes = append(ctypes, components.NetInterp)
	}
	entity := m.world.Create(ctypes...)
	entry := m.world.Entry(entity)

	esync.NetworkIdComponent.SetValue(entry, id)
	netcomponents.NetPlayerState.SetValue(entry, netcomponents.NetPlayerStateData{
		Username: username,
		IsLocal:  isLocal,
	})
	m.setEntryState(entry, snap)
	if !isLocal {
		interp := components.NetInterp.Get(entry)
		if snap.Timestamp != 0 {
			interp.Push(snap, m.opts.InterpolationWindow.Milliseconds())
		}
	}
	return entry
}

func (m *SyncManager) applyLocal(snap netcomponents.EntitySnapshot) {
	if entry := m.findPlayer(m.localID); entry != nil {
		m.setEntryState(entry, snap)
	}
}

func (m *SyncManager) setEntryState(entry *donburi.Entry, snap netcomponents.EntitySnapshot) {
	pos := netcomponents.NetPosition.Get(entry)
	pos.X, pos.Y = snap.X, snap.Y
	vel := netcomponents.NetVelocity.Get(entry)
	vel.SpeedX, vel.SpeedY = snap.SpeedX, snap.SpeedY
	facing := netcomponents.NetFacing.Get(entry)
	facing.Angle = snap.Facing
}

func snapshotFromSync(p messages.PlayerSnapshot) netcomponents.EntitySnapshot {
	return netcomponents.EntitySnapshot{
		X: p.X, Y: p.Y,
		SpeedX: p.VelX, SpeedY: p.VelY,
		Facing:    p.Facing,
		Timestamp: p.Timestamp,
	}
}
