package protocol

import (
	"github.com/bitvolt/gridrunner-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetPosition    uint = 10
	SyncIDNetVelocity    uint = 11
	SyncIDNetFacing      uint = 12
	SyncIDNetPlayerState uint = 13
)

// Interpolation IDs (uint8 for WithInterpFn)
const (
	InterpIDNetPosition uint8 = 10
	InterpIDNetVelocity uint8 = 11
	InterpIDNetFacing   uint8 = 12
)

// RegisterComponents registers all network components with necs for
// serialization. Both the server and the client must call this before any
// network operations so the sync IDs line up on the wire.
func RegisterComponents() error {
	if err := esync.RegisterComponent(
		SyncIDNetPosition,
		netcomponents.NetPositionData{},
		netcomponents.NetPosition,
		esync.WithInterpFn(InterpIDNetPosition, netcomponents.LerpNetPosition),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetVelocity,
		netcomponents.NetVelocityData{},
		netcomponents.NetVelocity,
		esync.WithInterpFn(InterpIDNetVelocity, netcomponents.LerpNetVelocity),
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetFacing,
		netcomponents.NetFacingData{},
		netcomponents.NetFacing,
		esync.WithInterpFn(InterpIDNetFacing, netcomponents.LerpNetFacing),
	); err != nil {
		return err
	}

	// PlayerState: no interpolation (discrete identity data)
	return esync.RegisterComponent(
		SyncIDNetPlayerState,
		netcomponents.NetPlayerStateData{},
		netcomponents.NetPlayerState,
	)
}
