package netcomponents

import "github.com/yohamta/donburi"

type NetPlayerStateData struct {
	Username     string
	LastSequence uint64 // Last movement sequence processed by the server
	IsLocal      bool   // Client-side only, not synced
}

var NetPlayerState = donburi.NewComponentType[NetPlayerStateData]()
