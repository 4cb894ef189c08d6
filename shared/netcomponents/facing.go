package netcomponents

import (
	"github.com/bitvolt/gridrunner-mp/shared/gamemath"
	"github.com/yohamta/donburi"
)

// NetFacingData is the entity's facing in degrees, [0, 360).
type NetFacingData struct {
	Angle float64
}

var NetFacing = donburi.NewComponentType[NetFacingData]()

// LerpNetFacing interpolates facing along the shorter angular path so a
// 350°→10° transition never spins through 180°.
func LerpNetFacing(from, to NetFacingData, t float64) *NetFacingData {
	return &NetFacingData{
		Angle: gamemath.LerpAngle(from.Angle, to.Angle, t),
	}
}
