package network

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const correctionBlendSeconds = 0.15

// CorrectionSmoother hides reconciliation snaps from the presentation
// layer. The authoritative position snaps exactly; this tracks the visual
// leftover (predicted minus corrected) and eases it back to zero, so the
// rendered player glides onto the corrected trajectory instead of popping.
type CorrectionSmoother struct {
	offsetX, offsetY float64
	tween            *gween.Tween
	scale            float64
}

// NoteCorrection records the displacement a snap just applied. dx/dy is
// old position minus new position. Successive corrections accumulate into
// whatever offset is still decaying.
func (cs *CorrectionSmoother) NoteCorrection(dx, dy float64) {
	cs.offsetX = cs.offsetX*cs.scale + dx
	cs.offsetY = cs.offsetY*cs.scale + dy
	cs.tween = gween.New(1, 0, correctionBlendSeconds, ease.OutQuad)
	cs.scale = 1
}

// Update advances the decay by dt seconds.
func (cs *CorrectionSmoother) Update(dt float64) {
	if cs.tween == nil {
		return
	}
	v, done := cs.tween.Update(float32(dt))
	cs.scale = float64(v)
	if done {
		cs.tween = nil
		cs.offsetX, cs.offsetY = 0, 0
		cs.scale = 0
	}
}

// Offset returns the current visual offset to add to the authoritative
// local position when rendering. Zero once the blend has finished.
func (cs *CorrectionSmoother) Offset() (x, y float64) {
	return cs.offsetX * cs.scale, cs.offsetY * cs.scale
}
