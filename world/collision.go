// Package world is the collision collaborator consumed by
// movement-adjacent systems. It shares the position data model with the
// sync core but is read-only from its point of view.
package world

import (
	"github.com/bitvolt/gridrunner-mp/shared/gamemath"
	"github.com/solarlune/resolv"
)

const (
	TagSolid = "solid"

	// movementStep is the sampling resolution (world units) used when
	// sweeping a movement segment for blockers.
	movementStep = 4.0
)

// CollisionWorld wraps a resolv space holding the level's solid geometry.
type CollisionWorld struct {
	space  *resolv.Space
	width  int
	height int
}

// New builds an empty collision world of the given pixel dimensions.
func New(width, height int) *CollisionWorld {
	return &CollisionWorld{
		space:  resolv.NewSpace(width, height, 16, 16),
		width:  width,
		height: height,
	}
}

// AddSolid inserts one solid rectangle.
func (w *CollisionWorld) AddSolid(x, y, width, height float64) {
	obj := resolv.NewObject(x, y, width, height, TagSolid)
	obj.SetShape(resolv.NewRectangle(0, 0, width, height))
	w.space.Add(obj)
}

// Space exposes the underlying resolv space for systems that resolve
// their own movement (client-side prediction physics).
func (w *CollisionWorld) Space() *resolv.Space {
	return w.space
}

// IsBlocked reports whether the point lies inside solid geometry or
// outside the level bounds.
func (w *CollisionWorld) IsBlocked(x, y float64) bool {
	if x < 0 || y < 0 || x >= float64(w.width) || y >= float64(w.height) {
		return true
	}
	for _, obj := range w.space.Objects() {
		if !obj.HasTags(TagSolid) {
			continue
		}
		if x >= obj.X && x < obj.X+obj.W && y >= obj.Y && y < obj.Y+obj.H {
			return true
		}
	}
	return false
}

// IsMovementBlocked sweeps the segment from (fromX,fromY) to (toX,toY)
// and reports whether any sampled point along it is blocked. The endpoint
// is always checked exactly.
func (w *CollisionWorld) IsMovementBlocked(fromX, fromY, toX, toY float64) bool {
	dx := toX - fromX
	dy := toY - fromY
	dist := gamemath.Dist(fromX, fromY, toX, toY)
	if dist == 0 {
		return w.IsBlocked(toX, toY)
	}

	steps := int(dist/movementStep) + 1
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		if w.IsBlocked(fromX+dx*f, fromY+dy*f) {
			return true
		}
	}
	return false
}
