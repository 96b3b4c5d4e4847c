package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

// HitBox is a trigger volume relative to its entity. It never moves
// anything; overlaps only produce notifications.
type HitBox struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
	Group       int
	Enabled     bool
	Tag         string
	Params      any
	// OnHit runs synchronously on every enter and stay frame.
	OnHit func(HitBoxEvent)
}

// HitBoxRef addresses a hit box by entity and index. Indexes are stable
// because hit boxes are only ever appended.
type HitBoxRef struct {
	Entity ecs.Entity
	Index  int
}

// NoHitBox marks a participant that is a body rather than a hit box.
const NoHitBox = -1

func bodyRef(e ecs.Entity) HitBoxRef {
	return HitBoxRef{Entity: e, Index: NoHitBox}
}

// IsBody reports whether the ref names a body participant.
func (r HitBoxRef) IsBody() bool {
	return r.Index == NoHitBox
}

// HitBoxEvent is passed to HitBox.OnHit.
type HitBoxEvent struct {
	Self     HitObject
	Other    HitObject
	IsRepeat bool
}

// Collider owns the hit boxes of one entity.
type Collider struct {
	Enabled bool
	Boxes   []HitBox
}

func (c *Collider) box(i int) (*HitBox, bool) {
	if c == nil || i < 0 || i >= len(c.Boxes) {
		return nil, false
	}
	return &c.Boxes[i], true
}
