package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/geom"
)

// NoAltitude is returned by Altitude when the body has no floor below it.
const NoAltitude = -1

// Speed returns the authoritative velocity of e, zero without one.
func (w *World) Speed(e ecs.Entity) mgl64.Vec3 {
	if n := w.node(e); n != nil && n.Velocity != nil {
		return n.Velocity.Speed
	}
	return mgl64.Vec3{}
}

// SetSpeed sets the velocity of e, attaching one when missing.
func (w *World) SetSpeed(e ecs.Entity, speed mgl64.Vec3) error {
	if n := w.node(e); n != nil && n.Velocity != nil {
		n.Velocity.Speed = speed
		return nil
	}
	return w.AttachVelocity(e, speed)
}

// SpeedFactor returns the integration scale of e, 1 without a velocity.
func (w *World) SpeedFactor(e ecs.Entity) float64 {
	if n := w.node(e); n != nil && n.Velocity != nil {
		return n.Velocity.Factor
	}
	return 1
}

// SetSpeedFactor scales how far e moves per frame without touching its
// stored speed.
func (w *World) SetSpeedFactor(e ecs.Entity, factor float64) error {
	n := w.node(e)
	if n == nil || n.Velocity == nil {
		return fmt.Errorf("set speed factor of %v: %w", e, ErrNoNode)
	}
	n.Velocity.Factor = factor
	return nil
}

// ActualSpeed is the displacement of e over the last frame, including every
// correction the resolver applied.
func (w *World) ActualSpeed(e ecs.Entity) mgl64.Vec3 {
	n := w.node(e)
	if n == nil {
		return mgl64.Vec3{}
	}
	prev, ok := n.Velocity.previous(0)
	if !ok {
		return mgl64.Vec3{}
	}
	return w.tree.Position(e).Sub(prev)
}

// Acceleration is the change of ActualSpeed over the last two frames.
func (w *World) Acceleration(e ecs.Entity) mgl64.Vec3 {
	n := w.node(e)
	if n == nil {
		return mgl64.Vec3{}
	}
	p0, ok0 := n.Velocity.previous(0)
	p1, ok1 := n.Velocity.previous(1)
	if !ok0 || !ok1 {
		return mgl64.Vec3{}
	}
	return w.tree.Position(e).Sub(p0).Sub(p0.Sub(p1))
}

// Altitude returns the distance between e's bottom and the floor below it,
// or NoAltitude.
func (w *World) Altitude(e ecs.Entity) float64 {
	b, err := w.body(e)
	if err != nil || !b.State.HasAltitude {
		return NoAltitude
	}
	return b.State.Altitude
}

// HasAltitude reports whether a floor was found below e last frame.
func (w *World) HasAltitude(e ecs.Entity) bool {
	b, err := w.body(e)
	return err == nil && b.State.HasAltitude
}

// IsGrounded reports whether e landed on something this frame.
func (w *World) IsGrounded(e ecs.Entity) bool {
	return w.GroundEntity(e) != ecs.Nil
}

// GroundEntity returns what e stands on, ecs.Nil when airborne.
func (w *World) GroundEntity(e ecs.Entity) ecs.Entity {
	b, err := w.body(e)
	if err != nil {
		return ecs.Nil
	}
	return b.State.Ground
}

// JustLanded reports whether e touched down during the last update after
// being airborne.
func (w *World) JustLanded(e ecs.Entity) bool {
	b, err := w.body(e)
	return err == nil && b.State.LandedFrame == w.frame
}

// Bounces returns how many times e bounced since it was attached.
func (w *World) Bounces(e ecs.Entity) int {
	b, err := w.body(e)
	if err != nil {
		return 0
	}
	return b.State.Bounces
}

// PenetrationResponse returns the share of body-vs-body penetration e
// yields, 0 without a body.
func (w *World) PenetrationResponse(e ecs.Entity) float64 {
	b, err := w.body(e)
	if err != nil {
		return 0
	}
	return b.Desc.Response
}

// IsStatic reports whether e's body never moves by itself. Sleep and pause
// are per-frame conditions and are not included.
func (w *World) IsStatic(e ecs.Entity) bool {
	n := w.node(e)
	if n == nil || n.Body == nil {
		return false
	}
	return w.staticBody(n)
}

func (w *World) staticBody(n *Node) bool {
	b := n.Body
	if !b.staticKnown {
		b.static = n.Velocity == nil
		b.staticKnown = true
	}
	return b.static
}

// Sleep freezes e's body for the given number of frames, counted from the
// last update.
func (w *World) Sleep(e ecs.Entity, frames int64) error {
	b, err := w.body(e)
	if err != nil {
		return err
	}
	b.State.AwakeFrame = w.frame + frames
	return nil
}

// Wake cancels a pending sleep.
func (w *World) Wake(e ecs.Entity) {
	if b, err := w.body(e); err == nil {
		b.State.AwakeFrame = 0
	}
}

// IsSleeping reports whether e's body is frozen at the next update.
func (w *World) IsSleeping(e ecs.Entity) bool {
	b, err := w.body(e)
	return err == nil && w.frame+1 < b.State.AwakeFrame
}

// SetGroup registers or replaces a collision group.
func (w *World) SetGroup(g CollisionGroup) error {
	return w.groups.put(g)
}

// Group returns a registered group. Unregistered ids report false and a
// group that collides with everything.
func (w *World) Group(id int) (CollisionGroup, bool) {
	return w.groups.get(id)
}

// SetGroupMask replaces the mask of a group, registering it when needed.
func (w *World) SetGroupMask(id int, mask uint32) error {
	g, _ := w.groups.get(id)
	g.ID = id
	g.Mask = mask
	return w.groups.put(g)
}

// CanCollide reports whether hit boxes of groups a and b interact. Both
// masks must allow the other group.
func (w *World) CanCollide(a, b int) bool {
	return w.groups.canCollide(a, b)
}

// AttachCollider replaces e's hit boxes.
func (w *World) AttachCollider(e ecs.Entity, boxes ...HitBox) error {
	for i, b := range boxes {
		if err := validateHitBox(b); err != nil {
			return fmt.Errorf("attach collider to %v box %d: %w", e, i, err)
		}
	}
	n, err := w.ensureNode(e)
	if err != nil {
		return err
	}
	if n.Collider != nil {
		w.sensorPairs.removeEntity(e)
	}
	n.Collider = &Collider{Enabled: true, Boxes: append([]HitBox(nil), boxes...)}
	return nil
}

// DetachCollider removes e's hit boxes and their contacts.
func (w *World) DetachCollider(e ecs.Entity) {
	n := w.node(e)
	if n == nil || n.Collider == nil {
		return
	}
	n.Collider = nil
	w.sensorPairs.removeEntity(e)
	w.dropIfEmpty(n)
}

func validateHitBox(b HitBox) error {
	if !validGroup(b.Group) {
		return fmt.Errorf("group %d: %w", b.Group, ErrInvalidGroup)
	}
	if b.HalfExtents.X() < 0 || b.HalfExtents.Y() < 0 || b.HalfExtents.Z() < 0 {
		return fmt.Errorf("half extents %v: %w", b.HalfExtents, ErrInvalidHitBox)
	}
	return nil
}

// AddHitBox appends a hit box to e, creating the collider when needed.
func (w *World) AddHitBox(e ecs.Entity, box HitBox) (HitBoxRef, error) {
	if err := validateHitBox(box); err != nil {
		return HitBoxRef{}, fmt.Errorf("add hit box to %v: %w", e, err)
	}
	n, err := w.ensureNode(e)
	if err != nil {
		return HitBoxRef{}, err
	}
	if n.Collider == nil {
		n.Collider = &Collider{Enabled: true}
	}
	n.Collider.Boxes = append(n.Collider.Boxes, box)
	return HitBoxRef{Entity: e, Index: len(n.Collider.Boxes) - 1}, nil
}

func (w *World) hitBox(ref HitBoxRef) (*HitBox, bool) {
	n := w.node(ref.Entity)
	if n == nil {
		return nil, false
	}
	return n.Collider.box(ref.Index)
}

// HitBox returns a copy of the referenced hit box.
func (w *World) HitBox(ref HitBoxRef) (HitBox, bool) {
	b, ok := w.hitBox(ref)
	if !ok {
		return HitBox{}, false
	}
	return *b, true
}

// HitBoxes returns a copy of e's hit boxes.
func (w *World) HitBoxes(e ecs.Entity) []HitBox {
	n := w.node(e)
	if n == nil || n.Collider == nil {
		return nil
	}
	return append([]HitBox(nil), n.Collider.Boxes...)
}

// SetHitBoxEnabled toggles one hit box.
func (w *World) SetHitBoxEnabled(ref HitBoxRef, enabled bool) error {
	b, ok := w.hitBox(ref)
	if !ok {
		return fmt.Errorf("hit box %v/%d: %w", ref.Entity, ref.Index, ErrNoCollider)
	}
	b.Enabled = enabled
	return nil
}

// SetColliderEnabled toggles every hit box of e at once.
func (w *World) SetColliderEnabled(e ecs.Entity, enabled bool) error {
	n := w.node(e)
	if n == nil || n.Collider == nil {
		return fmt.Errorf("entity %v: %w", e, ErrNoCollider)
	}
	n.Collider.Enabled = enabled
	return nil
}

// HitBoxWorldAABB returns the world space box of a hit box. Negative X scale
// mirrors the local center.
func (w *World) HitBoxWorldAABB(ref HitBoxRef) (geom.AABB, bool) {
	b, ok := w.hitBox(ref)
	if !ok {
		return geom.AABB{}, false
	}
	return w.hitBoxAABB(ref.Entity, b), true
}

func (w *World) hitBoxAABB(e ecs.Entity, b *HitBox) geom.AABB {
	c := b.Center
	if w.tree.Scale(e).X() < 0 {
		c[0] = -c[0]
	}
	return geom.NewAABB(w.tree.Position(e).Add(c), b.HalfExtents)
}

// BodyHits returns the body contacts involving e.
func (w *World) BodyHits(e ecs.Entity) []HitPair {
	return collectPairs(w.bodyPairs, e)
}

// SensorHits returns the sensor contacts involving e.
func (w *World) SensorHits(e ecs.Entity) []HitPair {
	return collectPairs(w.sensorPairs, e)
}

func collectPairs(t *pairTable, e ecs.Entity) []HitPair {
	var out []HitPair
	t.each(func(p *HitPair) {
		if p.Involves(e) {
			out = append(out, *p)
		}
	})
	return out
}

// BodyPair looks up the contact between two bodies.
func (w *World) BodyPair(a, b ecs.Entity) (HitPair, bool) {
	p, ok := w.bodyPairs.find(bodyRef(a), bodyRef(b))
	if !ok {
		return HitPair{}, false
	}
	return *p, true
}

// SensorPair looks up the contact between two hit boxes.
func (w *World) SensorPair(a, b HitBoxRef) (HitPair, bool) {
	p, ok := w.sensorPairs.find(a, b)
	if !ok {
		return HitPair{}, false
	}
	return *p, true
}

// ForEachBodyPair visits body contacts in detection order.
func (w *World) ForEachBodyPair(fn func(HitPair)) {
	w.bodyPairs.each(func(p *HitPair) { fn(*p) })
}

// ForEachSensorPair visits sensor contacts in detection order.
func (w *World) ForEachSensorPair(fn func(HitPair)) {
	w.sensorPairs.each(func(p *HitPair) { fn(*p) })
}

// Entities returns every entity with a physics record, in attach order.
func (w *World) Entities() []ecs.Entity {
	return append([]ecs.Entity(nil), w.order...)
}

// ForEachBody visits every body in attach order.
func (w *World) ForEachBody(fn func(e ecs.Entity, b *Body)) {
	for _, e := range w.order {
		if n := w.nodes[e]; n.Body != nil {
			fn(e, n.Body)
		}
	}
}

// ForEachHitBox visits every hit box in attach order.
func (w *World) ForEachHitBox(fn func(ref HitBoxRef, b *HitBox)) {
	for _, e := range w.order {
		n := w.nodes[e]
		if n.Collider == nil {
			continue
		}
		for i := range n.Collider.Boxes {
			fn(HitBoxRef{Entity: e, Index: i}, &n.Collider.Boxes[i])
		}
	}
}
