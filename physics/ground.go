package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/geom"
)

// floorHeight returns the height of the walkable top of n under q.
func (w *World) floorHeight(n *Node, q mgl64.Vec3) (float64, bool) {
	p := w.tree.Position(n.Entity)
	switch s := n.Body.Shape.(type) {
	case Ground:
		return p.Y(), true
	case Plane:
		if !isFloorPlane(s) || !planeCovers(s, p, q) {
			return 0, false
		}
		return p.Y(), true
	case Box:
		if !geom.PointInRect(xz(q), geom.Rect(xz(p), s.HalfExtents.X(), s.HalfExtents.Z())) {
			return 0, false
		}
		return p.Y() + s.HalfExtents.Y(), true
	case ShearedBox:
		quad := geom.ShearedRect{Center: xz(p), HalfX: s.HalfExtents.X(), HalfZ: s.HalfExtents.Z(), Shear: s.ShearX}
		if !geom.PointInShearedRect(xz(q), quad) {
			return 0, false
		}
		return p.Y() + s.HalfExtents.Y(), true
	}
	return 0, false
}

// groundPoint picks the highest floor at or below q.Y+maxPenetration.
func (w *World) groundPoint(floors []*Node, q mgl64.Vec3, maxPenetration float64) (float64, *Node, bool) {
	var (
		best  = math.Inf(-1)
		found *Node
	)
	limit := q.Y() + maxPenetration
	for _, n := range floors {
		y, ok := w.floorHeight(n, q)
		if !ok || y > limit || y <= best {
			continue
		}
		best, found = y, n
	}
	return best, found, found != nil
}

// GroundPoint returns the floor below q among the static bodies currently
// attached, accepting floors up to maxPenetration above q.
func (w *World) GroundPoint(q mgl64.Vec3, maxPenetration float64) (float64, ecs.Entity, bool) {
	var floors terrainBuckets
	for _, e := range w.order {
		n := w.nodes[e]
		if n.Body.collides() && w.staticBody(n) && w.tree.EnabledInTree(e) {
			floors.add(n)
		}
	}
	y, n, ok := w.groundPoint(floors.floors, q, maxPenetration)
	if !ok {
		return 0, ecs.Nil, false
	}
	return y, n.Entity, true
}

// updateGround measures the altitude of d and lands it when it is falling
// within snap height of a floor.
func (w *World) updateGround(d *Node) {
	st := &d.Body.State
	pd := w.tree.Position(d.Entity)
	hh := halfHeight(d.Body.Shape)
	bottom := mgl64.Vec3{pd.X(), pd.Y() - hh, pd.Z()}

	y, floor, ok := w.groundPoint(w.terrain.floors, bottom, math.Max(d.Body.Desc.ClimbHeight, hh))
	if !ok {
		st.HasAltitude = false
		st.Ground = ecs.Nil
		return
	}

	st.Altitude = bottom.Y() - y
	st.HasAltitude = true
	if d.Velocity.Speed.Y() > 0 || st.Altitude >= d.Body.Desc.SnapHeight {
		st.Ground = ecs.Nil
		return
	}

	if w.terrainContact(d, floor, pd, w.tree.Position(floor.Entity)) {
		st.Ground = ecs.Nil
		return
	}
	if pd.Y() != y+hh {
		pd[1] = y + hh
		w.tree.SetPosition(d.Entity, pd)
	}
	w.processLanding(d, floor.Entity)
}

// processLanding applies bounce or sliding friction to a body that just
// touched ground.
func (w *World) processLanding(n *Node, ground ecs.Entity) {
	st := &n.Body.State
	desc := &n.Body.Desc
	if st.Ground == ecs.Nil {
		st.LandedFrame = w.frame
	}
	st.Ground = ground
	st.Altitude = 0
	st.HasAltitude = true

	v := &n.Velocity.Speed
	if desc.NoBounce {
		*v = mgl64.Vec3{}
		return
	}
	if math.Abs(v.Y()) >= math.Max(desc.BounceMinSpeed, desc.Gravity) {
		v[1] = -v[1] * desc.BounceV
		v[0] *= desc.BounceH
		v[2] *= desc.BounceH
		st.Bounces++
		return
	}

	v[1] = 0
	h := mgl64.Vec2{v.X(), v.Z()}
	l := h.Len()
	if l == 0 {
		return
	}
	scale := math.Max(l-desc.SlidingFriction, 0) / l
	v[0] *= scale
	v[2] *= scale
}
