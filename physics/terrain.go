package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/geom"
)

// lateralEpsilon is the Z speed below which a body counts as not moving
// along Z for NoLateralSlide.
const lateralEpsilon = 1e-3

// terrainBuckets groups this frame's static bodies by the passes that use
// them. A node may sit in more than one bucket.
type terrainBuckets struct {
	boxes   []*Node
	sheared []*Node
	planes  []*Node
	floors  []*Node
}

func (t *terrainBuckets) reset() {
	t.boxes = t.boxes[:0]
	t.sheared = t.sheared[:0]
	t.planes = t.planes[:0]
	t.floors = t.floors[:0]
}

func (t *terrainBuckets) add(n *Node) {
	switch s := n.Body.Shape.(type) {
	case Box:
		t.boxes = append(t.boxes, n)
		t.floors = append(t.floors, n)
	case ShearedBox:
		t.sheared = append(t.sheared, n)
		t.floors = append(t.floors, n)
	case Plane:
		t.planes = append(t.planes, n)
		if isFloorPlane(s) {
			t.floors = append(t.floors, n)
		}
	case Ground:
		t.floors = append(t.floors, n)
	}
}

// xz projects a world position onto the ground plane. The vector's Y holds
// world Z.
func xz(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Z()}
}

func addXZ(v mgl64.Vec3, d cp.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X() + d.X, v.Y(), v.Z() + d.Y}
}

// solid reports whether a dynamic body has a footprint the terrain passes
// can resolve.
func solid(n *Node) bool {
	switch n.Body.Shape.Kind() {
	case ShapeSphere, ShapeBox, ShapeCapsule, ShapeShearedBox:
		return true
	}
	return false
}

// wallRadius is the footprint radius used against walls, floored at the
// skin width.
func wallRadius(b *Body) float64 {
	return math.Max(footprintRadius(b.Shape), b.Desc.SkinWidth)
}

func (w *World) updateTerrainCollision() {
	w.terrain.reset()
	for _, n := range w.static {
		w.terrain.add(n)
	}

	for _, d := range w.dynamic {
		if solid(d) {
			w.collideBoxes(d)
		}
	}
	for _, d := range w.dynamic {
		if solid(d) {
			w.collideShearedBoxes(d)
		}
	}
	for _, d := range w.dynamic {
		if solid(d) {
			w.collidePlanes(d)
		}
	}
	for _, d := range w.dynamic {
		if solid(d) {
			w.updateGround(d)
		}
	}
}

// terrainContact records a body-terrain contact and reports whether the
// callback denied its resolution.
func (w *World) terrainContact(d, s *Node, pd, ps mgl64.Vec3) bool {
	w.bodyPairs.touch(
		HitObject{Ref: bodyRef(d.Entity), Position: pd},
		HitObject{Ref: bodyRef(s.Entity), Position: ps},
		w.frame,
	)
	return w.callback.BodyAndStatic(d.Entity, s.Entity)
}

// steppable reports whether a wall spanning [wallBottom, wallTop] can be
// ignored by a body at pos: either walked over or passed beneath. The climb
// test uses the higher of the bottoms before and after this frame's move, so
// a top the body fell onto is left to the ground pass.
func steppable(b *Body, v *Velocity, pos mgl64.Vec3, wallBottom, wallTop float64) bool {
	hh := halfHeight(b.Shape)
	feet := pos.Y()
	if prev, ok := v.previous(0); ok && prev.Y() > feet {
		feet = prev.Y()
	}
	return wallTop <= feet-hh+b.Desc.ClimbHeight || wallBottom >= pos.Y()+hh
}

func (w *World) collideBoxes(d *Node) {
	r := wallRadius(d.Body)
	for _, s := range w.terrain.boxes {
		box := s.Body.Shape.(Box)
		pd := w.tree.Position(d.Entity)
		ps := w.tree.Position(s.Entity)
		hy := box.HalfExtents.Y()
		if steppable(d.Body, d.Velocity, pd, ps.Y()-hy, ps.Y()+hy) {
			continue
		}
		rect := geom.Rect(xz(ps), box.HalfExtents.X(), box.HalfExtents.Z())
		delta, hit := geom.CircleRect(xz(pd), r, rect)
		if !hit || w.terrainContact(d, s, pd, ps) {
			continue
		}
		w.tree.SetPosition(d.Entity, addXZ(pd, delta))
	}
}

func (w *World) collideShearedBoxes(d *Node) {
	r := wallRadius(d.Body)
	for _, s := range w.terrain.sheared {
		box := s.Body.Shape.(ShearedBox)
		pd := w.tree.Position(d.Entity)
		ps := w.tree.Position(s.Entity)
		hy := box.HalfExtents.Y()
		if steppable(d.Body, d.Velocity, pd, ps.Y()-hy, ps.Y()+hy) {
			continue
		}
		quad := geom.ShearedRect{
			Center: xz(ps),
			HalfX:  box.HalfExtents.X(),
			HalfZ:  box.HalfExtents.Z(),
			Shear:  box.ShearX,
		}
		delta, edges, hit := geom.CircleShearedRect(xz(pd), r, quad)
		if !hit || w.terrainContact(d, s, pd, ps) {
			continue
		}
		if d.Body.Desc.NoLateralSlide && edges.Slanted() && math.Abs(d.Velocity.Speed.Z()) < lateralEpsilon {
			delta.Y = 0
		}
		w.tree.SetPosition(d.Entity, addXZ(pd, delta))
	}
}
