package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/geom"
)

func (w *World) collidePlanes(d *Node) {
	var walls []cp.Vector
	for _, s := range w.terrain.planes {
		plane := s.Body.Shape.(Plane)
		switch {
		case plane.Normal.Len() < normalEpsilon:
			w.warnOnce("zero-normal", "entity %v plane with zero normal skipped", s.Entity)
		case isWallPlane(plane):
			if n, ok := w.collideWall(d, s, plane); ok {
				walls = append(walls, n)
			}
		case isFloorPlane(plane):
			w.collideFloorPlane(d, s, plane, 1)
		case isCeilingPlane(plane):
			w.collideFloorPlane(d, s, plane, -1)
		default:
			w.warnOnce("sloped-plane", "entity %v sloped plane normal %v not supported, skipped", s.Entity, plane.Normal)
		}
	}
	w.escapeCorner(d, walls)
}

// collideWall resolves a vertical plane as a line in XZ, or as a segment of
// half width Radius. It returns the wall normal when a correction applied.
func (w *World) collideWall(d, s *Node, plane Plane) (cp.Vector, bool) {
	pd := w.tree.Position(d.Entity)
	ps := w.tree.Position(s.Entity)
	n := cp.Vector{X: plane.Normal.X(), Y: plane.Normal.Z()}.Normalize()
	c, p := xz(pd), xz(ps)
	r := wallRadius(d.Body)

	var (
		delta cp.Vector
		hit   bool
	)
	if plane.Radius > 0 {
		dir := cp.Vector{X: -n.Y, Y: n.X}
		delta, hit = geom.CircleSegment(c, r, p.Sub(dir.Mult(plane.Radius)), p.Add(dir.Mult(plane.Radius)), n)
	} else {
		delta, hit = geom.CircleLine(c, r, p, n)
	}
	if !hit || w.terrainContact(d, s, pd, ps) {
		return cp.Vector{}, false
	}
	w.tree.SetPosition(d.Entity, addXZ(pd, delta))
	return n, true
}

// collideFloorPlane resolves a horizontal plane along Y only. up is 1 for
// a floor and -1 for a ceiling.
func (w *World) collideFloorPlane(d, s *Node, plane Plane, up float64) {
	pd := w.tree.Position(d.Entity)
	ps := w.tree.Position(s.Entity)
	if !planeCovers(plane, ps, pd) {
		return
	}
	hh := halfHeight(d.Body.Shape)
	bottom, top, y := pd.Y()-hh, pd.Y()+hh, ps.Y()
	if y <= bottom || y >= top {
		return
	}
	if w.terrainContact(d, s, pd, ps) {
		return
	}
	if up > 0 {
		pd[1] += y - bottom
	} else {
		pd[1] -= top - y
		if d.Velocity.Speed.Y() > 0 {
			d.Velocity.Speed[1] = 0
		}
	}
	w.tree.SetPosition(d.Entity, pd)
}

// planeCovers reports whether q lies over a horizontal plane at p. Planes
// without a radius are infinite.
func planeCovers(plane Plane, p, q mgl64.Vec3) bool {
	if plane.Radius <= 0 {
		return true
	}
	return math.Abs(q.X()-p.X()) <= plane.Radius && math.Abs(q.Z()-p.Z()) <= plane.Radius
}

// escapeCorner handles a body wedged between walls facing each other: it
// rolls back to last frame's XZ and steps out along the summed normals.
// Corrections already applied by other walls this pass are not revisited.
func (w *World) escapeCorner(d *Node, walls []cp.Vector) {
	if len(walls) < 2 {
		return
	}
	for i := range walls {
		for j := i + 1; j < len(walls); j++ {
			if walls[i].Dot(walls[j]) >= 0 {
				continue
			}
			prev, ok := d.Velocity.previous(0)
			if !ok {
				return
			}
			push := walls[i].Add(walls[j]).Mult(d.Body.Desc.SkinWidth)
			pos := w.tree.Position(d.Entity)
			pos[0] = prev.X() + push.X
			pos[2] = prev.Z() + push.Y
			w.tree.SetPosition(d.Entity, pos)
			return
		}
	}
}
