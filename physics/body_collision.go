package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateNudge separates two bodies sharing the same XZ center.
const degenerateNudge = 1e-6

// updateBodyCollision pushes overlapping dynamic bodies apart in the XZ
// plane. Positions are written back per pair, so later pairs see the
// corrected positions.
func (w *World) updateBodyCollision() {
	for i, a := range w.dynamic {
		if !a.Body.Desc.DynamicCollision {
			continue
		}
		for _, b := range w.dynamic[i+1:] {
			if !b.Body.Desc.DynamicCollision {
				continue
			}
			w.collideBodies(a, b)
		}
	}
}

func (w *World) collideBodies(a, b *Node) {
	pa := w.tree.Position(a.Entity)
	pb := w.tree.Position(b.Entity)

	delta := mgl64.Vec2{pa.X() - pb.X(), pa.Z() - pb.Z()}
	dist := delta.Len()
	depth := footprintRadius(a.Body.Shape) + footprintRadius(b.Body.Shape) - dist
	if depth < -math.Max(a.Body.Desc.SkinWidth, b.Body.Desc.SkinWidth) {
		return
	}

	w.bodyPairs.touch(
		HitObject{Ref: bodyRef(a.Entity), Position: pa},
		HitObject{Ref: bodyRef(b.Entity), Position: pb},
		w.frame,
	)
	if w.callback.BodyEach(a.Entity, b.Entity) || depth <= 0 {
		return
	}

	ra, rb := w.callback.Response(a.Entity, b.Entity, a.Body.Desc.Response, b.Body.Desc.Response)
	sum := ra + rb
	if sum <= 0 {
		return
	}
	if dist == 0 {
		delta = mgl64.Vec2{degenerateNudge, 0}
		dist = degenerateNudge
	}
	dir := delta.Mul(1 / dist)

	da := dir.Mul(depth * ra / sum)
	db := dir.Mul(-depth * rb / sum)
	w.tree.SetPosition(a.Entity, pa.Add(mgl64.Vec3{da.X(), 0, da.Y()}))
	w.tree.SetPosition(b.Entity, pb.Add(mgl64.Vec3{db.X(), 0, db.Y()}))
}
