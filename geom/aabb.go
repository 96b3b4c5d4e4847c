package geom

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis aligned box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB builds a box from its center and half extents.
func NewAABB(center, half mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Intersects reports a strict overlap on all three axes. Touching faces do
// not count.
func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Min[i] >= b.Max[i] || a.Max[i] <= b.Min[i] {
			return false
		}
	}
	return true
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}
