package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Rect returns the XZ rectangle centered on c with half extents hx, hz.
func Rect(c cp.Vector, hx, hz float64) cp.BB {
	return cp.NewBBForExtents(c, hx, hz)
}

// PointInRect reports whether p lies in rect, borders included.
func PointInRect(p cp.Vector, rect cp.BB) bool {
	return p.X >= rect.L && p.X <= rect.R && p.Y >= rect.B && p.Y <= rect.T
}

// CircleRect tests a circle against an axis aligned rectangle. A center
// inside the rectangle is pushed out through the nearest side.
func CircleRect(c cp.Vector, r float64, rect cp.BB) (cp.Vector, bool) {
	closest := cp.Vector{
		X: mgl64.Clamp(c.X, rect.L, rect.R),
		Y: mgl64.Clamp(c.Y, rect.B, rect.T),
	}
	if closest == c {
		dl := c.X - rect.L
		dr := rect.R - c.X
		db := c.Y - rect.B
		dt := rect.T - c.Y
		switch math.Min(math.Min(dl, dr), math.Min(db, dt)) {
		case dl:
			return cp.Vector{X: -(dl + r)}, true
		case dr:
			return cp.Vector{X: dr + r}, true
		case db:
			return cp.Vector{Y: -(db + r)}, true
		default:
			return cp.Vector{Y: dt + r}, true
		}
	}
	d := c.Sub(closest)
	dist2 := d.LengthSq()
	if dist2 >= r*r {
		return cp.Vector{}, false
	}
	dist := math.Sqrt(dist2)
	return d.Mult((r - dist) / dist), true
}
