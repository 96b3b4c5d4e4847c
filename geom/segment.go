package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// ClosestOnSegment returns the point of segment a-b nearest to p.
func ClosestOnSegment(p, a, b cp.Vector) cp.Vector {
	ab := b.Sub(a)
	l2 := ab.LengthSq()
	if l2 == 0 {
		return a
	}
	t := mgl64.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mult(t))
}

// CircleLine tests a circle against the infinite line through p with unit
// normal n. Only the front side is solid: a circle further than r behind
// the line is left alone.
func CircleLine(c cp.Vector, r float64, p, n cp.Vector) (cp.Vector, bool) {
	s := c.Sub(p).Dot(n)
	if s >= r || s <= -r {
		return cp.Vector{}, false
	}
	return n.Mult(r - s), true
}

// CircleSegment tests a circle against the segment a-b whose front faces
// unit normal n. Past either end the segment behaves like a rounded cap.
func CircleSegment(c cp.Vector, r float64, a, b, n cp.Vector) (cp.Vector, bool) {
	ab := b.Sub(a)
	l2 := ab.LengthSq()
	if l2 == 0 {
		return circlePoint(c, r, a, n)
	}
	t := c.Sub(a).Dot(ab) / l2
	switch {
	case t < 0:
		return circlePoint(c, r, a, n)
	case t > 1:
		return circlePoint(c, r, b, n)
	}
	return CircleLine(c, r, a, n)
}

func circlePoint(c cp.Vector, r float64, q, fallback cp.Vector) (cp.Vector, bool) {
	d := c.Sub(q)
	dist := d.Length()
	if dist >= r {
		return cp.Vector{}, false
	}
	if dist == 0 {
		return fallback.Mult(r), true
	}
	return d.Mult((r - dist) / dist), true
}

// Near reports whether two floats differ by less than eps.
func Near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}
