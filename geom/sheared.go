package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// EdgeMask names the sides of a (sheared) rectangle touched by a test.
type EdgeMask uint8

const (
	EdgeLeft  EdgeMask = 1 << iota // -X, slanted on a sheared rect
	EdgeRight                      // +X, slanted on a sheared rect
	EdgeNear                       // -Z
	EdgeFar                        // +Z
)

// Slanted reports whether a left or right side was hit.
func (m EdgeMask) Slanted() bool {
	return m&(EdgeLeft|EdgeRight) != 0
}

const edgeTieEpsilon = 1e-9

// ShearedRect is a rectangle in XZ whose X coordinate is offset by Shear
// per unit of Z away from the center.
type ShearedRect struct {
	Center cp.Vector
	HalfX  float64
	HalfZ  float64
	Shear  float64
}

// Corners returns the corners counter-clockwise, starting near-left.
func (s ShearedRect) Corners() [4]cp.Vector {
	off := s.Shear * s.HalfZ
	c := s.Center
	return [4]cp.Vector{
		{X: c.X - s.HalfX - off, Y: c.Y - s.HalfZ},
		{X: c.X + s.HalfX - off, Y: c.Y - s.HalfZ},
		{X: c.X + s.HalfX + off, Y: c.Y + s.HalfZ},
		{X: c.X - s.HalfX + off, Y: c.Y + s.HalfZ},
	}
}

// edge i runs from corner i to corner i+1
var shearedEdges = [4]EdgeMask{EdgeNear, EdgeRight, EdgeFar, EdgeLeft}

// PointInShearedRect reports whether p lies inside s, borders included.
func PointInShearedRect(p cp.Vector, s ShearedRect) bool {
	dz := p.Y - s.Center.Y
	if math.Abs(dz) > s.HalfZ {
		return false
	}
	return math.Abs(p.X-s.Center.X-s.Shear*dz) <= s.HalfX
}

// CircleShearedRect tests a circle against s and reports which sides the
// correction pushes through. A corner contact reports both adjacent sides.
func CircleShearedRect(c cp.Vector, r float64, s ShearedRect) (cp.Vector, EdgeMask, bool) {
	corners := s.Corners()
	var (
		dists   [4]float64
		points  [4]cp.Vector
		minDist = math.Inf(1)
		minIdx  int
	)
	for i := 0; i < 4; i++ {
		q := ClosestOnSegment(c, corners[i], corners[(i+1)%4])
		points[i] = q
		dists[i] = c.Sub(q).Length()
		if dists[i] < minDist {
			minDist = dists[i]
			minIdx = i
		}
	}

	if PointInShearedRect(c, s) {
		a, b := corners[minIdx], corners[(minIdx+1)%4]
		n := outwardNormal(a, b)
		return n.Mult(minDist + r), shearedEdges[minIdx], true
	}

	if minDist >= r {
		return cp.Vector{}, 0, false
	}
	var mask EdgeMask
	for i := 0; i < 4; i++ {
		if dists[i]-minDist <= edgeTieEpsilon {
			mask |= shearedEdges[i]
		}
	}
	d := c.Sub(points[minIdx])
	if minDist == 0 {
		n := outwardNormal(corners[minIdx], corners[(minIdx+1)%4])
		return n.Mult(r), mask, true
	}
	return d.Mult((r - minDist) / minDist), mask, true
}

// outwardNormal is the unit normal of a counter-clockwise edge a->b.
func outwardNormal(a, b cp.Vector) cp.Vector {
	e := b.Sub(a)
	return cp.Vector{X: e.Y, Y: -e.X}.Normalize()
}
