package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind names the variant held by a Shape.
type ShapeKind uint8

const (
	ShapeNone ShapeKind = iota
	ShapeSphere
	ShapeBox
	ShapeGround
	ShapePlane
	ShapeCapsule
	ShapeShearedBox
)

var shapeKindNames = [...]string{"none", "sphere", "box", "ground", "plane", "capsule", "sheared_box"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) {
		return shapeKindNames[k]
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

// Shape is the closed set of body shapes. The entity position is the shape
// center, except for Ground and Plane where it is a point on the surface.
type Shape interface {
	Kind() ShapeKind
	isShape()
}

// NoShape disables collision for a body while keeping its descriptor.
type NoShape struct{}

type Sphere struct {
	Radius float64
}

type Box struct {
	HalfExtents mgl64.Vec3
}

// Ground is an infinite floor at the entity's height.
type Ground struct{}

// Plane is a wall (horizontal normal) or a floor/ceiling (normal (0,±1,0)).
// Radius > 0 limits the plane to that half width around its position.
type Plane struct {
	Normal mgl64.Vec3
	Radius float64
}

// Capsule is a vertical capsule; HalfHeight is the half length of the
// cylindrical part, so the total half height is HalfHeight+Radius.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

// ShearedBox is a box whose X coordinate shifts by ShearX per unit of Z.
type ShearedBox struct {
	HalfExtents mgl64.Vec3
	ShearX      float64
}

func (NoShape) Kind() ShapeKind { return ShapeNone }
func (Sphere) Kind() ShapeKind { return ShapeSphere }
func (Box) Kind() ShapeKind { return ShapeBox }
func (Ground) Kind() ShapeKind { return ShapeGround }
func (Plane) Kind() ShapeKind { return ShapePlane }
func (Capsule) Kind() ShapeKind { return ShapeCapsule }
func (ShearedBox) Kind() ShapeKind { return ShapeShearedBox }

func (NoShape) isShape() {}
func (Sphere) isShape() {}
func (Box) isShape() {}
func (Ground) isShape() {}
func (Plane) isShape() {}
func (Capsule) isShape() {}
func (ShearedBox) isShape() {}

const normalEpsilon = 1e-9

// normalizeShape validates s and returns the canonical value stored on a body.
func normalizeShape(s Shape) (Shape, error) {
	switch v := s.(type) {
	case nil:
		return NoShape{}, nil
	case NoShape, Ground:
		return v, nil
	case Sphere:
		if v.Radius <= 0 {
			return nil, fmt.Errorf("sphere radius %v: %w", v.Radius, ErrInvalidShape)
		}
		return v, nil
	case Box:
		if !positiveExtents(v.HalfExtents) {
			return nil, fmt.Errorf("box half extents %v: %w", v.HalfExtents, ErrInvalidShape)
		}
		return v, nil
	case ShearedBox:
		if !positiveExtents(v.HalfExtents) {
			return nil, fmt.Errorf("sheared box half extents %v: %w", v.HalfExtents, ErrInvalidShape)
		}
		return v, nil
	case Capsule:
		if v.Radius <= 0 || v.HalfHeight < 0 {
			return nil, fmt.Errorf("capsule radius %v half height %v: %w", v.Radius, v.HalfHeight, ErrInvalidShape)
		}
		return v, nil
	case Plane:
		l := v.Normal.Len()
		if l < normalEpsilon {
			return nil, fmt.Errorf("plane normal %v: %w", v.Normal, ErrInvalidShape)
		}
		v.Normal = v.Normal.Mul(1 / l)
		if v.Radius < 0 {
			v.Radius = 0
		}
		return v, nil
	default:
		return nil, fmt.Errorf("shape %T: %w", s, ErrInvalidShape)
	}
}

func positiveExtents(v mgl64.Vec3) bool {
	return v.X() > 0 && v.Y() > 0 && v.Z() > 0
}

// footprintRadius is the radius of the circle a shape occupies in XZ.
func footprintRadius(s Shape) float64 {
	switch v := s.(type) {
	case Sphere:
		return v.Radius
	case Capsule:
		return v.Radius
	case Box:
		return math.Max(v.HalfExtents.X(), v.HalfExtents.Z())
	case ShearedBox:
		return math.Max(v.HalfExtents.X(), v.HalfExtents.Z())
	default:
		return 0
	}
}

// halfHeight is the distance from the shape center to its bottom.
func halfHeight(s Shape) float64 {
	switch v := s.(type) {
	case Sphere:
		return v.Radius
	case Capsule:
		return v.HalfHeight + v.Radius
	case Box:
		return v.HalfExtents.Y()
	case ShearedBox:
		return v.HalfExtents.Y()
	default:
		return 0
	}
}

// isFloorPlane reports a plane whose normal is exactly +Y.
func isFloorPlane(p Plane) bool {
	return p.Normal.X() == 0 && p.Normal.Z() == 0 && p.Normal.Y() > 0
}

func isCeilingPlane(p Plane) bool {
	return p.Normal.X() == 0 && p.Normal.Z() == 0 && p.Normal.Y() < 0
}

func isWallPlane(p Plane) bool {
	return p.Normal.Y() == 0
}
