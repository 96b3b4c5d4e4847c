package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is the local placement of an entity relative to its parent.
// A zero Scale is treated as (1,1,1).
type Transform struct {
	Position mgl64.Vec3
	Scale    mgl64.Vec3
}

var TransformComponent = NewComponent[Transform]()
