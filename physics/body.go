package physics

import (
	"log"
	"math"

	"github.com/milk9111/collide/ecs"
)

// BodyDesc holds the tunables of a body. Distances are world units and
// speeds are world units per frame.
type BodyDesc struct {
	Gravity float64 `yaml:"gravity"`
	// SkinWidth is the lateral distance within which surfaces touch without
	// being resolved as penetrating.
	SkinWidth float64 `yaml:"skin_width"`
	// SnapHeight is the largest gap below the body that still lands it.
	SnapHeight float64 `yaml:"snap_height"`
	// ClimbHeight is the tallest wall the body walks over.
	ClimbHeight     float64 `yaml:"climb_height"`
	BounceV         float64 `yaml:"bounce_v"`
	BounceH         float64 `yaml:"bounce_h"`
	BounceMinSpeed  float64 `yaml:"bounce_min_speed"`
	SlidingFriction float64 `yaml:"sliding_friction"`
	// DynamicCollision enables body-vs-body resolution for this body.
	DynamicCollision bool `yaml:"dynamic_collision"`
	NoBounce         bool `yaml:"no_bounce"`
	// NoLateralSlide stops a sheared wall from sliding the body along Z when
	// it was not moving along Z.
	NoLateralSlide bool `yaml:"no_lateral_slide"`
	// Response is the share of a body-vs-body penetration this body yields:
	// 0 is immovable, 1 fully yields.
	Response float64 `yaml:"response"`
}

// DefaultBodyDesc returns the descriptor used when a body is attached
// without explicit tunables.
func DefaultBodyDesc() BodyDesc {
	return BodyDesc{
		Gravity:          0.4,
		SkinWidth:        4,
		SnapHeight:       4,
		ClimbHeight:      8,
		BounceV:          0.5,
		BounceH:          0.8,
		BounceMinSpeed:   0.8,
		SlidingFriction:  0.1,
		DynamicCollision: true,
		Response:         1,
	}
}

// sanitize corrects tunables that are known to misbehave and logs what it
// changed. A bounce threshold at or below one frame of gravity makes a
// resting body bounce every frame, so it is raised just above gravity.
func (d BodyDesc) sanitize(e ecs.Entity) BodyDesc {
	if !d.NoBounce && d.Gravity > 0 && d.BounceMinSpeed <= d.Gravity {
		fixed := math.Nextafter(d.Gravity, math.Inf(1))
		log.Printf("physics: entity %v bounce_min_speed %v <= gravity %v, using %v", e, d.BounceMinSpeed, d.Gravity, fixed)
		d.BounceMinSpeed = fixed
	}
	if d.SkinWidth < 0 {
		log.Printf("physics: entity %v negative skin_width %v, using 0", e, d.SkinWidth)
		d.SkinWidth = 0
	}
	if d.Response < 0 || d.Response > 1 {
		r := math.Min(math.Max(d.Response, 0), 1)
		log.Printf("physics: entity %v response %v outside [0,1], using %v", e, d.Response, r)
		d.Response = r
	}
	return d
}

// BodyState is derived every frame by the resolver.
type BodyState struct {
	// Altitude is the signed distance from the body bottom to the floor
	// below it. Only meaningful when HasAltitude is set.
	Altitude    float64
	HasAltitude bool
	// Ground is the entity the body stands on, or ecs.Nil when airborne.
	Ground ecs.Entity
	// AwakeFrame is the first frame the body may move again.
	AwakeFrame int64
	Bounces    int
	// LandedFrame is the last frame the body touched down after being
	// airborne, -1 before the first landing.
	LandedFrame int64
}

// Body is a physically resolved shape attached to an entity.
type Body struct {
	Shape   Shape
	Desc    BodyDesc
	State   BodyState
	Enabled bool

	// staticKnown/static cache whether the body lacks a velocity. Cleared
	// whenever the velocity attachment changes.
	staticKnown bool
	static      bool
}

func newBody(shape Shape, desc BodyDesc) *Body {
	return &Body{
		Shape:   shape,
		Desc:    desc,
		Enabled: true,
		State:   BodyState{LandedFrame: -1},
	}
}

func (b *Body) collides() bool {
	return b != nil && b.Enabled && b.Shape != nil && b.Shape.Kind() != ShapeNone
}

func (b *Body) invalidateStatic() {
	b.staticKnown = false
}
