package physics

import "github.com/milk9111/collide/ecs"

// Callback observes and filters a frame update. Every method runs
// synchronously inside Update and must not call Update again.
type Callback interface {
	UpdateStart(frame int64)
	UpdateEnd(frame int64)
	// BodyEach is consulted for every dynamic body pair in contact range.
	// Returning true skips the positional correction; the pair is still
	// tracked.
	BodyEach(a, b ecs.Entity) (deny bool)
	// BodyAndStatic is consulted for every terrain contact.
	BodyAndStatic(dynamic, static ecs.Entity) (deny bool)
	// Sensor is consulted before two hit boxes are tested for overlap.
	Sensor(a HitBoxRef, boxA *HitBox, b HitBoxRef, boxB *HitBox) (deny bool)
	// Response may override the penetration response of both bodies.
	Response(a, b ecs.Entity, ra, rb float64) (float64, float64)
}

// NopCallback allows everything. Embed it to implement only part of
// Callback.
type NopCallback struct{}

func (NopCallback) UpdateStart(int64) {}
func (NopCallback) UpdateEnd(int64) {}
func (NopCallback) BodyEach(ecs.Entity, ecs.Entity) bool { return false }
func (NopCallback) BodyAndStatic(ecs.Entity, ecs.Entity) bool { return false }
func (NopCallback) Sensor(HitBoxRef, *HitBox, HitBoxRef, *HitBox) bool { return false }
func (NopCallback) Response(_, _ ecs.Entity, ra, rb float64) (float64, float64) {
	return ra, rb
}

var _ Callback = NopCallback{}
