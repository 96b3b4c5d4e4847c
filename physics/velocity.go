package physics

import "github.com/go-gl/mathgl/mgl64"

// Velocity moves an entity every frame. Speed is the authoritative value set
// by callers; Factor scales it during integration only.
type Velocity struct {
	Speed  mgl64.Vec3
	Factor float64

	prev    [2]mgl64.Vec3
	history int
}

func newVelocity(speed mgl64.Vec3) *Velocity {
	return &Velocity{Speed: speed, Factor: 1}
}

func (v *Velocity) record(pos mgl64.Vec3) {
	v.prev[1] = v.prev[0]
	v.prev[0] = pos
	if v.history < len(v.prev) {
		v.history++
	}
}

// previous returns the position held n frames back (0 = last frame).
func (v *Velocity) previous(n int) (mgl64.Vec3, bool) {
	if v == nil || n >= v.history {
		return mgl64.Vec3{}, false
	}
	return v.prev[n], true
}
