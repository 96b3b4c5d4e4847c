package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

// fakeTree is a flat Tree without parenting.
type fakeTree struct {
	next     ecs.Entity
	pos      map[ecs.Entity]mgl64.Vec3
	scale    map[ecs.Entity]mgl64.Vec3
	disabled map[ecs.Entity]bool
	paused   map[ecs.Entity]bool
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		pos:      make(map[ecs.Entity]mgl64.Vec3),
		scale:    make(map[ecs.Entity]mgl64.Vec3),
		disabled: make(map[ecs.Entity]bool),
		paused:   make(map[ecs.Entity]bool),
	}
}

func (t *fakeTree) spawn(pos mgl64.Vec3) ecs.Entity {
	t.next++
	t.pos[t.next] = pos
	return t.next
}

func (t *fakeTree) Position(e ecs.Entity) mgl64.Vec3 { return t.pos[e] }
func (t *fakeTree) SetPosition(e ecs.Entity, p mgl64.Vec3) { t.pos[e] = p }
func (t *fakeTree) EnabledInTree(e ecs.Entity) bool { return !t.disabled[e] }
func (t *fakeTree) PausedInTree(e ecs.Entity) bool { return t.paused[e] }

func (t *fakeTree) Scale(e ecs.Entity) mgl64.Vec3 {
	if s, ok := t.scale[e]; ok {
		return s
	}
	return mgl64.Vec3{1, 1, 1}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func vecNear(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-6)
}

// floatDesc has no gravity so bodies stay where tests put them.
func floatDesc() BodyDesc {
	d := DefaultBodyDesc()
	d.Gravity = 0
	return d
}

func mustBody(t *testing.T, w *World, e ecs.Entity, s Shape, d BodyDesc) {
	t.Helper()
	if err := w.AttachBody(e, s, d); err != nil {
		t.Fatalf("AttachBody(%v): %v", e, err)
	}
}

func mustVelocity(t *testing.T, w *World, e ecs.Entity, v mgl64.Vec3) {
	t.Helper()
	if err := w.AttachVelocity(e, v); err != nil {
		t.Fatalf("AttachVelocity(%v): %v", e, err)
	}
}

// dynamicSphere spawns a moving sphere body.
func dynamicSphere(t *testing.T, w *World, tree *fakeTree, pos mgl64.Vec3, r float64, d BodyDesc) ecs.Entity {
	t.Helper()
	e := tree.spawn(pos)
	mustBody(t, w, e, Sphere{Radius: r}, d)
	mustVelocity(t, w, e, mgl64.Vec3{})
	return e
}

func spawnStatic(t *testing.T, w *World, tree *fakeTree, pos mgl64.Vec3, s Shape) ecs.Entity {
	t.Helper()
	e := tree.spawn(pos)
	mustBody(t, w, e, s, floatDesc())
	return e
}

// denyCallback denies every body and terrain contact.
type denyCallback struct {
	NopCallback
	bodies, statics int
}

func (c *denyCallback) BodyEach(ecs.Entity, ecs.Entity) bool {
	c.bodies++
	return true
}

func (c *denyCallback) BodyAndStatic(ecs.Entity, ecs.Entity) bool {
	c.statics++
	return true
}
