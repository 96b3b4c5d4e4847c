package physics

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

func TestClassification(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	still := spawnStatic(t, w, tree, mgl64.Vec3{}, Sphere{Radius: 1})
	moving := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, floatDesc())
	paused := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, floatDesc())
	hidden := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, floatDesc())
	ghost := tree.spawn(mgl64.Vec3{})
	mustVelocity(t, w, ghost, mgl64.Vec3{1, 0, 0})
	noShape := tree.spawn(mgl64.Vec3{})
	mustBody(t, w, noShape, NoShape{}, floatDesc())
	mustVelocity(t, w, noShape, mgl64.Vec3{})
	tree.paused[paused] = true
	tree.disabled[hidden] = true

	w.updateNodeList()

	bucket := func(nodes []*Node) map[ecs.Entity]bool {
		m := make(map[ecs.Entity]bool)
		for _, n := range nodes {
			m[n.Entity] = true
		}
		return m
	}
	static, dynamic, mov := bucket(w.static), bucket(w.dynamic), bucket(w.moving)
	switch {
	case !static[still] || !static[paused]:
		t.Fatalf("static bucket %v", static)
	case !dynamic[moving] || len(dynamic) != 1:
		t.Fatalf("dynamic bucket %v", dynamic)
	case !mov[ghost] || !mov[noShape] || len(mov) != 2:
		t.Fatalf("moving bucket %v", mov)
	case static[hidden] || dynamic[hidden]:
		t.Fatal("node disabled in tree was classified")
	}
}

func TestStaticCacheInvalidation(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := spawnStatic(t, w, tree, mgl64.Vec3{}, Sphere{Radius: 1})
	if !w.IsStatic(e) {
		t.Fatal("body without velocity must be static")
	}
	mustVelocity(t, w, e, mgl64.Vec3{})
	if w.IsStatic(e) {
		t.Fatal("static cache not invalidated by AttachVelocity")
	}
	w.DetachVelocity(e)
	if !w.IsStatic(e) {
		t.Fatal("static cache not invalidated by DetachVelocity")
	}
}

func TestSleep(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, floatDesc())
	if err := w.SetSpeed(e, mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := w.Sleep(e, 3); err != nil {
		t.Fatal(err)
	}

	want := []float64{0, 0, 1, 2}
	for i, x := range want {
		w.Update(int64(i + 1))
		if got := tree.Position(e).X(); got != x {
			t.Fatalf("frame %d: x = %v, want %v", i+1, got, x)
		}
	}

	if err := w.Sleep(e, 100); err != nil {
		t.Fatal(err)
	}
	w.Wake(e)
	w.Update(5)
	if got := tree.Position(e).X(); got != 3 {
		t.Fatalf("woken body x = %v, want 3", got)
	}
}

func TestIntegrationSpeedFactor(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	d := floatDesc()
	d.Gravity = 0.4
	e := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, d)
	if err := w.SetSpeed(e, mgl64.Vec3{2, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := w.SetSpeedFactor(e, 0.5); err != nil {
		t.Fatal(err)
	}

	w.Update(1)

	if got := tree.Position(e); !vecNear(got, mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("position %v", got)
	}
	if got := w.Speed(e); !vecNear(got, mgl64.Vec3{2, -0.2, 0}) {
		t.Fatalf("stored speed %v, want unscaled X and scaled gravity", got)
	}
	if got := w.ActualSpeed(e); !vecNear(got, mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("actual speed %v", got)
	}

	w.Update(2)
	if got := w.Acceleration(e); !vecNear(got, mgl64.Vec3{0, -0.1, 0}) {
		t.Fatalf("acceleration %v", got)
	}
}

func TestVelocityOnlyNode(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := tree.spawn(mgl64.Vec3{})
	mustVelocity(t, w, e, mgl64.Vec3{0, 1, 0})

	w.Update(1)
	tree.paused[e] = true
	w.Update(2)

	if got := tree.Position(e); !vecNear(got, mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("position %v, want one unpaused step without gravity", got)
	}
}

func TestMissingRecordsAreDefaults(t *testing.T) {
	w := NewWorld(newFakeTree())
	var e ecs.Entity = 42
	if w.Altitude(e) != NoAltitude || w.IsGrounded(e) || w.Speed(e) != (mgl64.Vec3{}) {
		t.Fatal("queries on unknown entity must return defaults")
	}
	if w.SpeedFactor(e) != 1 || w.Shape(e).Kind() != ShapeNone {
		t.Fatal("unexpected defaults")
	}
	if err := w.SetShape(e, Sphere{Radius: 1}); !errors.Is(err, ErrNoNode) {
		t.Fatalf("SetShape err = %v", err)
	}
	if err := w.SetColliderEnabled(e, true); !errors.Is(err, ErrNoCollider) {
		t.Fatalf("SetColliderEnabled err = %v", err)
	}
	w.Detach(e)
	w.DetachBody(e)
	w.DetachCollider(e)
}

func TestSetShapeReplacesVariant(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := spawnStatic(t, w, tree, mgl64.Vec3{}, Box{HalfExtents: mgl64.Vec3{1, 2, 3}})
	if err := w.SetShape(e, Capsule{Radius: 2, HalfHeight: 3}); err != nil {
		t.Fatal(err)
	}
	c, ok := w.Shape(e).(Capsule)
	if !ok || c.Radius != 2 || halfHeight(c) != 5 {
		t.Fatalf("shape %#v", w.Shape(e))
	}
	if err := w.SetShape(e, Sphere{}); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("err = %v", err)
	}
}

func TestDetachLastRecordDropsNode(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := dynamicSphere(t, w, tree, mgl64.Vec3{}, 1, floatDesc())
	w.DetachBody(e)
	if !w.Has(e) {
		t.Fatal("node with velocity left must stay")
	}
	w.DetachVelocity(e)
	if w.Has(e) || w.Len() != 0 {
		t.Fatal("empty node must be dropped")
	}
}

type reentrant struct {
	NopCallback
	w *World
}

func (r reentrant) UpdateStart(frame int64) { r.w.Update(frame) }

func TestReentrantUpdatePanics(t *testing.T) {
	w := NewWorld(newFakeTree())
	w.SetCallback(reentrant{w: w})
	defer func() {
		if r := recover(); r != ErrReentrantUpdate {
			t.Fatalf("recover() = %v", r)
		}
	}()
	w.Update(1)
}

func TestSnapshotRestore(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree, WithGroups(CollisionGroup{ID: 3, Name: "player", Mask: 1 << 4}))
	spawnStatic(t, w, tree, mgl64.Vec3{}, Ground{})
	p := dynamicSphere(t, w, tree, mgl64.Vec3{0, 40, 0}, 16, DefaultBodyDesc())
	hits := 0
	box := sensorBox(3)
	box.Tag = "feet"
	box.OnHit = func(HitBoxEvent) { hits++ }
	ref, err := w.AddHitBox(p, box)
	if err != nil {
		t.Fatal(err)
	}
	for f := int64(1); f <= 3; f++ {
		w.Update(f)
	}

	data, err := w.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	wantSpeed := w.Speed(p)
	wantState, _ := w.BodyState(p)
	wantPairs := len(w.BodyHits(p))

	for f := int64(4); f <= 10; f++ {
		w.Update(f)
	}
	w.DetachVelocity(p)

	if err := w.Restore(data); err != nil {
		t.Fatal(err)
	}
	if w.Frame() != 3 {
		t.Fatalf("frame %d", w.Frame())
	}
	if got := w.Speed(p); got != wantSpeed {
		t.Fatalf("speed %v, want %v", got, wantSpeed)
	}
	if got, _ := w.BodyState(p); got != wantState {
		t.Fatalf("state %+v, want %+v", got, wantState)
	}
	if got := len(w.BodyHits(p)); got != wantPairs {
		t.Fatalf("pairs %d, want %d", got, wantPairs)
	}
	if g, ok := w.Group(3); !ok || g.Name != "player" || g.Mask != 1<<4 {
		t.Fatalf("group %+v", g)
	}
	restored, ok := w.HitBox(ref)
	if !ok || restored.Tag != "feet" || restored.OnHit == nil {
		t.Fatalf("hit box %+v", restored)
	}

	if err := w.Restore([]byte{0xc1}); err == nil {
		t.Fatal("expected decode error")
	}
	if got := w.Speed(p); got != wantSpeed {
		t.Fatal("failed restore modified the world")
	}
}
