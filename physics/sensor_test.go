package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
)

func sensorBox(group int) HitBox {
	return HitBox{HalfExtents: mgl64.Vec3{2, 2, 2}, Group: group, Enabled: true}
}

func TestHitPairLifecycle(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	a := tree.spawn(mgl64.Vec3{0, 0, 0})
	b := tree.spawn(mgl64.Vec3{100, 0, 0})
	var events []HitBoxEvent
	boxA := sensorBox(0)
	boxA.OnHit = func(ev HitBoxEvent) { events = append(events, ev) }
	ra, err := w.AddHitBox(a, boxA)
	if err != nil {
		t.Fatal(err)
	}
	rb, err := w.AddHitBox(b, sensorBox(1))
	if err != nil {
		t.Fatal(err)
	}

	const n = 10
	for f := int64(n - 1); f <= n+6; f++ {
		if f >= n && f < n+5 {
			tree.pos[b] = mgl64.Vec3{3, 0, 0}
		} else {
			tree.pos[b] = mgl64.Vec3{100, 0, 0}
		}
		w.Update(f)

		p, ok := w.SensorPair(ra, rb)
		switch {
		case f < n || f == n+6:
			if ok {
				t.Fatalf("frame %d: unexpected pair %+v", f, p)
			}
			continue
		case !ok:
			t.Fatalf("frame %d: missing pair", f)
		}
		if got, want := p.IsEnter(), f == n; got != want {
			t.Fatalf("frame %d: IsEnter=%v", f, got)
		}
		if got, want := p.IsStay(), f > n && f < n+5; got != want {
			t.Fatalf("frame %d: IsStay=%v", f, got)
		}
		if got, want := p.IsExit(), f == n+5; got != want {
			t.Fatalf("frame %d: IsExit=%v", f, got)
		}
	}

	if len(events) != 5 {
		t.Fatalf("OnHit called %d times, want 5 (enter and stay only)", len(events))
	}
	if events[0].IsRepeat || !events[1].IsRepeat {
		t.Fatal("first notification must not be a repeat, later ones must")
	}
	if events[0].Self.Ref != ra || events[0].Other.Ref != rb {
		t.Fatalf("event participants %+v", events[0])
	}
}

func TestGroupMaskBothDirections(t *testing.T) {
	tests := []struct {
		name  string
		maskA uint32
		maskB uint32
		want  bool
	}{
		{"both_allow", 1 << 2, 1 << 1, true},
		{"only_a_allows", 1 << 2, 0, false},
		{"only_b_allows", 0, 1 << 1, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := newFakeTree()
			w := NewWorld(tree,
				WithGroups(
					CollisionGroup{ID: 1, Name: "a", Mask: tc.maskA},
					CollisionGroup{ID: 2, Name: "b", Mask: tc.maskB},
				),
			)
			a := tree.spawn(mgl64.Vec3{})
			b := tree.spawn(mgl64.Vec3{1, 0, 0})
			if err := w.AttachCollider(a, sensorBox(1)); err != nil {
				t.Fatal(err)
			}
			if err := w.AttachCollider(b, sensorBox(2)); err != nil {
				t.Fatal(err)
			}

			w.Update(1)

			if got := w.CanCollide(1, 2); got != tc.want {
				t.Fatalf("CanCollide = %v", got)
			}
			if got := len(w.SensorHits(a)) == 1; got != tc.want {
				t.Fatalf("contact = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSensorSkips(t *testing.T) {
	t.Run("same_group", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
		_ = w.AttachCollider(a, sensorBox(3))
		_ = w.AttachCollider(b, sensorBox(3))
		w.Update(1)
		if len(w.SensorHits(a)) != 0 {
			t.Fatal("boxes in one group must not pair")
		}
	})

	t.Run("same_entity", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		a := tree.spawn(mgl64.Vec3{})
		_ = w.AttachCollider(a, sensorBox(0), sensorBox(1))
		w.Update(1)
		if len(w.SensorHits(a)) != 0 {
			t.Fatal("boxes of one entity must not pair")
		}
	})

	t.Run("disabled_box", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
		ra, _ := w.AddHitBox(a, sensorBox(0))
		_, _ = w.AddHitBox(b, sensorBox(1))
		if err := w.SetHitBoxEnabled(ra, false); err != nil {
			t.Fatal(err)
		}
		w.Update(1)
		if len(w.SensorHits(a)) != 0 {
			t.Fatal("disabled box paired")
		}
	})

	t.Run("disabled_in_tree", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
		_ = w.AttachCollider(a, sensorBox(0))
		_ = w.AttachCollider(b, sensorBox(1))
		tree.disabled[b] = true
		w.Update(1)
		if len(w.SensorHits(a)) != 0 {
			t.Fatal("box disabled in tree paired")
		}
	})

	t.Run("callback_denies", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree, WithCallback(sensorDeny{}))
		a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
		_ = w.AttachCollider(a, sensorBox(0))
		_ = w.AttachCollider(b, sensorBox(1))
		w.Update(1)
		if len(w.SensorHits(a)) != 0 {
			t.Fatal("denied pair tracked")
		}
	})
}

type sensorDeny struct{ NopCallback }

func (sensorDeny) Sensor(HitBoxRef, *HitBox, HitBoxRef, *HitBox) bool { return true }

func TestHitBoxMirroredByScale(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	a := tree.spawn(mgl64.Vec3{0, 0, 0})
	b := tree.spawn(mgl64.Vec3{-5, 0, 0})
	box := sensorBox(0)
	box.Center = mgl64.Vec3{5, 0, 0}
	ra, _ := w.AddHitBox(a, box)
	_, _ = w.AddHitBox(b, sensorBox(1))

	w.Update(1)
	if len(w.SensorHits(a)) != 0 {
		t.Fatal("unmirrored box should be on the +X side")
	}

	tree.scale[a] = mgl64.Vec3{-1, 1, 1}
	w.Update(2)
	if len(w.SensorHits(a)) != 1 {
		t.Fatal("mirrored box should overlap")
	}
	aabb, ok := w.HitBoxWorldAABB(ra)
	if !ok || !vecNear(aabb.Center(), mgl64.Vec3{-5, 0, 0}) {
		t.Fatalf("world aabb %+v", aabb)
	}
}

func TestDetachPurgesWithoutExit(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
	_ = w.AttachCollider(a, sensorBox(0))
	_ = w.AttachCollider(b, sensorBox(1))
	w.Update(1)
	if len(w.SensorHits(a)) != 1 {
		t.Fatal("expected contact")
	}

	w.Detach(b)

	for f := int64(2); f <= 3; f++ {
		w.Update(f)
		exits := 0
		w.ForEachSensorPair(func(p HitPair) {
			if p.IsExit() {
				exits++
			}
		})
		if exits != 0 || len(w.SensorHits(a)) != 0 {
			t.Fatalf("frame %d: detached entity produced pairs", f)
		}
	}
	if w.Has(b) {
		t.Fatal("detached entity still has a node")
	}
}

func TestOnHitMayAddBoxes(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	a, b := tree.spawn(mgl64.Vec3{}), tree.spawn(mgl64.Vec3{})
	box := sensorBox(0)
	calls := 0
	box.OnHit = func(ev HitBoxEvent) {
		calls++
		for i := 0; i < 8; i++ {
			_, _ = w.AddHitBox(ev.Self.Entity(), HitBox{Group: 5})
		}
	}
	_ = w.AttachCollider(a, box)
	_ = w.AttachCollider(b, sensorBox(1))

	w.Update(1)

	if calls != 1 {
		t.Fatalf("OnHit calls = %d", calls)
	}
	if got := len(w.HitBoxes(a)); got != 9 {
		t.Fatalf("hit boxes = %d, want 9", got)
	}
}

func TestAddHitBoxValidation(t *testing.T) {
	w := NewWorld(newFakeTree())
	tests := []struct {
		name string
		e    ecs.Entity
		box  HitBox
	}{
		{"nil_entity", ecs.Nil, sensorBox(0)},
		{"group_out_of_range", 1, sensorBox(MaxGroups)},
		{"negative_extent", 1, HitBox{HalfExtents: mgl64.Vec3{-1, 1, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.AddHitBox(tc.e, tc.box); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
