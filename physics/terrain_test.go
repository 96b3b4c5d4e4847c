package physics

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoxWallClimbHeight(t *testing.T) {
	speeds := []mgl64.Vec3{
		{-3, 0, 0},
		{0, 0, 0},
		{2, 0, 2},
		{-1, 0, -4},
	}
	for _, speed := range speeds {
		t.Run(fmt.Sprint(speed), func(t *testing.T) {
			tree := newFakeTree()
			w := NewWorld(tree)
			spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Box{HalfExtents: mgl64.Vec3{10, 10, 10}})
			// bottom at 30, box top at 10, climb height 8
			start := mgl64.Vec3{12, 35, 0}
			e := dynamicSphere(t, w, tree, start, 5, floatDesc())
			if err := w.SetSpeed(e, speed); err != nil {
				t.Fatal(err)
			}

			w.Update(1)

			if got, want := tree.Position(e), start.Add(speed); !vecNear(got, want) {
				t.Fatalf("position %v, want uncorrected %v", got, want)
			}
		})
	}
}

func TestBoxWallPushesOut(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	box := spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Box{HalfExtents: mgl64.Vec3{10, 10, 10}})
	e := dynamicSphere(t, w, tree, mgl64.Vec3{12, 5, 0}, 5, floatDesc())

	w.Update(1)

	if got := tree.Position(e); !vecNear(got, mgl64.Vec3{15, 5, 0}) {
		t.Fatalf("position %v, want pushed to x=15", got)
	}
	if p, ok := w.BodyPair(e, box); !ok || !p.IsEnter() {
		t.Fatal("expected terrain pair")
	}
}

func TestBoxWallRadiusFlooredAtSkin(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Box{HalfExtents: mgl64.Vec3{10, 10, 10}})
	e := dynamicSphere(t, w, tree, mgl64.Vec3{12, 0, 0}, 1, floatDesc())

	w.Update(1)

	if got := tree.Position(e).X(); !near(got, 14) {
		t.Fatalf("x = %v, want 14 (skin width 4)", got)
	}
}

func TestBoxWallDenied(t *testing.T) {
	tree := newFakeTree()
	cb := &denyCallback{}
	w := NewWorld(tree, WithCallback(cb))
	spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Box{HalfExtents: mgl64.Vec3{10, 10, 10}})
	e := dynamicSphere(t, w, tree, mgl64.Vec3{12, 5, 0}, 5, floatDesc())

	w.Update(1)

	if got := tree.Position(e).X(); got != 12 {
		t.Fatalf("denied wall moved body to x=%v", got)
	}
	if cb.statics == 0 {
		t.Fatal("BodyAndStatic not consulted")
	}
}

func TestShearedWallLateralSlide(t *testing.T) {
	tests := []struct {
		name      string
		noSlide   bool
		wantZZero bool
	}{
		{"slides_along_slant", false, false},
		{"no_lateral_slide", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := newFakeTree()
			w := NewWorld(tree)
			spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, ShearedBox{HalfExtents: mgl64.Vec3{5, 10, 5}, ShearX: 1})
			d := floatDesc()
			d.SkinWidth = 1
			d.NoLateralSlide = tc.noSlide
			e := dynamicSphere(t, w, tree, mgl64.Vec3{6, 0, 0}, 2, d)

			w.Update(1)

			got := tree.Position(e)
			if got.X() <= 6 {
				t.Fatalf("x = %v, want pushed out along +X", got.X())
			}
			if (got.Z() == 0) != tc.wantZZero {
				t.Fatalf("z = %v, want zero=%v", got.Z(), tc.wantZZero)
			}
		})
	}
}

func TestPlaneWall(t *testing.T) {
	tests := []struct {
		name   string
		plane  Plane
		planeP mgl64.Vec3
		start  mgl64.Vec3
		want   mgl64.Vec3
	}{
		{"infinite_line", Plane{Normal: mgl64.Vec3{1, 0, 0}}, mgl64.Vec3{}, mgl64.Vec3{3, 0, 40}, mgl64.Vec3{5, 0, 40}},
		{"segment_misses_beyond_radius", Plane{Normal: mgl64.Vec3{1, 0, 0}, Radius: 10}, mgl64.Vec3{}, mgl64.Vec3{3, 0, 40}, mgl64.Vec3{3, 0, 40}},
		{"segment_hit", Plane{Normal: mgl64.Vec3{1, 0, 0}, Radius: 10}, mgl64.Vec3{}, mgl64.Vec3{3, 0, 2}, mgl64.Vec3{5, 0, 2}},
		{"behind_is_ignored", Plane{Normal: mgl64.Vec3{1, 0, 0}}, mgl64.Vec3{}, mgl64.Vec3{-8, 0, 0}, mgl64.Vec3{-8, 0, 0}},
		{"z_facing", Plane{Normal: mgl64.Vec3{0, 0, -1}}, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 8}, mgl64.Vec3{0, 0, 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := newFakeTree()
			w := NewWorld(tree)
			spawnStatic(t, w, tree, tc.planeP, tc.plane)
			e := dynamicSphere(t, w, tree, tc.start, 5, floatDesc())

			w.Update(1)

			if got := tree.Position(e); !vecNear(got, tc.want) {
				t.Fatalf("position %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaneOpposingWallsEscape(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Plane{Normal: mgl64.Vec3{1, 0, 0}})
	spawnStatic(t, w, tree, mgl64.Vec3{6, 0, 0}, Plane{Normal: mgl64.Vec3{-1, 0, 0}})
	e := dynamicSphere(t, w, tree, mgl64.Vec3{2, 0, 0}, 5, floatDesc())
	if err := w.SetSpeed(e, mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}

	w.Update(1)

	if got := tree.Position(e); !vecNear(got, mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("position %v, want rolled back to previous XZ", got)
	}
}

func TestPlaneCornerEscapeAlongNormalSum(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	n1 := mgl64.Vec3{1, 0, 0.5}.Normalize()
	n2 := mgl64.Vec3{-1, 0, 0.5}.Normalize()
	// the walls meet at (0, -6) and open towards +Z
	spawnStatic(t, w, tree, mgl64.Vec3{-3, 0, 0}, Plane{Normal: n1})
	spawnStatic(t, w, tree, mgl64.Vec3{3, 0, 0}, Plane{Normal: n2})
	d := floatDesc()
	e := dynamicSphere(t, w, tree, mgl64.Vec3{0, 0, -2}, 5, d)
	if err := w.SetSpeed(e, mgl64.Vec3{0, 0, -1}); err != nil {
		t.Fatal(err)
	}

	w.Update(1)

	sum := n1.Add(n2)
	if sum.Z() <= 0 || !near(sum.X(), 0) {
		t.Fatalf("normal sum %v should point along +Z", sum)
	}
	want := mgl64.Vec3{0, 0, -2}.Add(sum.Mul(d.SkinWidth))
	if got := tree.Position(e); !vecNear(got, want) {
		t.Fatalf("position %v, want previous XZ nudged to %v", got, want)
	}
	if !near(want.Z(), -2+4/math.Sqrt(1.25)) {
		t.Fatalf("unexpected nudge %v", want)
	}
}

func TestPlaneFloorAndCeiling(t *testing.T) {
	t.Run("floor_lifts_and_lands", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		floor := spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Plane{Normal: mgl64.Vec3{0, 1, 0}})
		e := dynamicSphere(t, w, tree, mgl64.Vec3{0, 3, 0}, 5, floatDesc())

		w.Update(1)

		if got := tree.Position(e).Y(); !near(got, 5) {
			t.Fatalf("y = %v, want 5", got)
		}
		if w.GroundEntity(e) != floor {
			t.Fatal("expected to stand on the floor plane")
		}
	})

	t.Run("ceiling_pushes_down", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		spawnStatic(t, w, tree, mgl64.Vec3{0, 10, 0}, Plane{Normal: mgl64.Vec3{0, -1, 0}})
		e := dynamicSphere(t, w, tree, mgl64.Vec3{0, 8, 0}, 5, floatDesc())
		if err := w.SetSpeed(e, mgl64.Vec3{0, 1, 0}); err != nil {
			t.Fatal(err)
		}

		w.Update(1)

		if got := tree.Position(e).Y(); !near(got, 5) {
			t.Fatalf("y = %v, want 5", got)
		}
		if vy := w.Speed(e).Y(); vy != 0 {
			t.Fatalf("vy = %v, want 0 after hitting ceiling", vy)
		}
	})

	t.Run("sloped_plane_skipped", func(t *testing.T) {
		tree := newFakeTree()
		w := NewWorld(tree)
		spawnStatic(t, w, tree, mgl64.Vec3{0, 0, 0}, Plane{Normal: mgl64.Vec3{1, 1, 0}})
		e := dynamicSphere(t, w, tree, mgl64.Vec3{1, 1, 0}, 5, floatDesc())

		w.Update(1)
		w.Update(2)

		if got := tree.Position(e); !vecNear(got, mgl64.Vec3{1, 1, 0}) {
			t.Fatalf("sloped plane moved body to %v", got)
		}
	})
}

func TestAttachBodyRejectsZeroNormal(t *testing.T) {
	tree := newFakeTree()
	w := NewWorld(tree)
	e := tree.spawn(mgl64.Vec3{})
	if err := w.AttachBody(e, Plane{}, floatDesc()); err == nil {
		t.Fatal("expected error for zero plane normal")
	}
	if w.Has(e) {
		t.Fatal("rejected body must not create a node")
	}
}
