package render

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/geom"
	"github.com/milk9111/collide/physics"
	"golang.org/x/image/colornames"
)

const (
	debugStroke      = 1
	debugArrowHead   = 4
	debugPlaneLength = 10000
)

// DebugView selects the projection used by DrawPhysicsDebug.
type DebugView int

const (
	// ViewTop looks down the Y axis: screen x is world X, screen y is world Z.
	ViewTop DebugView = iota
	// ViewSide looks along the Z axis with world Y pointing up.
	ViewSide
)

func (v DebugView) String() string {
	if v == ViewSide {
		return "side"
	}
	return "top"
}

// DebugCamera maps world units to screen pixels around a center point.
type DebugCamera struct {
	X, Y float64
	Zoom float64
}

var (
	debugStaticColor  = colornames.Slategray
	debugDynamicColor = colornames.Limegreen
	debugSleepColor   = colornames.Steelblue
	debugAltColor     = colornames.Orange
	debugGroundColor  = colornames.Red
)

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   DebugView
	cam    DebugCamera
	cx, cy float64
}

// PhysicsDebugSystem draws a physics world through Draw. The
// camera comes from the Draw arguments.
type PhysicsDebugSystem struct {
	Physics *physics.World
	View    DebugView
}

func (s *PhysicsDebugSystem) Update(*ecs.World) {}

func (s *PhysicsDebugSystem) Draw(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64) {
	if s == nil || w == nil {
		return
	}
	DrawPhysicsDebug(s.Physics, w, screen, s.View, DebugCamera{X: camX, Y: camY, Zoom: zoom})
}

// DrawPhysicsDebug outlines bodies, hit boxes and altitude arrows. It only
// reads from the worlds.
func DrawPhysicsDebug(pw *physics.World, tree physics.Tree, screen *ebiten.Image, view DebugView, cam DebugCamera) {
	if pw == nil || tree == nil || screen == nil {
		return
	}
	if cam.Zoom <= 0 {
		cam.Zoom = 1
	}
	b := screen.Bounds()
	d := &physicsDebugDrawer{
		screen: screen,
		view:   view,
		cam:    cam,
		cx:     float64(b.Dx()) / 2,
		cy:     float64(b.Dy()) / 2,
	}

	pw.ForEachBody(func(e ecs.Entity, body *physics.Body) {
		if !tree.EnabledInTree(e) {
			return
		}
		clr := debugDynamicColor
		switch {
		case pw.IsStatic(e):
			clr = debugStaticColor
		case pw.IsSleeping(e) || tree.PausedInTree(e):
			clr = debugSleepColor
		}
		if !body.Enabled {
			clr.A /= 3
		}
		pos := tree.Position(e)
		d.drawShape(pos, body.Shape, clr)
		if !pw.IsStatic(e) {
			d.drawAltitude(pos, body)
		}
	})

	pw.ForEachHitBox(func(ref physics.HitBoxRef, box *physics.HitBox) {
		if !box.Enabled || !tree.EnabledInTree(ref.Entity) {
			return
		}
		aabb, ok := pw.HitBoxWorldAABB(ref)
		if !ok {
			return
		}
		g, _ := pw.Group(box.Group)
		clr := g.Color
		if clr.A == 0 {
			clr = colornames.White
		}
		d.drawAABB(aabb, clr)
	})

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("view: %s  frame: %d  nodes: %d", view, pw.Frame(), pw.Len()), 10, 10)
}

// project maps a world point to screen space for the current view.
func (d *physicsDebugDrawer) project(p mgl64.Vec3) (float32, float32) {
	x, y := p.X(), p.Z()
	if d.view == ViewSide {
		y = -p.Y()
	}
	camY := d.cam.Y
	if d.view == ViewSide {
		camY = -camY
	}
	return float32((x-d.cam.X)*d.cam.Zoom + d.cx), float32((y-camY)*d.cam.Zoom + d.cy)
}

func (d *physicsDebugDrawer) line(a, b mgl64.Vec3, clr color.Color) {
	x1, y1 := d.project(a)
	x2, y2 := d.project(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, debugStroke, clr, false)
}

func (d *physicsDebugDrawer) circle(c mgl64.Vec3, r float64, clr color.Color) {
	x, y := d.project(c)
	vector.StrokeCircle(d.screen, x, y, float32(r*d.cam.Zoom), debugStroke, clr, true)
}

// rect outlines a box of half extents h around c in the view plane.
func (d *physicsDebugDrawer) rect(c, h mgl64.Vec3, clr color.Color) {
	d.drawAABB(geom.NewAABB(c, h), clr)
}

func (d *physicsDebugDrawer) drawAABB(a geom.AABB, clr color.Color) {
	x1, y1 := d.project(a.Min)
	x2, y2 := d.project(a.Max)
	x, y := min(x1, x2), min(y1, y2)
	vector.StrokeRect(d.screen, x, y, max(x1, x2)-x, max(y1, y2)-y, debugStroke, clr, false)
}

func (d *physicsDebugDrawer) drawShape(pos mgl64.Vec3, s physics.Shape, clr color.Color) {
	switch v := s.(type) {
	case physics.Sphere:
		d.circle(pos, v.Radius, clr)
	case physics.Capsule:
		if d.view == ViewTop {
			d.circle(pos, v.Radius, clr)
			return
		}
		up := mgl64.Vec3{0, v.HalfHeight, 0}
		d.circle(pos.Add(up), v.Radius, clr)
		d.circle(pos.Sub(up), v.Radius, clr)
		d.rect(pos, mgl64.Vec3{v.Radius, v.HalfHeight, v.Radius}, clr)
	case physics.Box:
		d.rect(pos, v.HalfExtents, clr)
	case physics.ShearedBox:
		if d.view == ViewSide {
			d.rect(pos, v.HalfExtents, clr)
			return
		}
		quad := geom.ShearedRect{Center: cp.Vector{X: pos.X(), Y: pos.Z()}, HalfX: v.HalfExtents.X(), HalfZ: v.HalfExtents.Z(), Shear: v.ShearX}
		corners := quad.Corners()
		for i := range corners {
			a, b := corners[i], corners[(i+1)%len(corners)]
			d.line(mgl64.Vec3{a.X, pos.Y(), a.Y}, mgl64.Vec3{b.X, pos.Y(), b.Y}, clr)
		}
	case physics.Ground:
		if d.view == ViewSide {
			d.line(pos.Sub(mgl64.Vec3{debugPlaneLength, 0, 0}), pos.Add(mgl64.Vec3{debugPlaneLength, 0, 0}), clr)
		}
	case physics.Plane:
		d.drawPlane(pos, v, clr)
	}
}

func (d *physicsDebugDrawer) drawPlane(pos mgl64.Vec3, p physics.Plane, clr color.Color) {
	half := p.Radius
	if half <= 0 {
		half = debugPlaneLength
	}
	n := p.Normal
	if n.Y() == 0 {
		// wall: a segment across the normal in XZ, a vertical line from the side
		dir := mgl64.Vec3{-n.Z(), 0, n.X()}.Mul(half)
		if d.view == ViewSide {
			dir = mgl64.Vec3{dir.X(), half, 0}
		}
		d.line(pos.Sub(dir), pos.Add(dir), clr)
		d.line(pos, pos.Add(n.Mul(8)), clr)
		return
	}
	if d.view == ViewSide {
		d.line(pos.Sub(mgl64.Vec3{half, 0, 0}), pos.Add(mgl64.Vec3{half, 0, 0}), clr)
		d.line(pos, pos.Add(n.Mul(8)), clr)
		return
	}
	if p.Radius > 0 {
		d.rect(pos, mgl64.Vec3{half, 0, half}, clr)
	}
}

// drawAltitude draws an arrow from the body bottom down to its floor.
func (d *physicsDebugDrawer) drawAltitude(pos mgl64.Vec3, body *physics.Body) {
	st := body.State
	if st.Ground != ecs.Nil {
		x, y := d.project(pos)
		vector.StrokeLine(d.screen, x-debugArrowHead, y, x+debugArrowHead, y, debugStroke, debugGroundColor, false)
		vector.StrokeLine(d.screen, x, y-debugArrowHead, x, y+debugArrowHead, debugStroke, debugGroundColor, false)
		return
	}
	if !st.HasAltitude || d.view != ViewSide {
		return
	}
	bottom := pos.Sub(mgl64.Vec3{0, shapeHalfHeight(body.Shape), 0})
	floor := bottom.Sub(mgl64.Vec3{0, st.Altitude, 0})
	d.line(bottom, floor, debugAltColor)
	x, y := d.project(floor)
	h := float32(debugArrowHead)
	vector.StrokeLine(d.screen, x-h, y-h, x, y, debugStroke, debugAltColor, false)
	vector.StrokeLine(d.screen, x+h, y-h, x, y, debugStroke, debugAltColor, false)
}

func shapeHalfHeight(s physics.Shape) float64 {
	switch v := s.(type) {
	case physics.Sphere:
		return v.Radius
	case physics.Capsule:
		return v.HalfHeight + v.Radius
	case physics.Box:
		return v.HalfExtents.Y()
	case physics.ShearedBox:
		return v.HalfExtents.Y()
	}
	return 0
}
