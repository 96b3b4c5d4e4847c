// Package render draws ECS state with ebiten. It is kept apart from ecs and
// ecs/system so that the simulation builds without a graphics backend.
package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/collide/ecs"
)

// System draws ECS entities each frame.
type System interface {
	Draw(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64)
}

// Draw calls all render-capable systems of w, including those nested in a
// Scheduler, in update order.
func Draw(w *ecs.World, screen *ebiten.Image, camX, camY, zoom float64) {
	if w == nil || screen == nil {
		return
	}
	drawSystems(w, w.Systems(), screen, camX, camY, zoom)
}

func drawSystems(w *ecs.World, systems []ecs.System, screen *ebiten.Image, camX, camY, zoom float64) {
	for _, s := range systems {
		if sched, ok := s.(*ecs.Scheduler); ok {
			drawSystems(w, sched.Systems(), screen, camX, camY, zoom)
			continue
		}
		rs, ok := s.(System)
		if !ok || rs == nil {
			continue
		}
		rs.Draw(w, screen, camX, camY, zoom)
	}
}
