package system

import (
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/physics"
)

// PhysicsSystem steps a physics.World against the ECS ownership tree and
// turns contact changes into collision events.
type PhysicsSystem struct {
	World *physics.World
}

func NewPhysicsSystem(w *ecs.World, opts ...physics.Option) *PhysicsSystem {
	return &PhysicsSystem{World: physics.NewWorld(w, opts...)}
}

func (s *PhysicsSystem) Update(w *ecs.World) {
	if s == nil || s.World == nil || w == nil {
		return
	}

	// entities destroyed outside the physics world lose their records
	for _, e := range s.World.Entities() {
		if !ecs.IsAlive(w, e) {
			s.World.Detach(e)
		}
	}

	frame := w.Frame() + 1
	s.World.Update(frame)

	q := w.Events()
	push := func(kind ecs.CollisionEventKind, sensor bool, a, b ecs.Entity) {
		q.Push(ecs.Event{
			Type: ecs.CollisionEventType,
			Data: ecs.CollisionEvent{Kind: kind, Sensor: sensor, A: a, B: b},
		})
	}
	pairs := func(sensor bool) func(physics.HitPair) {
		return func(p physics.HitPair) {
			switch {
			case p.IsEnter():
				push(ecs.CollisionEventEnter, sensor, p.A.Entity(), p.B.Entity())
			case p.IsExit():
				push(ecs.CollisionEventExit, sensor, p.A.Entity(), p.B.Entity())
			}
		}
	}
	s.World.ForEachBodyPair(pairs(false))
	s.World.ForEachSensorPair(pairs(true))
	s.World.ForEachBody(func(e ecs.Entity, b *physics.Body) {
		if b.State.LandedFrame == frame {
			push(ecs.CollisionEventLanded, false, e, b.State.Ground)
		}
	})
}
