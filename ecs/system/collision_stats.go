package system

import (
	"log"

	"github.com/milk9111/collide/ecs"
)

// CollisionStats drains collision events and counts them by kind. It must
// run after PhysicsSystem in the same frame.
type CollisionStats struct {
	// Name labels entities in log lines; nil logs raw handles.
	Name    func(ecs.Entity) string
	Verbose bool

	Enters  int
	Exits   int
	Landed  int
	Sensors int
}

func (s *CollisionStats) Update(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		ce, ok := evt.Data.(ecs.CollisionEvent)
		if evt.Type != ecs.CollisionEventType || !ok {
			continue
		}
		switch ce.Kind {
		case ecs.CollisionEventEnter:
			s.Enters++
			if ce.Sensor {
				s.Sensors++
			}
		case ecs.CollisionEventExit:
			s.Exits++
		case ecs.CollisionEventLanded:
			s.Landed++
		}
		if s.Verbose {
			log.Printf("frame %d: %s sensor=%v %s %s", w.Frame()+1, ce.Kind, ce.Sensor, s.label(ce.A), s.label(ce.B))
		}
	}
}

func (s *CollisionStats) label(e ecs.Entity) string {
	if s.Name != nil {
		if n := s.Name(e); n != "" {
			return n
		}
	}
	return e.String()
}

func (s *CollisionStats) Reset() {
	s.Enters, s.Exits, s.Landed, s.Sensors = 0, 0, 0, 0
}
