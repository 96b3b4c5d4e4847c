package physics

import "slices"

// sensorBuckets holds this frame's enabled hit boxes per collision group.
type sensorBuckets struct {
	groups []int
	boxes  map[int][]HitBoxRef
}

func (s *sensorBuckets) reset() {
	s.groups = s.groups[:0]
	if s.boxes == nil {
		s.boxes = make(map[int][]HitBoxRef)
	}
	for g, refs := range s.boxes {
		s.boxes[g] = refs[:0]
	}
}

func (s *sensorBuckets) add(g int, ref HitBoxRef) {
	refs, ok := s.boxes[g]
	if !ok || len(refs) == 0 {
		s.groups = append(s.groups, g)
	}
	s.boxes[g] = append(refs, ref)
}

func (w *World) updateSensorNodeList() {
	w.sensors.reset()
	for _, e := range w.order {
		n := w.nodes[e]
		if n.Collider == nil || !n.Collider.Enabled || !w.tree.EnabledInTree(e) {
			continue
		}
		for i, b := range n.Collider.Boxes {
			if !b.Enabled || !validGroup(b.Group) {
				continue
			}
			w.sensors.add(b.Group, HitBoxRef{Entity: e, Index: i})
		}
	}
	slices.Sort(w.sensors.groups)
}

// updateSensorCollision tests every pair of hit boxes from distinct groups
// that accept each other. Boxes within one group never interact.
func (w *World) updateSensorCollision() {
	groups := w.sensors.groups
	for i, ga := range groups {
		for _, gb := range groups[i+1:] {
			if !w.groups.canCollide(ga, gb) {
				continue
			}
			for _, ra := range w.sensors.boxes[ga] {
				for _, rb := range w.sensors.boxes[gb] {
					if ra.Entity == rb.Entity {
						continue
					}
					w.collideSensors(ra, rb)
				}
			}
		}
	}
}

func (w *World) collideSensors(ra, rb HitBoxRef) {
	ba, okA := w.hitBox(ra)
	bb, okB := w.hitBox(rb)
	if !okA || !okB {
		return
	}
	if w.callback.Sensor(ra, ba, rb, bb) {
		return
	}
	if !w.hitBoxAABB(ra.Entity, ba).Intersects(w.hitBoxAABB(rb.Entity, bb)) {
		return
	}

	a := HitObject{Ref: ra, Position: w.tree.Position(ra.Entity)}
	b := HitObject{Ref: rb, Position: w.tree.Position(rb.Entity)}
	_, created := w.sensorPairs.touch(a, b, w.frame)

	// OnHit may grow either collider, so boxes are looked up again.
	if box, ok := w.hitBox(ra); ok && box.OnHit != nil {
		box.OnHit(HitBoxEvent{Self: a, Other: b, IsRepeat: !created})
	}
	if box, ok := w.hitBox(rb); ok && box.OnHit != nil {
		box.OnHit(HitBoxEvent{Self: b, Other: a, IsRepeat: !created})
	}
}
