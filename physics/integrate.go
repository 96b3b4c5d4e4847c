package physics

// updatePositions advances moving and dynamic nodes by their velocity.
// Gravity is applied to the stored speed after the move, scaled the same
// way; the factor itself is never folded into Speed.
func (w *World) updatePositions() {
	for _, n := range w.moving {
		w.integrate(n)
	}
	for _, n := range w.dynamic {
		w.integrate(n)
	}
}

func (w *World) integrate(n *Node) {
	v := n.Velocity
	pos := w.tree.Position(n.Entity)
	v.record(pos)
	w.tree.SetPosition(n.Entity, pos.Add(v.Speed.Mul(v.Factor)))
	if n.Body != nil {
		v.Speed[1] -= n.Body.Desc.Gravity * v.Factor
	}
}
