package physics

// updateNodeList sorts every attached node into the moving, dynamic and
// static buckets for this frame.
func (w *World) updateNodeList() {
	w.moving = w.moving[:0]
	w.dynamic = w.dynamic[:0]
	w.static = w.static[:0]

	for _, e := range w.order {
		n := w.nodes[e]
		if !w.tree.EnabledInTree(e) {
			continue
		}
		if n.Body.collides() {
			if w.staticBody(n) || w.tree.PausedInTree(e) || w.frame < n.Body.State.AwakeFrame {
				w.static = append(w.static, n)
			} else {
				w.dynamic = append(w.dynamic, n)
			}
			continue
		}
		if n.Velocity != nil && !w.tree.PausedInTree(e) {
			w.moving = append(w.moving, n)
		}
	}
}
