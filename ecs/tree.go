package ecs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs/component"
)

// Hierarchy links an entity into the ownership tree. Disabled and Paused
// propagate to every descendant.
type Hierarchy struct {
	Parent   Entity
	Disabled bool
	Paused   bool
}

var HierarchyComponent = component.NewComponent[Hierarchy]()

// maxTreeDepth bounds parent walks so a cycle cannot hang a frame.
const maxTreeDepth = 64

var unitScale = mgl64.Vec3{1, 1, 1}

// SetParent attaches child under parent. Passing Nil detaches it.
func (w *World) SetParent(child, parent Entity) error {
	h, ok := Get(w, child, HierarchyComponent.Kind())
	if !ok {
		return Add(w, child, HierarchyComponent.Kind(), &Hierarchy{Parent: parent})
	}
	h.Parent = parent
	return nil
}

// SetEnabled toggles the local enabled flag of e.
func (w *World) SetEnabled(e Entity, enabled bool) {
	w.hierarchy(e).Disabled = !enabled
}

// SetPaused toggles the local paused flag of e.
func (w *World) SetPaused(e Entity, paused bool) {
	w.hierarchy(e).Paused = paused
}

func (w *World) hierarchy(e Entity) *Hierarchy {
	if h, ok := Get(w, e, HierarchyComponent.Kind()); ok {
		return h
	}
	h := &Hierarchy{}
	if err := Add(w, e, HierarchyComponent.Kind(), h); err != nil {
		// dead entity: hand back a detached value so setters stay no-ops
		return &Hierarchy{}
	}
	return h
}

// walk visits e and its ancestors until fn returns false.
func (w *World) walk(e Entity, fn func(Entity, *Hierarchy) bool) {
	for depth := 0; depth < maxTreeDepth && IsAlive(w, e); depth++ {
		h, _ := Get(w, e, HierarchyComponent.Kind())
		if !fn(e, h) || h == nil {
			return
		}
		e = h.Parent
	}
}

// EnabledInTree reports whether e and every ancestor are enabled. Dead
// entities are never enabled.
func (w *World) EnabledInTree(e Entity) bool {
	if !IsAlive(w, e) {
		return false
	}
	enabled := true
	w.walk(e, func(_ Entity, h *Hierarchy) bool {
		if h != nil && h.Disabled {
			enabled = false
		}
		return enabled
	})
	return enabled
}

// PausedInTree reports whether e or any ancestor is paused.
func (w *World) PausedInTree(e Entity) bool {
	paused := false
	w.walk(e, func(_ Entity, h *Hierarchy) bool {
		if h != nil && h.Paused {
			paused = true
		}
		return !paused
	})
	return paused
}

func scaleOf(t *component.Transform) mgl64.Vec3 {
	if t == nil || t.Scale == (mgl64.Vec3{}) {
		return unitScale
	}
	return t.Scale
}

// Scale returns the accumulated world scale of e.
func (w *World) Scale(e Entity) mgl64.Vec3 {
	s := unitScale
	w.walk(e, func(cur Entity, _ *Hierarchy) bool {
		t, _ := Get(w, cur, component.TransformComponent.Kind())
		ls := scaleOf(t)
		s = mgl64.Vec3{s[0] * ls[0], s[1] * ls[1], s[2] * ls[2]}
		return true
	})
	return s
}

// Position returns the world position of e. Parent scale applies to child
// offsets; there is no rotation in the tree.
func (w *World) Position(e Entity) mgl64.Vec3 {
	var chain []*component.Transform
	w.walk(e, func(cur Entity, _ *Hierarchy) bool {
		t, _ := Get(w, cur, component.TransformComponent.Kind())
		chain = append(chain, t)
		return true
	})
	var pos mgl64.Vec3
	scale := unitScale
	for i := len(chain) - 1; i >= 0; i-- {
		t := chain[i]
		if t == nil {
			continue
		}
		pos = pos.Add(mgl64.Vec3{t.Position[0] * scale[0], t.Position[1] * scale[1], t.Position[2] * scale[2]})
		ls := scaleOf(t)
		scale = mgl64.Vec3{scale[0] * ls[0], scale[1] * ls[1], scale[2] * ls[2]}
	}
	return pos
}

// SetPosition moves e so that its world position becomes pos.
func (w *World) SetPosition(e Entity, pos mgl64.Vec3) {
	if !IsAlive(w, e) {
		return
	}
	t, ok := Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t = &component.Transform{}
		if err := Add(w, e, component.TransformComponent.Kind(), t); err != nil {
			return
		}
	}
	var parentPos mgl64.Vec3
	parentScale := unitScale
	if h, ok := Get(w, e, HierarchyComponent.Kind()); ok && IsAlive(w, h.Parent) {
		parentPos = w.Position(h.Parent)
		parentScale = w.Scale(h.Parent)
	}
	local := pos.Sub(parentPos)
	for i := 0; i < 3; i++ {
		if parentScale[i] != 0 {
			local[i] /= parentScale[i]
		}
	}
	t.Position = local
}
