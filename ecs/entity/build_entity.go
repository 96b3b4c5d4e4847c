package entity

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/ecs/component"
	"github.com/milk9111/collide/physics"
	"github.com/milk9111/collide/prefabs"
)

// BuildContext carries what component builders need beyond the ECS world.
type BuildContext struct {
	Physics *physics.World
	Config  *prefabs.PhysicsSpec
	// OnHit is installed on hit boxes by tag.
	OnHit map[string]func(physics.HitBoxEvent)
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform": addTransform,
	"tree":      addTree,
	"velocity":  addVelocity,
	"body":      addBody,
	"hitboxes":  addHitBoxes,
}

var componentBuildOrder = []string{
	"transform",
	"tree",
	"velocity",
	"body",
	"hitboxes",
}

// Scene is the result of building a scene spec.
type Scene struct {
	Name     string
	Entities []ecs.Entity
	byName   map[string]ecs.Entity
	names    map[ecs.Entity]string
}

// Entity looks an entity up by its scene name.
func (s *Scene) Entity(name string) (ecs.Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// NameOf returns the scene name of e, empty for entities not in the scene.
func (s *Scene) NameOf(e ecs.Entity) string {
	return s.names[e]
}

// Destroy removes every entity of the scene from both worlds.
func (s *Scene) Destroy(w *ecs.World, pw *physics.World) {
	for _, e := range s.Entities {
		pw.Detach(e)
		ecs.DestroyEntity(w, e)
	}
	s.Entities = nil
	clear(s.byName)
	clear(s.names)
}

func BuildScene(w *ecs.World, spec prefabs.SceneSpec, ctx *BuildContext) (*Scene, error) {
	if w == nil || ctx == nil || ctx.Physics == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}
	if ctx.Config == nil {
		ctx.Config = &prefabs.PhysicsSpec{}
	}

	scene := &Scene{
		Name:   spec.Name,
		byName: make(map[string]ecs.Entity, len(spec.Entities)),
		names:  make(map[ecs.Entity]string, len(spec.Entities)),
	}
	for i, es := range spec.Entities {
		e, err := BuildEntity(w, es, ctx)
		if err != nil {
			scene.Destroy(w, ctx.Physics)
			return nil, fmt.Errorf("build scene %q: entity %d: %w", spec.Name, i, err)
		}
		if es.Parent != "" {
			parent, ok := scene.byName[es.Parent]
			if !ok {
				ctx.Physics.Detach(e)
				ecs.DestroyEntity(w, e)
				scene.Destroy(w, ctx.Physics)
				return nil, fmt.Errorf("build scene %q: %q: unknown parent %q", spec.Name, es.Name, es.Parent)
			}
			// the built position is local to the parent
			local := w.Position(e)
			if err := w.SetParent(e, parent); err != nil {
				scene.Destroy(w, ctx.Physics)
				return nil, fmt.Errorf("build scene %q: %q: %w", spec.Name, es.Name, err)
			}
			if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
				t.Position = local
			}
		}
		scene.Entities = append(scene.Entities, e)
		if es.Name != "" {
			scene.byName[es.Name] = e
			scene.names[e] = es.Name
		}
	}
	return scene, nil
}

func BuildEntity(w *ecs.World, spec prefabs.EntityBuildSpec, ctx *BuildContext) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}

	e := ecs.CreateEntity(w)

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	fail := func(err error) (ecs.Entity, error) {
		ctx.Physics.Detach(e)
		ecs.DestroyEntity(w, e)
		return 0, err
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			return fail(fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err))
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		return fail(fmt.Errorf("build entity: %q: no builder for components %v", spec.Name, names))
	}

	return e, nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return err
	}
	t := &component.Transform{Position: spec.Position, Scale: mgl64.Vec3{1, 1, 1}}
	if spec.Scale != nil {
		t.Scale = *spec.Scale
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

func addTree(w *ecs.World, e ecs.Entity, raw any, _ *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TreeComponentSpec](raw)
	if err != nil {
		return err
	}
	w.SetEnabled(e, !spec.Disabled)
	w.SetPaused(e, spec.Paused)
	return nil
}

func addVelocity(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.VelocityComponentSpec](raw)
	if err != nil {
		return err
	}
	if err := ctx.Physics.AttachVelocity(e, spec.Speed); err != nil {
		return err
	}
	if spec.Factor != 0 {
		return ctx.Physics.SetSpeedFactor(e, spec.Factor)
	}
	return nil
}

func addBody(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.BodyComponentSpec](raw)
	if err != nil {
		return err
	}
	shape, err := spec.ToShape()
	if err != nil {
		return err
	}
	desc, err := ctx.Config.Body(spec.Preset)
	if err != nil {
		return err
	}
	if err := ctx.Physics.AttachBody(e, shape, desc); err != nil {
		return err
	}
	if spec.Disabled {
		if err := ctx.Physics.SetBodyEnabled(e, false); err != nil {
			return err
		}
	}
	if spec.SleepFrames > 0 {
		return ctx.Physics.Sleep(e, spec.SleepFrames)
	}
	return nil
}

func addHitBoxes(w *ecs.World, e ecs.Entity, raw any, ctx *BuildContext) error {
	specs, err := prefabs.DecodeComponentSpec[[]prefabs.HitBoxComponentSpec](raw)
	if err != nil {
		return err
	}
	boxes := make([]physics.HitBox, 0, len(specs))
	for _, s := range specs {
		group := 0
		if s.Group != "" {
			if group, err = ctx.Config.GroupID(s.Group); err != nil {
				return err
			}
		}
		box := physics.HitBox{
			Center:      s.Center,
			HalfExtents: s.HalfExtents,
			Group:       group,
			Enabled:     !s.Disabled,
			Tag:         s.Tag,
			OnHit:       ctx.OnHit[s.Tag],
		}
		if len(s.Params) > 0 {
			box.Params = s.Params
		}
		boxes = append(boxes, box)
	}
	return ctx.Physics.AttachCollider(e, boxes...)
}
