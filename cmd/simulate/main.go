// Command simulate steps a scene headlessly and prints where its bodies end
// up. With -out it also writes a physics snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/ecs/entity"
	"github.com/milk9111/collide/ecs/system"
	"github.com/milk9111/collide/physics"
	"github.com/milk9111/collide/prefabs"
	"github.com/milk9111/collide/script"
)

func main() {
	sceneName := flag.String("scene", "scene_drop.yaml", "scene file in prefabs/")
	frames := flag.Int("frames", 120, "number of frames to simulate")
	trace := flag.String("trace", "", "comma separated entity names to print every frame")
	out := flag.String("out", "", "write a physics snapshot to this file")
	verbose := flag.Bool("v", false, "log every collision event")
	flag.Parse()

	cfg, err := prefabs.LoadPhysicsSpec()
	if err != nil {
		log.Fatal(err)
	}
	groups, err := cfg.CollisionGroups()
	if err != nil {
		log.Fatal(err)
	}
	spec, err := prefabs.LoadSceneSpec(*sceneName)
	if err != nil {
		log.Fatal(err)
	}

	var filter *script.Filter
	opts := []physics.Option{physics.WithGroups(groups...)}
	if cfg.Filter != "" {
		src, err := prefabs.LoadScript(cfg.Filter)
		if err != nil {
			log.Fatal(err)
		}
		if filter, err = script.NewFilter(cfg.Filter, src); err != nil {
			log.Fatal(err)
		}
		opts = append(opts, physics.WithCallback(filter))
	}

	w := ecs.NewWorld()
	ps := system.NewPhysicsSystem(w, opts...)
	scene, err := entity.BuildScene(w, spec, &entity.BuildContext{Physics: ps.World, Config: cfg})
	if err != nil {
		log.Fatal(err)
	}
	if filter != nil {
		filter.Name = scene.NameOf
	}
	stats := &system.CollisionStats{Verbose: *verbose, Name: scene.NameOf}
	w.AddSystem(ecs.NewScheduler(ps, stats))

	var traced []ecs.Entity
	if *trace != "" {
		for _, name := range strings.Split(*trace, ",") {
			e, ok := scene.Entity(strings.TrimSpace(name))
			if !ok {
				log.Fatalf("simulate: no entity %q in %s", name, *sceneName)
			}
			traced = append(traced, e)
		}
	}

	for i := 0; i < *frames; i++ {
		w.Update()
		for _, e := range traced {
			fmt.Printf("%d\t%s\t%s\n", w.Frame(), scene.NameOf(e), describe(w, ps.World, e))
		}
	}

	fmt.Printf("scene %s after %d frames: enter %d exit %d sensor %d landed %d\n",
		scene.Name, w.Frame(), stats.Enters, stats.Exits, stats.Sensors, stats.Landed)
	ps.World.ForEachBody(func(e ecs.Entity, _ *physics.Body) {
		fmt.Printf("  %-12s %s\n", scene.NameOf(e), describe(w, ps.World, e))
	})

	if *out != "" {
		data, err := ps.World.Snapshot()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatal(err)
		}
	}
}

func describe(w *ecs.World, pw *physics.World, e ecs.Entity) string {
	p := w.Position(e)
	s := fmt.Sprintf("pos=(%.2f, %.2f, %.2f)", p[0], p[1], p[2])
	if pw.IsStatic(e) {
		return s + " static"
	}
	v := pw.Speed(e)
	s += fmt.Sprintf(" speed=(%.2f, %.2f, %.2f)", v[0], v[1], v[2])
	if pw.IsGrounded(e) {
		s += " grounded"
	} else if pw.HasAltitude(e) {
		s += fmt.Sprintf(" alt=%.2f", pw.Altitude(e))
	}
	return s
}
