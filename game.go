package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/collide/ecs"
	"github.com/milk9111/collide/ecs/component"
	"github.com/milk9111/collide/ecs/entity"
	"github.com/milk9111/collide/ecs/render"
	"github.com/milk9111/collide/ecs/system"
	"github.com/milk9111/collide/physics"
	"github.com/milk9111/collide/prefabs"
	"github.com/milk9111/collide/script"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	panSpeed = 6
	zoomStep = 1.1
)

type Options struct {
	Scene   string
	Side    bool
	Verbose bool
	Watch   bool
}

// savedState is an in-memory quicksave of the physics world and the local
// positions of the scene entities.
type savedState struct {
	physics   []byte
	positions map[ecs.Entity]mgl64.Vec3
}

type Game struct {
	opts Options

	config    *prefabs.PhysicsSpec
	sceneFile string
	filter    *script.Filter

	world   *ecs.World
	physics *system.PhysicsSystem
	stats   *system.CollisionStats
	debug   *render.PhysicsDebugSystem
	scene   *entity.Scene

	watcher *prefabs.Watcher
	saved   *savedState

	view   render.DebugView
	cam    render.DebugCamera
	paused bool
	status string
}

func NewGame(opts Options) (*Game, error) {
	g := &Game{
		opts:      opts,
		sceneFile: opts.Scene,
		cam:       render.DebugCamera{Zoom: 2},
	}
	if opts.Side {
		g.view = render.ViewSide
	}

	if err := g.loadConfig(); err != nil {
		return nil, err
	}
	if g.sceneFile == "" {
		if len(g.config.Scenes) == 0 {
			return nil, fmt.Errorf("sandbox: physics.yaml lists no scenes")
		}
		g.sceneFile = g.config.Scenes[0]
	}
	if err := g.loadScene(); err != nil {
		return nil, err
	}

	if opts.Watch {
		g.startWatcher()
	}
	return g, nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			log.Printf("sandbox: close watcher: %v", err)
		}
	}
}

// startWatcher watches the on-disk prefabs when running from the repo root.
// Without them the embedded copies are used and nothing is reloaded.
func (g *Game) startWatcher() {
	dirs := []string{"prefabs", filepath.Join("prefabs", "scripts")}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			log.Printf("sandbox: %s not found, hot reload disabled", dir)
			return
		}
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("sandbox: hot reload disabled: %v", err)
		return
	}
	g.watcher = w
}

func (g *Game) loadConfig() error {
	cfg, err := prefabs.LoadPhysicsSpec()
	if err != nil {
		return err
	}
	g.config = cfg
	return g.loadFilter()
}

func (g *Game) loadFilter() error {
	g.filter = nil
	if g.config.Filter == "" {
		return nil
	}
	src, err := prefabs.LoadScript(g.config.Filter)
	if err != nil {
		return fmt.Errorf("sandbox: load filter: %w", err)
	}
	f, err := script.NewFilter(g.config.Filter, src)
	if err != nil {
		return err
	}
	g.filter = f
	return nil
}

// callback returns the filter as a physics.Callback, or nil when no filter
// is configured.
func (g *Game) callback() physics.Callback {
	if g.filter == nil {
		return nil
	}
	return g.filter
}

// loadScene rebuilds both worlds from the current config and scene file.
func (g *Game) loadScene() error {
	spec, err := prefabs.LoadSceneSpec(g.sceneFile)
	if err != nil {
		return err
	}
	groups, err := g.config.CollisionGroups()
	if err != nil {
		return err
	}

	world := ecs.NewWorld()
	ps := system.NewPhysicsSystem(world, physics.WithGroups(groups...), physics.WithCallback(g.callback()))

	scene, err := entity.BuildScene(world, spec, &entity.BuildContext{
		Physics: ps.World,
		Config:  g.config,
		OnHit: map[string]func(physics.HitBoxEvent){
			"coin": g.collectCoin,
		},
	})
	if err != nil {
		return err
	}

	stats := &system.CollisionStats{Verbose: g.opts.Verbose, Name: scene.NameOf}
	debug := &render.PhysicsDebugSystem{Physics: ps.World, View: g.view}
	world.AddSystem(ecs.NewScheduler(ps, stats, debug))

	if g.filter != nil {
		g.filter.Name = scene.NameOf
	}
	g.world, g.physics, g.stats, g.debug, g.scene = world, ps, stats, debug, scene
	g.saved = nil
	g.status = fmt.Sprintf("loaded %s", g.sceneFile)
	return nil
}

// collectCoin hides a coin the first frame a player box touches it.
func (g *Game) collectCoin(evt physics.HitBoxEvent) {
	if evt.IsRepeat {
		return
	}
	self := evt.Self.Entity()
	if err := g.physics.World.SetColliderEnabled(self, false); err != nil {
		log.Printf("sandbox: collect %v: %v", self, err)
		return
	}
	g.status = fmt.Sprintf("collected %s", g.scene.NameOf(self))
}

func (g *Game) reload(changes []prefabs.Change) {
	kinds := make(map[prefabs.ChangeKind]bool, len(changes))
	for _, c := range changes {
		kinds[c.Kind] = true
	}
	var err error
	switch {
	case kinds[prefabs.ChangeConfig]:
		if err = g.loadConfig(); err == nil {
			err = g.loadScene()
		}
	case kinds[prefabs.ChangeScript]:
		if err = g.loadFilter(); err == nil {
			if g.filter != nil {
				g.filter.Name = g.scene.NameOf
			}
			g.physics.World.SetCallback(g.callback())
			g.status = "reloaded filter"
		}
	}
	if err != nil {
		g.status = "reload failed: " + err.Error()
		log.Printf("sandbox: %v", err)
	}
}

func (g *Game) quicksave() error {
	data, err := g.physics.World.Snapshot()
	if err != nil {
		return err
	}
	positions := make(map[ecs.Entity]mgl64.Vec3, len(g.scene.Entities))
	for _, e := range g.scene.Entities {
		if t, ok := ecs.Get(g.world, e, component.TransformComponent.Kind()); ok {
			positions[e] = t.Position
		}
	}
	g.saved = &savedState{physics: data, positions: positions}
	return nil
}

func (g *Game) quickload() error {
	if g.saved == nil {
		return fmt.Errorf("nothing saved")
	}
	if err := g.physics.World.Restore(g.saved.physics); err != nil {
		return err
	}
	for e, pos := range g.saved.positions {
		if t, ok := ecs.Get(g.world, e, component.TransformComponent.Kind()); ok {
			t.Position = pos
		}
	}
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if g.view == render.ViewTop {
			g.view = render.ViewSide
		} else {
			g.view = render.ViewTop
		}
		g.debug.View = g.view
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.loadScene(); err != nil {
			g.status = "reload failed: " + err.Error()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := g.quicksave(); err != nil {
			g.status = "save failed: " + err.Error()
		} else {
			g.status = "saved"
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		if err := g.quickload(); err != nil {
			g.status = "load failed: " + err.Error()
		} else {
			g.status = "restored"
		}
	}
	for i, name := range g.config.Scenes {
		if i > 8 {
			break
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyDigit1 + ebiten.Key(i)) {
			g.sceneFile = name
			if err := g.loadScene(); err != nil {
				g.status = "load failed: " + err.Error()
			}
		}
	}

	step := panSpeed / g.cam.Zoom
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.cam.X -= step
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.cam.X += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.cam.Y += step
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.cam.Y -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.cam.Zoom *= zoomStep
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.cam.Zoom /= zoomStep
	}
}

func (g *Game) Update() error {
	if g.watcher != nil {
		if changes := g.watcher.Poll(); len(changes) > 0 {
			g.reload(changes)
		}
	}

	g.handleInput()

	if !g.paused || inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.world.Update()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	render.Draw(g.world, screen, g.cam.X, g.cam.Y, g.cam.Zoom)

	failures := 0
	if g.filter != nil {
		failures = g.filter.Failures()
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"%s  frame %d  view %s  FPS %.1f\nenter %d  exit %d  sensor %d  landed %d  filter errors %d\n%s\n[tab] view  [p] pause  [n] step  [r] reload  [f5/f9] save/load  [1-9] scene",
		g.scene.Name, g.world.Frame(), g.view, ebiten.ActualFPS(),
		g.stats.Enters, g.stats.Exits, g.stats.Sensors, g.stats.Landed, failures,
		g.status,
	), 10, 30)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
