package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	sceneName := flag.String("scene", "", "scene file in prefabs/ (defaults to the first listed in physics.yaml)")
	side := flag.Bool("side", false, "start in the side view instead of the top view")
	verbose := flag.Bool("v", false, "log every collision event")
	noWatch := flag.Bool("nowatch", false, "disable hot reload of prefabs/")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("collide sandbox")

	game, err := NewGame(Options{
		Scene:   *sceneName,
		Side:    *side,
		Verbose: *verbose,
		Watch:   !*noWatch,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
