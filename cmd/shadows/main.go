package main

import (
	"image/color"
	"log"

	"github.com/codeandkey/shadows/internal/core/shadows"
	"github.com/codeandkey/shadows/internal/game"
	"github.com/codeandkey/shadows/internal/lightshape"
	"github.com/codeandkey/shadows/internal/render/ebiten"
	"github.com/codeandkey/shadows/internal/render/lighting"
)

func main() {
	screenWidth := 1280
	screenHeight := 800

	renderer := ebiten.NewRenderer()
	inputMgr := ebiten.NewInputManager()
	engine := ebiten.NewEngine()

	cfg, err := lighting.LoadConfig("shadows.json")
	if err != nil {
		log.Fatalf("Failed to load lighting config: %v", err)
	}

	shape := lightshape.Radial(256, 3)
	pipeline, err := lighting.NewPipeline(renderer, cfg, shape)
	if err != nil {
		log.Fatalf("Failed to create lighting pipeline: %v", err)
	}

	scene := lighting.NewScene([]shadows.Occluder{
		shadows.NewOccluder(420, 260, 120, 90),
		shadows.NewOccluder(760, 430, 90, 150),
		shadows.NewOccluder(260, 540, 160, 70),
		shadows.NewOccluder(900, 180, 70, 70),
	})

	pointerLight, err := lighting.NewLight(float64(screenWidth)/2, float64(screenHeight)/2,
		color.NRGBA{R: 255, G: 244, B: 214, A: 255}, 400)
	if err != nil {
		log.Fatalf("Failed to create pointer light: %v", err)
	}
	rotatingLight, err := lighting.NewLight(640, 400,
		color.NRGBA{R: 140, G: 190, B: 255, A: 255}, 300)
	if err != nil {
		log.Fatalf("Failed to create rotating light: %v", err)
	}
	scene.AddLight(pointerLight)
	scene.AddLight(rotatingLight)

	g := game.New(renderer, inputMgr, pipeline, scene, screenWidth, screenHeight)
	g.PointerLight = pointerLight
	g.RotatingLight = rotatingLight

	engine.SetWindowSize(screenWidth, screenHeight)
	engine.SetWindowTitle("shadows")
	engine.SetWindowResizable(true)

	if err := engine.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
