// Package game drives the demo frame loop: it renders the world scene into
// the pipeline's world buffer, updates the lights from input and elapsed
// time, and runs the lighting pipeline once per frame.
package game

import (
	"fmt"
	"time"

	"github.com/codeandkey/shadows/internal/render"
	"github.com/codeandkey/shadows/internal/render/lighting"
)

// Game implements render.Game over a lighting pipeline and a scene.
type Game struct {
	Renderer render.Renderer
	InputMgr render.InputManager
	Pipeline *lighting.Pipeline
	Scene    *lighting.Scene

	// PointerLight follows the cursor each frame; may be nil.
	PointerLight *lighting.Light
	// RotatingLight spins at the configured rate; may be nil.
	RotatingLight *lighting.Light

	width, height int
	lastTick      time.Time

	// err holds a fatal draw-time failure until Update can return it;
	// Ebiten's Draw has no error path.
	err error
}

// New creates the frame loop over an already-constructed pipeline.
func New(r render.Renderer, input render.InputManager, p *lighting.Pipeline, scene *lighting.Scene, width, height int) *Game {
	return &Game{
		Renderer: r,
		InputMgr: input,
		Pipeline: p,
		Scene:    scene,
		width:    width,
		height:   height,
	}
}

// Update advances light parameters once per tick, before the frame's
// pipeline runs.
func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}

	now := time.Now()
	var dt float64
	if !g.lastTick.IsZero() {
		dt = now.Sub(g.lastTick).Seconds()
	}
	g.lastTick = now

	if g.PointerLight != nil {
		x, y := g.InputMgr.CursorPosition()
		g.PointerLight.SetPos(float64(x), float64(y))
	}
	if g.RotatingLight != nil {
		g.RotatingLight.Angle += g.Pipeline.Config().RotationRate * dt
	}
	return nil
}

// Draw renders one frame: world scene, then the full lighting pipeline,
// then the diagnostic HUD on top (unaffected by lighting).
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()
	if err := g.Pipeline.Resize(w, h); err != nil {
		g.err = err
		return
	}

	g.drawWorld(g.Pipeline.World())

	if err := g.Pipeline.Frame(screen, g.Scene); err != nil {
		g.err = err
		return
	}

	g.Renderer.DrawText(screen, fmt.Sprintf("lights: %d  occluders: %d  %dx%d",
		len(g.Scene.Lights), len(g.Scene.Occluders()), w, h), 8, 8)
}

// Layout uses the window size as the logical screen size, so resizing the
// window resizes every screen buffer.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth < 1 {
		outsideWidth = 1
	}
	if outsideHeight < 1 {
		outsideHeight = 1
	}
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
