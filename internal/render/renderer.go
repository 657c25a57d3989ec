// Package render abstracts the rendering backend used by the lighting
// pipeline. This allows swapping rendering backends without changing the
// pipeline: the Ebiten backend executes passes on the GPU, the software
// backend executes the same passes on the CPU for tests.
package render

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Blend selects how source pixels combine with destination pixels.
type Blend int

const (
	// BlendNormal is standard source-over alpha compositing.
	BlendNormal Blend = iota
	// BlendAdd sums source and destination channels (factors one/one).
	// Overlapping lights must sum linearly, so no alpha weighting here.
	BlendAdd
	// BlendSubtract subtracts source color from destination color
	// (reverse subtract), leaving destination alpha untouched.
	BlendSubtract
)

// DrawImageOptions controls an image blit.
type DrawImageOptions struct {
	// GeoM is the geometry transform applied to the source.
	GeoM GeoM
	// Blend selects the compositing mode. Zero value is BlendNormal.
	Blend Blend
	// ColorScale multiplies source channels (r, g, b, a). A zero value
	// means no scaling.
	ColorScale [4]float32
}

// Program is a compiled per-pixel combining program (a fragment shader on
// GPU backends, a built-in kernel on the software backend).
type Program interface {
	// Dispose releases program resources.
	Dispose()
}

// Pass describes one execution of a per-pixel program: up to two source
// images combined into a destination, with externally supplied numeric
// parameters (kernel weights, sample offsets). Passes carry all their
// inputs explicitly; there is no current-target or current-program state.
type Pass struct {
	Program Program
	Sources [2]Image
	// Params are the program's numeric uniforms, keyed by name.
	Params map[string][]float32
}

// Image is an off-screen render target.
type Image interface {
	// Size returns the image dimensions in pixels.
	Size() (width, height int)
	// Clear resets every pixel to transparent zero.
	Clear()
	// Fill sets every pixel to the given color.
	Fill(clr color.Color)
	// DrawImage blits src onto this image.
	DrawImage(src Image, opts *DrawImageOptions)
	// FillPolygon fills a convex polygon given its ordered vertices.
	FillPolygon(pts []mgl64.Vec2, clr color.Color, blend Blend)
	// FillRect fills an axis-aligned rectangle.
	FillRect(x, y, w, h float64, clr color.Color, blend Blend)
	// RunPass executes a per-pixel program over the pass sources, writing
	// every pixel of this image. The sources must match this image's size.
	RunPass(p *Pass) error
	// Dispose releases the image resources.
	Dispose()
}

// Renderer creates backend resources.
type Renderer interface {
	// NewImage allocates an off-screen target. Allocation failure is fatal
	// for the pipeline and is propagated, not swallowed.
	NewImage(width, height int) (Image, error)
	// NewImageFromImage allocates a target initialized from a CPU image.
	NewImageFromImage(src image.Image) (Image, error)
	// CompileProgram compiles a named per-pixel program. src is the
	// program source for backends that compile (Kage on Ebiten); backends
	// with built-in programs resolve by name and ignore src.
	CompileProgram(name string, src []byte) (Program, error)
	// DrawText draws a small diagnostic string. Backends without a font
	// renderer may ignore it.
	DrawText(dst Image, text string, x, y int)
}

// InputManager exposes the pointer input consumed by the demo frame loop.
type InputManager interface {
	CursorPosition() (x, y int)
}

// Game is the per-frame callback interface driven by the backend's engine.
type Game interface {
	// Update advances game logic once per tick.
	Update() error

	// Draw renders one frame to the display target.
	Draw(screen Image)

	// Layout maps the outside (window) size to the logical screen size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine owns the window and the frame loop.
type Engine interface {
	SetWindowSize(width, height int)
	SetWindowTitle(title string)
	SetWindowResizable(resizable bool)
	// RunGame blocks, driving the game loop until the game ends.
	RunGame(game Game) error
}
