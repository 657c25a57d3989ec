// Package ebiten implements the render backend on Ebitengine. Per-pixel
// programs are Kage shaders; polygon fills go through DrawTriangles over a
// 1x1 white image.
package ebiten

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/codeandkey/shadows/internal/render"
)

// whiteImage is the texture source for solid triangle fills.
var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(color.White)
	return img
}()

// blendAdd sums source and destination without alpha weighting, so
// overlapping lights accumulate linearly.
var blendAdd = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// blendSubtract removes source color from destination color and leaves
// destination alpha alone.
var blendSubtract = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorOne,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationReverseSubtract,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

func toEbitenBlend(b render.Blend) ebiten.Blend {
	switch b {
	case render.BlendAdd:
		return blendAdd
	case render.BlendSubtract:
		return blendSubtract
	default:
		return ebiten.BlendSourceOver
	}
}

func toEbitenGeoM(g render.GeoM) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, g.A())
	m.SetElement(0, 1, g.B())
	m.SetElement(0, 2, g.Tx())
	m.SetElement(1, 0, g.C())
	m.SetElement(1, 1, g.D())
	m.SetElement(1, 2, g.Ty())
	return m
}

// Renderer implements render.Renderer on Ebitengine.
type Renderer struct{}

// NewRenderer creates an Ebiten-based renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// NewImage allocates an off-screen target.
func (r *Renderer) NewImage(width, height int) (img render.Image, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ebiten: invalid image size %dx%d", width, height)
	}
	// ebiten.NewImage panics rather than returning an error when the
	// driver refuses the allocation; surface that as an error.
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("ebiten: image allocation %dx%d failed: %v", width, height, rec)
		}
	}()
	return &Image{img: ebiten.NewImage(width, height)}, nil
}

// NewImageFromImage allocates a target initialized from a CPU image.
func (r *Renderer) NewImageFromImage(src image.Image) (img render.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			img, err = nil, fmt.Errorf("ebiten: image upload failed: %v", rec)
		}
	}()
	return &Image{img: ebiten.NewImageFromImage(src)}, nil
}

// CompileProgram compiles Kage shader source.
func (r *Renderer) CompileProgram(name string, src []byte) (render.Program, error) {
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("ebiten: compiling program %q: %w", name, err)
	}
	return &Program{shader: shader}, nil
}

// DrawText draws a small diagnostic string with the debug font.
func (r *Renderer) DrawText(dst render.Image, text string, x, y int) {
	ebitenutil.DebugPrintAt(dst.(*Image).img, text, x, y)
}

// Program wraps a compiled Kage shader.
type Program struct {
	shader *ebiten.Shader
}

// Dispose releases shader resources.
func (p *Program) Dispose() {
	if p.shader != nil {
		p.shader.Deallocate()
	}
}

// Image wraps an *ebiten.Image as a render.Image.
type Image struct {
	img *ebiten.Image
}

// WrapImage adapts an existing ebiten.Image (such as the screen passed to
// Draw) to the render.Image interface.
func WrapImage(img *ebiten.Image) *Image {
	return &Image{img: img}
}

// Size returns the image dimensions.
func (i *Image) Size() (int, int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// Clear resets the image to transparent.
func (i *Image) Clear() {
	i.img.Clear()
}

// Fill sets every pixel to clr.
func (i *Image) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// Dispose releases the image resources.
func (i *Image) Dispose() {
	if i.img != nil {
		i.img.Deallocate()
	}
}

// DrawImage blits src onto this image.
func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := src.(*Image).img
	if opts == nil {
		i.img.DrawImage(srcImg, nil)
		return
	}

	eopts := &ebiten.DrawImageOptions{}
	eopts.GeoM = toEbitenGeoM(opts.GeoM)
	eopts.Blend = toEbitenBlend(opts.Blend)
	eopts.Filter = ebiten.FilterLinear
	if opts.ColorScale != ([4]float32{}) {
		eopts.ColorScale.Scale(opts.ColorScale[0], opts.ColorScale[1], opts.ColorScale[2], opts.ColorScale[3])
	}
	i.img.DrawImage(srcImg, eopts)
}

// FillPolygon fills a convex polygon as a triangle fan over the white image.
func (i *Image) FillPolygon(pts []mgl64.Vec2, clr color.Color, blend render.Blend) {
	if len(pts) < 3 {
		return
	}

	r, g, b, a := clr.RGBA()
	cr := float32(r) / 0xffff
	cg := float32(g) / 0xffff
	cb := float32(b) / 0xffff
	ca := float32(a) / 0xffff

	vertices := make([]ebiten.Vertex, len(pts))
	for j, p := range pts {
		vertices[j] = ebiten.Vertex{
			DstX:   float32(p.X()),
			DstY:   float32(p.Y()),
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}

	indices := make([]uint16, 0, (len(pts)-2)*3)
	for j := 2; j < len(pts); j++ {
		indices = append(indices, 0, uint16(j-1), uint16(j))
	}

	i.img.DrawTriangles(vertices, indices, whiteImage, &ebiten.DrawTrianglesOptions{
		Blend: toEbitenBlend(blend),
	})
}

// FillRect fills an axis-aligned rectangle.
func (i *Image) FillRect(x, y, w, h float64, clr color.Color, blend render.Blend) {
	i.FillPolygon([]mgl64.Vec2{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
	}, clr, blend)
}

// RunPass executes a Kage program over the pass sources.
func (i *Image) RunPass(p *render.Pass) error {
	prog, ok := p.Program.(*Program)
	if !ok || prog.shader == nil {
		return fmt.Errorf("ebiten: pass has no compiled shader")
	}

	w, h := i.Size()
	opts := &ebiten.DrawRectShaderOptions{}
	for j, s := range p.Sources {
		if s == nil {
			continue
		}
		src := s.(*Image)
		sw, sh := src.Size()
		if sw != w || sh != h {
			return fmt.Errorf("ebiten: pass source %d is %dx%d, want %dx%d", j, sw, sh, w, h)
		}
		opts.Images[j] = src.img
	}
	if len(p.Params) > 0 {
		opts.Uniforms = make(map[string]any, len(p.Params))
		for name, vals := range p.Params {
			if len(vals) == 1 {
				opts.Uniforms[name] = vals[0]
			} else {
				opts.Uniforms[name] = vals
			}
		}
	}

	i.img.DrawRectShader(w, h, prog.shader, opts)
	return nil
}

// InputManager reads pointer input through Ebiten.
type InputManager struct{}

// NewInputManager creates an Ebiten-based input manager.
func NewInputManager() *InputManager {
	return &InputManager{}
}

// CursorPosition returns the cursor position in logical screen coordinates.
func (m *InputManager) CursorPosition() (int, int) {
	return ebiten.CursorPosition()
}

// Engine runs the game loop through Ebiten.
type Engine struct{}

// NewEngine creates an Ebiten-based engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetWindowSize sets the window size in pixels.
func (e *Engine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (e *Engine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetWindowResizable enables or disables window resizing.
func (e *Engine) SetWindowResizable(resizable bool) {
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

// RunGame runs the game loop with the provided game.
func (e *Engine) RunGame(game render.Game) error {
	return ebiten.RunGame(&gameAdapter{game: game})
}

// gameAdapter adapts a render.Game to the ebiten.Game interface.
type gameAdapter struct {
	game render.Game
}

func (a *gameAdapter) Update() error {
	return a.game.Update()
}

func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.Draw(WrapImage(screen))
}

func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}
