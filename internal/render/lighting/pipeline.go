package lighting

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/codeandkey/shadows/internal/core/shadows"
	"github.com/codeandkey/shadows/internal/render"
)

// Pipeline owns the screen-sized buffers and the per-light lightmap buffers
// and runs the per-frame pass sequence:
//
//	world render (caller) -> per-light lightmaps -> additive accumulation ->
//	blur H -> blur V -> darken under occluders -> final composite
//
// Each stage fully writes its target before the next stage reads it.
type Pipeline struct {
	renderer render.Renderer
	cfg      *Config

	shape        render.Image
	shapeW       int
	shapeH       int
	blurProg     render.Program
	modulateProg render.Program

	// Screen-sized buffers; reallocated together on resize.
	width, height int
	world         render.Image
	accum         render.Image
	scratch       render.Image

	// Per-light buffers keyed by light identity, recreated only when a
	// light's radius changes.
	lightBufs map[uuid.UUID]*lightBuffer
}

type lightBuffer struct {
	img    render.Image
	radius float64
}

// NewPipeline creates a pipeline over a backend. shape is the light-shape
// texture defining the lights' angular falloff pattern. Call Resize before
// the first Frame.
func NewPipeline(r render.Renderer, cfg *Config, shape image.Image) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shapeImg, err := r.NewImageFromImage(shape)
	if err != nil {
		return nil, fmt.Errorf("lighting: uploading shape texture: %w", err)
	}
	blurProg, err := r.CompileProgram("blur1d", blurShaderSrc)
	if err != nil {
		return nil, err
	}
	modulateProg, err := r.CompileProgram("modulate", modulateShaderSrc)
	if err != nil {
		return nil, err
	}

	b := shape.Bounds()
	return &Pipeline{
		renderer:     r,
		cfg:          cfg,
		shape:        shapeImg,
		shapeW:       b.Dx(),
		shapeH:       b.Dy(),
		blurProg:     blurProg,
		modulateProg: modulateProg,
		lightBufs:    make(map[uuid.UUID]*lightBuffer),
	}, nil
}

// Config returns the pipeline's configuration.
func (p *Pipeline) Config() *Config {
	return p.cfg
}

// World returns the world-color buffer. The caller renders the scene into
// it each frame before calling Frame.
func (p *Pipeline) World() render.Image {
	return p.world
}

// Accum returns the illumination accumulation buffer. Exposed for stage
// tests; Frame owns its contents during a frame.
func (p *Pipeline) Accum() render.Image {
	return p.accum
}

// Resize reallocates all screen-sized buffers for a new viewport. A no-op
// when the size is unchanged. Dimensions are clamped to at least 1 pixel so
// an extreme resize cannot produce zero-sized targets.
func (p *Pipeline) Resize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == p.width && height == p.height {
		return nil
	}

	for _, img := range []render.Image{p.world, p.accum, p.scratch} {
		if img != nil {
			img.Dispose()
		}
	}
	p.world, p.accum, p.scratch = nil, nil, nil

	var err error
	if p.world, err = p.renderer.NewImage(width, height); err != nil {
		return fmt.Errorf("lighting: allocating world buffer: %w", err)
	}
	if p.accum, err = p.renderer.NewImage(width, height); err != nil {
		return fmt.Errorf("lighting: allocating accumulation buffer: %w", err)
	}
	if p.scratch, err = p.renderer.NewImage(width, height); err != nil {
		return fmt.Errorf("lighting: allocating blur scratch buffer: %w", err)
	}
	p.width, p.height = width, height
	return nil
}

// Frame runs the full pass sequence for one frame and writes the composited
// result to dst. The world buffer must already hold this frame's scene.
func (p *Pipeline) Frame(dst render.Image, scene *Scene) error {
	if p.world == nil {
		return fmt.Errorf("lighting: pipeline has no buffers; call Resize first")
	}
	if err := p.RenderLightmaps(scene); err != nil {
		return err
	}
	if err := p.Accumulate(scene); err != nil {
		return err
	}
	if err := p.Blur(); err != nil {
		return err
	}
	if err := p.Darken(scene); err != nil {
		return err
	}
	return p.Composite(dst)
}

// RenderLightmaps redraws every light's buffer: the rotated, tinted shape
// texture overlaid with this frame's shadow quads in opaque black. Black
// regions contribute nothing during additive accumulation, so the fill acts
// as a full-occlusion mask.
func (p *Pipeline) RenderLightmaps(scene *Scene) error {
	p.dropStaleBuffers(scene)

	for _, light := range scene.Lights {
		buf, err := p.lightBuffer(light)
		if err != nil {
			return err
		}

		r := light.Radius
		side := 2 * r
		buf.img.Clear()

		var g render.GeoM
		g.Translate(-float64(p.shapeW)/2, -float64(p.shapeH)/2)
		g.Rotate(light.Angle)
		g.Scale(side/float64(p.shapeW), side/float64(p.shapeH))
		g.Translate(r, r)

		c := light.Color
		buf.img.DrawImage(p.shape, &render.DrawImageOptions{
			GeoM: g,
			ColorScale: [4]float32{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			},
		})

		for _, quad := range shadows.CastShadows(light.Pos, r, scene.Edges()) {
			pts := make([]mgl64.Vec2, len(quad))
			for i, v := range quad {
				// Shadow quads are light-local; the light sits at
				// the buffer center.
				pts[i] = v.Add(mgl64.Vec2{r, r})
			}
			buf.img.FillPolygon(pts, color.Black, render.BlendNormal)
		}
	}
	return nil
}

// Accumulate sums every light's buffer into the illumination buffer with
// pure additive blending.
func (p *Pipeline) Accumulate(scene *Scene) error {
	if p.accum == nil {
		return fmt.Errorf("lighting: pipeline has no buffers; call Resize first")
	}
	p.accum.Fill(color.Black)

	for _, light := range scene.Lights {
		buf, ok := p.lightBufs[light.ID]
		if !ok {
			return fmt.Errorf("lighting: light %s has no rendered buffer", light.ID)
		}
		var g render.GeoM
		g.Translate(light.Pos.X()-light.Radius, light.Pos.Y()-light.Radius)
		p.accum.DrawImage(buf.img, &render.DrawImageOptions{
			GeoM:  g,
			Blend: render.BlendAdd,
		})
	}
	return nil
}

// Blur applies the separable blur: horizontal into the scratch buffer, then
// vertical back into the accumulation buffer. Alpha is forced to 1 by the
// program after each pass. Skipped while the viewport has no valid size.
func (p *Pipeline) Blur() error {
	if p.width < 1 || p.height < 1 {
		return nil
	}

	params := func(dx, dy float32) map[string][]float32 {
		return map[string][]float32{
			"Kernel": p.cfg.BlurKernel,
			"Offset": {dx, dy},
		}
	}

	if err := p.scratch.RunPass(&render.Pass{
		Program: p.blurProg,
		Sources: [2]render.Image{p.accum},
		Params:  params(1, 0),
	}); err != nil {
		return fmt.Errorf("lighting: horizontal blur: %w", err)
	}
	if err := p.accum.RunPass(&render.Pass{
		Program: p.blurProg,
		Sources: [2]render.Image{p.scratch},
		Params:  params(0, 1),
	}); err != nil {
		return fmt.Errorf("lighting: vertical blur: %w", err)
	}
	return nil
}

// Darken subtracts a flat value from the illumination buffer inside every
// occluder footprint, modeling light grazing solid geometry. Applied
// uniformly no matter how many lights cover the footprint.
func (p *Pipeline) Darken(scene *Scene) error {
	if p.accum == nil {
		return fmt.Errorf("lighting: pipeline has no buffers; call Resize first")
	}
	level := uint16(p.cfg.DarkenLevel*0xffff + 0.5)
	clr := color.RGBA64{R: level, G: level, B: level, A: 0xffff}
	for _, occ := range scene.Occluders() {
		p.accum.FillRect(occ.Pos.X(), occ.Pos.Y(), occ.Width, occ.Height, clr, render.BlendSubtract)
	}
	return nil
}

// Composite modulates the world buffer by the illumination buffer into dst:
// out = illumination x CompositeScale x world, alpha forced to 1. Mid-gray
// illumination reproduces the world unchanged; white doubles it.
func (p *Pipeline) Composite(dst render.Image) error {
	if err := dst.RunPass(&render.Pass{
		Program: p.modulateProg,
		Sources: [2]render.Image{p.accum, p.world},
		Params: map[string][]float32{
			"Scale": {float32(p.cfg.CompositeScale)},
		},
	}); err != nil {
		return fmt.Errorf("lighting: composite: %w", err)
	}
	return nil
}

// lightBuffer returns the light's buffer, creating or recreating it when
// the light is new or its radius changed.
func (p *Pipeline) lightBuffer(light *Light) (*lightBuffer, error) {
	if light.Radius <= 0 {
		return nil, fmt.Errorf("lighting: light %s has invalid radius %v", light.ID, light.Radius)
	}

	buf, ok := p.lightBufs[light.ID]
	if ok && buf.radius == light.Radius {
		return buf, nil
	}
	if ok {
		buf.img.Dispose()
		delete(p.lightBufs, light.ID)
	}

	side := int(2 * light.Radius)
	img, err := p.renderer.NewImage(side, side)
	if err != nil {
		return nil, fmt.Errorf("lighting: allocating %dx%d buffer for light %s: %w", side, side, light.ID, err)
	}
	buf = &lightBuffer{img: img, radius: light.Radius}
	p.lightBufs[light.ID] = buf
	return buf, nil
}

// dropStaleBuffers releases buffers of lights no longer in the scene.
func (p *Pipeline) dropStaleBuffers(scene *Scene) {
	live := make(map[uuid.UUID]bool, len(scene.Lights))
	for _, l := range scene.Lights {
		live[l.ID] = true
	}
	for id, buf := range p.lightBufs {
		if !live[id] {
			buf.img.Dispose()
			delete(p.lightBufs, id)
		}
	}
}
