package lighting

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeandkey/shadows/internal/core/shadows"
	"github.com/codeandkey/shadows/internal/render"
	"github.com/codeandkey/shadows/internal/render/software"
)

// flatShape is a uniform white shape texture: every point of the light's
// footprint receives the full tint, which makes pipeline-level expectations
// exact.
func flatShape() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func newTestPipeline(t *testing.T, w, h int) (*Pipeline, *software.Renderer) {
	t.Helper()
	r := software.NewRenderer()
	p, err := NewPipeline(r, nil, flatShape())
	require.NoError(t, err)
	require.NoError(t, p.Resize(w, h))
	return p, r
}

func pixel(t *testing.T, img render.Image, x, y int) [4]float32 {
	t.Helper()
	si, ok := img.(*software.Image)
	require.True(t, ok)
	return si.Pixel(x, y)
}

func mustLight(t *testing.T, x, y float64, clr color.NRGBA, radius float64) *Light {
	t.Helper()
	l, err := NewLight(x, y, clr, radius)
	require.NoError(t, err)
	return l
}

func TestNewLightRejectsNonPositiveRadius(t *testing.T) {
	_, err := NewLight(0, 0, color.NRGBA{A: 255}, 0)
	assert.Error(t, err)
	_, err = NewLight(0, 0, color.NRGBA{A: 255}, -5)
	assert.Error(t, err)
}

func TestAccumulateAdditivity(t *testing.T) {
	clr := color.NRGBA{R: 64, G: 64, B: 64, A: 255}

	p, _ := newTestPipeline(t, 32, 32)
	single := NewScene(nil)
	single.AddLight(mustLight(t, 16, 16, clr, 8))
	require.NoError(t, p.RenderLightmaps(single))
	require.NoError(t, p.Accumulate(single))
	one := pixel(t, p.Accum(), 16, 16)

	p2, _ := newTestPipeline(t, 32, 32)
	double := NewScene(nil)
	double.AddLight(mustLight(t, 16, 16, clr, 8))
	double.AddLight(mustLight(t, 16, 16, clr, 8))
	require.NoError(t, p2.RenderLightmaps(double))
	require.NoError(t, p2.Accumulate(double))
	two := pixel(t, p2.Accum(), 16, 16)

	for k := 0; k < 3; k++ {
		assert.InDelta(t, 2*float64(one[k]), float64(two[k]), 1e-6, "channel %d", k)
	}
	assert.Greater(t, float64(one[0]), 0.2)
}

func TestLightBufferReusedUntilRadiusChanges(t *testing.T) {
	p, _ := newTestPipeline(t, 32, 32)
	scene := NewScene(nil)
	l := mustLight(t, 16, 16, color.NRGBA{R: 255, A: 255}, 8)
	scene.AddLight(l)

	require.NoError(t, p.RenderLightmaps(scene))
	buf := p.lightBufs[l.ID]
	require.NotNil(t, buf)

	require.NoError(t, p.RenderLightmaps(scene))
	assert.Same(t, buf, p.lightBufs[l.ID])

	l.Radius = 12
	require.NoError(t, p.RenderLightmaps(scene))
	next := p.lightBufs[l.ID]
	assert.NotSame(t, buf, next)
	w, _ := next.img.Size()
	assert.Equal(t, 24, w)
}

func TestStaleLightBuffersDropped(t *testing.T) {
	p, _ := newTestPipeline(t, 32, 32)
	scene := NewScene(nil)
	l := mustLight(t, 16, 16, color.NRGBA{R: 255, A: 255}, 8)
	scene.AddLight(l)
	require.NoError(t, p.RenderLightmaps(scene))
	require.Contains(t, p.lightBufs, l.ID)

	empty := NewScene(nil)
	require.NoError(t, p.RenderLightmaps(empty))
	assert.NotContains(t, p.lightBufs, l.ID)
}

func TestDarkenInsideFootprintOnly(t *testing.T) {
	p, _ := newTestPipeline(t, 32, 32)
	scene := NewScene([]shadows.Occluder{shadows.NewOccluder(4, 4, 8, 8)})

	p.Accum().Fill(color.RGBA64{R: 0xcccc, G: 0xcccc, B: 0xcccc, A: 0xffff})
	require.NoError(t, p.Darken(scene))

	// Inside the footprint every channel drops by exactly the darken
	// level; outside nothing changes.
	for _, pt := range [][2]int{{4, 4}, {11, 11}, {8, 8}} {
		px := pixel(t, p.Accum(), pt[0], pt[1])
		assert.InDelta(t, 0.8-0.45, float64(px[0]), 1e-3, "inside %v", pt)
		assert.InDelta(t, 1.0, float64(px[3]), 1e-4, "alpha %v", pt)
	}
	for _, pt := range [][2]int{{3, 4}, {12, 11}, {0, 0}, {31, 31}} {
		px := pixel(t, p.Accum(), pt[0], pt[1])
		assert.InDelta(t, 0.8, float64(px[0]), 1e-3, "outside %v", pt)
	}
}

func TestBlurLeavesConstantInterior(t *testing.T) {
	p, _ := newTestPipeline(t, 16, 16)
	p.Accum().Fill(color.RGBA64{R: 0x8000, G: 0x8000, B: 0x8000, A: 0xffff})
	require.NoError(t, p.Blur())

	for y := 3; y < 13; y++ {
		for x := 3; x < 13; x++ {
			px := pixel(t, p.Accum(), x, y)
			assert.InDelta(t, 0.5, float64(px[1]), 1e-3, "(%d,%d)", x, y)
			assert.Equal(t, float32(1), px[3], "(%d,%d)", x, y)
		}
	}
	assert.Less(t, float64(pixel(t, p.Accum(), 0, 0)[1]), 0.45)
}

func TestCompositeContract(t *testing.T) {
	p, r := newTestPipeline(t, 8, 8)
	dstImg, err := r.NewImage(8, 8)
	require.NoError(t, err)

	p.World().Fill(color.White)

	// Mid-gray illumination reproduces the world unchanged.
	p.Accum().Fill(color.RGBA64{R: 0x8000, G: 0x8000, B: 0x8000, A: 0xffff})
	require.NoError(t, p.Composite(dstImg))
	px := pixel(t, dstImg, 4, 4)
	assert.InDelta(t, 1.0, float64(px[0]), 1e-3)
	assert.Equal(t, float32(1), px[3])

	// White illumination doubles the world, pre-clamp.
	p.Accum().Fill(color.White)
	require.NoError(t, p.Composite(dstImg))
	px = pixel(t, dstImg, 4, 4)
	assert.InDelta(t, 2.0, float64(px[0]), 1e-3)
}

func TestFrameLitCenterMatchesColorTimesWorld(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size frame")
	}

	p, r := newTestPipeline(t, 900, 820)
	dstImg, err := r.NewImage(900, 820)
	require.NoError(t, err)

	clr := color.NRGBA{R: 64, G: 128, B: 192, A: 255}
	scene := NewScene(nil)
	scene.AddLight(mustLight(t, 450, 410, clr, 400))

	p.World().Fill(color.White)
	require.NoError(t, p.RenderLightmaps(scene))
	require.NoError(t, p.Accumulate(scene))
	require.NoError(t, p.Blur())
	require.NoError(t, p.Darken(scene))
	require.NoError(t, p.Composite(dstImg))

	px := pixel(t, dstImg, 450, 410)
	want := [3]float64{
		2 * float64(clr.R) / 255,
		2 * float64(clr.G) / 255,
		2 * float64(clr.B) / 255,
	}
	for k := 0; k < 3; k++ {
		assert.InDelta(t, want[k], float64(px[k]), 2e-3, "channel %d", k)
	}
}

func TestFrameShadowedPoint(t *testing.T) {
	p, _ := newTestPipeline(t, 240, 240)

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	scene := NewScene([]shadows.Occluder{shadows.NewOccluder(120, 80, 20, 40)})
	scene.AddLight(mustLight(t, 100, 100, white, 80))

	require.NoError(t, p.RenderLightmaps(scene))
	require.NoError(t, p.Accumulate(scene))

	// (160,100) sits behind the occluder's right edge, well inside the
	// shadow quad and within the light's radius: fully dark before blur.
	shadowed := pixel(t, p.Accum(), 160, 100)
	assert.Equal(t, float32(0), shadowed[0])
	assert.Equal(t, float32(0), shadowed[1])
	assert.Equal(t, float32(0), shadowed[2])

	// (60,100) has clear line of sight.
	lit := pixel(t, p.Accum(), 60, 100)
	assert.Greater(t, float64(lit[0]), 0.9)

	// (160,157) is barely inside the silhouette ray through the occluder
	// corner at (120,120); blur bleeds light across the hard edge,
	// leaving it dim but nonzero.
	preEdge := pixel(t, p.Accum(), 160, 157)
	assert.Equal(t, float32(0), preEdge[0])

	require.NoError(t, p.Blur())
	postEdge := pixel(t, p.Accum(), 160, 157)
	assert.Greater(t, float64(postEdge[0]), 0.0)
	assert.Less(t, float64(postEdge[0]), float64(lit[0]))

	// Deep inside the shadow the blur has nothing to bleed.
	deep := pixel(t, p.Accum(), 160, 100)
	assert.Equal(t, float32(0), deep[0])
}

func TestResizeReallocatesOnlyOnChange(t *testing.T) {
	p, _ := newTestPipeline(t, 32, 16)
	world := p.World()
	require.NoError(t, p.Resize(32, 16))
	assert.Same(t, world, p.World())

	require.NoError(t, p.Resize(64, 16))
	assert.NotSame(t, world, p.World())
	w, h := p.World().Size()
	assert.Equal(t, 64, w)
	assert.Equal(t, 16, h)
}

func TestResizeClampsDegenerateViewport(t *testing.T) {
	p, _ := newTestPipeline(t, 8, 8)
	require.NoError(t, p.Resize(0, 0))
	w, h := p.World().Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	// A one-pixel viewport must still survive a blur.
	p.Accum().Fill(color.White)
	assert.NoError(t, p.Blur())
}

func TestFrameRequiresResize(t *testing.T) {
	r := software.NewRenderer()
	p, err := NewPipeline(r, nil, flatShape())
	require.NoError(t, err)

	dst, err := r.NewImage(4, 4)
	require.NoError(t, err)
	assert.Error(t, p.Frame(dst, NewScene(nil)))
}
