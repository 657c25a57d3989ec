package game

import (
	"image"
	"image/color"
	"testing"

	"github.com/codeandkey/shadows/internal/core/shadows"
	"github.com/codeandkey/shadows/internal/render/lighting"
	"github.com/codeandkey/shadows/internal/render/software"
)

type stubInput struct {
	x, y int
}

func (s *stubInput) CursorPosition() (int, int) {
	return s.x, s.y
}

func flatShape(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func newTestGame(t *testing.T) (*Game, *stubInput) {
	t.Helper()

	r := software.NewRenderer()
	p, err := lighting.NewPipeline(r, nil, flatShape(32))
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}

	scene := lighting.NewScene([]shadows.Occluder{
		shadows.NewOccluder(40, 40, 16, 16),
	})
	pointer, err := lighting.NewLight(32, 32, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, 24)
	if err != nil {
		t.Fatalf("Failed to create light: %v", err)
	}
	rotating, err := lighting.NewLight(64, 64, color.NRGBA{R: 0x80, G: 0xa0, B: 0xff, A: 0xff}, 20)
	if err != nil {
		t.Fatalf("Failed to create light: %v", err)
	}
	scene.AddLight(pointer)
	scene.AddLight(rotating)

	input := &stubInput{x: 32, y: 32}
	g := New(r, input, p, scene, 96, 96)
	g.PointerLight = pointer
	g.RotatingLight = rotating
	return g, input
}

func TestUpdateFollowsCursor(t *testing.T) {
	g, input := newTestGame(t)

	input.x, input.y = 70, 12
	if err := g.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if g.PointerLight.Pos.X() != 70 || g.PointerLight.Pos.Y() != 12 {
		t.Errorf("Expected pointer light at (70, 12), got %v", g.PointerLight.Pos)
	}
}

func TestUpdateAdvancesRotation(t *testing.T) {
	g, _ := newTestGame(t)

	// The first tick establishes the clock; later ticks accumulate angle.
	if err := g.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	start := g.RotatingLight.Angle
	for i := 0; i < 50; i++ {
		if err := g.Update(); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	if g.RotatingLight.Angle < start {
		t.Errorf("Expected rotation angle to advance, got %v -> %v", start, g.RotatingLight.Angle)
	}
}

func TestDrawRendersFullFrame(t *testing.T) {
	g, _ := newTestGame(t)

	r := software.NewRenderer()
	screen, err := r.NewImage(96, 96)
	if err != nil {
		t.Fatalf("Failed to create screen: %v", err)
	}

	g.Draw(screen)
	if err := g.Update(); err != nil {
		t.Fatalf("Draw reported a failure via Update: %v", err)
	}

	// The lit region under the pointer light should be brighter than the
	// far corner, which no light reaches.
	center := screen.(*software.Image).Pixel(32, 32)
	corner := screen.(*software.Image).Pixel(94, 2)
	if center[0] <= corner[0] {
		t.Errorf("Expected lit center brighter than dark corner, got %v vs %v", center[0], corner[0])
	}
}

func TestLayoutClampsDegenerateSizes(t *testing.T) {
	g, _ := newTestGame(t)

	w, h := g.Layout(0, -5)
	if w != 1 || h != 1 {
		t.Errorf("Expected degenerate layout to clamp to 1x1, got %dx%d", w, h)
	}
	w, h = g.Layout(640, 480)
	if w != 640 || h != 480 {
		t.Errorf("Expected layout to pass through 640x480, got %dx%d", w, h)
	}
}
