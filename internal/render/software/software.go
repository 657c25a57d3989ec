// Package software is a CPU implementation of the render backend. Images
// are linear float32 RGBA buffers, so pipeline math (additive accumulation,
// subtractive darkening, blur, final modulation) is observable exactly,
// without GPU quantization. It exists for tests and headless use.
package software

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codeandkey/shadows/internal/render"
)

// Renderer creates software images and resolves built-in programs.
type Renderer struct{}

// NewRenderer creates a software renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// NewImage allocates a float RGBA target cleared to transparent zero.
func (r *Renderer) NewImage(width, height int) (render.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("software: invalid image size %dx%d", width, height)
	}
	return &Image{
		w:   width,
		h:   height,
		pix: make([]float32, width*height*4),
	}, nil
}

// NewImageFromImage allocates a target initialized from a CPU image.
func (r *Renderer) NewImageFromImage(src image.Image) (render.Image, error) {
	b := src.Bounds()
	img, err := r.NewImage(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	dst := img.(*Image)
	for y := 0; y < dst.h; y++ {
		for x := 0; x < dst.w; x++ {
			cr, cg, cb, ca := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			i := (y*dst.w + x) * 4
			dst.pix[i+0] = float32(cr) / 0xffff
			dst.pix[i+1] = float32(cg) / 0xffff
			dst.pix[i+2] = float32(cb) / 0xffff
			dst.pix[i+3] = float32(ca) / 0xffff
		}
	}
	return dst, nil
}

// DrawText is a no-op; the software backend has no font renderer and only
// serves tests and headless runs.
func (r *Renderer) DrawText(dst render.Image, text string, x, y int) {}

// Image is a float32 RGBA buffer. Colors are stored alpha-premultiplied,
// matching GPU render targets. Blended writes clamp to [0, 1]; program
// (kernel) writes are stored as-is so tests can observe pre-clamp values.
type Image struct {
	w, h int
	pix  []float32
}

// Size returns the image dimensions.
func (img *Image) Size() (int, int) {
	return img.w, img.h
}

// Clear resets every pixel to transparent zero.
func (img *Image) Clear() {
	for i := range img.pix {
		img.pix[i] = 0
	}
}

// Fill sets every pixel to clr.
func (img *Image) Fill(clr color.Color) {
	c := toFloat(clr)
	for i := 0; i < len(img.pix); i += 4 {
		img.pix[i+0] = c[0]
		img.pix[i+1] = c[1]
		img.pix[i+2] = c[2]
		img.pix[i+3] = c[3]
	}
}

// Dispose releases the pixel buffer.
func (img *Image) Dispose() {
	img.pix = nil
}

// Pixel returns the raw RGBA value at (x, y). Out-of-bounds reads return
// transparent zero.
func (img *Image) Pixel(x, y int) [4]float32 {
	if x < 0 || y < 0 || x >= img.w || y >= img.h {
		return [4]float32{}
	}
	i := (y*img.w + x) * 4
	return [4]float32{img.pix[i], img.pix[i+1], img.pix[i+2], img.pix[i+3]}
}

// SetPixel stores a raw RGBA value at (x, y).
func (img *Image) SetPixel(x, y int, c [4]float32) {
	if x < 0 || y < 0 || x >= img.w || y >= img.h {
		return
	}
	i := (y*img.w + x) * 4
	img.pix[i+0] = c[0]
	img.pix[i+1] = c[1]
	img.pix[i+2] = c[2]
	img.pix[i+3] = c[3]
}

// DrawImage blits src through the options' transform, sampling bilinearly.
func (img *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	s := src.(*Image)

	var g render.GeoM
	blend := render.BlendNormal
	scale := [4]float32{1, 1, 1, 1}
	if opts != nil {
		g = opts.GeoM
		blend = opts.Blend
		if opts.ColorScale != ([4]float32{}) {
			scale = opts.ColorScale
		}
	}
	if !g.IsInvertible() {
		return
	}

	// Destination bounds of the transformed source rectangle.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range [4][2]float64{{0, 0}, {float64(s.w), 0}, {0, float64(s.h)}, {float64(s.w), float64(s.h)}} {
		x, y := g.Apply(corner[0], corner[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	x0 := clampInt(int(math.Floor(minX)), 0, img.w)
	y0 := clampInt(int(math.Floor(minY)), 0, img.h)
	x1 := clampInt(int(math.Ceil(maxX)), 0, img.w)
	y1 := clampInt(int(math.Ceil(maxY)), 0, img.h)

	inv := g
	inv.Invert()

	for dy := y0; dy < y1; dy++ {
		for dx := x0; dx < x1; dx++ {
			sx, sy := inv.Apply(float64(dx)+0.5, float64(dy)+0.5)
			c := s.sampleBilinear(sx, sy)
			if c == ([4]float32{}) && blend != render.BlendSubtract {
				continue
			}
			c[0] *= scale[0]
			c[1] *= scale[1]
			c[2] *= scale[2]
			c[3] *= scale[3]
			img.blendPixel(dx, dy, c, blend)
		}
	}
}

// FillPolygon fills a simple polygon using even-odd scanline coverage at
// pixel centers.
func (img *Image) FillPolygon(pts []mgl64.Vec2, clr color.Color, blend render.Blend) {
	if len(pts) < 3 {
		return
	}
	c := toFloat(clr)

	minY, maxY := pts[0].Y(), pts[0].Y()
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.Y())
		maxY = math.Max(maxY, p.Y())
	}
	y0 := clampInt(int(math.Floor(minY)), 0, img.h)
	y1 := clampInt(int(math.Ceil(maxY)), 0, img.h)

	var xs []float64
	for py := y0; py < y1; py++ {
		cy := float64(py) + 0.5
		xs = xs[:0]
		j := len(pts) - 1
		for i := 0; i < len(pts); i++ {
			a, b := pts[j], pts[i]
			j = i
			if (a.Y() > cy) == (b.Y() > cy) {
				continue
			}
			t := (cy - a.Y()) / (b.Y() - a.Y())
			xs = append(xs, a.X()+t*(b.X()-a.X()))
		}
		sortFloats(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			sx := clampInt(int(math.Ceil(xs[i]-0.5)), 0, img.w)
			ex := clampInt(int(math.Ceil(xs[i+1]-0.5)), 0, img.w)
			for px := sx; px < ex; px++ {
				img.blendPixel(px, py, c, blend)
			}
		}
	}
}

// FillRect fills the axis-aligned rectangle [x, x+w) x [y, y+h), covering
// each pixel whose center lies inside.
func (img *Image) FillRect(x, y, w, h float64, clr color.Color, blend render.Blend) {
	c := toFloat(clr)
	x0 := clampInt(int(math.Ceil(x-0.5)), 0, img.w)
	y0 := clampInt(int(math.Ceil(y-0.5)), 0, img.h)
	x1 := clampInt(int(math.Ceil(x+w-0.5)), 0, img.w)
	y1 := clampInt(int(math.Ceil(y+h-0.5)), 0, img.h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			img.blendPixel(px, py, c, blend)
		}
	}
}

func (img *Image) blendPixel(x, y int, src [4]float32, blend render.Blend) {
	i := (y*img.w + x) * 4
	dst := img.pix[i : i+4 : i+4]
	switch blend {
	case render.BlendNormal:
		inv := 1 - src[3]
		for k := 0; k < 4; k++ {
			dst[k] = clamp01(src[k] + dst[k]*inv)
		}
	case render.BlendAdd:
		for k := 0; k < 4; k++ {
			dst[k] = clamp01(dst[k] + src[k])
		}
	case render.BlendSubtract:
		for k := 0; k < 3; k++ {
			dst[k] = clamp01(dst[k] - src[k])
		}
	}
}

// sampleBilinear samples at continuous source coordinates (pixel centers at
// half-integer positions). Samples outside the source area are transparent,
// mirroring imageSrc0At's behavior outside the source region.
func (img *Image) sampleBilinear(x, y float64) [4]float32 {
	fx := x - 0.5
	fy := y - 0.5
	ix := int(math.Floor(fx))
	iy := int(math.Floor(fy))
	tx := float32(fx - float64(ix))
	ty := float32(fy - float64(iy))

	p00 := img.Pixel(ix, iy)
	p10 := img.Pixel(ix+1, iy)
	p01 := img.Pixel(ix, iy+1)
	p11 := img.Pixel(ix+1, iy+1)

	var out [4]float32
	for k := 0; k < 4; k++ {
		top := p00[k]*(1-tx) + p10[k]*tx
		bot := p01[k]*(1-tx) + p11[k]*tx
		out[k] = top*(1-ty) + bot*ty
	}
	return out
}

func toFloat(clr color.Color) [4]float32 {
	r, g, b, a := clr.RGBA()
	return [4]float32{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortFloats(xs []float64) {
	// Insertion sort; scanline crossing counts are tiny.
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}
