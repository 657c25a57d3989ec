// Package lightshape generates procedural light-shape textures: the images
// that define a light's angular falloff pattern before tinting and shadow
// masking.
package lightshape

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// supersample renders at this multiple of the target size before
// downsampling, smoothing the falloff rim.
const supersample = 2

// Radial renders a size x size radial falloff texture. The intensity is 1
// inside a small flat core, eases out quadratically to the rim, and is 0
// outside the unit circle. lobes > 0 superimposes that many soft angular
// lobes (strength modulation around the circle) so a rotating light has
// visible structure; 0 keeps the shape rotation-symmetric.
func Radial(size, lobes int) *image.NRGBA {
	big := renderFalloff(size*supersample, lobes)

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return out
}

// core is the normalized radius of the flat full-intensity center. It is
// wide enough to survive the downsample filter, so a light's exact color is
// observable at its center.
const core = 0.08

func renderFalloff(size, lobes int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - half
			dy := float64(y) + 0.5 - half
			d := math.Hypot(dx, dy) / half

			v := 0.0
			switch {
			case d <= core:
				v = 1
			case d < 1:
				t := (d - core) / (1 - core)
				v = (1 - t) * (1 - t)
			}

			if lobes > 0 && d > core && v > 0 {
				theta := math.Atan2(dy, dx)
				// Lobe modulation fades in away from the core so
				// the center stays flat.
				m := 1 - 0.2*(1-math.Cos(float64(lobes)*theta))/2
				v *= m
			}

			i := img.PixOffset(x, y)
			img.Pix[i+0] = 0xff
			img.Pix[i+1] = 0xff
			img.Pix[i+2] = 0xff
			img.Pix[i+3] = uint8(v*255 + 0.5)
		}
	}
	return img
}
