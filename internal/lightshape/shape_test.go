package lightshape

import (
	"image"
	"testing"
)

func TestRadialSize(t *testing.T) {
	img := Radial(64, 0)
	b := img.Bounds()
	if b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("Expected 64x64 texture, got %dx%d", b.Dx(), b.Dy())
	}
}

func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.Pix[img.PixOffset(x, y)+3]
}

func TestRadialCenterIsFullIntensity(t *testing.T) {
	for _, lobes := range []int{0, 3} {
		img := Radial(128, lobes)
		a := alphaAt(img, 64, 64)
		if a < 254 {
			t.Errorf("lobes=%d: expected full-intensity center, got alpha %d", lobes, a)
		}
	}
}

func TestRadialCornersAreTransparent(t *testing.T) {
	img := Radial(128, 0)
	for _, p := range [][2]int{{0, 0}, {127, 0}, {0, 127}, {127, 127}} {
		if a := alphaAt(img, p[0], p[1]); a != 0 {
			t.Errorf("Expected transparent corner at %v, got alpha %d", p, a)
		}
	}
}

func TestRadialFalloffIsMonotone(t *testing.T) {
	img := Radial(128, 0)

	// Walk outward along the center row. The resampling filter is allowed
	// tiny ripples, so tolerate one level of backtracking.
	prev := int(alphaAt(img, 64, 64))
	for x := 65; x < 128; x++ {
		a := int(alphaAt(img, x, 64))
		if a > prev+1 {
			t.Fatalf("Falloff not monotone: alpha rose from %d to %d at x=%d", prev, a, x)
		}
		prev = a
	}
}

func TestRadialIsWhite(t *testing.T) {
	img := Radial(32, 0)
	i := img.PixOffset(16, 16)
	if img.Pix[i] != 0xff || img.Pix[i+1] != 0xff || img.Pix[i+2] != 0xff {
		t.Errorf("Expected white texture for tinting, got rgb (%d, %d, %d)",
			img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	}
}

func TestRadialLobesVaryAroundCircle(t *testing.T) {
	img := Radial(128, 3)

	// Mid-radius samples at angles 0 and pi/3: with 3 lobes these sit at
	// opposite phases of the modulation, so their intensities differ.
	a0 := alphaAt(img, 64+32, 64)
	a1 := alphaAt(img, 64+16, 64+27) // ~(32cos60, 32sin60)
	if a0 == a1 {
		t.Errorf("Expected lobed shape to vary around the circle, got %d at both angles", a0)
	}
}
