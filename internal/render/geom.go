package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// GeoM is a 2D affine transform:
//
//	| A B Tx |
//	| C D Ty |
//
// mapping (x, y) to (A·x + B·y + Tx, C·x + D·y + Ty). The zero value is the
// identity; like Ebiten's GeoM, the diagonal is stored offset by one so that
// a zero struct transforms nothing. Each mutating op applies its
// transformation after the ops already recorded.
type GeoM struct {
	a1, b, c, d1, tx, ty float64
}

// A returns element (0,0).
func (g *GeoM) A() float64 { return g.a1 + 1 }

// B returns element (0,1).
func (g *GeoM) B() float64 { return g.b }

// C returns element (1,0).
func (g *GeoM) C() float64 { return g.c }

// D returns element (1,1).
func (g *GeoM) D() float64 { return g.d1 + 1 }

// Tx returns element (0,2).
func (g *GeoM) Tx() float64 { return g.tx }

// Ty returns element (1,2).
func (g *GeoM) Ty() float64 { return g.ty }

// Reset restores the identity transform.
func (g *GeoM) Reset() {
	*g = GeoM{}
}

// Translate shifts by (tx, ty) after the current transform.
func (g *GeoM) Translate(tx, ty float64) {
	g.tx += tx
	g.ty += ty
}

// Scale scales by (sx, sy) after the current transform.
func (g *GeoM) Scale(sx, sy float64) {
	a := g.A() * sx
	b := g.b * sx
	c := g.c * sy
	d := g.D() * sy
	g.a1 = a - 1
	g.b = b
	g.c = c
	g.d1 = d - 1
	g.tx *= sx
	g.ty *= sy
}

// Rotate rotates by theta radians after the current transform. Positive
// angles rotate clockwise on a y-down screen.
func (g *GeoM) Rotate(theta float64) {
	sin, cos := math.Sincos(theta)
	a := cos*g.A() - sin*g.c
	b := cos*g.b - sin*g.D()
	c := sin*g.A() + cos*g.c
	d := sin*g.b + cos*g.D()
	tx := cos*g.tx - sin*g.ty
	ty := sin*g.tx + cos*g.ty
	g.a1 = a - 1
	g.b = b
	g.c = c
	g.d1 = d - 1
	g.tx = tx
	g.ty = ty
}

// Apply transforms the point (x, y).
func (g *GeoM) Apply(x, y float64) (float64, float64) {
	return g.A()*x + g.b*y + g.tx, g.c*x + g.D()*y + g.ty
}

// ApplyVec transforms a vector.
func (g *GeoM) ApplyVec(v mgl64.Vec2) mgl64.Vec2 {
	x, y := g.Apply(v.X(), v.Y())
	return mgl64.Vec2{x, y}
}

// IsInvertible reports whether the transform has an inverse.
func (g *GeoM) IsInvertible() bool {
	return g.A()*g.D()-g.b*g.c != 0
}

// Invert replaces the transform with its inverse. It panics if the
// transform is not invertible; callers check IsInvertible first.
func (g *GeoM) Invert() {
	det := g.A()*g.D() - g.b*g.c
	if det == 0 {
		panic("render: GeoM is not invertible")
	}
	a := g.D() / det
	b := -g.b / det
	c := -g.c / det
	d := g.A() / det
	tx := -(a*g.tx + b*g.ty)
	ty := -(c*g.tx + d*g.ty)
	g.a1 = a - 1
	g.b = b
	g.c = c
	g.d1 = d - 1
	g.tx = tx
	g.ty = ty
}
