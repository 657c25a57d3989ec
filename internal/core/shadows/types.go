// Package shadows computes 2D shadow geometry for rectangular occluders
// lit by radial light sources. Coordinates are screen-space: x grows right,
// y grows down.
package shadows

import "github.com/go-gl/mathgl/mgl64"

// Occluder is an axis-aligned rectangular block that casts shadows.
// Occluders are immutable after creation.
type Occluder struct {
	Pos    mgl64.Vec2 // top-left corner
	Width  float64
	Height float64
}

// NewOccluder creates an occluder with its top-left corner at (x, y).
func NewOccluder(x, y, w, h float64) Occluder {
	return Occluder{Pos: mgl64.Vec2{x, y}, Width: w, Height: h}
}

// Edge is one directed side of an occluder's boundary. Normal is the unit
// outward normal of the owning occluder; A->B follows the occluder's
// clockwise winding.
type Edge struct {
	A, B   mgl64.Vec2
	Normal mgl64.Vec2
}

// Midpoint returns (A+B)/2. It is derived on demand and only used by the
// back-face test.
func (e Edge) Midpoint() mgl64.Vec2 {
	return e.A.Add(e.B).Mul(0.5)
}
