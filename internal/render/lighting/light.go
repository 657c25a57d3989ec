// Package lighting renders per-frame 2D illumination: each light draws its
// shape and shadow geometry into a light-local buffer, the buffers are
// accumulated additively into a screen-sized illumination buffer, which is
// blurred, darkened under occluders, and finally modulated with the world
// scene.
package lighting

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Light is a radial light source.
type Light struct {
	// ID identifies the light across frames; the pipeline keys the
	// light's buffer on it.
	ID uuid.UUID
	// Pos is the light's position in screen space (in pixels).
	Pos mgl64.Vec2
	// Color tints the light's shape texture.
	Color color.NRGBA
	// Radius is the light's reach in pixels. The light buffer measures
	// 2·Radius on each side.
	Radius float64
	// Angle rotates the shape texture about the light's center, in
	// radians. Rotating lights advance it every frame.
	Angle float64
}

// NewLight creates a light. A non-positive radius is a configuration error;
// such a light must never enter the pipeline.
func NewLight(x, y float64, clr color.NRGBA, radius float64) (*Light, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("lighting: light radius must be positive, got %v", radius)
	}
	return &Light{
		ID:     uuid.New(),
		Pos:    mgl64.Vec2{x, y},
		Color:  clr,
		Radius: radius,
	}, nil
}

// SetPos moves the light. Pointer-following lights call this every frame.
func (l *Light) SetPos(x, y float64) {
	l.Pos = mgl64.Vec2{x, y}
}
