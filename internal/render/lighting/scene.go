package lighting

import (
	"github.com/codeandkey/shadows/internal/core/shadows"
)

// Scene holds everything the pipeline reads each frame: the lights and the
// occluder geometry. It is owned by the frame loop and passed into each
// stage explicitly; there is no package-level state.
type Scene struct {
	Lights    []*Light
	occluders []shadows.Occluder
	edges     []shadows.Edge
}

// NewScene creates a scene over a fixed set of occluders. Occluders are
// immutable, so their boundary edges are derived once here rather than per
// frame.
func NewScene(occluders []shadows.Occluder) *Scene {
	return &Scene{
		occluders: occluders,
		edges:     shadows.CollectEdges(occluders),
	}
}

// AddLight attaches a light to the scene.
func (s *Scene) AddLight(l *Light) {
	s.Lights = append(s.Lights, l)
}

// Occluders returns the scene's occluders.
func (s *Scene) Occluders() []shadows.Occluder {
	return s.occluders
}

// Edges returns the precomputed occluder boundary edges.
func (s *Scene) Edges() []shadows.Edge {
	return s.edges
}
