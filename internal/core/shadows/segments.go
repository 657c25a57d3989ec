package shadows

import "github.com/go-gl/mathgl/mgl64"

// Edges derives the occluder's four boundary edges in clockwise order
// (top, right, bottom, left). The winding is load-bearing: shadow quads
// built from these edges inherit it, which keeps their fill order
// consistent.
func (o Occluder) Edges() [4]Edge {
	x, y := o.Pos.X(), o.Pos.Y()
	w, h := o.Width, o.Height

	tl := mgl64.Vec2{x, y}
	tr := mgl64.Vec2{x + w, y}
	br := mgl64.Vec2{x + w, y + h}
	bl := mgl64.Vec2{x, y + h}

	return [4]Edge{
		{A: tl, B: tr, Normal: mgl64.Vec2{0, -1}}, // top
		{A: tr, B: br, Normal: mgl64.Vec2{1, 0}},  // right
		{A: br, B: bl, Normal: mgl64.Vec2{0, 1}},  // bottom
		{A: bl, B: tl, Normal: mgl64.Vec2{-1, 0}}, // left
	}
}

// CollectEdges flattens the edges of a set of occluders. Run once at setup
// (or when occluders change), not per frame.
func CollectEdges(occluders []Occluder) []Edge {
	edges := make([]Edge, 0, len(occluders)*4)
	for _, o := range occluders {
		e := o.Edges()
		edges = append(edges, e[:]...)
	}
	return edges
}
