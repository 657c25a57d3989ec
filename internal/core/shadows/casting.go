package shadows

import "github.com/go-gl/mathgl/mgl64"

// BackFacing reports whether the edge's outward normal points away from the
// light at lightPos. Only back-facing edges cast shadows; front faces are
// visible to the light and culling them avoids self-shadowing artifacts.
// A light lying exactly on the edge's plane (dot == 0) does not count as
// back-facing.
func BackFacing(lightPos mgl64.Vec2, e Edge) bool {
	return e.Normal.Dot(lightPos.Sub(e.Midpoint())) < 0
}

// ShadowQuad projects a back-facing edge away from the light and returns the
// occluded quadrilateral in light-local space (light at the origin). The
// vertices wind clockwise, matching the occluder's edge winding, and the far
// vertices are scaled by radius so the quad always spans the light's
// (2·radius)² buffer. ok is false for a degenerate zero-length edge, whose
// normal is meaningless and which casts no shadow.
func ShadowQuad(lightPos mgl64.Vec2, radius float64, e Edge) (quad [4]mgl64.Vec2, ok bool) {
	if e.A == e.B {
		return quad, false
	}

	a := e.A.Sub(lightPos)
	b := e.B.Sub(lightPos)
	c := a.Mul(radius)
	d := b.Mul(radius)

	return [4]mgl64.Vec2{c, d, b, a}, true
}

// CastShadows computes shadow quads for every edge back-facing the light,
// in light-local space. Front-facing and degenerate edges are skipped.
func CastShadows(lightPos mgl64.Vec2, radius float64, edges []Edge) [][4]mgl64.Vec2 {
	var quads [][4]mgl64.Vec2
	for _, e := range edges {
		if !BackFacing(lightPos, e) {
			continue
		}
		if q, ok := ShadowQuad(lightPos, radius, e); ok {
			quads = append(quads, q)
		}
	}
	return quads
}
