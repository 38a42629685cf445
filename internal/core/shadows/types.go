package shadows

import (
	"math"

	"chosenoffset.com/lightcore/internal/core/geom"
)

// Coord represents a tile coordinate
type Coord struct {
	X, Y int
}

// Triangle is one wedge of a light fan: the source followed by two
// boundary points.
type Triangle [3]geom.Vector2

// Area returns the unsigned area.
func (t Triangle) Area() float64 {
	return math.Abs(t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))) / 2
}

// Translate returns the triangle shifted by v.
func (t Triangle) Translate(v geom.Vector2) Triangle {
	return Triangle{t[0].Add(v), t[1].Add(v), t[2].Add(v)}
}

// Contains reports whether p lies inside the triangle or on its edges.
func (t Triangle) Contains(p geom.Vector2) bool {
	const eps = 1e-9
	d1 := t[1].Sub(t[0]).Cross(p.Sub(t[0]))
	d2 := t[2].Sub(t[1]).Cross(p.Sub(t[1]))
	d3 := t[0].Sub(t[2]).Cross(p.Sub(t[2]))
	hasNeg := d1 < -eps || d2 < -eps || d3 < -eps
	hasPos := d1 > eps || d2 > eps || d3 > eps
	return !(hasNeg && hasPos)
}

// Mesh is the lit area around a light as a triangle fan. Triangles are
// normalised so the smallest x and y across the mesh are zero; Offset is
// the world position of that origin.
type Mesh struct {
	Triangles []Triangle
	Offset    geom.Vector2

	// Gaps counts wedges dropped because no boundary segment joined two
	// consecutive vertices.
	Gaps int
}

// IsEmpty reports whether the mesh lights nothing.
func (m Mesh) IsEmpty() bool { return len(m.Triangles) == 0 }

// Area returns the lit area.
func (m Mesh) Area() float64 {
	total := 0.0
	for _, t := range m.Triangles {
		total += t.Area()
	}
	return total
}

// World returns the triangles in world coordinates.
func (m Mesh) World() []Triangle {
	out := make([]Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = t.Translate(m.Offset)
	}
	return out
}

// Contains reports whether the world point p is lit by the mesh.
func (m Mesh) Contains(p geom.Vector2) bool {
	local := p.Sub(m.Offset)
	for _, t := range m.Triangles {
		if t.Contains(local) {
			return true
		}
	}
	return false
}

// Bounds returns the mesh extent in world coordinates.
func (m Mesh) Bounds() geom.Rect {
	var g geom.RectGroup
	for _, t := range m.World() {
		for _, p := range t {
			g = append(g, geom.Rect{X: p.X, Y: p.Y})
		}
	}
	return g.Bounds()
}

// normalize moves triangles so the minimum corner is the origin.
func normalize(tris []Triangle) Mesh {
	if len(tris) == 0 {
		return Mesh{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, t := range tris {
		for _, p := range t {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
		}
	}
	offset := geom.Vec(minX, minY)
	shift := offset.Scale(-1)
	out := make([]Triangle, len(tris))
	for i, t := range tris {
		out[i] = t.Translate(shift)
	}
	return Mesh{Triangles: out, Offset: offset}
}
