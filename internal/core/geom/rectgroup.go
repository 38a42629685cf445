package geom

import "math"

// RectGroup is the collision footprint of one entity: an ordered set of
// rectangles that together may form a non-rectangular shape.
type RectGroup []Rect

// Group builds a RectGroup from rects.
func Group(rects ...Rect) RectGroup {
	return RectGroup(rects)
}

// Union returns a new group holding the rectangles of g followed by o.
func (g RectGroup) Union(o RectGroup) RectGroup {
	out := make(RectGroup, 0, len(g)+len(o))
	out = append(out, g...)
	return append(out, o...)
}

// Rects flattens the group into a plain slice (a copy).
func (g RectGroup) Rects() []Rect {
	out := make([]Rect, len(g))
	copy(out, g)
	return out
}

// Translate returns the group shifted by v.
func (g RectGroup) Translate(v Vector2) RectGroup {
	out := make(RectGroup, len(g))
	for i, r := range g {
		out[i] = r.Translate(v)
	}
	return out
}

// Bounds returns the smallest rectangle containing every member. An empty
// group has empty bounds.
func (g RectGroup) Bounds() Rect {
	if len(g) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, r := range g {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Intersects reports whether any member overlaps r.
func (g RectGroup) Intersects(r Rect, touching bool) bool {
	for _, m := range g {
		if m.Intersects(r, touching) {
			return true
		}
	}
	return false
}
