package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rect is an axis-aligned box. X and Y are the top-left corner; W and H
// extend right and down.
type Rect struct {
	X, Y, W, H float64
}

// RectAround returns the w×h rectangle centred on c.
func RectAround(c Vector2, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

// Right returns X+W.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Min returns the top-left corner.
func (r Rect) Min() Vector2 { return Vector2{r.X, r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Vector2 { return Vector2{r.Right(), r.Bottom()} }

// Center returns the centre point.
func (r Rect) Center() Vector2 { return Vector2{r.X + r.W/2, r.Y + r.H/2} }

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Corners returns the four corners clockwise from the top-left:
// top-left, top-right, bottom-right, bottom-left.
func (r Rect) Corners() [4]Vector2 {
	return [4]Vector2{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
}

// Edges returns the four boundary segments, clockwise: top, right, bottom, left.
func (r Rect) Edges() [4]Segment {
	c := r.Corners()
	return [4]Segment{
		{Start: c[0], End: c[1]},
		{Start: c[1], End: c[2]},
		{Start: c[2], End: c[3]},
		{Start: c[3], End: c[0]},
	}
}

// Intersects reports whether r and o overlap. When touching is true,
// rectangles that only share an edge or a corner count as intersecting.
func (r Rect) Intersects(o Rect, touching bool) bool {
	if touching {
		return r.X <= o.Right() && o.X <= r.Right() && r.Y <= o.Bottom() && o.Y <= r.Bottom()
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Intersection returns the overlap of r and o. The boolean follows the
// same touching rule as Intersects; with touching the overlap may have zero
// width or height.
func (r Rect) Intersection(o Rect, touching bool) (Rect, bool) {
	if !r.Intersects(o, touching) {
		return Rect{}, false
	}
	x := math.Max(r.X, o.X)
	y := math.Max(r.Y, o.Y)
	return Rect{
		X: x,
		Y: y,
		W: math.Min(r.Right(), o.Right()) - x,
		H: math.Min(r.Bottom(), o.Bottom()) - y,
	}, true
}

// Contains reports whether o lies entirely inside r (shared edges allowed).
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether p lies inside r or on its boundary.
func (r Rect) ContainsPoint(p Vector2) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// StrictlyContainsPoint reports whether p lies in the interior of r.
func (r Rect) StrictlyContainsPoint(p Vector2) bool {
	return p.X > r.X && p.X < r.Right() && p.Y > r.Y && p.Y < r.Bottom()
}

// Translate returns r shifted by v.
func (r Rect) Translate(v Vector2) Rect {
	return Rect{X: r.X + v.X, Y: r.Y + v.Y, W: r.W, H: r.H}
}

// Expand grows r by margin on every side. A negative margin shrinks it.
func (r Rect) Expand(margin float64) Rect {
	return Rect{X: r.X - margin, Y: r.Y - margin, W: r.W + 2*margin, H: r.H + 2*margin}
}

// Equals reports exact equality.
func (r Rect) Equals(o Rect) bool {
	return r == o
}

// Key returns a stable string key "x,y,w,h" usable for set membership.
// Geometrically equal rectangles always produce the same key.
func (r Rect) Key() string {
	var b strings.Builder
	b.Grow(32)
	b.WriteString(formatCoord(r.X))
	b.WriteByte(',')
	b.WriteString(formatCoord(r.Y))
	b.WriteByte(',')
	b.WriteString(formatCoord(r.W))
	b.WriteByte(',')
	b.WriteString(formatCoord(r.H))
	return b.String()
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return "Rect(" + r.Key() + ")"
}

// ParseRectKey parses a key produced by Rect.Key.
func ParseRectKey(key string) (Rect, error) {
	parts := strings.Split(key, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("invalid rect key %q: expected 4 fields, got %d", key, len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Rect{}, fmt.Errorf("invalid rect key %q: %w", key, err)
		}
		vals[i] = v
	}
	return Rect{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}, nil
}

func formatCoord(v float64) string {
	// -0 and 0 must share a key
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
