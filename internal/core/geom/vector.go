// Package geom provides the 2D primitives shared by the spatial grid, the
// region algebra and the shadow caster: points, axis-aligned rectangles,
// line segments and rectangle groups.
package geom

import "math"

// Vector2 represents a 2D point or direction in world space (pixels).
// Values are immutable; every operation returns a new vector.
type Vector2 struct {
	X, Y float64
}

// Vec is shorthand for Vector2{X: x, Y: y}.
func Vec(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 {
	return Vector2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 {
	return Vector2{v.X - o.X, v.Y - o.Y}
}

// Scale multiplies both components by s.
func (v Vector2) Scale(s float64) Vector2 {
	return Vector2{v.X * s, v.Y * s}
}

// Length returns the Euclidean length of v.
func (v Vector2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	if l == 0 {
		return Vector2{}
	}
	return Vector2{v.X / l, v.Y / l}
}

// Dot returns the dot product of v and o.
func (v Vector2) Dot(o Vector2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vector2) Cross(o Vector2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Distance returns the Euclidean distance between v and o.
func (v Vector2) Distance(o Vector2) float64 {
	return o.Sub(v).Length()
}

// DiagonalDistance returns the Chebyshev distance between v and o, the
// number of king moves on a grid with unit cells.
func (v Vector2) DiagonalDistance(o Vector2) float64 {
	return math.Max(math.Abs(o.X-v.X), math.Abs(o.Y-v.Y))
}

// Angle returns the direction of v in radians, in (-π, π].
func (v Vector2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Lerp linearly interpolates from v towards o; t=0 gives v, t=1 gives o.
func (v Vector2) Lerp(o Vector2, t float64) Vector2 {
	return Vector2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Cerp interpolates like Lerp but eases in and out along a cosine curve.
func (v Vector2) Cerp(o Vector2, t float64) Vector2 {
	return v.Lerp(o, (1-math.Cos(t*math.Pi))/2)
}

// Equals reports exact component-wise equality.
func (v Vector2) Equals(o Vector2) bool {
	return v.X == o.X && v.Y == o.Y
}

// NearlyEquals reports component-wise equality within eps.
func (v Vector2) NearlyEquals(o Vector2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}
