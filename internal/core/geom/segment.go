package geom

import (
	"math"
	"sort"
)

// Epsilon is the tolerance used by segment tests. World coordinates are
// pixels, so anything below it is the same point.
const Epsilon = 1e-9

// Segment is a finite line segment between Start and End.
type Segment struct {
	Start, End Vector2
}

// Seg is shorthand for a segment between two points.
func Seg(x1, y1, x2, y2 float64) Segment {
	return Segment{Start: Vector2{x1, y1}, End: Vector2{x2, y2}}
}

// Dir returns End - Start.
func (s Segment) Dir() Vector2 { return s.End.Sub(s.Start) }

// Length returns the segment length.
func (s Segment) Length() float64 { return s.Dir().Length() }

// Reverse swaps Start and End.
func (s Segment) Reverse() Segment { return Segment{Start: s.End, End: s.Start} }

// Angle returns the direction of the segment from its start, in radians.
func (s Segment) Angle() float64 { return s.Dir().Angle() }

// AngleFrom returns the angle at which the segment's start is seen from origin.
func (s Segment) AngleFrom(origin Vector2) float64 { return s.Start.Sub(origin).Angle() }

// Equals reports whether s and o join the same two points, in either direction.
func (s Segment) Equals(o Segment) bool {
	return (s.Start.Equals(o.Start) && s.End.Equals(o.End)) ||
		(s.Start.Equals(o.End) && s.End.Equals(o.Start))
}

// HasVertex reports whether p is exactly one of the endpoints.
func (s Segment) HasVertex(p Vector2) bool {
	return s.Start.Equals(p) || s.End.Equals(p)
}

// SharesVertex reports whether s and o have an endpoint in common.
func (s Segment) SharesVertex(o Segment) bool {
	return s.HasVertex(o.Start) || s.HasVertex(o.End)
}

// IntersectParams solves s.Start + t*s.Dir() == o.Start + u*o.Dir().
// It reports false for parallel segments and when the crossing falls
// outside either segment; endpoints are inclusive.
func (s Segment) IntersectParams(o Segment) (t, u float64, ok bool) {
	r := s.Dir()
	q := o.Dir()
	denom := r.Cross(q)
	if math.Abs(denom) <= Epsilon*r.Length()*q.Length() || denom == 0 {
		return 0, 0, false
	}
	d := o.Start.Sub(s.Start)
	t = d.Cross(q) / denom
	u = d.Cross(r) / denom
	if t < -Epsilon || t > 1+Epsilon || u < -Epsilon || u > 1+Epsilon {
		return 0, 0, false
	}
	return t, u, true
}

// Intersect returns the point where s and o cross, respecting both finite
// extents. Parallel and collinear segments never intersect here; use
// Overlaps for the collinear case.
func (s Segment) Intersect(o Segment) (Vector2, bool) {
	t, _, ok := s.IntersectParams(o)
	if !ok {
		return Vector2{}, false
	}
	return s.Start.Add(s.Dir().Scale(t)), true
}

// collinear reports whether o lies on the infinite line through s.
func (s Segment) collinear(o Segment) bool {
	r := s.Dir()
	rl := r.Length()
	if rl == 0 {
		return false
	}
	for _, p := range [2]Vector2{o.Start, o.End} {
		d := p.Sub(s.Start)
		if math.Abs(r.Cross(d)) > Epsilon*rl*math.Max(1, d.Length()) {
			return false
		}
	}
	return true
}

// param projects p onto s, returning 0 at Start and 1 at End.
func (s Segment) param(p Vector2) float64 {
	r := s.Dir()
	return p.Sub(s.Start).Dot(r) / r.Dot(r)
}

// Overlaps reports whether s and o are collinear and share a part of
// positive length. Segments meeting end to end do not overlap.
func (s Segment) Overlaps(o Segment) bool {
	if !s.collinear(o) {
		return false
	}
	t0, t1 := s.param(o.Start), s.param(o.End)
	lo := math.Max(0, math.Min(t0, t1))
	hi := math.Min(1, math.Max(t0, t1))
	return (hi-lo)*s.Length() > Epsilon
}

// Sections returns the parts of s and o that are not shared. For
// overlapping segments this is the symmetric difference of the two
// extents: at most two segments, built from the original endpoints so
// chained vertices stay exact. Non-overlapping inputs come back unchanged.
func (s Segment) Sections(o Segment) []Segment {
	if !s.Overlaps(o) {
		return []Segment{s, o}
	}
	type stop struct {
		p Vector2
		t float64
	}
	stops := []stop{
		{s.Start, 0},
		{s.End, 1},
		{o.Start, s.param(o.Start)},
		{o.End, s.param(o.End)},
	}
	sort.SliceStable(stops, func(i, j int) bool { return stops[i].t < stops[j].t })

	var out []Segment
	for _, pair := range [2][2]int{{0, 1}, {2, 3}} {
		a, b := stops[pair[0]], stops[pair[1]]
		if (b.t-a.t)*s.Length() <= Epsilon {
			continue
		}
		out = append(out, Segment{Start: a.p, End: b.p})
	}
	return out
}

// ClosestPoint returns the point on s nearest to p.
func (s Segment) ClosestPoint(p Vector2) Vector2 {
	r := s.Dir()
	l2 := r.Dot(r)
	if l2 == 0 {
		return s.Start
	}
	t := math.Max(0, math.Min(1, p.Sub(s.Start).Dot(r)/l2))
	return s.Start.Add(r.Scale(t))
}

// DistanceToPoint returns the distance from p to the nearest point on s.
func (s Segment) DistanceToPoint(p Vector2) float64 {
	return p.Distance(s.ClosestPoint(p))
}
