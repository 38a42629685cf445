// Package region represents a 2D area as a covering of pairwise-disjoint
// axis-aligned rectangles. It supports union and subtraction, splits the
// covering into connected components and traces each component's outline
// into closed vertex loops.
package region

import (
	"chosenoffset.com/lightcore/internal/core/geom"
)

// outlineState is the cached outline decomposition: stale until computed,
// dropped again by every mutation.
type outlineState interface {
	isOutlineState()
}

type stale struct{}

type computed struct {
	outlines []Outline
}

func (stale) isOutlineState()    {}
func (computed) isOutlineState() {}

// Covering is a set of disjoint rectangles. The zero value is an empty
// covering, which Contains treats as unbounded.
type Covering struct {
	cover []geom.Rect
	cache outlineState
}

// New returns a covering holding the union of seed.
func New(seed ...geom.Rect) *Covering {
	c := &Covering{cache: stale{}}
	for _, r := range seed {
		c.AddRect(r)
	}
	return c
}

// Rects returns a copy of the current rectangles.
func (c *Covering) Rects() []geom.Rect {
	out := make([]geom.Rect, len(c.cover))
	copy(out, c.cover)
	return out
}

// Len returns the number of rectangles in the covering.
func (c *Covering) Len() int { return len(c.cover) }

// IsEmpty reports whether nothing is covered.
func (c *Covering) IsEmpty() bool { return len(c.cover) == 0 }

// Area returns the covered area.
func (c *Covering) Area() float64 {
	total := 0.0
	for _, r := range c.cover {
		total += r.Area()
	}
	return total
}

// Reset empties the covering and its cache.
func (c *Covering) Reset() {
	c.cover = c.cover[:0]
	c.cache = stale{}
}

func (c *Covering) invalidate() {
	c.cache = stale{}
}

// AddRect adds r to the covered area. Rectangles it overlaps are carved
// so the covering stays disjoint.
func (c *Covering) AddRect(r geom.Rect) {
	if r.IsEmpty() {
		return
	}
	for _, existing := range c.cover {
		if existing.Contains(r) {
			return
		}
	}

	next := make([]geom.Rect, 0, len(c.cover)+4)
	for _, existing := range c.cover {
		if existing.Intersects(r, false) {
			next = append(next, carve(existing, r)...)
			continue
		}
		next = append(next, existing)
	}
	c.cover = append(next, r)
	c.invalidate()
}

// SubtractRect removes hole from the covered area.
func (c *Covering) SubtractRect(hole geom.Rect) {
	if hole.IsEmpty() {
		return
	}
	changed := false
	next := make([]geom.Rect, 0, len(c.cover)+4)
	for _, r := range c.cover {
		if !r.Intersects(hole, false) {
			next = append(next, r)
			continue
		}
		changed = true
		if hole.Contains(r) {
			continue
		}
		next = append(next, carve(r, hole)...)
	}
	if !changed {
		return
	}
	c.cover = next
	if len(c.cover) == 0 {
		c.Reset()
		return
	}
	c.invalidate()
}

// carve returns the parts of r outside hole: the bands above and below the
// overlap span r's full width, the left and right pieces only the
// overlap's height. Zero-area pieces are dropped.
func carve(r, hole geom.Rect) []geom.Rect {
	sub, ok := r.Intersection(hole, false)
	if !ok {
		return []geom.Rect{r}
	}
	pieces := [4]geom.Rect{
		{X: r.X, Y: r.Y, W: r.W, H: sub.Y - r.Y},
		{X: r.X, Y: sub.Y, W: sub.X - r.X, H: sub.H},
		{X: sub.Right(), Y: sub.Y, W: r.Right() - sub.Right(), H: sub.H},
		{X: r.X, Y: sub.Bottom(), W: r.W, H: r.Bottom() - sub.Bottom()},
	}
	out := make([]geom.Rect, 0, 4)
	for _, p := range pieces {
		if !p.IsEmpty() {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether p is covered. An empty covering places no
// restriction and contains every point.
func (c *Covering) Contains(p geom.Vector2) bool {
	if len(c.cover) == 0 {
		return true
	}
	for _, r := range c.cover {
		if r.ContainsPoint(p) {
			return true
		}
	}
	return false
}

// Translate shifts every rectangle, and any cached outline, by v.
func (c *Covering) Translate(v geom.Vector2) {
	for i, r := range c.cover {
		c.cover[i] = r.Translate(v)
	}
	if done, ok := c.cache.(computed); ok {
		c.cache = computed{outlines: translateOutlines(done.outlines, v)}
	}
}

// Clone returns a deep copy, cache included.
func (c *Covering) Clone() *Covering {
	out := &Covering{cover: c.Rects(), cache: stale{}}
	if done, ok := c.cache.(computed); ok {
		out.cache = computed{outlines: translateOutlines(done.outlines, geom.Vector2{})}
	}
	return out
}

// adjacent reports whether a and b share a boundary of positive length or
// overlap.
func adjacent(a, b geom.Rect) bool {
	overlap, ok := a.Intersection(b, true)
	return ok && (overlap.W > 0 || overlap.H > 0)
}

// ConnectedComponents partitions the covering into groups of rectangles
// that transitively share edges. Quadratic, which is fine for the tens of
// rectangles a light's reach produces.
func (c *Covering) ConnectedComponents() [][]geom.Rect {
	visited := make(map[string]bool, len(c.cover))
	var components [][]geom.Rect

	for _, start := range c.cover {
		if visited[start.Key()] {
			continue
		}
		visited[start.Key()] = true
		component := []geom.Rect{start}
		queue := []geom.Rect{start}

		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			for _, other := range c.cover {
				if visited[other.Key()] || !adjacent(current, other) {
					continue
				}
				visited[other.Key()] = true
				component = append(component, other)
				queue = append(queue, other)
			}
		}
		components = append(components, component)
	}
	return components
}
