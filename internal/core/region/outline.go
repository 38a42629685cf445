package region

import (
	"math"

	"chosenoffset.com/lightcore/internal/core/geom"
)

// Loop is a closed polyline; the last vertex joins back to the first.
type Loop []geom.Vector2

// Segments returns the loop's edges, including the closing one.
func (l Loop) Segments() []geom.Segment {
	if len(l) < 2 {
		return nil
	}
	out := make([]geom.Segment, len(l))
	for i := range l {
		out[i] = geom.Segment{Start: l[i], End: l[(i+1)%len(l)]}
	}
	return out
}

// Perimeter returns the total edge length.
func (l Loop) Perimeter() float64 {
	total := 0.0
	for _, s := range l.Segments() {
		total += s.Length()
	}
	return total
}

// Outline is the traced silhouette of one connected component. Components
// with holes have more than one loop.
type Outline struct {
	Loops []Loop
}

// Segments flattens every loop of the outline.
func (o Outline) Segments() []geom.Segment {
	var out []geom.Segment
	for _, l := range o.Loops {
		out = append(out, l.Segments()...)
	}
	return out
}

// Outlines returns one outline per connected component. The result is
// cached until the next AddRect or SubtractRect and must not be modified.
func (c *Covering) Outlines() []Outline {
	if done, ok := c.cache.(computed); ok {
		return done.outlines
	}

	var outlines []Outline
	for _, component := range c.ConnectedComponents() {
		outlines = append(outlines, Outline{Loops: traceLoops(silhouette(component))})
	}
	c.cache = computed{outlines: outlines}
	return outlines
}

// Segments returns the boundary segments of every outline.
func (c *Covering) Segments() []geom.Segment {
	var out []geom.Segment
	for _, o := range c.Outlines() {
		out = append(out, o.Segments()...)
	}
	return out
}

// silhouette collects the edges of every rectangle in a component and
// cancels shared portions: each overlapping pair is replaced by its
// non-overlapping remainders until no pair overlaps. Edges between two
// adjacent rectangles vanish, leaving only the component's boundary.
func silhouette(rects []geom.Rect) []geom.Segment {
	edges := make([]geom.Segment, 0, len(rects)*4)
	for _, r := range rects {
		e := r.Edges()
		edges = append(edges, e[:]...)
	}

	from := 0
	for {
		i, j, found := findOverlap(edges, from)
		if !found {
			return edges
		}
		rest := edges[i].Sections(edges[j])
		edges = append(edges[:j], edges[j+1:]...)
		edges = append(edges[:i], edges[i+1:]...)
		edges = append(edges, rest...)
		from = i
	}
}

// findOverlap returns the first overlapping pair (i < j) with i >= from.
func findOverlap(edges []geom.Segment, from int) (int, int, bool) {
	for i := from; i < len(edges); i++ {
		for j := i + 1; j < len(edges); j++ {
			if edges[i].Overlaps(edges[j]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// traceLoops chains edges into loops by walking from an unused edge to an
// unused neighbour at its far endpoint until the walk returns to where it
// began. Edges are indexed by both endpoints.
func traceLoops(edges []geom.Segment) []Loop {
	index := make(map[geom.Vector2][]int, len(edges)*2)
	for i, e := range edges {
		index[e.Start] = append(index[e.Start], i)
		index[e.End] = append(index[e.End], i)
	}

	used := make([]bool, len(edges))
	var loops []Loop
	for first := range edges {
		if used[first] {
			continue
		}
		used[first] = true
		start := edges[first].Start
		loop := Loop{start}
		cur := edges[first].End

		for !cur.Equals(start) {
			loop = append(loop, cur)
			next := -1
			for _, k := range index[cur] {
				if !used[k] {
					next = k
					break
				}
			}
			if next < 0 {
				// open chain; only reachable with inconsistent input
				break
			}
			used[next] = true
			if edges[next].Start.Equals(cur) {
				cur = edges[next].End
			} else {
				cur = edges[next].Start
			}
		}
		loops = append(loops, simplify(loop))
	}
	return loops
}

// simplify drops vertices that sit in the middle of a straight run.
func simplify(loop Loop) Loop {
	n := len(loop)
	if n < 4 {
		return loop
	}
	out := make(Loop, 0, n)
	for i := 0; i < n; i++ {
		prev, v, next := loop[(i-1+n)%n], loop[i], loop[(i+1)%n]
		in := v.Sub(prev)
		outDir := next.Sub(v)
		straight := math.Abs(in.Cross(outDir)) <= geom.Epsilon*in.Length()*outDir.Length() && in.Dot(outDir) > 0
		if straight {
			continue
		}
		out = append(out, v)
	}
	if len(out) < 3 {
		return loop
	}
	return out
}

func translateOutlines(outlines []Outline, v geom.Vector2) []Outline {
	out := make([]Outline, len(outlines))
	for i, o := range outlines {
		loops := make([]Loop, len(o.Loops))
		for j, l := range o.Loops {
			moved := make(Loop, len(l))
			for k, p := range l {
				moved[k] = p.Add(v)
			}
			loops[j] = moved
		}
		out[i] = Outline{Loops: loops}
	}
	return out
}
