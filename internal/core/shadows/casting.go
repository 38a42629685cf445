// Package shadows computes what a point light can see. The free area
// around the light is its reach rectangle minus every opaque occluder in
// the spatial grid; the outline of that area is swept by angle from the
// source and the lit region is returned as a triangle fan.
package shadows

import (
	"math"
	"sort"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/region"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/observability/log"
)

// DefaultNudge is how far past a vertex the engine probes for free space.
const DefaultNudge = 0.01

// Options tunes an Engine.
type Options struct {
	// Nudge is the probe distance past each visible vertex.
	Nudge float64

	// Transparent reports owners whose colliders block movement but not
	// light. Nil treats every collider as opaque.
	Transparent func(spatial.Owner) bool
}

// Engine computes visibility meshes. An engine is safe for concurrent use
// as long as the grid is not mutated while Compute runs.
type Engine struct {
	logger *log.Logger
	opts   Options
	diag   *reporter
}

// NewEngine creates an engine. A nil logger discards diagnostics.
func NewEngine(logger *log.Logger, opts Options) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	if opts.Nudge <= 0 {
		opts.Nudge = DefaultNudge
	}
	return &Engine{
		logger: logger,
		opts:   opts,
		diag:   newReporter(logger.Named("shadows")),
	}
}

// Occurrences returns how many times a diagnostic class has been hit by
// this engine, including the suppressed ones.
func (e *Engine) Occurrences(class string) int {
	return e.diag.count(class)
}

// attachment is a point on the boundary reached by the light at a vertex,
// with the index of the segment it lies on.
type attachment struct {
	point geom.Vector2
	seg   int
}

// sweepVertex is a visible outline vertex and everything attached to it.
type sweepVertex struct {
	point    geom.Vector2
	angle    float64
	dist     float64
	attached []attachment
}

// Compute returns the mesh lit by a light at source limited to reach.
// Colliders owned by owner do not occlude their own light. A source outside
// reach or inside an opaque collider lights nothing.
func (e *Engine) Compute(source geom.Vector2, reach geom.Rect, grid *spatial.Grid, owner spatial.Owner) Mesh {
	if reach.IsEmpty() || !reach.StrictlyContainsPoint(source) {
		return Mesh{}
	}
	opaque := e.occludes(owner)
	if grid.OccupiedAt(source, opaque) {
		return Mesh{}
	}

	free := region.New(reach)
	for _, c := range grid.CollidesWith(reach, owner, opaque) {
		free.SubtractRect(c.First)
	}
	if free.IsEmpty() {
		return Mesh{}
	}
	segments := free.Segments()

	vertices := e.visibleVertices(source, segments)
	if len(vertices) < 2 {
		return Mesh{}
	}
	sort.Slice(vertices, func(i, j int) bool {
		if vertices[i].angle != vertices[j].angle {
			return vertices[i].angle < vertices[j].angle
		}
		return vertices[i].dist < vertices[j].dist
	})

	longRay := 2 * math.Hypot(reach.W, reach.H)
	for i := range vertices {
		e.attach(&vertices[i], source, reach, segments, grid, opaque, longRay)
	}

	tris, gaps := e.fan(source, vertices, segments)
	mesh := normalize(tris)
	mesh.Gaps = gaps
	return mesh
}

// occludes builds the grid filter for colliders that block this light.
func (e *Engine) occludes(owner spatial.Owner) spatial.Filter {
	return func(c spatial.Collider) bool {
		if owner != spatial.NoOwner && c.Owner == owner {
			return false
		}
		if e.opts.Transparent != nil && e.opts.Transparent(c.Owner) {
			return false
		}
		return true
	}
}

// visibleVertices keeps the outline endpoints the source can see: no
// segment that does not end at the vertex may cross the ray to it.
func (e *Engine) visibleVertices(source geom.Vector2, segments []geom.Segment) []sweepVertex {
	seen := make(map[geom.Vector2]struct{}, len(segments)*2)
	var out []sweepVertex
	for _, s := range segments {
		for _, p := range [2]geom.Vector2{s.Start, s.End} {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			if p.Equals(source) || !visible(source, p, segments) {
				continue
			}
			d := p.Sub(source)
			out = append(out, sweepVertex{point: p, angle: d.Angle(), dist: d.Length()})
		}
	}
	return out
}

func visible(source, p geom.Vector2, segments []geom.Segment) bool {
	ray := geom.Segment{Start: source, End: p}
	for _, s := range segments {
		if s.HasVertex(p) {
			continue
		}
		t, _, ok := ray.IntersectParams(s)
		if ok && t > geom.Epsilon && t < 1-geom.Epsilon {
			return false
		}
	}
	return true
}

// attach records the segments incident to v and, when the light carries on
// past v, the nearest point the extended ray reaches beyond it.
func (e *Engine) attach(v *sweepVertex, source geom.Vector2, reach geom.Rect, segments []geom.Segment,
	grid *spatial.Grid, opaque spatial.Filter, longRay float64) {
	for i, s := range segments {
		if s.HasVertex(v.point) {
			v.attached = append(v.attached, attachment{point: v.point, seg: i})
		}
	}

	dir := v.point.Sub(source).Normalize()
	probe := v.point.Add(dir.Scale(e.opts.Nudge))
	if !reach.StrictlyContainsPoint(probe) || grid.OccupiedAt(probe, opaque) {
		return
	}

	ray := geom.Segment{Start: source, End: source.Add(dir.Scale(longRay))}
	beyond := v.dist / longRay
	best, bestT := -1, math.Inf(1)
	for i, s := range segments {
		if s.HasVertex(v.point) {
			continue
		}
		t, _, ok := ray.IntersectParams(s)
		if !ok || t <= beyond+geom.Epsilon || t >= bestT {
			continue
		}
		best, bestT = i, t
	}
	if best < 0 {
		e.diag.report(ClassProjectionMiss, log.Vec("source", source.X, source.Y), log.Vec("vertex", v.point.X, v.point.Y))
		return
	}
	hit := snap(ray.Start.Add(ray.Dir().Scale(bestT)), segments[best])
	v.attached = append(v.attached, attachment{point: hit, seg: best})
}

// snap pins a projected point onto an axis-aligned segment's line.
func snap(p geom.Vector2, s geom.Segment) geom.Vector2 {
	if s.Start.X == s.End.X {
		p.X = s.Start.X
	}
	if s.Start.Y == s.End.Y {
		p.Y = s.Start.Y
	}
	return p
}

// fan joins each pair of consecutive vertices through a segment both are
// attached to. Pairs without one are dropped and counted.
func (e *Engine) fan(source geom.Vector2, vertices []sweepVertex, segments []geom.Segment) ([]Triangle, int) {
	tris := make([]Triangle, 0, len(vertices))
	gaps := 0
	for i := range vertices {
		a := vertices[i]
		b := vertices[(i+1)%len(vertices)]

		from, to, ok := closestLink(source, a.attached, b.attached, segments)
		if !ok {
			gaps++
			e.diag.report(ClassUnmatchedWedge,
				log.Vec("source", source.X, source.Y),
				log.Vec("from", a.point.X, a.point.Y),
				log.Vec("to", b.point.X, b.point.Y))
			continue
		}
		tri := Triangle{source, from, to}
		if tri.Area() <= geom.Epsilon {
			continue
		}
		tris = append(tris, tri)
	}
	return tris, gaps
}

// closestLink finds attachments of a and b lying on a common segment,
// preferring the pair whose chord is nearest to the source.
func closestLink(source geom.Vector2, a, b []attachment, segments []geom.Segment) (geom.Vector2, geom.Vector2, bool) {
	var from, to geom.Vector2
	found := false
	bestDist := math.Inf(1)
	for _, pa := range a {
		for _, pb := range b {
			if pa.seg != pb.seg && !segments[pa.seg].Overlaps(segments[pb.seg]) {
				continue
			}
			mid := pa.point.Lerp(pb.point, 0.5)
			if d := mid.Distance(source); d < bestDist {
				from, to, bestDist, found = pa.point, pb.point, d, true
			}
		}
	}
	return from, to, found
}
