// Package collision coordinates the per-frame collision pass: it refills
// the spatial grid with what is in view and moves entities one axis at a
// time so a wall blocking one axis does not stop motion along the other.
package collision

import (
	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/entity"
	"chosenoffset.com/lightcore/internal/observability/log"
)

// Movement is what Resolve did to one moving entity.
type Movement struct {
	Entity   *entity.Entity
	Delta    geom.Vector2
	BlockedX bool
	BlockedY bool
}

// Resolver owns the frame's spatial grid.
type Resolver struct {
	grid     *spatial.Grid
	passable map[spatial.Owner]bool
	logger   *log.Logger
}

// NewResolver creates a resolver over grid.
func NewResolver(grid *spatial.Grid, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Nop()
	}
	return &Resolver{
		grid:     grid,
		passable: make(map[spatial.Owner]bool),
		logger:   logger.Named("collision"),
	}
}

// SetPassable marks owners whose colliders stay in the grid for queries
// such as lighting but never block movement.
func (r *Resolver) SetPassable(owners ...spatial.Owner) {
	for _, o := range owners {
		r.passable[o] = true
	}
}

// Grid returns the grid as of the last Rebuild.
func (r *Resolver) Grid() *spatial.Grid { return r.grid }

// Rebuild clears the grid and registers the static rects and the
// collidable entities that intersect view.
func (r *Resolver) Rebuild(view geom.Rect, static geom.RectGroup, entities []*entity.Entity) {
	r.grid.Clear()
	r.AddStatic(view, static, spatial.NoOwner)
	for _, e := range entities {
		if !e.Collidable {
			continue
		}
		bounds := e.Bounds()
		if bounds.Intersects(view, false) {
			r.grid.AddGroup(bounds, e.Owner())
		}
	}
}

// AddStatic registers the rects of group intersecting view under owner.
// Use it after Rebuild for static layers that need their own owner.
func (r *Resolver) AddStatic(view geom.Rect, group geom.RectGroup, owner spatial.Owner) {
	for _, rect := range group {
		if rect.Intersects(view, false) {
			r.grid.Add(rect, owner)
		}
	}
}

// Resolve moves every entity with a velocity, X first then Y, undoing an
// axis if the moved footprint overlaps anything the entity does not own.
// The grid is the snapshot from Rebuild; entities moved earlier in the same
// pass are seen at their old positions.
func (r *Resolver) Resolve(entities []*entity.Entity) []Movement {
	var out []Movement
	for _, e := range entities {
		if !e.IsMoving() {
			continue
		}
		m := Movement{Entity: e}
		start := e.Position

		if e.Velocity.X != 0 {
			next := e.Position.Add(geom.Vec(e.Velocity.X, 0))
			if e.Collidable && r.blocked(e, next) {
				m.BlockedX = true
			} else {
				e.Position = next
			}
		}
		if e.Velocity.Y != 0 {
			next := e.Position.Add(geom.Vec(0, e.Velocity.Y))
			if e.Collidable && r.blocked(e, next) {
				m.BlockedY = true
			} else {
				e.Position = next
			}
		}

		m.Delta = e.Position.Sub(start)
		e.Position = start
		e.Move(m.Delta)

		if m.BlockedX || m.BlockedY {
			r.logger.Debug("movement blocked",
				log.String("entity", e.ID),
				log.Bool("x", m.BlockedX),
				log.Bool("y", m.BlockedY))
		}
		out = append(out, m)
	}
	return out
}

// Step rebuilds the grid and resolves movement in one call.
func (r *Resolver) Step(view geom.Rect, static geom.RectGroup, entities []*entity.Entity) []Movement {
	r.Rebuild(view, static, entities)
	return r.Resolve(entities)
}

func (r *Resolver) blocked(e *entity.Entity, pos geom.Vector2) bool {
	solid := func(c spatial.Collider) bool { return !r.passable[c.Owner] }
	for _, rect := range e.BoundsAt(pos) {
		if len(r.grid.CollidesWith(rect, e.Owner(), solid)) > 0 {
			return true
		}
	}
	return false
}
