// Package spatial provides a uniform spatial hash grid for broad-phase
// collision and proximity queries over axis-aligned rectangles.
//
// Cells are stored sparsely, keyed by integer cell coordinates, so the
// world may extend below the origin. The grid is meant to be cleared and
// refilled once per frame; queries never mutate it.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"chosenoffset.com/lightcore/internal/core/geom"
)

// ErrInvalidCellSize is returned for a non-positive cell size.
var ErrInvalidCellSize = errors.New("cell size must be positive")

// Owner identifies the entity a collider belongs to. NoOwner marks static
// world geometry.
type Owner string

// NoOwner is the owner of untagged colliders.
const NoOwner Owner = ""

// CellCoord addresses one grid cell.
type CellCoord struct {
	X, Y int
}

// Collider is one registered rectangle.
type Collider struct {
	Rect  geom.Rect
	Owner Owner
	id    int // registration serial, dedupes colliders seen in several cells
}

// Collision describes an overlap between a registered collider (First) and
// a query rectangle or second collider (Second).
type Collision struct {
	First       geom.Rect
	FirstOwner  Owner
	Second      geom.Rect
	SecondOwner Owner
	Overlap     geom.Rect
}

// Filter decides whether a collider takes part in a query.
type Filter func(Collider) bool

// Cell is one grid bucket.
type Cell struct {
	Colliders []Collider
}

// Add appends a collider.
func (c *Cell) Add(col Collider) {
	c.Colliders = append(c.Colliders, col)
}

// Clear drops all colliders but keeps the backing array for the next frame.
func (c *Cell) Clear() {
	c.Colliders = c.Colliders[:0]
}

// Grid is a sparse uniform spatial hash.
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize
	width       float64
	height      float64
	cells       map[CellCoord]*Cell
	serial      int
}

// NewGrid creates a grid for a world of the given pixel size. The size is
// informational; rectangles outside it are still stored.
func NewGrid(width, height, cellSize float64) (*Grid, error) {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		width:       width,
		height:      height,
		cells:       make(map[CellCoord]*Cell),
	}, nil
}

// CellSize returns the side length of a cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Width returns the world width the grid was built for.
func (g *Grid) Width() float64 { return g.width }

// Height returns the world height the grid was built for.
func (g *Grid) Height() float64 { return g.height }

// Bounds returns the world rectangle the grid was built for.
func (g *Grid) Bounds() geom.Rect {
	return geom.Rect{W: g.width, H: g.height}
}

// Len returns the number of registered colliders.
func (g *Grid) Len() int {
	seen := make(map[int]struct{})
	for _, cell := range g.cells {
		for _, col := range cell.Colliders {
			seen[col.id] = struct{}{}
		}
	}
	return len(seen)
}

// CellAt returns the coordinate of the cell containing p.
func (g *Grid) CellAt(p geom.Vector2) CellCoord {
	return CellCoord{
		X: int(math.Floor(p.X * g.invCellSize)),
		Y: int(math.Floor(p.Y * g.invCellSize)),
	}
}

// Cell returns the cell at c, or nil if nothing was ever stored there.
func (g *Grid) Cell(c CellCoord) *Cell {
	return g.cells[c]
}

// cellsFor calls fn for every cell covered by r. The span runs from the
// cell of the top-left corner to the cell of the bottom-right corner, so
// it always includes every cell one of the four corners falls into.
func (g *Grid) cellsFor(r geom.Rect, fn func(CellCoord)) {
	lo := g.CellAt(r.Min())
	hi := g.CellAt(r.Max())
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			fn(CellCoord{X: x, Y: y})
		}
	}
}

// Add registers rect under owner in every cell its footprint touches.
// Zero-area rectangles are ignored.
func (g *Grid) Add(rect geom.Rect, owner Owner) {
	if rect.IsEmpty() {
		return
	}
	g.serial++
	col := Collider{Rect: rect, Owner: owner, id: g.serial}
	g.cellsFor(rect, func(c CellCoord) {
		cell, ok := g.cells[c]
		if !ok {
			cell = &Cell{}
			g.cells[c] = cell
		}
		cell.Add(col)
	})
}

// AddGroup registers every rectangle of group under owner.
func (g *Grid) AddGroup(group geom.RectGroup, owner Owner) {
	for _, r := range group {
		g.Add(r, owner)
	}
}

// Collides returns every registered collider overlapping rect, skipping
// those owned by exclude (unless exclude is NoOwner). Edge contact alone
// is not a collision.
func (g *Grid) Collides(rect geom.Rect, exclude Owner) []Collision {
	return g.CollidesWith(rect, exclude, nil)
}

// CollidesWith is Collides with an extra collider filter; a nil filter
// accepts everything.
func (g *Grid) CollidesWith(rect geom.Rect, exclude Owner, filter Filter) []Collision {
	var out []Collision
	seen := make(map[int]struct{})
	g.cellsFor(rect, func(c CellCoord) {
		cell, ok := g.cells[c]
		if !ok {
			return
		}
		for _, col := range cell.Colliders {
			if _, dup := seen[col.id]; dup {
				continue
			}
			seen[col.id] = struct{}{}
			if exclude != NoOwner && col.Owner == exclude {
				continue
			}
			if filter != nil && !filter(col) {
				continue
			}
			overlap, hit := rect.Intersection(col.Rect, false)
			if !hit {
				continue
			}
			out = append(out, Collision{
				First:       col.Rect,
				FirstOwner:  col.Owner,
				Second:      rect,
				SecondOwner: exclude,
				Overlap:     overlap,
			})
		}
	})
	return out
}

// OccupiedAt reports whether p lies strictly inside any collider accepted
// by filter.
func (g *Grid) OccupiedAt(p geom.Vector2, filter Filter) bool {
	cell, ok := g.cells[g.CellAt(p)]
	if !ok {
		return false
	}
	for _, col := range cell.Colliders {
		if filter != nil && !filter(col) {
			continue
		}
		if col.Rect.StrictlyContainsPoint(p) {
			return true
		}
	}
	return false
}

// AllCollisions tests every unordered pair of colliders that share a cell.
// Colliders with the same non-empty owner belong to one RectGroup and are
// never paired. Overlapping colliders that share no cell are not found.
func (g *Grid) AllCollisions() []Collision {
	type pair struct{ a, b int }
	var out []Collision
	seen := make(map[pair]struct{})
	for _, cell := range g.cells {
		cols := cell.Colliders
		for i := 0; i < len(cols); i++ {
			for j := i + 1; j < len(cols); j++ {
				a, b := cols[i], cols[j]
				if a.Owner != NoOwner && a.Owner == b.Owner {
					continue
				}
				key := pair{a.id, b.id}
				if key.a > key.b {
					key = pair{b.id, a.id}
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				overlap, hit := a.Rect.Intersection(b.Rect, false)
				if !hit {
					continue
				}
				out = append(out, Collision{
					First:       a.Rect,
					FirstOwner:  a.Owner,
					Second:      b.Rect,
					SecondOwner: b.Owner,
					Overlap:     overlap,
				})
			}
		}
	}
	return out
}

// Clear empties every cell without releasing them. Cells are never
// deleted, so the map holds every cell anything was ever added to. Callers
// that only add rects inside Bounds keep it to the cells covering Bounds.
func (g *Grid) Clear() {
	for _, cell := range g.cells {
		cell.Clear()
	}
	g.serial = 0
}
