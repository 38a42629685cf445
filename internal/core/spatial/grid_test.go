package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
)

func newTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(1024, 1024, 64)
	require.NoError(t, err)
	return g
}

func TestNewGridRejectsBadCellSize(t *testing.T) {
	for _, size := range []float64{0, -8} {
		_, err := NewGrid(100, 100, size)
		assert.ErrorIs(t, err, ErrInvalidCellSize)
	}
}

func TestSingleCellRectReportsExactlyOnce(t *testing.T) {
	g := newTestGrid(t)
	r := geom.Rect{X: 10, Y: 10, W: 20, H: 20}
	g.Add(r, "crate")

	hits := g.Collides(r, NoOwner)
	require.Len(t, hits, 1)
	assert.Equal(t, r, hits[0].First)
	assert.Equal(t, Owner("crate"), hits[0].FirstOwner)
	assert.Equal(t, r, hits[0].Overlap)
}

func TestMultiCellRectIsFoundFromEveryCell(t *testing.T) {
	g := newTestGrid(t)
	wall := geom.Rect{X: 50, Y: 50, W: 200, H: 20}
	g.Add(wall, NoOwner)

	// queries in each cell the wall spans
	for x := 55.0; x < 250; x += 40 {
		query := geom.Rect{X: x, Y: 55, W: 4, H: 4}
		hits := g.Collides(query, NoOwner)
		require.Len(t, hits, 1, "query at x=%v", x)
		assert.Equal(t, geom.Rect{X: x, Y: 55, W: 4, H: 4}, hits[0].Overlap)
	}
	assert.Equal(t, 1, g.Len())
}

func TestCoverageProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := newTestGrid(t)
	for i := 0; i < 200; i++ {
		r := geom.Rect{
			X: rng.Float64()*1200 - 100,
			Y: rng.Float64()*1200 - 100,
			W: 1 + rng.Float64()*150,
			H: 1 + rng.Float64()*150,
		}
		g.Clear()
		g.Add(r, "a")

		query := geom.Rect{
			X: r.X + rng.Float64()*r.W - 2,
			Y: r.Y + rng.Float64()*r.H - 2,
			W: 4, H: 4,
		}
		if !query.Intersects(r, false) {
			continue
		}
		assert.Len(t, g.Collides(query, NoOwner), 1, "rect %v query %v", r, query)
	}
}

func TestNegativeCoordinates(t *testing.T) {
	g := newTestGrid(t)
	r := geom.Rect{X: -100, Y: -90, W: 30, H: 30}
	g.Add(r, NoOwner)

	assert.Equal(t, CellCoord{X: -2, Y: -2}, g.CellAt(geom.Vec(-100, -90)))
	assert.Len(t, g.Collides(geom.Rect{X: -80, Y: -80, W: 5, H: 5}, NoOwner), 1)
	assert.Empty(t, g.Collides(geom.Rect{X: 80, Y: 80, W: 5, H: 5}, NoOwner))
}

func TestExcludeOwnerAndFilter(t *testing.T) {
	g := newTestGrid(t)
	g.Add(geom.Rect{X: 0, Y: 0, W: 10, H: 10}, "player")
	g.Add(geom.Rect{X: 5, Y: 5, W: 10, H: 10}, "window")

	query := geom.Rect{X: 0, Y: 0, W: 20, H: 20}
	hits := g.Collides(query, "player")
	require.Len(t, hits, 1)
	assert.Equal(t, Owner("window"), hits[0].FirstOwner)
	assert.Equal(t, Owner("player"), hits[0].SecondOwner)

	opaque := func(c Collider) bool { return c.Owner != "window" }
	assert.Empty(t, g.CollidesWith(query, "player", opaque))
	assert.Len(t, g.CollidesWith(query, NoOwner, opaque), 1)
}

func TestEdgeContactIsNotACollision(t *testing.T) {
	g := newTestGrid(t)
	g.Add(geom.Rect{X: 0, Y: 0, W: 32, H: 32}, NoOwner)
	assert.Empty(t, g.Collides(geom.Rect{X: 32, Y: 0, W: 10, H: 10}, NoOwner))
}

func TestOccupiedAt(t *testing.T) {
	g := newTestGrid(t)
	g.Add(geom.Rect{X: 0, Y: 0, W: 32, H: 32}, "crate")

	assert.True(t, g.OccupiedAt(geom.Vec(16, 16), nil))
	assert.False(t, g.OccupiedAt(geom.Vec(32, 16), nil), "edges are not inside")
	assert.False(t, g.OccupiedAt(geom.Vec(16, 16), func(c Collider) bool { return c.Owner != "crate" }))
	assert.False(t, g.OccupiedAt(geom.Vec(500, 500), nil))
}

func TestAllCollisions(t *testing.T) {
	g := newTestGrid(t)
	g.Add(geom.Rect{X: 0, Y: 0, W: 20, H: 20}, "a")
	g.Add(geom.Rect{X: 10, Y: 10, W: 20, H: 20}, "b")
	g.Add(geom.Rect{X: 15, Y: 0, W: 10, H: 10}, "b") // same owner as the previous rect
	g.Add(geom.Rect{X: 300, Y: 300, W: 10, H: 10}, "c")
	// spans a cell boundary together with "a", so the pair shows up in two cells
	g.Add(geom.Rect{X: 60, Y: 0, W: 10, H: 10}, "d")
	g.Add(geom.Rect{X: 62, Y: 2, W: 10, H: 10}, "e")

	hits := g.AllCollisions()
	pairs := make(map[[2]Owner]int)
	for _, h := range hits {
		a, b := h.FirstOwner, h.SecondOwner
		if a > b {
			a, b = b, a
		}
		pairs[[2]Owner{a, b}]++
	}
	assert.Equal(t, map[[2]Owner]int{
		{"a", "b"}: 2,
		{"d", "e"}: 1,
	}, pairs)
}

func TestClearKeepsCells(t *testing.T) {
	g := newTestGrid(t)
	r := geom.Rect{X: 0, Y: 0, W: 10, H: 10}
	g.Add(r, NoOwner)
	cell := g.Cell(CellCoord{})
	require.NotNil(t, cell)

	g.Clear()
	assert.Empty(t, g.Collides(r, NoOwner))
	assert.Same(t, cell, g.Cell(CellCoord{}))
	assert.Equal(t, 0, g.Len())
}

func TestClearedCellsStayWithinWorld(t *testing.T) {
	g, err := NewGrid(256, 256, 64)
	require.NoError(t, err)

	for y := 0.0; y <= 240; y += 20 {
		for x := 0.0; x <= 240; x += 20 {
			g.Clear()
			g.Add(geom.Rect{X: x, Y: y, W: 10, H: 10}, "mover")
		}
	}
	assert.Len(t, g.cells, 16, "one per cell of the world, however many frames ran")
	assert.Equal(t, 1, g.Len())
}
