package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/entity"
)

var view = geom.Rect{X: -500, Y: -500, W: 1000, H: 1000}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	g, err := spatial.NewGrid(1000, 1000, 64)
	require.NoError(t, err)
	return NewResolver(g, nil)
}

func TestAxisSeparatedMovement(t *testing.T) {
	r := newResolver(t)
	e := entity.NewPlayerEntity(geom.Vec(0, 0), 10)
	e.Velocity = geom.Vec(5, 5)
	wall := geom.RectGroup{{X: 6, Y: -20, W: 10, H: 100}}

	moves := r.Step(view, wall, []*entity.Entity{e})

	require.Len(t, moves, 1)
	assert.Equal(t, geom.Vec(0, 5), moves[0].Delta)
	assert.True(t, moves[0].BlockedX)
	assert.False(t, moves[0].BlockedY)
	assert.Equal(t, geom.Vec(0, 5), e.Position)
	assert.Equal(t, entity.DirSouth, e.Facing)
}

func TestFreeMovement(t *testing.T) {
	r := newResolver(t)
	e := entity.NewPlayerEntity(geom.Vec(0, 0), 10)
	e.Velocity = geom.Vec(3, -2)

	moves := r.Step(view, nil, []*entity.Entity{e})
	require.Len(t, moves, 1)
	assert.Equal(t, geom.Vec(3, -2), moves[0].Delta)
	assert.Equal(t, entity.DirNorthEast, e.Facing)
}

func TestMultiRectEntityDoesNotBlockItself(t *testing.T) {
	r := newResolver(t)
	e := entity.NewEntity("table", entity.TypeProp, geom.Vec(0, 0),
		geom.Rect{W: 40, H: 10},
		geom.Rect{Y: 10, W: 10, H: 30},
	)
	e.Velocity = geom.Vec(2, 2)

	moves := r.Step(view, nil, []*entity.Entity{e})
	require.Len(t, moves, 1)
	assert.Equal(t, geom.Vec(2, 2), moves[0].Delta)
}

func TestEntitiesBlockEachOther(t *testing.T) {
	r := newResolver(t)
	player := entity.NewPlayerEntity(geom.Vec(0, 0), 10)
	crate := entity.NewEntity("crate", entity.TypeProp, geom.Vec(7, -5), geom.Rect{W: 10, H: 10})
	player.Velocity = geom.Vec(4, 0)

	moves := r.Step(view, nil, []*entity.Entity{player, crate})
	require.Len(t, moves, 1, "only moving entities are reported")
	assert.True(t, moves[0].BlockedX)
	assert.Equal(t, geom.Vector2{}, moves[0].Delta)
}

func TestNonCollidableMovesThrough(t *testing.T) {
	r := newResolver(t)
	ghost := entity.NewPlayerEntity(geom.Vec(0, 0), 10)
	ghost.Collidable = false
	ghost.Velocity = geom.Vec(5, 0)

	moves := r.Step(view, geom.RectGroup{{X: 6, Y: -20, W: 10, H: 100}}, []*entity.Entity{ghost})
	require.Len(t, moves, 1)
	assert.Equal(t, geom.Vec(5, 0), moves[0].Delta)
}

func TestRebuildOnlyRegistersWhatIsInView(t *testing.T) {
	r := newResolver(t)
	near := entity.NewEntity("near", entity.TypeProp, geom.Vec(0, 0), geom.Rect{W: 10, H: 10})
	far := entity.NewEntity("far", entity.TypeProp, geom.Vec(900, 900), geom.Rect{W: 10, H: 10})
	static := geom.RectGroup{{X: 20, Y: 20, W: 10, H: 10}, {X: 800, Y: 800, W: 10, H: 10}}

	r.Rebuild(view, static, []*entity.Entity{near, far})
	assert.Equal(t, 2, r.Grid().Len())

	r.AddStatic(view, geom.RectGroup{{X: 40, Y: 40, W: 5, H: 5}}, "glass")
	hits := r.Grid().Collides(geom.Rect{X: 41, Y: 41, W: 1, H: 1}, spatial.NoOwner)
	require.Len(t, hits, 1)
	assert.Equal(t, spatial.Owner("glass"), hits[0].FirstOwner)

	r.Rebuild(view, nil, nil)
	assert.Zero(t, r.Grid().Len())
}

func TestPassableOwnersDoNotBlock(t *testing.T) {
	r := newResolver(t)
	r.SetPassable("curtain")
	player := entity.NewPlayerEntity(geom.Vec(0, 0), 10)
	player.Velocity = geom.Vec(5, 0)

	r.Rebuild(view, nil, []*entity.Entity{player})
	r.AddStatic(view, geom.RectGroup{{X: 6, Y: -20, W: 10, H: 40}}, "curtain")
	moves := r.Resolve([]*entity.Entity{player})
	require.Len(t, moves, 1)
	assert.False(t, moves[0].BlockedX)
	assert.Equal(t, geom.Vec(5, 0), player.Position)

	// still in the grid for everyone else
	hits := r.Grid().Collides(geom.Rect{X: 8, Y: 0, W: 2, H: 2}, spatial.NoOwner)
	require.Len(t, hits, 1)
	assert.Equal(t, spatial.Owner("curtain"), hits[0].FirstOwner)

	r.Rebuild(view, nil, []*entity.Entity{player})
	r.AddStatic(view, geom.RectGroup{{X: 11, Y: -20, W: 10, H: 40}}, "wall")
	moves = r.Resolve([]*entity.Entity{player})
	require.Len(t, moves, 1)
	assert.True(t, moves[0].BlockedX, "other owners still block")
}
