package region

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
)

func requireDisjoint(t *testing.T, c *Covering) {
	t.Helper()
	rects := c.Rects()
	for i := range rects {
		require.False(t, rects[i].IsEmpty(), "degenerate rect %v", rects[i])
		for j := i + 1; j < len(rects); j++ {
			require.False(t, rects[i].Intersects(rects[j], false), "%v overlaps %v", rects[i], rects[j])
		}
	}
}

// coveredArea samples a lattice of cell centres so the partition of the
// covering does not matter.
func coveredArea(c *Covering, bounds geom.Rect) float64 {
	n := 0
	for y := bounds.Y + 0.5; y < bounds.Bottom(); y++ {
		for x := bounds.X + 0.5; x < bounds.Right(); x++ {
			for _, r := range c.Rects() {
				if r.StrictlyContainsPoint(geom.Vec(x, y)) {
					n++
					break
				}
			}
		}
	}
	return float64(n)
}

func TestAddRectUnion(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	c.AddRect(geom.Rect{X: 5, Y: 5, W: 10, H: 10})

	requireDisjoint(t, c)
	assert.Equal(t, 175.0, c.Area())
}

func TestAddRectContainedIsNoop(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	c.AddRect(geom.Rect{X: 2, Y: 2, W: 3, H: 3})
	assert.Equal(t, []geom.Rect{{X: 0, Y: 0, W: 10, H: 10}}, c.Rects())
}

func TestAddRectIdempotent(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10}, geom.Rect{X: 8, Y: 3, W: 10, H: 4})
	before := c.Area()
	c.AddRect(geom.Rect{X: 8, Y: 3, W: 10, H: 4})
	c.AddRect(geom.Rect{X: 8, Y: 3, W: 10, H: 4})
	assert.Equal(t, before, c.Area())
	requireDisjoint(t, c)
}

func TestSubtractRect(t *testing.T) {
	t.Run("hole in the middle", func(t *testing.T) {
		c := New(geom.Rect{X: 0, Y: 0, W: 30, H: 30})
		c.SubtractRect(geom.Rect{X: 10, Y: 10, W: 10, H: 10})

		requireDisjoint(t, c)
		assert.Equal(t, 800.0, c.Area())
		assert.Equal(t, 4, c.Len())
		assert.False(t, c.Contains(geom.Vec(15, 15)))
		assert.True(t, c.Contains(geom.Vec(5, 15)))
	})

	t.Run("hole at an edge drops empty fragments", func(t *testing.T) {
		c := New(geom.Rect{X: 0, Y: 0, W: 30, H: 30})
		c.SubtractRect(geom.Rect{X: 10, Y: 20, W: 10, H: 20})

		requireDisjoint(t, c)
		assert.Equal(t, 800.0, c.Area())
		assert.Equal(t, 3, c.Len())
	})

	t.Run("covering hole empties and resets", func(t *testing.T) {
		c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
		_ = c.Outlines()
		c.SubtractRect(geom.Rect{X: -1, Y: -1, W: 20, H: 20})

		assert.True(t, c.IsEmpty())
		assert.Empty(t, c.Outlines())
		assert.True(t, c.Contains(geom.Vec(1000, 1000)), "empty covering is unbounded")
	})

	t.Run("subtract then add restores area", func(t *testing.T) {
		c := New(geom.Rect{X: 0, Y: 0, W: 40, H: 20}, geom.Rect{X: 40, Y: 0, W: 10, H: 50})
		original := coveredArea(c, geom.Rect{X: -5, Y: -5, W: 60, H: 60})
		hole := geom.Rect{X: 30, Y: 5, W: 15, H: 30}

		c.SubtractRect(hole)
		c.AddRect(hole)

		requireDisjoint(t, c)
		// the hole pokes outside the original shape, so the union grows by that part
		assert.Equal(t, original+10*15, coveredArea(c, geom.Rect{X: -5, Y: -5, W: 60, H: 60}))

		inside := geom.Rect{X: 5, Y: 5, W: 10, H: 10}
		c.SubtractRect(inside)
		c.AddRect(inside)
		assert.Equal(t, original+10*15, coveredArea(c, geom.Rect{X: -5, Y: -5, W: 60, H: 60}))
	})
}

func TestDisjointUnderRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := New(geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	randRect := func() geom.Rect {
		return geom.Rect{
			X: float64(rng.Intn(100) - 10),
			Y: float64(rng.Intn(100) - 10),
			W: float64(1 + rng.Intn(40)),
			H: float64(1 + rng.Intn(40)),
		}
	}
	for i := 0; i < 300; i++ {
		if rng.Intn(2) == 0 {
			c.AddRect(randRect())
		} else {
			c.SubtractRect(randRect())
		}
		requireDisjoint(t, c)
	}
}

func TestConnectedComponents(t *testing.T) {
	c := New(
		geom.Rect{X: 0, Y: 0, W: 10, H: 10},
		geom.Rect{X: 10, Y: 0, W: 10, H: 10}, // shares an edge with the first
		geom.Rect{X: 20, Y: 10, W: 10, H: 10}, // corner contact only
		geom.Rect{X: 100, Y: 100, W: 5, H: 5},
	)
	components := c.ConnectedComponents()
	require.Len(t, components, 3)

	sizes := map[int]int{}
	for _, comp := range components {
		sizes[len(comp)]++
	}
	assert.Equal(t, map[int]int{2: 1, 1: 2}, sizes)
}

func TestTranslateAndClone(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	before := c.Outlines()
	clone := c.Clone()

	c.Translate(geom.Vec(5, -5))
	assert.Equal(t, []geom.Rect{{X: 5, Y: -5, W: 10, H: 10}}, c.Rects())
	assert.True(t, c.Outlines()[0].Loops[0][0].Equals(before[0].Loops[0][0].Add(geom.Vec(5, -5))))

	assert.Equal(t, []geom.Rect{{X: 0, Y: 0, W: 10, H: 10}}, clone.Rects())
	assert.Equal(t, before, clone.Outlines())

	clone.AddRect(geom.Rect{X: 10, Y: 0, W: 10, H: 10})
	assert.Equal(t, 1, c.Len())
}

func TestZeroValueCovering(t *testing.T) {
	var c Covering
	assert.True(t, c.Contains(geom.Vec(1, 1)))
	assert.Empty(t, c.Outlines())
	c.AddRect(geom.Rect{W: 2, H: 2})
	assert.False(t, c.Contains(geom.Vec(5, 5)))
	assert.Len(t, c.Outlines(), 1)
}
