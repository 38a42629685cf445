package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
)

func loopHasVertex(l Loop, p geom.Vector2) bool {
	for _, v := range l {
		if v.Equals(p) {
			return true
		}
	}
	return false
}

func TestSingleRectOutlineClosure(t *testing.T) {
	r := geom.Rect{X: 3, Y: 4, W: 20, H: 7}
	c := New(r)

	outlines := c.Outlines()
	require.Len(t, outlines, 1)
	require.Len(t, outlines[0].Loops, 1)

	loop := outlines[0].Loops[0]
	segs := loop.Segments()
	require.Len(t, segs, 4)
	assert.Equal(t, 2*(r.W+r.H), loop.Perimeter())
	for _, corner := range r.Corners() {
		assert.True(t, loopHasVertex(loop, corner), "missing corner %v", corner)
	}
	// closed: every segment ends where the next starts
	for i, s := range segs {
		assert.True(t, s.End.Equals(segs[(i+1)%len(segs)].Start))
	}
}

func TestAdjacentRectsShareOneOutline(t *testing.T) {
	// L shape: the shared edge portion cancels out
	c := New(
		geom.Rect{X: 0, Y: 0, W: 20, H: 10},
		geom.Rect{X: 0, Y: 10, W: 10, H: 10},
	)
	outlines := c.Outlines()
	require.Len(t, outlines, 1)
	require.Len(t, outlines[0].Loops, 1)

	loop := outlines[0].Loops[0]
	assert.Len(t, loop, 6)
	assert.Equal(t, 80.0, loop.Perimeter())
	for _, p := range []geom.Vector2{{0, 0}, {20, 0}, {20, 10}, {10, 10}, {10, 20}, {0, 20}} {
		assert.True(t, loopHasVertex(loop, p), "missing %v", p)
	}
}

func TestHoleProducesTwoLoops(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 30, H: 30})
	c.SubtractRect(geom.Rect{X: 10, Y: 10, W: 10, H: 10})

	outlines := c.Outlines()
	require.Len(t, outlines, 1)
	require.Len(t, outlines[0].Loops, 2)

	perimeters := []float64{outlines[0].Loops[0].Perimeter(), outlines[0].Loops[1].Perimeter()}
	assert.ElementsMatch(t, []float64{120, 40}, perimeters)
	for _, l := range outlines[0].Loops {
		assert.Len(t, l, 4, "collinear vertices are merged")
	}
	assert.Len(t, c.Segments(), 8)
}

func TestNotchFromEdge(t *testing.T) {
	// reach square with a wall touching its bottom edge
	c := New(geom.Rect{X: -100, Y: -100, W: 400, H: 400})
	c.SubtractRect(geom.Rect{X: 150, Y: 80, W: 20, H: 220})

	outlines := c.Outlines()
	require.Len(t, outlines, 1)
	require.Len(t, outlines[0].Loops, 1)
	loop := outlines[0].Loops[0]
	assert.Len(t, loop, 8)
	assert.Equal(t, 1600.0+2*220, loop.Perimeter())
}

func TestSeparateComponentsHaveSeparateOutlines(t *testing.T) {
	c := New(
		geom.Rect{X: 0, Y: 0, W: 10, H: 10},
		geom.Rect{X: 50, Y: 50, W: 10, H: 10},
	)
	assert.Len(t, c.Outlines(), 2)
}

func TestOutlinesAreCachedUntilMutation(t *testing.T) {
	c := New(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	first := c.Outlines()
	second := c.Outlines()
	require.Len(t, first, 1)
	assert.Same(t, &first[0], &second[0])

	c.AddRect(geom.Rect{X: 10, Y: 0, W: 10, H: 10})
	third := c.Outlines()
	require.Len(t, third, 1)
	assert.Equal(t, 60.0, third[0].Loops[0].Perimeter())
}
