package lighting

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/render"
)

var world = geom.Rect{W: 1000, H: 1000}

func newGrid(t *testing.T) *spatial.Grid {
	t.Helper()
	g, err := spatial.NewGrid(world.W, world.H, 64)
	require.NoError(t, err)
	return g
}

func newManager(t *testing.T, workers int) *Manager {
	t.Helper()
	return NewManager(nil, Options{World: world, Ambient: 0.2, Workers: workers})
}

func torch(id LightID, x, y float64) LightSource {
	return LightSource{ID: id, Position: geom.Vec(x, y), Reach: 100, Intensity: 0.8, Color: DefaultColor, Enabled: true}
}

func TestAddLightValidation(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("a", 100, 100)))

	bad := map[string]LightSource{
		"duplicate":  torch("a", 0, 0),
		"no id":      torch("", 0, 0),
		"no reach":   {ID: "b", Reach: 0, Intensity: 1},
		"too bright": {ID: "c", Reach: 10, Intensity: 2},
	}
	for name, l := range bad {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.AddLight(l), ErrInvalidLight)
		})
	}
	assert.Len(t, m.Lights(), 1)
}

func TestRenderLightRejectsReachOutsideWorld(t *testing.T) {
	m := newManager(t, 0)
	grid := newGrid(t)

	_, err := m.RenderLight(grid, geom.Vec(10, 10), geom.RectAround(geom.Vec(10, 10), 200, 200), spatial.NoOwner)
	assert.ErrorIs(t, err, ErrReachOutOfBounds)

	reach := geom.RectAround(geom.Vec(500, 500), 200, 200)
	mesh, err := m.RenderLight(grid, geom.Vec(500, 500), reach, spatial.NoOwner)
	require.NoError(t, err)
	assert.InDelta(t, reach.Area(), mesh.Area(), 1e-6)
}

func TestUpdateRecomputesOnlyChangedLights(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("near", 200, 200)))
	require.NoError(t, m.AddLight(torch("far", 800, 800)))
	grid := newGrid(t)
	ctx := context.Background()

	crate := geom.Rect{X: 240, Y: 190, W: 20, H: 20}
	grid.Add(crate, "crate")

	n, err := m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing changed")

	// the crate moves inside the near light's reach
	grid.Clear()
	grid.Add(crate.Translate(geom.Vec(10, 0)), "crate")
	n, err = m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// something moves far from both lights
	grid.Add(geom.Rect{X: 500, Y: 20, W: 10, H: 10}, "barrel")
	n, err = m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, m.MoveLight("far", geom.Vec(790, 800)))
	n, err = m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, m.Invalidate("near"))
	n, err = m.Update(ctx, grid)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, m.Invalidate("missing"), ErrUnknownLight)
}

func TestOccluderShadowsLight(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("near", 200, 200)))
	grid := newGrid(t)
	grid.Add(geom.Rect{X: 240, Y: 150, W: 20, H: 100}, "crate")

	_, err := m.Update(context.Background(), grid)
	require.NoError(t, err)

	assert.True(t, m.IsLit(geom.Vec(220, 200)))
	assert.False(t, m.IsLit(geom.Vec(280, 200)), "behind the crate")
	assert.False(t, m.IsLit(geom.Vec(600, 600)), "out of reach")

	mesh, ok := m.Mesh("near")
	require.True(t, ok)
	assert.Less(t, mesh.Area(), 200.0*200.0)
}

func TestTransparentOwnersAreIgnored(t *testing.T) {
	m := NewManager(nil, Options{
		World:  world,
		Engine: shadows.Options{Transparent: func(o spatial.Owner) bool { return o == "glass" }},
	})
	require.NoError(t, m.AddLight(torch("near", 200, 200)))
	grid := newGrid(t)
	grid.Add(geom.Rect{X: 240, Y: 150, W: 20, H: 100}, "glass")

	_, err := m.Update(context.Background(), grid)
	require.NoError(t, err)
	assert.True(t, m.IsLit(geom.Vec(280, 200)))

	// glass moving does not invalidate the light
	grid.Clear()
	grid.Add(geom.Rect{X: 250, Y: 150, W: 20, H: 100}, "glass")
	n, err := m.Update(context.Background(), grid)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPlayerLight(t *testing.T) {
	m := newManager(t, 0)
	grid := newGrid(t)
	grid.Add(geom.RectAround(geom.Vec(300, 300), 20, 20), "hero")

	require.NoError(t, m.SetPlayerLight("hero", geom.Vec(300, 300), 120, 1, color.NRGBA{255, 255, 255, 255}))
	assert.False(t, m.IsPlayerLightOn())

	n, err := m.Update(context.Background(), grid)
	require.NoError(t, err)
	assert.Zero(t, n, "disabled lights are skipped")
	_, ok := m.Mesh(PlayerLightID)
	assert.False(t, ok)

	m.EnablePlayerLight(true)
	_, err = m.Update(context.Background(), grid)
	require.NoError(t, err)
	mesh, ok := m.Mesh(PlayerLightID)
	require.True(t, ok)
	assert.InDelta(t, 240.0*240.0, mesh.Area(), 1e-6, "the carrier does not shadow its own light")

	m.UpdatePlayerLightPosition(geom.Vec(310, 300))
	l, _ := m.Light(PlayerLightID)
	assert.Equal(t, geom.Vec(310, 300), l.Position)

	on, err := m.Toggle(PlayerLightID)
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, m.IsPlayerLightOn())
	assert.Empty(t, m.Visible())
}

func TestLightsNearTheWorldEdgeAreClipped(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("corner", 10, 10)))
	_, err := m.Update(context.Background(), newGrid(t))
	require.NoError(t, err)

	mesh, ok := m.Mesh("corner")
	require.True(t, ok)
	assert.InDelta(t, 110.0*110.0, mesh.Area(), 1e-6)
	assert.Equal(t, geom.Vector2{}, mesh.Offset)
}

func TestRecomputeAllInParallel(t *testing.T) {
	m := newManager(t, 3)
	for i := 0; i < 12; i++ {
		require.NoError(t, m.AddLight(torch(LightID(fmt.Sprintf("l%d", i)), float64(100+i*60), 500)))
	}
	grid := newGrid(t)
	grid.Add(geom.Rect{X: 0, Y: 540, W: 1000, H: 10}, spatial.NoOwner)

	require.NoError(t, m.RecomputeAll(context.Background(), grid))
	lit := m.Visible()
	require.Len(t, lit, 12)
	for _, l := range lit {
		// every reach is cut by the wall 40px below the lights
		assert.InDelta(t, 200.0*140.0, l.Mesh.Area(), 1e-6, string(l.Light.ID))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.RecomputeAll(ctx, grid), context.Canceled)
}

func TestRemoveLight(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("a", 100, 100)))
	require.NoError(t, m.AddLight(torch("b", 200, 100)))
	m.RemoveLight("a")
	m.RemoveLight("missing")

	ids := []LightID{}
	for _, l := range m.Lights() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []LightID{"b"}, ids)
	assert.ErrorIs(t, m.MoveLight("a", geom.Vector2{}), ErrUnknownLight)
}

func TestAmbientIsClamped(t *testing.T) {
	m := newManager(t, 0)
	assert.Equal(t, 0.2, m.AmbientLight())
	m.SetAmbientLight(3)
	assert.Equal(t, 1.0, m.AmbientLight())
	m.SetAmbientLight(-1)
	assert.Equal(t, 0.0, m.AmbientLight())
}

// recordingImage is a render.Image that remembers what was drawn on it.
type recordingImage struct {
	fill      color.Color
	triangles [][]render.Vertex
	opts      []*render.DrawTrianglesOptions
}

func (i *recordingImage) Bounds() image.Rectangle { return image.Rect(0, 0, 64, 64) }
func (i *recordingImage) Size() (int, int) { return 64, 64 }
func (i *recordingImage) Fill(clr color.Color) { i.fill = clr }
func (i *recordingImage) Clear() { i.fill = color.Transparent }
func (i *recordingImage) DrawImage(render.Image, *render.DrawImageOptions) {}
func (i *recordingImage) Dispose() {}

func (i *recordingImage) DrawTriangles(v []render.Vertex, _ []uint16, _ render.Image, opts *render.DrawTrianglesOptions) {
	i.triangles = append(i.triangles, v)
	i.opts = append(i.opts, opts)
}

type recordingRenderer struct {
	white *recordingImage
}

func (r *recordingRenderer) NewImage(int, int) render.Image { return &recordingImage{} }
func (r *recordingRenderer) WhiteImage() render.Image { return r.white }
func (r *recordingRenderer) FillRect(render.Image, float32, float32, float32, float32, color.Color) {
}
func (r *recordingRenderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
}
func (r *recordingRenderer) DrawText(render.Image, string, int, int) {}

func TestDrawLightMap(t *testing.T) {
	m := newManager(t, 0)
	require.NoError(t, m.AddLight(torch("a", 200, 200)))
	require.NoError(t, m.AddLight(torch("b", 600, 600)))
	require.NoError(t, m.SetEnabled("b", false))
	_, err := m.Update(context.Background(), newGrid(t))
	require.NoError(t, err)

	mask := &recordingImage{}
	r := &recordingRenderer{white: &recordingImage{}}
	require.NoError(t, m.DrawLightMap(r, mask, geom.Vec(100, 100)))

	assert.Equal(t, color.NRGBA{51, 51, 51, 255}, mask.fill)
	require.Len(t, mask.triangles, 1, "disabled lights are not drawn")
	assert.Len(t, mask.triangles[0], 12)
	assert.Equal(t, render.BlendLighter, mask.opts[0].Blend)
}
