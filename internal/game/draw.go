package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/lightcore/internal/entity"
	"chosenoffset.com/lightcore/internal/observability/log"
	"chosenoffset.com/lightcore/internal/render"
)

var (
	playerColor      = color.NRGBA{255, 255, 100, 255}
	propColor        = color.NRGBA{150, 110, 70, 255}
	transparentColor = color.NRGBA{160, 210, 240, 160}
	walkableColor    = color.NRGBA{220, 190, 90, 255}
	debugWallColor   = color.NRGBA{255, 60, 60, 255}
	debugMeshColor   = color.NRGBA{60, 255, 120, 255}
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	w, h := screen.Size()
	g.ensureTextures(w, h)

	// Step 1: render the scene to an offscreen texture
	g.SceneTexture.Clear()
	opts := &render.DrawImageOptions{GeoM: render.NewGeoM()}
	opts.GeoM.Translate(-g.Camera.X, -g.Camera.Y)
	g.SceneTexture.DrawImage(g.TileTexture, opts)
	g.drawProps(g.SceneTexture)
	g.drawPlayer(g.SceneTexture)
	screen.DrawImage(g.SceneTexture, nil)

	// Step 2: ambient plus every light, multiplied over the scene
	if err := g.LightingManager.DrawLightMap(g.Renderer, g.LightMask, g.CameraOffset()); err != nil && !g.drawErr {
		g.drawErr = true
		g.logger.Warn("light map incomplete", log.Error(err))
	}
	screen.DrawImage(g.LightMask, &render.DrawImageOptions{Blend: render.BlendMultiply})

	// Step 3: UI elements on top, unaffected by lighting
	if g.ShowDebug {
		g.drawDebug(screen)
	}
	g.drawUI(screen)
}

func (g *Game) ensureTextures(w, h int) {
	if g.TileTexture == nil {
		world := g.GameMap.Bounds()
		g.TileTexture = g.Renderer.NewImage(int(world.W), int(world.H))
		g.drawTiles(g.TileTexture)
	}
	if g.SceneTexture == nil || needsResize(g.SceneTexture, w, h) {
		if g.SceneTexture != nil {
			g.SceneTexture.Dispose()
		}
		g.SceneTexture = g.Renderer.NewImage(w, h)
	}
	if g.LightMask == nil || needsResize(g.LightMask, w, h) {
		if g.LightMask != nil {
			g.LightMask.Dispose()
		}
		g.LightMask = g.Renderer.NewImage(w, h)
	}
}

func needsResize(img render.Image, w, h int) bool {
	bounds := img.Bounds()
	return bounds.Dx() != w || bounds.Dy() != h
}

// drawTiles paints the whole map once; the tiles never change.
func (g *Game) drawTiles(dst render.Image) {
	ts := float32(g.GameMap.TileSize())
	for y, row := range g.GameMap.Data.Tiles {
		for x, name := range row {
			g.Renderer.FillRect(dst, float32(x)*ts, float32(y)*ts, ts, ts, g.tileColors[name])
		}
	}
}

func (g *Game) drawProps(dst render.Image) {
	for _, prop := range g.Props {
		clr := propColor
		switch {
		case !prop.Entity.BlocksLight:
			clr = transparentColor
		case !prop.Entity.Collidable:
			clr = walkableColor
		}
		g.drawEntity(dst, prop.Entity, clr)
	}
}

func (g *Game) drawPlayer(dst render.Image) {
	g.drawEntity(dst, g.Player, playerColor)

	// facing marker
	c := g.Player.Center()
	tip := c.Add(g.Player.Facing.Delta().Scale(g.Config.World.PlayerSize / 2))
	g.Renderer.StrokeLine(dst,
		float32(c.X-g.Camera.X), float32(c.Y-g.Camera.Y),
		float32(tip.X-g.Camera.X), float32(tip.Y-g.Camera.Y),
		2, color.Black)
}

func (g *Game) drawEntity(dst render.Image, e *entity.Entity, clr color.Color) {
	for _, r := range e.Bounds() {
		g.Renderer.FillRect(dst, float32(r.X-g.Camera.X), float32(r.Y-g.Camera.Y), float32(r.W), float32(r.H), clr)
	}
}

func (g *Game) drawDebug(screen render.Image) {
	cx, cy := g.Camera.X, g.Camera.Y
	for _, s := range g.Walls {
		g.Renderer.StrokeLine(screen,
			float32(s.Start.X-cx), float32(s.Start.Y-cy),
			float32(s.End.X-cx), float32(s.End.Y-cy),
			1, debugWallColor)
	}

	lit := g.LightingManager.Visible()
	triangles := 0
	for _, l := range lit {
		for _, tri := range l.Mesh.World() {
			for i := range tri {
				a, b := tri[i], tri[(i+1)%3]
				g.Renderer.StrokeLine(screen,
					float32(a.X-cx), float32(a.Y-cy),
					float32(b.X-cx), float32(b.Y-cy),
					1, debugMeshColor)
			}
		}
		triangles += len(l.Mesh.Triangles)
	}

	c := g.Player.Center()
	g.Renderer.DrawText(screen, fmt.Sprintf("pos %.0f,%.0f  lights %d/%d  triangles %d",
		c.X, c.Y, len(lit), len(g.LightingManager.Lights()), triangles), 8, 8)
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 30
	for _, msg := range g.Messages {
		g.Renderer.DrawText(screen, msg.Text, 20, y)
		y += 16
	}
}
