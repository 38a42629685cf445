// Package game is the playable demo around the lighting core: a tile map,
// a player moving through the collision resolver, props spawned from the
// entity library and lights cast through the shadow engine.
package game

import (
	"context"
	"fmt"
	"image/color"
	"math"

	"chosenoffset.com/lightcore/internal/collision"
	"chosenoffset.com/lightcore/internal/config"
	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/entity"
	"chosenoffset.com/lightcore/internal/observability/log"
	"chosenoffset.com/lightcore/internal/render"
	"chosenoffset.com/lightcore/internal/render/lighting"
	"chosenoffset.com/lightcore/internal/world/maploader"
)

// Options wires a Game to its data and backend.
type Options struct {
	Config   *config.Config
	Map      *maploader.Map
	Library  *entity.Library
	Renderer render.Renderer
	Input    render.InputManager
	Logger   *log.Logger
}

// Game holds all game state and logic.
type Game struct {
	ScreenWidth  int
	ScreenHeight int
	Config       *config.Config
	GameMap      *maploader.Map
	Walls        []geom.Segment
	Player       *entity.Entity
	Props        []*Prop
	Camera       Camera
	Renderer     render.Renderer
	InputMgr     render.InputManager

	Resolver        *collision.Resolver
	LightingManager *lighting.Manager

	// Render targets, created on first Draw
	TileTexture  render.Image
	SceneTexture render.Image
	LightMask    render.Image

	// UI state
	Messages  []Message
	ShowDebug bool

	// Debug
	FrameCount int

	logger      *log.Logger
	entities    []*entity.Entity
	walls       geom.RectGroup
	windows     geom.RectGroup
	sightOnly   geom.RectGroup
	transparent map[spatial.Owner]bool
	tileColors  map[string]color.NRGBA
	drawErr     bool
}

// New builds a game from a loaded map and entity library.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	gameMap := opts.Map
	world := gameMap.Bounds()
	if float64(cfg.Screen.Width) > world.W || float64(cfg.Screen.Height) > world.H {
		return nil, fmt.Errorf("%w: screen %dx%d is larger than map %s (%vx%v)",
			config.ErrInvalidConfig, cfg.Screen.Width, cfg.Screen.Height, gameMap.Data.Name, world.W, world.H)
	}

	grid, err := spatial.NewGrid(world.W, world.H, cfg.World.CellSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create collision grid: %w", err)
	}

	g := &Game{
		ScreenWidth:  cfg.Screen.Width,
		ScreenHeight: cfg.Screen.Height,
		Config:       cfg,
		GameMap:      gameMap,
		Walls:        gameMap.WallSegments(),
		Renderer:     opts.Renderer,
		InputMgr:     opts.Input,
		Resolver:     collision.NewResolver(grid, logger),
		logger:       logger.Named("game"),
		walls:        gameMap.Colliders(),
		windows:      gameMap.TransparentColliders(),
		sightOnly:    gameMap.SightBlockers(),
		transparent:  map[spatial.Owner]bool{maploader.TransparentOwner: true},
		tileColors:   make(map[string]color.NRGBA, len(gameMap.Data.Legend)),
	}

	for name, def := range gameMap.Data.Legend {
		clr, err := lighting.ParseColor(def.Color)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", name, err)
		}
		if def.Color == "" {
			clr = color.NRGBA{128, 128, 128, 255}
		}
		g.tileColors[name] = clr
	}

	g.Resolver.SetPassable(maploader.SightOwner)

	g.Player = entity.NewPlayerEntity(gameMap.SpawnPosition(), cfg.World.PlayerSize)
	g.entities = append(g.entities, g.Player)

	if err := g.spawnProps(opts.Library); err != nil {
		return nil, err
	}

	g.LightingManager = lighting.NewManager(logger, lighting.Options{
		World:   world,
		Ambient: cfg.Lighting.Ambient,
		Workers: cfg.Lighting.Workers,
		Engine: shadows.Options{
			Nudge:       cfg.Lighting.Nudge,
			Transparent: func(o spatial.Owner) bool { return g.transparent[o] },
		},
	})
	if err := g.addLights(); err != nil {
		return nil, err
	}

	g.UpdateCamera()

	g.logger.Info("game created",
		log.String("map", gameMap.Data.Name),
		log.Int("walls", len(g.Walls)),
		log.Int("props", len(g.Props)),
		log.Int("lights", len(g.LightingManager.Lights())))
	return g, nil
}

func (g *Game) spawnProps(lib *entity.Library) error {
	if len(g.GameMap.Data.Entities) > 0 && lib == nil {
		return fmt.Errorf("map %s places entities but no library was loaded", g.GameMap.Data.Name)
	}
	for _, placement := range g.GameMap.Data.Entities {
		def := lib.Get(placement.Definition)
		if def == nil {
			return fmt.Errorf("%w: unknown definition %q", entity.ErrInvalidDefinition, placement.Definition)
		}
		tile := g.GameMap.TileRect(placement.X, placement.Y)
		prop := &Prop{Entity: def.Spawn(tile.Min()), Definition: def}
		if !prop.Entity.BlocksLight {
			g.transparent[prop.Entity.Owner()] = true
		}
		g.Props = append(g.Props, prop)
		g.entities = append(g.entities, prop.Entity)
	}
	return nil
}

func (g *Game) addLights() error {
	lm := g.LightingManager
	cfg := g.Config.Lighting

	for _, pl := range g.GameMap.Data.Lights {
		clr, err := lighting.ParseColor(pl.Color)
		if err != nil {
			return fmt.Errorf("light %s: %w", pl.ID, err)
		}
		if err := lm.AddLight(lighting.LightSource{
			ID:        lighting.LightID(pl.ID),
			Position:  g.GameMap.TileCenter(pl.X, pl.Y),
			Reach:     pl.Reach,
			Intensity: pl.Intensity,
			Color:     clr,
			Enabled:   true,
		}); err != nil {
			return err
		}
	}

	for i, prop := range g.Props {
		carried := prop.Definition.Light
		if carried == nil {
			continue
		}
		prop.Light = lighting.LightID(fmt.Sprintf("%s-%d", prop.Definition.ID, i))
		if err := lm.AddLight(lighting.LightSource{
			ID:        prop.Light,
			Owner:     prop.Entity.Owner(),
			Position:  prop.Entity.Center(),
			Reach:     carried.Reach,
			Intensity: carried.Intensity,
			Color:     lightColor(carried.Color),
			Enabled:   true,
		}); err != nil {
			return err
		}
	}

	if err := lm.SetPlayerLight(g.Player.Owner(), g.Player.Center(), cfg.Reach, cfg.Intensity, color.NRGBA{255, 240, 200, 255}); err != nil {
		return err
	}
	lm.EnablePlayerLight(cfg.PlayerOn)
	return nil
}

// lightColor converts a linear 0..1 triple. Black means unset.
func lightColor(c [3]float64) color.NRGBA {
	if c == [3]float64{} {
		return lighting.DefaultColor
	}
	to8 := func(v float64) uint8 { return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	return color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255}
}

// Update handles game logic updates.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0
	g.updateMessages(dt)

	g.handleInput()

	view := g.View()
	g.rebuildGrid(view)
	g.Resolver.Resolve(g.entities)
	// lights see where things ended up this tick
	g.rebuildGrid(view)

	g.syncLights()
	n, err := g.LightingManager.Update(context.Background(), g.Resolver.Grid())
	if err != nil {
		return err
	}
	if n > 0 {
		g.logger.Debug("lights recomputed", log.Int("count", n), log.Int("frame", g.FrameCount))
	}

	g.UpdateCamera()
	g.FrameCount++
	return nil
}

func (g *Game) rebuildGrid(view geom.Rect) {
	g.Resolver.Rebuild(view, g.walls, g.entities)
	g.Resolver.AddStatic(view, g.windows, maploader.TransparentOwner)
	g.Resolver.AddStatic(view, g.sightOnly, maploader.SightOwner)
}

// View is the camera rectangle grown by the longest light reach, and by
// at least one grid cell, clipped to the world. The grid is rebuilt over it.
func (g *Game) View() geom.Rect {
	margin := g.Config.World.CellSize
	for _, l := range g.LightingManager.Lights() {
		margin = math.Max(margin, l.Reach)
	}
	camera := geom.Rect{X: g.Camera.X, Y: g.Camera.Y, W: float64(g.ScreenWidth), H: float64(g.ScreenHeight)}
	view, ok := camera.Expand(margin).Intersection(g.GameMap.Bounds(), false)
	if !ok {
		return g.GameMap.Bounds()
	}
	return view
}

func (g *Game) handleInput() {
	in := g.InputMgr
	var dir geom.Vector2
	if in.IsKeyPressed(render.KeyW) || in.IsKeyPressed(render.KeyUp) {
		dir.Y--
	}
	if in.IsKeyPressed(render.KeyS) || in.IsKeyPressed(render.KeyDown) {
		dir.Y++
	}
	if in.IsKeyPressed(render.KeyA) || in.IsKeyPressed(render.KeyLeft) {
		dir.X--
	}
	if in.IsKeyPressed(render.KeyD) || in.IsKeyPressed(render.KeyRight) {
		dir.X++
	}
	g.Player.Velocity = geom.Vector2{}
	if dir.X != 0 || dir.Y != 0 {
		g.Player.Velocity = dir.Normalize().Scale(g.Config.World.MoveSpeed)
	}

	// Toggle player light with L key
	if in.IsKeyJustPressed(render.KeyL) {
		on := !g.LightingManager.IsPlayerLightOn()
		g.LightingManager.EnablePlayerLight(on)
		if on {
			g.ShowMessage("Light source activated")
		} else {
			g.ShowMessage("Light source deactivated")
		}
	}

	if in.IsKeyJustPressed(render.KeyE) {
		g.Interact()
	}

	if in.IsKeyJustPressed(render.KeyF1) {
		g.ShowDebug = !g.ShowDebug
	}
}

// Interact toggles every light within interaction reach of the player and
// returns how many were switched.
func (g *Game) Interact() int {
	reach := g.Config.Interaction.Reach
	toggled := 0
	for _, l := range g.LightingManager.Lights() {
		if l.ID == lighting.PlayerLightID || !g.Player.InReach(l.Position, reach) {
			continue
		}
		on, err := g.LightingManager.Toggle(l.ID)
		if err != nil {
			g.logger.Warn("failed to toggle light", log.String("light", string(l.ID)), log.Error(err))
			continue
		}
		toggled++
		if on {
			g.ShowMessage(fmt.Sprintf("%s light on", l.ID))
		} else {
			g.ShowMessage(fmt.Sprintf("%s light off", l.ID))
		}
	}
	if toggled == 0 {
		g.ShowMessage("Nothing to use here")
	}
	return toggled
}

func (g *Game) syncLights() {
	g.LightingManager.UpdatePlayerLightPosition(g.Player.Center())
	for _, prop := range g.Props {
		if prop.Light == "" || !prop.Entity.IsMoving() {
			continue
		}
		if err := g.LightingManager.MoveLight(prop.Light, prop.Entity.Center()); err != nil {
			g.logger.Warn("failed to move light", log.String("light", string(prop.Light)), log.Error(err))
		}
	}
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.ScreenWidth, g.ScreenHeight
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: 3.0,
		MaxTime:  3.0,
	})
	g.logger.Info("message", log.String("text", text))
}

// UpdateCamera centres the camera on the player, clamped to the map.
func (g *Game) UpdateCamera() {
	center := g.Player.Center()
	g.Camera.X = center.X - float64(g.ScreenWidth)/2
	g.Camera.Y = center.Y - float64(g.ScreenHeight)/2

	// Clamp camera to map bounds
	world := g.GameMap.Bounds()
	g.Camera.X = math.Max(0, math.Min(g.Camera.X, world.W-float64(g.ScreenWidth)))
	g.Camera.Y = math.Max(0, math.Min(g.Camera.Y, world.H-float64(g.ScreenHeight)))
}

// CameraOffset returns the camera position as a vector.
func (g *Game) CameraOffset() geom.Vector2 {
	return geom.Vec(g.Camera.X, g.Camera.Y)
}
