package game

import (
	"fmt"
	"image/color"

	"chosenoffset.com/lightcore/internal/config"
	"chosenoffset.com/lightcore/internal/entity"
	"chosenoffset.com/lightcore/internal/observability/log"
	"chosenoffset.com/lightcore/internal/render"
	"chosenoffset.com/lightcore/internal/world/maploader"
)

// Paths locates the data files of a world.
type Paths struct {
	Map      string
	Entities string // optional when the map places no entities
}

// Manager handles the overall game state and pausing.
type Manager struct {
	ScreenWidth  int
	ScreenHeight int
	State        State
	Game         *Game
	Renderer     render.Renderer
	InputMgr     render.InputManager

	logger *log.Logger
}

// NewManager creates a new game manager.
func NewManager(r render.Renderer, input render.InputManager, logger *log.Logger, width, height int) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		ScreenWidth:  width,
		ScreenHeight: height,
		State:        StatePlaying,
		Renderer:     r,
		InputMgr:     input,
		logger:       logger,
	}
}

// LoadGame loads the map and entity library and starts a game.
func (m *Manager) LoadGame(cfg *config.Config, paths Paths) error {
	m.logger.Info("loading map", log.String("path", paths.Map))
	gameMap, err := maploader.LoadMap(paths.Map)
	if err != nil {
		return err
	}
	w, h := gameMap.Size()
	m.logger.Info("map loaded",
		log.String("name", gameMap.Data.Name),
		log.Int("width", w),
		log.Int("height", h))

	var lib *entity.Library
	if paths.Entities != "" {
		lib, err = entity.LoadLibrary(paths.Entities)
		if err != nil {
			return err
		}
		m.logger.Info("entity library loaded",
			log.String("name", lib.Name),
			log.Int("definitions", lib.Len()))
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sized := *cfg
	sized.Screen.Width, sized.Screen.Height = m.ScreenWidth, m.ScreenHeight
	g, err := New(Options{
		Config:   &sized,
		Map:      gameMap,
		Library:  lib,
		Renderer: m.Renderer,
		Input:    m.InputMgr,
		Logger:   m.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	m.Game = g
	m.State = StatePlaying
	return nil
}

// Update updates the game state.
func (m *Manager) Update() error {
	if m.Game == nil {
		return nil
	}
	if m.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		if m.State == StatePaused {
			m.State = StatePlaying
		} else {
			m.State = StatePaused
		}
	}
	if m.State == StatePaused {
		return nil
	}
	return m.Game.Update()
}

// Draw draws the current state.
func (m *Manager) Draw(screen render.Image) {
	if m.Game == nil {
		screen.Fill(color.RGBA{20, 20, 40, 255})
		m.Renderer.DrawText(screen, "No map loaded", 50, 50)
		return
	}
	m.Game.Draw(screen)
	if m.State == StatePaused {
		m.Renderer.DrawText(screen, "Paused (press ESC to resume)", m.ScreenWidth/2-84, m.ScreenHeight/2)
	}
}

// Layout handles window resize. The logical screen never grows past the
// map; a larger window is scaled up instead.
func (m *Manager) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := outsideWidth, outsideHeight
	if m.Game != nil {
		world := m.Game.GameMap.Bounds()
		w, h = min(w, int(world.W)), min(h, int(world.H))
	}
	if w != m.ScreenWidth || h != m.ScreenHeight {
		m.ScreenWidth = w
		m.ScreenHeight = h
		if m.Game != nil {
			m.Game.ScreenWidth = w
			m.Game.ScreenHeight = h
			m.Game.UpdateCamera()
		}
	}
	return w, h
}
