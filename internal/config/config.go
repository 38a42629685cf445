// Package config holds the numeric constants the geometry core is driven
// by: tile and grid cell sizes, light and interaction reach, and the knobs
// of the shadow caster. Values are loaded from a YAML file on top of the
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all tunable settings.
type Config struct {
	// World geometry
	World WorldConfig `yaml:"world"`

	// Light casting
	Lighting LightingConfig `yaml:"lighting"`

	// Interaction reach for "use" style actions
	Interaction InteractionConfig `yaml:"interaction"`

	// Window / camera
	Screen ScreenConfig `yaml:"screen"`

	// Logging
	Log LogConfig `yaml:"log"`
}

// WorldConfig defines tile and broad-phase sizes, in pixels.
type WorldConfig struct {
	TileSize   float64 `yaml:"tile_size"`   // Rendered tile size (e.g., 32)
	CellSize   float64 `yaml:"cell_size"`   // Spatial hash cell size, several tiles wide
	PlayerSize float64 `yaml:"player_size"` // Side of the player's square footprint
	MoveSpeed  float64 `yaml:"move_speed"`  // Pixels per tick
}

// LightingConfig controls light reach and the shadow caster.
type LightingConfig struct {
	Reach     float64 `yaml:"reach"`      // Half-extent of a light's reach square
	Ambient   float64 `yaml:"ambient"`    // 0 = pitch black, 1 = fully lit
	Intensity float64 `yaml:"intensity"`  // Default light intensity
	Nudge     float64 `yaml:"nudge"`      // Distance past a corner probed for obstruction
	Workers   int     `yaml:"workers"`    // Parallel light recomputations (0 = one per light)
	PlayerOn  bool    `yaml:"player_on"`  // Player light enabled at start
}

// InteractionConfig defines how far the player can reach.
type InteractionConfig struct {
	Reach float64 `yaml:"reach"`
}

// ScreenConfig is the logical screen (and camera) size.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns settings for a 32px tile world.
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			TileSize:   32,
			CellSize:   128,
			PlayerSize: 20,
			MoveSpeed:  2,
		},
		Lighting: LightingConfig{
			Reach:     256,
			Ambient:   0.15,
			Intensity: 0.9,
			Nudge:     0.01,
			Workers:   0,
			PlayerOn:  true,
		},
		Interaction: InteractionConfig{
			Reach: 48,
		},
		Screen: ScreenConfig{
			Width:  960,
			Height: 640,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads a YAML config, overlaying it on the defaults. A missing
// file yields the defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return config, nil
}

// Validate rejects settings the geometry core cannot work with.
func (c *Config) Validate() error {
	w := c.World
	if w.TileSize <= 0 {
		return fmt.Errorf("%w: tile_size must be positive, got %v", ErrInvalidConfig, w.TileSize)
	}
	if w.CellSize < w.TileSize {
		return fmt.Errorf("%w: cell_size %v is smaller than tile_size %v", ErrInvalidConfig, w.CellSize, w.TileSize)
	}
	if w.PlayerSize <= 0 || w.PlayerSize > w.CellSize {
		return fmt.Errorf("%w: player_size must be in (0, cell_size], got %v", ErrInvalidConfig, w.PlayerSize)
	}
	if w.MoveSpeed < 0 {
		return fmt.Errorf("%w: move_speed must not be negative", ErrInvalidConfig)
	}

	l := c.Lighting
	if l.Reach <= 0 {
		return fmt.Errorf("%w: lighting.reach must be positive, got %v", ErrInvalidConfig, l.Reach)
	}
	if l.Ambient < 0 || l.Ambient > 1 {
		return fmt.Errorf("%w: lighting.ambient must be in [0, 1], got %v", ErrInvalidConfig, l.Ambient)
	}
	if l.Intensity < 0 || l.Intensity > 1 {
		return fmt.Errorf("%w: lighting.intensity must be in [0, 1], got %v", ErrInvalidConfig, l.Intensity)
	}
	if l.Nudge <= 0 || l.Nudge >= w.TileSize {
		return fmt.Errorf("%w: lighting.nudge must be in (0, tile_size), got %v", ErrInvalidConfig, l.Nudge)
	}
	if l.Workers < 0 {
		return fmt.Errorf("%w: lighting.workers must not be negative", ErrInvalidConfig)
	}

	if c.Interaction.Reach < 0 {
		return fmt.Errorf("%w: interaction.reach must not be negative", ErrInvalidConfig)
	}
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("%w: invalid screen size %dx%d", ErrInvalidConfig, c.Screen.Width, c.Screen.Height)
	}
	return nil
}

// LightReachSize returns the full side length of a light's reach square.
func (c *Config) LightReachSize() float64 {
	return c.Lighting.Reach * 2
}
