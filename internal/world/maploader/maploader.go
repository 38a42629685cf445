// Package maploader reads tile maps and turns them into the static geometry
// the collision grid and the lights work with.
package maploader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
	"chosenoffset.com/lightcore/internal/core/spatial"
)

// ErrInvalidMap is returned for map files that fail validation.
var ErrInvalidMap = errors.New("invalid map")

// TransparentOwner owns the colliders of tiles that block movement but not
// sight, such as windows.
const TransparentOwner spatial.Owner = "map:transparent"

// SightOwner owns the colliders of walkable tiles that still block sight,
// such as curtains or hedges. Lights see them; movement must ignore them.
const SightOwner spatial.Owner = "map:sight"

// SpawnPoint defines a player or entity spawn location in tile coordinates
type SpawnPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TileDef describes one legend entry.
type TileDef struct {
	Walkable    *bool  `json:"walkable,omitempty"` // default true
	BlocksSight bool   `json:"blocks_sight"`
	Color       string `json:"color,omitempty"` // RRGGBB used by the debug renderer
}

// LightPlacement puts a light at the centre of a tile.
type LightPlacement struct {
	ID        string  `json:"id"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Reach     float64 `json:"reach"`
	Intensity float64 `json:"intensity,omitempty"` // default 1
	Color     string  `json:"color,omitempty"`
}

// EntityPlacement spawns an entity definition at a tile.
type EntityPlacement struct {
	Definition string `json:"definition"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

// MapData represents the loaded map configuration
type MapData struct {
	Name        string             `json:"name"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	TileSize    int                `json:"tile_size"`
	PlayerSpawn SpawnPoint         `json:"player_spawn"`
	Legend      map[string]TileDef `json:"legend"`
	Tiles       [][]string         `json:"tiles"` // 2D array of tile names [y][x]
	Lights      []LightPlacement   `json:"lights,omitempty"`
	Entities    []EntityPlacement  `json:"entities,omitempty"`
}

// Map represents a loaded, validated map
type Map struct {
	Data *MapData
}

// LoadMap loads a map from a JSON file
func LoadMap(mapPath string) (*Map, error) {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file %s: %w", mapPath, err)
	}
	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load map %s: %w", mapPath, err)
	}
	return m, nil
}

// ParseMap decodes and validates map JSON.
func ParseMap(data []byte) (*Map, error) {
	var mapData MapData
	if err := json.Unmarshal(data, &mapData); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	if err := validateMapData(&mapData); err != nil {
		return nil, err
	}
	return &Map{Data: &mapData}, nil
}

// validateMapData checks if the map data is valid and fills defaults
func validateMapData(data *MapData) error {
	if data.Width <= 0 || data.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, data.Width, data.Height)
	}
	if data.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidMap, data.TileSize)
	}
	if len(data.Tiles) != data.Height {
		return fmt.Errorf("%w: tiles array height mismatch: expected %d, got %d", ErrInvalidMap, data.Height, len(data.Tiles))
	}
	for y, row := range data.Tiles {
		if len(row) != data.Width {
			return fmt.Errorf("%w: tiles array width mismatch at row %d: expected %d, got %d", ErrInvalidMap, y, data.Width, len(row))
		}
		for x, name := range row {
			if _, ok := data.Legend[name]; !ok {
				return fmt.Errorf("%w: tile %q at (%d, %d) is not in the legend", ErrInvalidMap, name, x, y)
			}
		}
	}

	inside := func(x, y int) bool { return x >= 0 && x < data.Width && y >= 0 && y < data.Height }
	spawn := data.PlayerSpawn
	if !inside(spawn.X, spawn.Y) {
		return fmt.Errorf("%w: player spawn (%d, %d) outside the map", ErrInvalidMap, spawn.X, spawn.Y)
	}
	if !data.Legend[data.Tiles[spawn.Y][spawn.X]].walkable() {
		return fmt.Errorf("%w: player spawn (%d, %d) is not walkable", ErrInvalidMap, spawn.X, spawn.Y)
	}

	ids := make(map[string]bool, len(data.Lights))
	for i := range data.Lights {
		l := &data.Lights[i]
		if l.ID == "" {
			l.ID = fmt.Sprintf("light-%d", i)
		}
		if ids[l.ID] {
			return fmt.Errorf("%w: duplicate light id %q", ErrInvalidMap, l.ID)
		}
		ids[l.ID] = true
		if !inside(l.X, l.Y) {
			return fmt.Errorf("%w: light %q at (%d, %d) outside the map", ErrInvalidMap, l.ID, l.X, l.Y)
		}
		if l.Reach <= 0 {
			return fmt.Errorf("%w: light %q has reach %v", ErrInvalidMap, l.ID, l.Reach)
		}
		if l.Intensity == 0 {
			l.Intensity = 1
		}
		if l.Intensity < 0 || l.Intensity > 1 {
			return fmt.Errorf("%w: light %q has intensity %v", ErrInvalidMap, l.ID, l.Intensity)
		}
	}

	for _, e := range data.Entities {
		if e.Definition == "" || !inside(e.X, e.Y) {
			return fmt.Errorf("%w: entity %q at (%d, %d)", ErrInvalidMap, e.Definition, e.X, e.Y)
		}
	}
	return nil
}

func (d TileDef) walkable() bool {
	return d.Walkable == nil || *d.Walkable
}

// Size returns the map size in tiles.
func (m *Map) Size() (int, int) {
	return m.Data.Width, m.Data.Height
}

// TileSize returns the tile side in pixels.
func (m *Map) TileSize() float64 {
	return float64(m.Data.TileSize)
}

// Bounds returns the map extent in pixels.
func (m *Map) Bounds() geom.Rect {
	ts := m.TileSize()
	return geom.Rect{W: float64(m.Data.Width) * ts, H: float64(m.Data.Height) * ts}
}

// TileRect returns the pixel rectangle of a tile.
func (m *Map) TileRect(x, y int) geom.Rect {
	ts := m.TileSize()
	return geom.Rect{X: float64(x) * ts, Y: float64(y) * ts, W: ts, H: ts}
}

// TileCenter returns the pixel centre of a tile.
func (m *Map) TileCenter(x, y int) geom.Vector2 {
	return m.TileRect(x, y).Center()
}

// GetTileAt returns the tile name at the given grid coordinates
func (m *Map) GetTileAt(x, y int) (string, error) {
	if x < 0 || x >= m.Data.Width || y < 0 || y >= m.Data.Height {
		return "", fmt.Errorf("coordinates out of bounds: (%d, %d)", x, y)
	}
	return m.Data.Tiles[y][x], nil
}

// GetTileDefAt returns the tile definition at the given grid coordinates
func (m *Map) GetTileDefAt(x, y int) (TileDef, error) {
	name, err := m.GetTileAt(x, y)
	if err != nil {
		return TileDef{}, err
	}
	return m.Data.Legend[name], nil
}

// IsWalkable returns whether the tile at the given coordinates is walkable
func (m *Map) IsWalkable(x, y int) bool {
	def, err := m.GetTileDefAt(x, y)
	if err != nil {
		return false
	}
	return def.walkable()
}

// BlocksSight returns whether the tile at the given coordinates blocks line of sight
func (m *Map) BlocksSight(x, y int) bool {
	def, err := m.GetTileDefAt(x, y)
	if err != nil {
		return false
	}
	return def.BlocksSight
}

// Colliders returns a tile-sized rect for every tile that blocks both
// movement and sight.
func (m *Map) Colliders() geom.RectGroup {
	return m.collect(func(d TileDef) bool { return !d.walkable() && d.BlocksSight })
}

// TransparentColliders returns the tiles that block movement but let light
// through. Register them under TransparentOwner.
func (m *Map) TransparentColliders() geom.RectGroup {
	return m.collect(func(d TileDef) bool { return !d.walkable() && !d.BlocksSight })
}

// SightBlockers returns the walkable tiles that block sight. Register
// them under SightOwner.
func (m *Map) SightBlockers() geom.RectGroup {
	return m.collect(func(d TileDef) bool { return d.walkable() && d.BlocksSight })
}

func (m *Map) collect(keep func(TileDef) bool) geom.RectGroup {
	var out geom.RectGroup
	for y, row := range m.Data.Tiles {
		for x, name := range row {
			if keep(m.Data.Legend[name]) {
				out = append(out, m.TileRect(x, y))
			}
		}
	}
	return out
}

// WallSegments returns the traced outlines of the walls.
func (m *Map) WallSegments() []geom.Segment {
	return shadows.WallSegments(m, m.TileSize())
}

// SpawnPosition returns the pixel centre of the player spawn tile.
func (m *Map) SpawnPosition() geom.Vector2 {
	return m.TileCenter(m.Data.PlayerSpawn.X, m.Data.PlayerSpawn.Y)
}
