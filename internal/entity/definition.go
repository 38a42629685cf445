package entity

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/lightcore/internal/core/geom"
)

// ErrInvalidDefinition is returned for definitions that cannot be spawned.
var ErrInvalidDefinition = errors.New("invalid entity definition")

// ShapeRect is one rectangle of a footprint, relative to the entity position.
type ShapeRect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// LightSpec describes a light carried by an entity.
type LightSpec struct {
	Reach     float64    `yaml:"reach"`     // half-extent of the reach square
	Intensity float64    `yaml:"intensity"` // 0..1
	Color     [3]float64 `yaml:"color"`     // linear RGB, 0..1
}

// Definition defines a kind of entity that can be spawned
type Definition struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Type        EntityType  `yaml:"type,omitempty"`
	Shape       []ShapeRect `yaml:"shape"`
	Walkable    bool        `yaml:"walkable,omitempty"`    // no collision
	Transparent bool        `yaml:"transparent,omitempty"` // no shadow
	Light       *LightSpec  `yaml:"light,omitempty"`
}

// Library contains the entity definitions for a world
type Library struct {
	Name        string       `yaml:"name"`
	Definitions []Definition `yaml:"definitions"`

	byID map[string]*Definition
}

// LoadLibrary loads entity definitions from a YAML file
func LoadLibrary(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity library: %w", err)
	}
	defer f.Close()

	lib, err := DecodeLibrary(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity library %s: %w", path, err)
	}
	return lib, nil
}

// DecodeLibrary reads a library from YAML and validates it.
func DecodeLibrary(r io.Reader) (*Library, error) {
	var lib Library
	if err := yaml.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("failed to parse entity library: %w", err)
	}
	if err := lib.buildLookup(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (lib *Library) buildLookup() error {
	lib.byID = make(map[string]*Definition, len(lib.Definitions))
	for i := range lib.Definitions {
		def := &lib.Definitions[i]
		if def.ID == "" {
			return fmt.Errorf("%w: definition %d has no id", ErrInvalidDefinition, i)
		}
		if _, dup := lib.byID[def.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, def.ID)
		}
		if len(def.Shape) == 0 {
			return fmt.Errorf("%w: %q has no shape", ErrInvalidDefinition, def.ID)
		}
		for _, s := range def.Shape {
			if s.W <= 0 || s.H <= 0 {
				return fmt.Errorf("%w: %q has an empty shape rect", ErrInvalidDefinition, def.ID)
			}
		}
		if def.Type == "" {
			def.Type = TypeProp
		}
		if def.Name == "" {
			def.Name = def.ID
		}
		if def.Light != nil && def.Light.Intensity == 0 {
			def.Light.Intensity = 1
		}
		lib.byID[def.ID] = def
	}
	return nil
}

// Get returns a definition by ID
func (lib *Library) Get(id string) *Definition {
	return lib.byID[id]
}

// Len returns the number of definitions.
func (lib *Library) Len() int { return len(lib.Definitions) }

// Spawn creates a new entity instance from a definition
func (def *Definition) Spawn(pos geom.Vector2) *Entity {
	shape := make([]geom.Rect, len(def.Shape))
	for i, s := range def.Shape {
		shape[i] = geom.Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
	}
	e := NewEntity(def.Name, def.Type, pos, shape...)
	e.Collidable = !def.Walkable
	e.BlocksLight = !def.Transparent
	return e
}
