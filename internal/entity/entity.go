// Package entity holds the movable things of the world: the player, crates,
// lamps. Each entity has a footprint made of rectangles relative to its
// position, which is what the collision grid and the lights see.
package entity

import (
	"github.com/google/uuid"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/spatial"
)

// EntityType identifies the kind of entity
type EntityType string

const (
	TypePlayer EntityType = "player"
	TypeProp   EntityType = "prop"
	TypeNPC    EntityType = "npc"
)

// Direction represents cardinal directions for movement/facing
type Direction int

const (
	DirNone Direction = iota
	DirNorth
	DirSouth
	DirEast
	DirWest
	DirNorthEast
	DirNorthWest
	DirSouthEast
	DirSouthWest
)

// Delta returns the unit step for a direction. Diagonals are not
// normalised; callers scale by speed.
func (d Direction) Delta() geom.Vector2 {
	switch d {
	case DirNorth:
		return geom.Vec(0, -1)
	case DirSouth:
		return geom.Vec(0, 1)
	case DirEast:
		return geom.Vec(1, 0)
	case DirWest:
		return geom.Vec(-1, 0)
	case DirNorthEast:
		return geom.Vec(1, -1)
	case DirNorthWest:
		return geom.Vec(-1, -1)
	case DirSouthEast:
		return geom.Vec(1, 1)
	case DirSouthWest:
		return geom.Vec(-1, 1)
	default:
		return geom.Vector2{}
	}
}

// DirectionOf maps a movement vector to the closest of the eight directions.
func DirectionOf(v geom.Vector2) Direction {
	sx, sy := sign(v.X), sign(v.Y)
	switch {
	case sx == 0 && sy < 0:
		return DirNorth
	case sx == 0 && sy > 0:
		return DirSouth
	case sx > 0 && sy == 0:
		return DirEast
	case sx < 0 && sy == 0:
		return DirWest
	case sx > 0 && sy < 0:
		return DirNorthEast
	case sx < 0 && sy < 0:
		return DirNorthWest
	case sx > 0 && sy > 0:
		return DirSouthEast
	case sx < 0 && sy > 0:
		return DirSouthWest
	default:
		return DirNone
	}
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// Entity represents anything that moves or occludes in the world
type Entity struct {
	ID   string     // Unique identifier
	Name string     // Display name
	Type EntityType // player, prop, npc

	// Position is the world position the shape is relative to.
	Position geom.Vector2
	// Shape is the footprint relative to Position.
	Shape geom.RectGroup

	Velocity geom.Vector2 // pixels per frame
	Facing   Direction

	Collidable  bool // registered in the collision grid
	BlocksLight bool // casts shadows; false for glass and the like
}

// NewEntity creates an entity with a fresh id at pos.
func NewEntity(name string, entityType EntityType, pos geom.Vector2, shape ...geom.Rect) *Entity {
	return &Entity{
		ID:          uuid.NewString(),
		Name:        name,
		Type:        entityType,
		Position:    pos,
		Shape:       geom.Group(shape...),
		Collidable:  true,
		BlocksLight: true,
	}
}

// NewPlayerEntity creates the player as a size×size square centred on pos.
func NewPlayerEntity(pos geom.Vector2, size float64) *Entity {
	e := NewEntity("player", TypePlayer, pos, geom.RectAround(geom.Vector2{}, size, size))
	e.Facing = DirSouth
	return e
}

// Owner is the collider owner used for this entity in the spatial grid.
func (e *Entity) Owner() spatial.Owner {
	return spatial.Owner(e.ID)
}

// Bounds returns the footprint in world coordinates.
func (e *Entity) Bounds() geom.RectGroup {
	return e.BoundsAt(e.Position)
}

// BoundsAt returns the footprint as if the entity stood at pos.
func (e *Entity) BoundsAt(pos geom.Vector2) geom.RectGroup {
	return e.Shape.Translate(pos)
}

// Footprint returns the bounding box of the world footprint.
func (e *Entity) Footprint() geom.Rect {
	return e.Bounds().Bounds()
}

// Center returns the centre of the world footprint.
func (e *Entity) Center() geom.Vector2 {
	return e.Footprint().Center()
}

// IsMoving returns true if the entity has a non-zero velocity
func (e *Entity) IsMoving() bool {
	return e.Velocity.X != 0 || e.Velocity.Y != 0
}

// Move shifts the entity and updates its facing.
func (e *Entity) Move(delta geom.Vector2) {
	e.Position = e.Position.Add(delta)
	if d := DirectionOf(delta); d != DirNone {
		e.Facing = d
	}
}

// DistanceTo calculates the Euclidean distance between entity centres
func (e *Entity) DistanceTo(other *Entity) float64 {
	return e.Center().Distance(other.Center())
}

// InReach returns true if p is within reach of the entity's centre,
// measured as Chebyshev distance so the reach area is a square.
func (e *Entity) InReach(p geom.Vector2, reach float64) bool {
	return e.Center().DiagonalDistance(p) <= reach
}
