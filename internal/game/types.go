package game

import (
	"chosenoffset.com/lightcore/internal/entity"
	"chosenoffset.com/lightcore/internal/render/lighting"
)

// State is what the manager is currently running.
type State int

const (
	StatePlaying State = iota
	StatePaused
)

// Camera tracks the viewport position for scrolling large levels.
type Camera struct {
	X, Y float64 // Camera position (top-left corner of viewport in world coords)
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Prop is a spawned entity definition, with the light it carries if any.
type Prop struct {
	Entity     *entity.Entity
	Definition *entity.Definition
	Light      lighting.LightID // empty when the prop carries no light
}
