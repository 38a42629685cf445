// Package lighting keeps the lights of the world and their visibility
// meshes. A light's mesh is recomputed only when something inside its reach
// changed, detected by fingerprinting the light and the occluders it sees.
package lighting

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
	"chosenoffset.com/lightcore/internal/core/spatial"
	"chosenoffset.com/lightcore/internal/observability/log"
)

var (
	// ErrReachOutOfBounds is returned when a reach rectangle is not inside
	// the world.
	ErrReachOutOfBounds = errors.New("light reach exceeds world bounds")
	// ErrInvalidLight is returned for lights that cannot be rendered.
	ErrInvalidLight = errors.New("invalid light")
	// ErrUnknownLight is returned for ids the manager does not hold.
	ErrUnknownLight = errors.New("unknown light")
)

// PlayerLightID is the id of the light carried by the player.
const PlayerLightID LightID = "player"

// LightID identifies a light.
type LightID string

// LightSource represents a single light source in the game world
type LightSource struct {
	ID        LightID
	Owner     spatial.Owner // entity carrying the light; it does not occlude it
	Position  geom.Vector2  // World position (in pixels)
	Reach     float64       // Half-extent of the square reach (in pixels)
	Intensity float64       // Light intensity (0.0 to 1.0)
	Color     color.NRGBA   // Light color
	Enabled   bool
}

// ReachRect returns the square the light considers occluders in.
func (l LightSource) ReachRect() geom.Rect {
	return geom.RectAround(l.Position, 2*l.Reach, 2*l.Reach)
}

func (l LightSource) validate() error {
	switch {
	case l.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidLight)
	case !(l.Reach > 0) || math.IsInf(l.Reach, 0):
		return fmt.Errorf("%w: %s has reach %v", ErrInvalidLight, l.ID, l.Reach)
	case l.Intensity < 0 || l.Intensity > 1:
		return fmt.Errorf("%w: %s has intensity %v", ErrInvalidLight, l.ID, l.Intensity)
	}
	return nil
}

// meshState is a light's cached mesh: stale until computed, with the
// fingerprint of the inputs it was computed from.
type meshState interface {
	isMeshState()
}

type staleMesh struct{}

type readyMesh struct {
	mesh        shadows.Mesh
	fingerprint uint64
}

func (staleMesh) isMeshState() {}
func (readyMesh) isMeshState() {}

// lightState is one light with its own engine, so diagnostics are reported
// per light.
type lightState struct {
	light  LightSource
	engine *shadows.Engine
	cache  meshState
}

// Options configures a Manager.
type Options struct {
	World   geom.Rect       // lights never see outside it
	Ambient float64         // light level where no light reaches
	Workers int             // concurrent recomputations, <= 0 means one per light
	Engine  shadows.Options // passed to every light's engine
}

// Lit pairs a light with its current mesh.
type Lit struct {
	Light LightSource
	Mesh  shadows.Mesh
}

// Manager handles all light sources in the game
type Manager struct {
	logger *log.Logger
	opts   Options
	engine *shadows.Engine // for ad hoc RenderLight calls

	order  []LightID
	lights map[LightID]*lightState

	ambientLight  float64 // Global ambient light level (0.0 = pitch black, 1.0 = fully lit)
	playerLightOn bool
}

// NewManager creates a new lighting manager
func NewManager(logger *log.Logger, opts Options) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.Named("lighting")
	return &Manager{
		logger:       logger,
		opts:         opts,
		engine:       shadows.NewEngine(logger, opts.Engine),
		lights:       make(map[LightID]*lightState),
		ambientLight: clamp01(opts.Ambient),
	}
}

// SetAmbientLight sets the global ambient light level
func (m *Manager) SetAmbientLight(level float64) {
	m.ambientLight = clamp01(level)
}

// AmbientLight returns the current ambient light level
func (m *Manager) AmbientLight() float64 {
	return m.ambientLight
}

// AddLight registers a light. Its mesh is computed on the next Update.
func (m *Manager) AddLight(l LightSource) error {
	if err := l.validate(); err != nil {
		return err
	}
	if _, dup := m.lights[l.ID]; dup {
		return fmt.Errorf("%w: duplicate id %s", ErrInvalidLight, l.ID)
	}
	m.lights[l.ID] = &lightState{
		light:  l,
		engine: shadows.NewEngine(m.logger.With(log.String("light", string(l.ID))), m.opts.Engine),
		cache:  staleMesh{},
	}
	m.order = append(m.order, l.ID)
	m.logger.Debug("light added",
		log.String("id", string(l.ID)),
		log.Vec("pos", l.Position.X, l.Position.Y),
		log.Float64("reach", l.Reach),
		log.Float64("intensity", l.Intensity))
	return nil
}

// RemoveLight removes a light source (e.g., if its carrier is destroyed)
func (m *Manager) RemoveLight(id LightID) {
	if _, ok := m.lights[id]; !ok {
		return
	}
	delete(m.lights, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Light returns a copy of a light.
func (m *Manager) Light(id LightID) (LightSource, bool) {
	st, ok := m.lights[id]
	if !ok {
		return LightSource{}, false
	}
	return st.light, true
}

// Lights returns every light in insertion order.
func (m *Manager) Lights() []LightSource {
	out := make([]LightSource, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.lights[id].light)
	}
	return out
}

// MoveLight changes a light's position. The mesh is refreshed by Update.
func (m *Manager) MoveLight(id LightID, pos geom.Vector2) error {
	st, ok := m.lights[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	st.light.Position = pos
	return nil
}

// SetEnabled turns a light on or off.
func (m *Manager) SetEnabled(id LightID, enabled bool) error {
	st, ok := m.lights[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	st.light.Enabled = enabled
	if id == PlayerLightID {
		m.playerLightOn = enabled
	}
	return nil
}

// Toggle flips a light and returns its new state.
func (m *Manager) Toggle(id LightID) (bool, error) {
	st, ok := m.lights[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	on := !st.light.Enabled
	if err := m.SetEnabled(id, on); err != nil {
		return false, err
	}
	return on, nil
}

// SetPlayerLight configures the player's equipped light source, replacing
// any previous one.
func (m *Manager) SetPlayerLight(owner spatial.Owner, pos geom.Vector2, reach, intensity float64, col color.NRGBA) error {
	m.RemoveLight(PlayerLightID)
	return m.AddLight(LightSource{
		ID:        PlayerLightID,
		Owner:     owner,
		Position:  pos,
		Reach:     reach,
		Intensity: intensity,
		Color:     col,
		Enabled:   m.playerLightOn,
	})
}

// EnablePlayerLight turns on/off the player's light source
func (m *Manager) EnablePlayerLight(enabled bool) {
	m.playerLightOn = enabled
	if st, ok := m.lights[PlayerLightID]; ok {
		st.light.Enabled = enabled
	}
}

// IsPlayerLightOn returns whether the player's light is currently on
func (m *Manager) IsPlayerLightOn() bool {
	return m.playerLightOn
}

// UpdatePlayerLightPosition updates the player's light position (called each frame)
func (m *Manager) UpdatePlayerLightPosition(pos geom.Vector2) {
	if st, ok := m.lights[PlayerLightID]; ok {
		st.light.Position = pos
	}
}

// Invalidate forces a light to be recomputed on the next Update.
func (m *Manager) Invalidate(id LightID) error {
	st, ok := m.lights[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	st.cache = staleMesh{}
	return nil
}

// RenderLight computes the mesh lit from source within reach, ignoring the
// colliders of owner. The reach must lie inside the world.
func (m *Manager) RenderLight(grid *spatial.Grid, source geom.Vector2, reach geom.Rect, owner spatial.Owner) (shadows.Mesh, error) {
	if !m.opts.World.Contains(reach) {
		return shadows.Mesh{}, fmt.Errorf("%w: reach %s, world %s", ErrReachOutOfBounds, reach, m.opts.World)
	}
	return m.engine.Compute(source, reach, grid, owner), nil
}

// clippedReach is the light's reach limited to the world.
func (m *Manager) clippedReach(l LightSource) (geom.Rect, bool) {
	return l.ReachRect().Intersection(m.opts.World, false)
}

// Update recomputes, concurrently, every enabled light whose fingerprint
// changed since its mesh was computed. The grid must not be mutated until
// Update returns. It returns how many lights were recomputed.
func (m *Manager) Update(ctx context.Context, grid *spatial.Grid) (int, error) {
	type job struct {
		st          *lightState
		reach       geom.Rect
		fingerprint uint64
	}
	var jobs []job
	for _, id := range m.order {
		st := m.lights[id]
		if !st.light.Enabled {
			continue
		}
		reach, ok := m.clippedReach(st.light)
		if !ok {
			st.cache = readyMesh{}
			continue
		}
		fp := m.fingerprint(grid, st.light, reach)
		if ready, ok := st.cache.(readyMesh); ok && ready.fingerprint == fp {
			continue
		}
		jobs = append(jobs, job{st: st, reach: reach, fingerprint: fp})
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if m.opts.Workers > 0 {
		g.SetLimit(m.opts.Workers)
	}
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh := j.st.engine.Compute(j.st.light.Position, j.reach, grid, j.st.light.Owner)
			j.st.cache = readyMesh{mesh: mesh, fingerprint: j.fingerprint}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("failed to update lights: %w", err)
	}
	return len(jobs), nil
}

// RecomputeAll drops every cached mesh and recomputes the enabled lights.
func (m *Manager) RecomputeAll(ctx context.Context, grid *spatial.Grid) error {
	for _, st := range m.lights {
		st.cache = staleMesh{}
	}
	_, err := m.Update(ctx, grid)
	return err
}

// Mesh returns the cached mesh of an enabled, computed light.
func (m *Manager) Mesh(id LightID) (shadows.Mesh, bool) {
	st, ok := m.lights[id]
	if !ok || !st.light.Enabled {
		return shadows.Mesh{}, false
	}
	ready, ok := st.cache.(readyMesh)
	return ready.mesh, ok
}

// Visible returns the enabled lights that have a computed, non-empty mesh.
func (m *Manager) Visible() []Lit {
	var out []Lit
	for _, id := range m.order {
		st := m.lights[id]
		if !st.light.Enabled {
			continue
		}
		if ready, ok := st.cache.(readyMesh); ok && !ready.mesh.IsEmpty() {
			out = append(out, Lit{Light: st.light, Mesh: ready.mesh})
		}
	}
	return out
}

// IsLit reports whether any visible light reaches p.
func (m *Manager) IsLit(p geom.Vector2) bool {
	for _, lit := range m.Visible() {
		if lit.Mesh.Contains(p) {
			return true
		}
	}
	return false
}

// fingerprint hashes what a light's mesh depends on: its position, its
// reach and the occluders inside that reach. Collider order from the grid
// is not stable, so keys are sorted first.
func (m *Manager) fingerprint(grid *spatial.Grid, l LightSource, reach geom.Rect) uint64 {
	var keys []string
	for _, c := range grid.CollidesWith(reach, l.Owner, m.occludes(l.Owner)) {
		keys = append(keys, string(c.FirstOwner)+"@"+c.First.Key())
	}
	sort.Strings(keys)

	d := xxhash.New()
	_, _ = d.WriteString(reach.Key())
	_, _ = d.WriteString(fmt.Sprintf("|%g,%g|", l.Position.X, l.Position.Y))
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.WriteString(";")
	}
	return d.Sum64()
}

func (m *Manager) occludes(owner spatial.Owner) spatial.Filter {
	transparent := m.opts.Engine.Transparent
	return func(c spatial.Collider) bool {
		if owner != spatial.NoOwner && c.Owner == owner {
			return false
		}
		return transparent == nil || !transparent(c.Owner)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
