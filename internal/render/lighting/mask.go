package lighting

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
	"chosenoffset.com/lightcore/internal/render"
)

// ErrMeshTooLarge is returned when a mesh needs more vertices than a
// 16-bit index buffer can address.
var ErrMeshTooLarge = errors.New("light mesh exceeds index range")

// DefaultColor is the warm torch colour used when none is given.
var DefaultColor = color.NRGBA{255, 200, 100, 255}

// ParseColor parses a "RRGGBB" hex colour, with or without a leading '#'.
// An empty string yields DefaultColor.
func ParseColor(s string) (color.NRGBA, error) {
	if s == "" {
		return DefaultColor, nil
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid light colour %q: want RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid light colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// MaskVertices converts a mesh into vertices for an additive light mask.
// Positions are world coordinates minus camera; every vertex samples the
// centre texel of a white image and carries the light colour scaled by
// intensity.
func MaskVertices(mesh shadows.Mesh, clr color.NRGBA, intensity float64, camera geom.Vector2) ([]render.Vertex, []uint16, error) {
	n := len(mesh.Triangles) * 3
	if n > math.MaxUint16+1 {
		return nil, nil, fmt.Errorf("%w: %d vertices", ErrMeshTooLarge, n)
	}
	intensity = clamp01(intensity)
	r := float32(float64(clr.R) / 255 * intensity)
	g := float32(float64(clr.G) / 255 * intensity)
	b := float32(float64(clr.B) / 255 * intensity)
	a := float32(intensity)

	origin := mesh.Offset.Sub(camera)
	vertices := make([]render.Vertex, 0, n)
	indices := make([]uint16, 0, n)
	for _, tri := range mesh.Triangles {
		for _, p := range tri {
			indices = append(indices, uint16(len(vertices)))
			vertices = append(vertices, render.Vertex{
				DstX:   float32(p.X + origin.X),
				DstY:   float32(p.Y + origin.Y),
				SrcX:   1,
				SrcY:   1,
				ColorR: r,
				ColorG: g,
				ColorB: b,
				ColorA: a,
			})
		}
	}
	return vertices, indices, nil
}

// DrawMask adds one light's mesh to the mask image.
func DrawMask(dst, white render.Image, lit Lit, camera geom.Vector2) error {
	vertices, indices, err := MaskVertices(lit.Mesh, lit.Light.Color, lit.Light.Intensity, camera)
	if err != nil {
		return fmt.Errorf("failed to draw light %s: %w", lit.Light.ID, err)
	}
	if len(vertices) == 0 {
		return nil
	}
	dst.DrawTriangles(vertices, indices, white, &render.DrawTrianglesOptions{
		AntiAlias: true,
		Blend:     render.BlendLighter,
	})
	return nil
}

// DrawLightMap fills mask with the ambient level and adds every visible
// light on top. Drawing the mask over the scene with BlendMultiply darkens
// everything the lights do not reach.
func (m *Manager) DrawLightMap(r render.Renderer, mask render.Image, camera geom.Vector2) error {
	level := uint8(math.Round(m.ambientLight * 255))
	mask.Fill(color.NRGBA{level, level, level, 255})

	white := r.WhiteImage()
	var errs []error
	for _, lit := range m.Visible() {
		if err := DrawMask(mask, white, lit, camera); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
