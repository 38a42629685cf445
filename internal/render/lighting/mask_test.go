package lighting

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/shadows"
)

func TestMaskVertices(t *testing.T) {
	mesh := shadows.Mesh{
		Triangles: []shadows.Triangle{{{10, 10}, {20, 0}, {0, 0}}},
		Offset:    geom.Vec(100, 200),
	}
	vertices, indices, err := MaskVertices(mesh, color.NRGBA{255, 0, 128, 255}, 0.5, geom.Vec(50, 50))
	require.NoError(t, err)
	require.Len(t, vertices, 3)
	assert.Equal(t, []uint16{0, 1, 2}, indices)

	assert.Equal(t, float32(60), vertices[0].DstX)
	assert.Equal(t, float32(160), vertices[0].DstY)
	assert.Equal(t, float32(70), vertices[1].DstX)
	assert.Equal(t, float32(150), vertices[1].DstY)

	assert.Equal(t, float32(0.5), vertices[0].ColorR)
	assert.Equal(t, float32(0), vertices[0].ColorG)
	assert.InDelta(t, 0.251, vertices[0].ColorB, 1e-3)
	assert.Equal(t, float32(0.5), vertices[0].ColorA)
	assert.Equal(t, float32(1), vertices[2].SrcX)
}

func TestMaskVerticesRejectsHugeMesh(t *testing.T) {
	mesh := shadows.Mesh{Triangles: make([]shadows.Triangle, 21846)}
	_, _, err := MaskVertices(mesh, DefaultColor, 1, geom.Vector2{})
	assert.ErrorIs(t, err, ErrMeshTooLarge)

	mesh.Triangles = mesh.Triangles[:21845]
	_, indices, err := MaskVertices(mesh, DefaultColor, 1, geom.Vector2{})
	require.NoError(t, err)
	assert.Equal(t, uint16(65534), indices[len(indices)-1])
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"", DefaultColor, false},
		{"ff8000", color.NRGBA{255, 128, 0, 255}, false},
		{"#0A0B0C", color.NRGBA{10, 11, 12, 255}, false},
		{"fff", color.NRGBA{}, true},
		{"zzzzzz", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
