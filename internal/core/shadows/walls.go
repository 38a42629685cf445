package shadows

import (
	"chosenoffset.com/lightcore/internal/core/geom"
	"chosenoffset.com/lightcore/internal/core/region"
)

// TileGrid is a tile map that knows which tiles block sight.
type TileGrid interface {
	Size() (width, height int)
	BlocksSight(x, y int) bool
}

// WallRegions finds all 4-connected regions of sight-blocking tiles.
func WallRegions(tiles TileGrid) [][]Coord {
	width, height := tiles.Size()
	visited := make(map[Coord]bool)
	var regions [][]Coord

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			coord := Coord{X: x, Y: y}
			if visited[coord] || !tiles.BlocksSight(x, y) {
				continue
			}
			regions = append(regions, floodFill(tiles, coord, width, height, visited))
		}
	}
	return regions
}

// floodFill performs BFS to find all connected sight-blocking tiles
func floodFill(tiles TileGrid, start Coord, width, height int, visited map[Coord]bool) []Coord {
	var area []Coord
	queue := []Coord{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		area = append(area, current)

		neighbors := [4]Coord{
			{X: current.X, Y: current.Y - 1},
			{X: current.X + 1, Y: current.Y},
			{X: current.X, Y: current.Y + 1},
			{X: current.X - 1, Y: current.Y},
		}
		for _, n := range neighbors {
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				continue
			}
			if visited[n] || !tiles.BlocksSight(n.X, n.Y) {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
		}
	}
	return area
}

// OccludersFromTiles returns one group of tile-sized rectangles per wall
// region, ready to be registered in a spatial grid.
func OccludersFromTiles(tiles TileGrid, tileSize float64) []geom.RectGroup {
	regions := WallRegions(tiles)
	groups := make([]geom.RectGroup, 0, len(regions))
	for _, area := range regions {
		group := make(geom.RectGroup, 0, len(area))
		for _, c := range area {
			group = append(group, tileRect(c, tileSize))
		}
		groups = append(groups, group)
	}
	return groups
}

// WallSegments traces the outline of every wall region. Shared edges between
// neighbouring tiles cancel and collinear runs are merged.
func WallSegments(tiles TileGrid, tileSize float64) []geom.Segment {
	var out []geom.Segment
	for _, group := range OccludersFromTiles(tiles, tileSize) {
		out = append(out, region.New(group...).Segments()...)
	}
	return out
}

func tileRect(c Coord, tileSize float64) geom.Rect {
	return geom.Rect{X: float64(c.X) * tileSize, Y: float64(c.Y) * tileSize, W: tileSize, H: tileSize}
}
