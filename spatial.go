package main

// SpatialCellSize is the broad-phase cell edge in world units
const SpatialCellSize = 80.0

// SpatialGrid is a fixed-size uniform grid used as a broad phase for static
// rectangles. Coordinates outside the grid clamp to the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
}

// NewSpatialGrid creates a grid covering width x height world units
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = SpatialCellSize
	}
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]int, cols*rows),
	}
}

// Clear resets all cells (keeps allocated capacity)
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *SpatialGrid) cellRange(minX, minY, maxX, maxY float64) (int, int, int, int) {
	minCX := clampCell(int(minX/g.cellSize), g.cols)
	maxCX := clampCell(int(maxX/g.cellSize), g.cols)
	minCY := clampCell(int(minY/g.cellSize), g.rows)
	maxCY := clampCell(int(maxY/g.cellSize), g.rows)
	return minCX, minCY, maxCX, maxCY
}

func clampCell(c, n int) int {
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// InsertRect adds idx to every cell the rectangle touches
func (g *SpatialGrid) InsertRect(minX, minY, maxX, maxY float64, idx int) {
	minCX, minCY, maxCX, maxCY := g.cellRange(minX, minY, maxX, maxY)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			i := cy*g.cols + cx
			g.cells[i] = append(g.cells[i], idx)
		}
	}
}

// QueryBuf appends the indices stored in cells overlapping the circle's
// bounding box to buf and returns the extended slice. An index may appear
// more than once when its rectangle spans several cells.
func (g *SpatialGrid) QueryBuf(x, y, radius float64, buf []int) []int {
	minCX, minCY, maxCX, maxCY := g.cellRange(x-radius, y-radius, x+radius, y+radius)
	for cy := minCY; cy <= maxCY; cy++ {
		for cx := minCX; cx <= maxCX; cx++ {
			buf = append(buf, g.cells[cy*g.cols+cx]...)
		}
	}
	return buf
}
