package core

import (
	"strings"
)

// BlankGlyph is the sentinel a freshly allocated grid is filled with.
const BlankGlyph = ' '

// Cell is one rendered character position: a glyph and the color it is drawn in.
type Cell struct {
	Glyph rune
	Color RGB
}

// Grid is a fixed-size, row-major 2D buffer of cells. It decouples the rendered
// frame from any particular output so the same grid can be composited to a
// terminal or rasterized into a video frame.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid creates a grid of the given dimensions filled with BlankGlyph.
func NewGrid(width, height int) Grid {
	g := Grid{
		width:  Max(width, 0),
		height: Max(height, 0),
	}
	g.cells = make([]Cell, g.width*g.height)
	g.Clear()
	return g
}

// Width returns the grid width in cells.
func (g Grid) Width() int {
	return g.width
}

// Height returns the grid height in cells.
func (g Grid) Height() int {
	return g.height
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return len(g.cells) == 0
}

// SameSize reports whether both grids have identical dimensions.
func (g Grid) SameSize(other Grid) bool {
	return g.width == other.width && g.height == other.height
}

// Clear fills the entire grid with blank cells.
func (g Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{Glyph: BlankGlyph}
	}
}

// Fill sets every cell to c.
func (g Grid) Fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

// Set places a cell at the given position.
// Out-of-bounds coordinates are silently ignored.
func (g Grid) Set(x, y int, c Cell) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = c
}

// At returns the cell at the given position.
// Returns a blank cell for out-of-bounds coordinates.
func (g Grid) At(x, y int) Cell {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return Cell{Glyph: BlankGlyph}
	}
	return g.cells[y*g.width+x]
}

// Cells exposes the row-major backing slice. Index is y*Width()+x.
func (g Grid) Cells() []Cell {
	return g.cells
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	c := Grid{width: g.width, height: g.height, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and cells.
func (g Grid) Equal(other Grid) bool {
	if !g.SameSize(other) {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders the glyphs only, rows joined with newlines.
func (g Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.width*g.height + g.height)

	for y := 0; y < g.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		for _, c := range g.cells[y*g.width : (y+1)*g.width] {
			sb.WriteRune(c.Glyph)
		}
	}
	return sb.String()
}

// Row returns the glyphs of the specified row as a string.
func (g Grid) Row(y int) string {
	if y < 0 || y >= g.height {
		return strings.Repeat(string(BlankGlyph), g.width)
	}
	var sb strings.Builder
	for _, c := range g.cells[y*g.width : (y+1)*g.width] {
		sb.WriteRune(c.Glyph)
	}
	return sb.String()
}
