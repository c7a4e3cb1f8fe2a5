// Package compositor turns consecutive rendered grids into the minimal stream
// of cursor, color and glyph escape sequences needed to update a terminal.
//
// A Compositor owns the grid that is currently on screen. Each call to Diff or
// Render compares the next grid against it, reports the cells whose glyph
// changed in row-major order and updates the on-screen copy in place. Color-only
// changes are not redrawn: the glyph is the sole diff key.
package compositor

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

// ErrDimensionMismatch is returned when a grid does not match the screen size.
var ErrDimensionMismatch = errors.New("compositor: grid dimensions do not match")

// Directive redraws one cell: move to (Row, Col), set the color, emit the glyph.
type Directive struct {
	Row  int
	Col  int
	Cell core.Cell
}

// Compositor diffs grids against the previously displayed one.
// It is not safe for concurrent use; the playback loop is its only caller.
type Compositor struct {
	prev    core.Grid
	scratch []Directive
}

// New creates a compositor for a width x height screen that is assumed blank.
func New(width, height int) *Compositor {
	return &Compositor{prev: core.NewGrid(width, height)}
}

// Width returns the screen width in cells.
func (c *Compositor) Width() int { return c.prev.Width() }

// Height returns the screen height in cells.
func (c *Compositor) Height() int { return c.prev.Height() }

// Previous returns the grid currently considered on screen. Callers must not
// modify it.
func (c *Compositor) Previous() core.Grid { return c.prev }

// Reset marks the whole screen blank again, e.g. after it has been cleared.
func (c *Compositor) Reset() {
	c.prev.Clear()
}

// Diff returns a directive for every cell whose glyph differs from the
// previous grid and records those cells as displayed. The returned slice is
// reused by the next call.
func (c *Compositor) Diff(next core.Grid) ([]Directive, error) {
	if !c.prev.SameSize(next) {
		return nil, fmt.Errorf("%w: screen %dx%d, grid %dx%d", ErrDimensionMismatch,
			c.prev.Width(), c.prev.Height(), next.Width(), next.Height())
	}

	out := c.scratch[:0]
	prev := c.prev.Cells()
	cells := next.Cells()
	w := next.Width()

	for i, cell := range cells {
		if prev[i].Glyph == cell.Glyph {
			continue
		}
		prev[i] = cell
		out = append(out, Directive{Row: i / w, Col: i % w, Cell: cell})
	}

	c.scratch = out
	return out, nil
}

// Render diffs next and appends the encoded directives to dst.
func (c *Compositor) Render(dst []byte, next core.Grid) ([]byte, error) {
	ds, err := c.Diff(next)
	if err != nil {
		return dst, err
	}
	return Encode(dst, ds), nil
}

// Encode appends the escape sequences for ds to dst. Cursor moves are skipped
// for a directive that directly follows the previous one on the same row, and
// color sets are skipped while the color is unchanged.
func Encode(dst []byte, ds []Directive) []byte {
	var (
		row, col  = -1, -1
		lastColor core.RGB
		haveColor bool
	)
	for _, d := range ds {
		if d.Row != row || d.Col != col {
			dst = AppendCursorPos(dst, d.Row, d.Col)
		}
		if !haveColor || d.Cell.Color != lastColor {
			dst = AppendFg(dst, d.Cell.Color)
			lastColor, haveColor = d.Cell.Color, true
		}
		dst = appendGlyph(dst, d.Cell.Glyph)
		row, col = d.Row, d.Col+1
	}
	return dst
}
