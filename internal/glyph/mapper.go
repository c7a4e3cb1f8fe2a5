// Package glyph maps raster frames onto grids of colored glyphs.
//
// Mapping is a pure function of (frame, width, charset, colorize): the frame is
// resampled to width x height samples with a Lanczos filter, each sample's
// ITU-R 601 luma picks a glyph from the charset ramp, and the sample color (or
// its luma gray) becomes the cell color.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/charmbracelet/log"
	"github.com/nfnt/resize"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/registry"
)

// CellAspect compensates for terminal cells being about twice as tall as wide.
const CellAspect = 0.5

// ErrEmptyResult is returned when a frame produces no grid. Callers skip the
// frame; it is never fatal to a pipeline.
var ErrEmptyResult = errors.New("glyph: empty result")

// Mapper holds the session-wide mapping parameters.
type Mapper struct {
	width    int
	charset  registry.Charset
	colorize bool
	logger   *log.Logger
}

// NewMapper creates a mapper for the given output width and charset.
func NewMapper(width int, cs registry.Charset, colorize bool, logger *log.Logger) (*Mapper, error) {
	if width <= 0 {
		return nil, fmt.Errorf("glyph: width must be positive, got %d", width)
	}
	if cs.Len() < 2 {
		return nil, fmt.Errorf("glyph: charset %q has %d glyphs, need at least 2", cs.Name, cs.Len())
	}
	return &Mapper{
		width:    width,
		charset:  cs,
		colorize: colorize,
		logger:   logging.OrDefault(logger),
	}, nil
}

// Width returns the configured output width in cells.
func (m *Mapper) Width() int {
	return m.width
}

// Charset returns the ramp this mapper draws from.
func (m *Mapper) Charset() registry.Charset {
	return m.charset
}

// Height returns the grid height for a frame of the given pixel size.
func (m *Mapper) Height(frameW, frameH int) int {
	return GridHeight(m.width, frameW, frameH)
}

// Map converts one frame into a grid. Resampling failures are logged and
// reported as ErrEmptyResult so a single bad frame never aborts the caller.
func (m *Mapper) Map(frame image.Image) (core.Grid, error) {
	if frame == nil {
		return core.Grid{}, ErrEmptyResult
	}
	b := frame.Bounds()
	return m.MapTo(frame, m.Height(b.Dx(), b.Dy()))
}

// MapTo converts one frame into a grid of exactly Width() x height cells,
// regardless of the frame's own aspect ratio. Used to keep a session's grids
// the same size once the first frame has fixed it.
func (m *Mapper) MapTo(frame image.Image, height int) (grid core.Grid, err error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("frame render failed", "error", r)
			grid, err = core.Grid{}, fmt.Errorf("%w: %v", ErrEmptyResult, r)
		}
	}()

	if frame == nil || height <= 0 {
		return core.Grid{}, ErrEmptyResult
	}
	b := frame.Bounds()
	if b.Empty() {
		return core.Grid{}, ErrEmptyResult
	}

	sampled := frame
	if b.Dx() != m.width || b.Dy() != height {
		sampled = resize.Resize(uint(m.width), uint(height), frame, resize.Lanczos3)
	}
	if sampled == nil || sampled.Bounds().Dx() != m.width || sampled.Bounds().Dy() != height {
		m.logger.Warn("frame render failed", "error", "resample produced wrong size")
		return core.Grid{}, ErrEmptyResult
	}

	grid = core.NewGrid(m.width, height)
	cells := grid.Cells()
	n := m.charset.Len()

	sb := sampled.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < m.width; x++ {
			c := sampleAt(sampled, sb.Min.X+x, sb.Min.Y+y)
			milli := core.LumaMilli(c.R, c.G, c.B)

			cell := core.Cell{Glyph: m.charset.Glyphs[GlyphIndex(milli, n)]}
			if m.colorize {
				cell.Color = c
			} else {
				cell.Color = core.Gray(uint8(milli / 1000))
			}
			cells[y*m.width+x] = cell
		}
	}
	return grid, nil
}

// Map is the one-shot form of Mapper.Map returning the grid and its height.
func Map(frame image.Image, width int, cs registry.Charset, colorize bool) (core.Grid, int, error) {
	m, err := NewMapper(width, cs, colorize, logging.Discard())
	if err != nil {
		return core.Grid{}, 0, err
	}
	g, err := m.Map(frame)
	if err != nil {
		return core.Grid{}, 0, err
	}
	return g, g.Height(), nil
}

// GridHeight returns round(width * frameH/frameW * CellAspect), or 0 for a
// degenerate frame.
func GridHeight(width, frameW, frameH int) int {
	if width <= 0 || frameW <= 0 || frameH <= 0 {
		return 0
	}
	return int(math.Round(float64(width) * (float64(frameH) / float64(frameW)) * CellAspect))
}

// GlyphIndex quantizes a luma (in thousandths, 0..255000) onto a ramp of n
// glyphs: min(floor(luma/255 * (n-1)), n-1).
func GlyphIndex(lumaMilli, n int) int {
	if n <= 1 || lumaMilli <= 0 {
		return 0
	}
	idx := lumaMilli * (n - 1) / 255000
	return core.Min(idx, n-1)
}

// sampleAt reads one sample as opaque RGB. Gray and paletted frames are
// promoted through the standard color model.
func sampleAt(img image.Image, x, y int) core.RGB {
	if rgba, ok := img.(*image.RGBA); ok {
		i := rgba.PixOffset(x, y)
		return core.RGB{R: rgba.Pix[i], G: rgba.Pix[i+1], B: rgba.Pix[i+2]}
	}
	c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	return core.RGB{R: c.R, G: c.G, B: c.B}
}
