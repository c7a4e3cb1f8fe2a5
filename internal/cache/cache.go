// Package cache pre-renders a frame source into an ordered, bounded sequence of
// glyph grids ready for playback.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

// MaxFrames is the hard ceiling on cached frames. It bounds memory for very
// long sources; playback of longer inputs ends at the ceiling.
const MaxFrames = 5000

// ErrNoFrames is the build failure returned when a source yields no usable frame.
var ErrNoFrames = errors.New("cache: no frames were rendered")

// Cache is an ordered sequence of grids sharing one size. It is append-only
// while building and read-only afterwards, so any number of players may
// read it concurrently.
type Cache struct {
	frames []core.Grid
	width  int
	height int
	fps    float64
	capped bool
}

// Len returns the number of cached frames.
func (c *Cache) Len() int { return len(c.frames) }

// Frame returns the i-th grid.
func (c *Cache) Frame(i int) core.Grid { return c.frames[i] }

// Frames returns the grids in playback order. Callers must not modify them.
func (c *Cache) Frames() []core.Grid { return c.frames }

// Width returns the grid width in cells.
func (c *Cache) Width() int { return c.width }

// Height returns the grid height in cells.
func (c *Cache) Height() int { return c.height }

// FPS returns the source frame rate.
func (c *Cache) FPS() float64 { return c.fps }

// Capped reports whether the build stopped at the frame ceiling while the
// source still had frames left.
func (c *Cache) Capped() bool { return c.capped }

// Progress receives the number of frames read so far and the source's frame
// count hint (0 if unknown). It is observational only.
type Progress func(done, total int)

// Builder drives a Mapper across a Source.
type Builder struct {
	mapper   *glyph.Mapper
	limit    int
	progress Progress
	logger   *log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLimit lowers the frame ceiling. Values outside (0, MaxFrames] are ignored.
func WithLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 && n <= MaxFrames {
			b.limit = n
		}
	}
}

// WithProgress registers a progress observer.
func WithProgress(p Progress) Option {
	return func(b *Builder) { b.progress = p }
}

// WithLogger sets the logger used for skipped-frame diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder for the given mapper.
func NewBuilder(m *glyph.Mapper, opts ...Option) *Builder {
	b := &Builder{mapper: m, limit: MaxFrames}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.OrDefault(b.logger)
	return b
}

// Build reads src once, in order, and returns the rendered cache. Frames that
// fail to render are skipped. Build stops when the source is exhausted, the
// ceiling is reached or ctx is cancelled; it fails with ErrNoFrames when no
// frame could be rendered.
func (b *Builder) Build(ctx context.Context, src source.Source) (*Cache, error) {
	c := &Cache{fps: source.NormalizeFPS(src.FPS())}
	total := src.FrameCount()
	read, skipped := 0, 0

	for len(c.frames) < b.limit {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cache: build cancelled after %d frames: %w", read, err)
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cache: read frame %d: %w", read, err)
		}
		read++

		var grid core.Grid
		if len(c.frames) == 0 {
			grid, err = b.mapper.Map(frame)
		} else {
			grid, err = b.mapper.MapTo(frame, c.height)
		}
		if err != nil {
			skipped++
			b.logger.Debug("skipping frame", "frame", read-1, "error", err)
			b.report(read, total)
			continue
		}

		// The first rendered frame fixes the session size; later frames are
		// resampled to it whatever their own aspect ratio
		if len(c.frames) == 0 {
			c.width, c.height = grid.Width(), grid.Height()
		}

		c.frames = append(c.frames, grid)
		b.report(read, total)
	}

	// A source that ends exactly at the ceiling is not capped; one more read
	// tells the two apart.
	if len(c.frames) >= b.limit {
		if _, err := src.Next(); !errors.Is(err, io.EOF) {
			c.capped = true
			b.logger.Warn("frame ceiling reached", "frames", len(c.frames))
		}
	}

	if len(c.frames) == 0 {
		return nil, fmt.Errorf("%w (read %d, skipped %d)", ErrNoFrames, read, skipped)
	}

	b.logger.Debug("cache built", "frames", len(c.frames), "skipped", skipped, "size", fmt.Sprintf("%dx%d", c.width, c.height))
	return c, nil
}

func (b *Builder) report(done, total int) {
	if b.progress != nil {
		b.progress(done, total)
	}
}
