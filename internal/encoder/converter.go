package encoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

// DefaultOutput is used when no output path is given.
const DefaultOutput = "converted_ascii_video.avi"

// Grids is a finished sequence of rendered grids, such as a frame cache.
type Grids interface {
	Len() int
	Frame(i int) core.Grid
	FPS() float64
}

// Result summarizes a conversion.
type Result struct {
	Output  string
	Frames  int
	Blank   int // frames written black because they failed to render
	Columns int
	Rows    int
	Elapsed time.Duration
}

// Converter renders frames to glyph grids, rasterizes them and appends them to
// a sink. A frame that fails to map is written as a black frame so the output
// keeps the source timing.
type Converter struct {
	mapper   *glyph.Mapper
	raster   *Rasterizer
	open     Opener
	codec    string
	progress func(done, total int)
	logger   *log.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithOpener replaces OpenVideo.
func WithOpener(o Opener) Option {
	return func(c *Converter) { c.open = o }
}

// WithCodec sets the ffmpeg codec name.
func WithCodec(codec string) Option {
	return func(c *Converter) {
		if codec != "" {
			c.codec = codec
		}
	}
}

// WithProgress registers a progress observer.
func WithProgress(fn func(done, total int)) Option {
	return func(c *Converter) { c.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// NewConverter creates a converter producing width x height pixel frames.
func NewConverter(m *glyph.Mapper, width, height int, opts ...Option) *Converter {
	c := &Converter{
		mapper: m,
		raster: NewRasterizer(width, height),
		open:   OpenVideo,
		codec:  DefaultCodec,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrDefault(c.logger)
	return c
}

// Convert streams src into a new video at output. Every source frame becomes
// exactly one output frame. On any failure the partial output is removed.
func (c *Converter) Convert(ctx context.Context, src source.Source, output string) (Result, error) {
	if output == "" {
		output = DefaultOutput
	}
	res := Result{Output: output}
	start := time.Now()

	sink, err := c.openSink(output, src.FPS())
	if err != nil {
		return res, err
	}

	frame := c.raster.NewFrame()
	total := src.FrameCount()
	height := 0

	for {
		if err := ctx.Err(); err != nil {
			return res, c.abort(sink, output, fmt.Errorf("encoder: cancelled after %d frames: %w", res.Frames, err))
		}

		img, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, c.abort(sink, output, fmt.Errorf("encoder: read frame %d: %w", res.Frames, err))
		}

		grid, err := c.mapFrame(img, height)
		if err != nil {
			c.logger.Warn("writing blank frame", "frame", res.Frames, "error", err)
			Blank(frame)
			res.Blank++
		} else {
			if height == 0 {
				height = grid.Height()
				res.Columns, res.Rows = grid.Width(), grid.Height()
			}
			c.raster.Rasterize(frame, grid)
		}

		if err := sink.Write(frame); err != nil {
			return res, c.abort(sink, output, fmt.Errorf("encoder: write frame %d: %w", res.Frames, err))
		}
		res.Frames++
		c.report(res.Frames, total)
	}

	if res.Frames == 0 {
		return res, c.abort(sink, output, source.ErrNoFrames)
	}
	if err := sink.Close(); err != nil {
		os.Remove(output)
		return res, fmt.Errorf("encoder: finalize %s: %w", output, err)
	}
	res.Elapsed = time.Since(start)
	c.logger.Debug("conversion finished", "frames", res.Frames, "blank", res.Blank, "output", output)
	return res, nil
}

// Encode writes an already rendered sequence to output.
func (c *Converter) Encode(ctx context.Context, grids Grids, output string) (Result, error) {
	if output == "" {
		output = DefaultOutput
	}
	res := Result{Output: output}
	start := time.Now()

	sink, err := c.openSink(output, grids.FPS())
	if err != nil {
		return res, err
	}

	frame := c.raster.NewFrame()
	for i := 0; i < grids.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return res, c.abort(sink, output, fmt.Errorf("encoder: cancelled after %d frames: %w", res.Frames, err))
		}
		g := grids.Frame(i)
		if i == 0 {
			res.Columns, res.Rows = g.Width(), g.Height()
		}
		c.raster.Rasterize(frame, g)
		if err := sink.Write(frame); err != nil {
			return res, c.abort(sink, output, fmt.Errorf("encoder: write frame %d: %w", i, err))
		}
		res.Frames++
		c.report(res.Frames, grids.Len())
	}

	if err := sink.Close(); err != nil {
		os.Remove(output)
		return res, fmt.Errorf("encoder: finalize %s: %w", output, err)
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

func (c *Converter) openSink(output string, fps float64) (Sink, error) {
	sink, err := c.open(SinkConfig{
		Path:   output,
		Width:  c.raster.Width(),
		Height: c.raster.Height(),
		FPS:    source.NormalizeFPS(fps),
		Codec:  c.codec,
	})
	if err != nil {
		if errors.Is(err, ErrOutputOpen) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrOutputOpen, err)
	}
	return sink, nil
}

// mapFrame fixes the grid height on the first rendered frame and holds it.
func (c *Converter) mapFrame(img image.Image, height int) (core.Grid, error) {
	if height == 0 {
		return c.mapper.Map(img)
	}
	return c.mapper.MapTo(img, height)
}

func (c *Converter) abort(sink Sink, output string, err error) error {
	if cerr := sink.Close(); cerr != nil {
		c.logger.Debug("sink close failed", "error", cerr)
	}
	if rerr := os.Remove(output); rerr != nil && !os.IsNotExist(rerr) {
		c.logger.Warn("could not remove partial output", "path", output, "error", rerr)
	}
	return err
}

func (c *Converter) report(done, total int) {
	if c.progress != nil {
		c.progress(done, total)
	}
}
