package source

import (
	"image"
	"io"
)

// Slice is an in-memory source over a fixed list of frames.
type Slice struct {
	frames []image.Image
	fps    float64
	pos    int
}

// NewSlice creates a source that yields frames in order.
func NewSlice(fps float64, frames ...image.Image) *Slice {
	return &Slice{frames: frames, fps: NormalizeFPS(fps)}
}

// Next returns the next frame or io.EOF.
func (s *Slice) Next() (image.Image, error) {
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

// FPS returns the configured frame rate.
func (s *Slice) FPS() float64 { return s.fps }

// FrameCount returns the number of frames.
func (s *Slice) FrameCount() int { return len(s.frames) }

// Close is a no-op.
func (s *Slice) Close() error { return nil }

// Generator is a source that synthesizes count frames on demand.
// Only the current frame is ever held in memory.
type Generator struct {
	count int
	fps   float64
	gen   func(i int) image.Image
	pos   int
	reads int
}

// NewGenerator creates a source of count frames produced by gen.
func NewGenerator(count int, fps float64, gen func(i int) image.Image) *Generator {
	return &Generator{count: count, fps: NormalizeFPS(fps), gen: gen}
}

// Next returns gen(i) for the next index or io.EOF.
func (g *Generator) Next() (image.Image, error) {
	if g.pos >= g.count {
		return nil, io.EOF
	}
	f := g.gen(g.pos)
	g.pos++
	g.reads++
	return f, nil
}

// FPS returns the configured frame rate.
func (g *Generator) FPS() float64 { return g.fps }

// FrameCount returns the configured frame count.
func (g *Generator) FrameCount() int { return g.count }

// Reads reports how many frames have been pulled so far.
func (g *Generator) Reads() int { return g.reads }

// Close is a no-op.
func (g *Generator) Close() error { return nil }
