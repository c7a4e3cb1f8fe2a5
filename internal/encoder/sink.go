package encoder

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	vidio "github.com/AlexEidt/Vidio"
)

// DefaultCodec is the ffmpeg encoder used for AVI output.
const DefaultCodec = "mjpeg"

// ErrOutputOpen is returned when the output stream cannot be opened. Nothing
// is left on disk when it is returned.
var ErrOutputOpen = errors.New("encoder: cannot open output")

// Sink is a sequential frame-appending video stream.
type Sink interface {
	Write(frame *image.RGBA) error
	Close() error
}

// SinkConfig describes an output stream.
type SinkConfig struct {
	Path   string
	Width  int
	Height int
	FPS    float64
	Codec  string
}

// Opener opens a sink. Converters take one so tests can substitute memory sinks.
type Opener func(cfg SinkConfig) (Sink, error)

// VideoSink writes frames to a file through Vidio's ffmpeg pipe.
type VideoSink struct {
	cfg    SinkConfig
	writer *vidio.VideoWriter
	closed bool
}

// OpenVideo checks that the output can be created and prepares the writer.
// The check runs before any frame is encoded so permission and path problems
// surface early. An existing file at the path is left untouched until the
// first frame is written.
func OpenVideo(cfg SinkConfig) (Sink, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrOutputOpen, cfg.Width, cfg.Height)
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOutputOpen)
	}
	if cfg.Codec == "" {
		cfg.Codec = DefaultCodec
	}
	existed, err := checkWritable(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputOpen, err)
	}

	w, err := vidio.NewVideoWriter(cfg.Path, cfg.Width, cfg.Height, &vidio.Options{
		FPS:   cfg.FPS,
		Codec: cfg.Codec,
		Macro: 8,
	})
	if err != nil {
		if !existed {
			os.Remove(cfg.Path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrOutputOpen, cfg.Path, err)
	}
	return &VideoSink{cfg: cfg, writer: w}, nil
}

// checkWritable reports whether path already exists. It never modifies an
// existing file: writability of a new one is tested with a scratch file in
// the same directory.
func checkWritable(path string) (bool, error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return false, err
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s is not a directory", dir)
	}

	if info, err := os.Stat(path); err == nil {
		if info.IsDir() {
			return true, fmt.Errorf("%s is a directory", path)
		}
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return true, err
		}
		return true, f.Close()
	}

	f, err := os.CreateTemp(dir, ".cinema-*")
	if err != nil {
		return false, err
	}
	f.Close()
	return false, os.Remove(f.Name())
}

// Write appends one frame. The frame must match the configured size.
func (s *VideoSink) Write(frame *image.RGBA) error {
	if s.closed {
		return errors.New("encoder: write to closed sink")
	}
	b := frame.Bounds()
	if b.Dx() != s.cfg.Width || b.Dy() != s.cfg.Height {
		return fmt.Errorf("encoder: frame %dx%d does not match output %dx%d", b.Dx(), b.Dy(), s.cfg.Width, s.cfg.Height)
	}
	return s.writer.Write(frame.Pix)
}

// Close flushes and finalizes the file. Safe to call more than once.
func (s *VideoSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.writer.Close()
	return nil
}
