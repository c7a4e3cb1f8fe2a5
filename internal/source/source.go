// Package source supplies ordered, finite sequences of raster frames.
//
// A Source is lazy: frames are decoded one at a time by Next and are only
// valid until the following call. Sources report a frame rate (defaulting to
// DefaultFPS when the container does not carry one) and an optional frame
// count hint that is used for progress display only.
package source

import (
	"errors"
	"image"
	"math"
)

// DefaultFPS is assumed when a source cannot report its frame rate.
const DefaultFPS = 30.0

var (
	// ErrOpen is returned when a source cannot be opened.
	ErrOpen = errors.New("source: cannot open")

	// ErrNoFrames is returned when a source yields no frames at all.
	ErrNoFrames = errors.New("source: no frames")
)

// Source is a finite, ordered, lazy frame sequence.
type Source interface {
	// Next returns the next frame, or io.EOF once the sequence is exhausted.
	// The returned image is only valid until the next call.
	Next() (image.Image, error)

	// FPS returns the frame rate; never zero.
	FPS() float64

	// FrameCount returns the expected number of frames, or 0 if unknown.
	FrameCount() int

	// Close releases decoder resources. Safe to call more than once.
	Close() error
}

// Info describes an opened source for display.
type Info struct {
	Path   string
	Width  int
	Height int
	FPS    float64
	Frames int
}

// NormalizeFPS returns fps, or DefaultFPS for zero, negative or NaN rates.
func NormalizeFPS(fps float64) float64 {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return DefaultFPS
	}
	return fps
}
