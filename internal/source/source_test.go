package source

import (
	"errors"
	"image"
	"io"
	"math"
	"path/filepath"
	"testing"
)

func TestNormalizeFPS(t *testing.T) {
	tests := []struct {
		in, expected float64
	}{
		{24, 24},
		{0, DefaultFPS},
		{-5, DefaultFPS},
		{math.NaN(), DefaultFPS},
		{math.Inf(1), DefaultFPS},
	}

	for _, tc := range tests {
		if got := NormalizeFPS(tc.in); got != tc.expected {
			t.Errorf("NormalizeFPS(%v) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}

func TestSliceOrder(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 1, 1))
	b := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s := NewSlice(0, a, b)

	if s.FPS() != DefaultFPS {
		t.Errorf("FPS() = %v, expected default", s.FPS())
	}
	if s.FrameCount() != 2 {
		t.Errorf("FrameCount() = %d, expected 2", s.FrameCount())
	}

	first, err := s.Next()
	if err != nil || first != a {
		t.Fatalf("first Next() = %v, %v", first, err)
	}
	second, err := s.Next()
	if err != nil || second != b {
		t.Fatalf("second Next() = %v, %v", second, err)
	}
	if _, err := s.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after end = %v, expected io.EOF", err)
	}
}

func TestGenerator(t *testing.T) {
	g := NewGenerator(3, 25, func(i int) image.Image {
		return image.NewGray(image.Rect(0, 0, i+1, 1))
	})

	for i := 0; i < 3; i++ {
		f, err := g.Next()
		if err != nil {
			t.Fatalf("Next() #%d failed: %v", i, err)
		}
		if f.Bounds().Dx() != i+1 {
			t.Errorf("frame %d width = %d, expected %d", i, f.Bounds().Dx(), i+1)
		}
	}
	if _, err := g.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after end = %v, expected io.EOF", err)
	}
	if g.Reads() != 3 {
		t.Errorf("Reads() = %d, expected 3", g.Reads())
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Open(missing) error = %v, expected ErrOpen", err)
	}
}

func TestOpenRejectsDirectoryAndEmptyPath(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, ErrOpen) {
		t.Errorf("Open(dir) error = %v, expected ErrOpen", err)
	}
	if _, err := Open("  "); !errors.Is(err, ErrOpen) {
		t.Errorf("Open(\"\") error = %v, expected ErrOpen", err)
	}
}
