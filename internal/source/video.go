package source

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"sync"

	vidio "github.com/AlexEidt/Vidio"
)

// Video decodes a media file through ffmpeg via Vidio.
type Video struct {
	path  string
	video *vidio.Video
	frame *image.RGBA

	closeOnce sync.Once
}

// Open opens the media file at path for frame-by-frame decoding.
// All failures wrap ErrOpen.
func Open(path string) (*Video, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrOpen, path)
	}

	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if video.Width() <= 0 || video.Height() <= 0 {
		video.Close()
		return nil, fmt.Errorf("%w: %s: no video stream", ErrOpen, path)
	}

	// Decode straight into the image's pixel buffer
	frame := image.NewRGBA(image.Rect(0, 0, video.Width(), video.Height()))
	if err := video.SetFrameBuffer(frame.Pix); err != nil {
		video.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	return &Video{path: path, video: video, frame: frame}, nil
}

// Next decodes the next frame into the shared buffer.
func (v *Video) Next() (image.Image, error) {
	if !v.video.Read() {
		return nil, io.EOF
	}
	return v.frame, nil
}

// FPS returns the container frame rate, or DefaultFPS if unknown.
func (v *Video) FPS() float64 {
	return NormalizeFPS(v.video.FPS())
}

// FrameCount returns the container's frame count hint.
func (v *Video) FrameCount() int {
	return max(v.video.Frames(), 0)
}

// Info returns display metadata for the opened file.
func (v *Video) Info() Info {
	return Info{
		Path:   v.path,
		Width:  v.video.Width(),
		Height: v.video.Height(),
		FPS:    v.FPS(),
		Frames: v.FrameCount(),
	}
}

// Close stops the decoder process.
func (v *Video) Close() error {
	v.closeOnce.Do(func() {
		v.video.Close()
	})
	return nil
}
