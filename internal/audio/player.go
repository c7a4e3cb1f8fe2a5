package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

// SampleRate is the rate ffmpeg resamples the track to.
const SampleRate = beep.SampleRate(44100)

// MaxLag bounds how far the sound may fall behind the picture.
const MaxLag = 250 * time.Millisecond

// ErrUnavailable is returned when no audio can be played for a source.
var ErrUnavailable = errors.New("audio: unavailable")

var (
	speakerMu   sync.Mutex
	speakerInit bool
)

// initSpeaker initializes the shared output device once per process.
func initSpeaker() error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInit {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speakerInit = true
	return nil
}

// Config describes the track to play.
type Config struct {
	FFmpeg string  // ffmpeg binary, "ffmpeg" when empty
	Path   string  // media file carrying the audio track
	FPS    float64 // video frame rate the track is released against
}

// Player is the frame-synchronized audio collaborator for playback.
type Player struct {
	gate      *Gate
	stream    io.ReadCloser
	perFrame  float64
	carry     float64
	logger    *log.Logger
	closeOnce sync.Once
	closeErr  error
}

// NewPlayer starts decoding the track and attaches it to the speaker. Any
// failure is reported wrapped in ErrUnavailable; the caller plays on silently.
func NewPlayer(ctx context.Context, cfg Config, logger *log.Logger) (*Player, error) {
	logger = logging.OrDefault(logger)

	stream, err := Extract(ctx, cfg.FFmpeg, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err := initSpeaker(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: speaker: %w", ErrUnavailable, err)
	}

	p := newPlayer(stream, cfg.FPS, logger)
	speaker.Play(p.gate)
	logger.Debug("audio started", "path", cfg.Path, "rate", int(SampleRate))
	return p, nil
}

func newPlayer(stream io.ReadCloser, fps float64, logger *log.Logger) *Player {
	return &Player{
		gate:     NewGate(NewPCMStreamer(stream), SampleRate.N(MaxLag)),
		stream:   stream,
		perFrame: float64(SampleRate) / source.NormalizeFPS(fps),
		logger:   logger,
	}
}

// PullFrame releases one video frame's worth of samples. Fractional samples
// carry over so the track does not drift on non-integer rates.
func (p *Player) PullFrame() error {
	if err := p.gate.Err(); err != nil {
		return fmt.Errorf("audio: decode: %w", err)
	}
	p.carry += p.perFrame
	n := int(p.carry)
	p.carry -= float64(n)
	p.gate.Release(n)
	return nil
}

// Close detaches the track from the speaker and stops the decoder.
func (p *Player) Close() error {
	p.closeOnce.Do(func() {
		if speakerReady() {
			speaker.Clear()
		}
		p.closeErr = p.stream.Close()
	})
	return p.closeErr
}

func speakerReady() bool {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	return speakerInit
}

// Extract starts ffmpeg decoding the audio track of path to s16le stereo at
// SampleRate on its stdout. Closing the returned reader kills and reaps it.
func Extract(ctx context.Context, ffmpeg, path string) (io.ReadCloser, error) {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	bin, err := exec.LookPath(ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("audio: ffmpeg not found: %w", err)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-nostdin",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "2",
		"-ar", strconv.Itoa(int(SampleRate)),
		"-",
	)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("audio: ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("audio: start ffmpeg: %w", err)
	}
	return &cmdReader{ReadCloser: out, cmd: cmd}, nil
}

type cmdReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *cmdReader) Close() error {
	if c.cmd.ProcessState == nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	// Wait closes the pipe; a killed process is not an error here.
	_ = c.cmd.Wait()
	return nil
}
