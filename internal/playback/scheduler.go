package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cinema/internal/compositor"
	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

// DefaultPollInterval is how often a paused scheduler re-checks the state.
const DefaultPollInterval = 100 * time.Millisecond

// PausedText is drawn under the picture while paused.
const PausedText = "⏸  PAUSED - Press P to resume"

// ErrOutput wraps failures writing to the output device. It is fatal.
var ErrOutput = errors.New("playback: output write failed")

// Frames is the read-only view of a frame cache the scheduler consumes.
type Frames interface {
	Len() int
	Frame(i int) core.Grid
	FPS() float64
}

// Clock abstracts wall time so pacing can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// AudioSync is pulled once per displayed frame. Errors are not fatal.
type AudioSync interface {
	PullFrame() error
	Close() error
}

// Controller is the input collaborator. It is started before the first frame
// and stopped on every exit path.
type Controller interface {
	Start() error
	Stop() error
}

// Stats summarizes one playback run.
type Stats struct {
	Frames        int
	Elapsed       time.Duration
	Status        core.PlaybackStatus
	AudioDisabled bool
}

// Scheduler plays a frame cache once, in order, at the cache frame rate
// scaled by the live speed multiplier. Frames are never dropped; under load
// playback runs late rather than skipping.
type Scheduler struct {
	frames  Frames
	state   *State
	comp    *compositor.Compositor
	out     io.Writer
	clock   Clock
	audio   AudioSync
	input   Controller
	poll    time.Duration
	logger  *log.Logger
	status  int
	onFrame func(i int)

	buf []byte
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithAudio attaches an audio collaborator.
func WithAudio(a AudioSync) Option {
	return func(s *Scheduler) { s.audio = a }
}

// WithInput attaches an input collaborator.
func WithInput(c Controller) Option {
	return func(s *Scheduler) { s.input = c }
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithLogger sets the diagnostics logger. It must not write to the output
// device.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithStatusRow sets the 0-indexed row used for the pause indicator.
func WithStatusRow(row int) Option {
	return func(s *Scheduler) { s.status = row }
}

// WithFrameHook registers a callback run after each frame is written.
func WithFrameHook(fn func(i int)) Option {
	return func(s *Scheduler) { s.onFrame = fn }
}

// NewScheduler creates a scheduler writing frames from f to out.
func NewScheduler(f Frames, state *State, comp *compositor.Compositor, out io.Writer, opts ...Option) *Scheduler {
	s := &Scheduler{
		frames: f,
		state:  state,
		comp:   comp,
		out:    out,
		clock:  systemClock{},
		poll:   DefaultPollInterval,
		status: comp.Height() + 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// FrameDelay returns the target time per frame at the given speed.
func FrameDelay(fps, speed float64) time.Duration {
	fps = source.NormalizeFPS(fps)
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(time.Second) / fps / speed)
}

// Run plays the cache until it ends, the state is stopped or ctx is done.
// Cancellation stops the state and is not reported as an error. Whatever the
// exit path, the input collaborator is stopped, audio is closed and the output
// device is restored.
func (s *Scheduler) Run(ctx context.Context) (stats Stats, err error) {
	start := s.clock.Now()
	stopOnCancel := context.AfterFunc(ctx, s.state.Stop)

	defer func() {
		stopOnCancel()
		if r := recover(); r != nil {
			err = fmt.Errorf("playback: panic at frame %d: %v", stats.Frames, r)
		}
		s.cleanup()
		stats.Elapsed = s.clock.Now().Sub(start)
		stats.Status = s.state.Status()
		if err != nil {
			s.state.Stop()
			stats.Status = core.StatusStopped
		}
	}()

	if s.input != nil {
		if ierr := s.input.Start(); ierr != nil {
			s.logger.Warn("input unavailable, controls disabled", "error", ierr)
			s.input = nil
		}
	}

	if err = s.write(compositor.AppendSetup(s.buf[:0])); err != nil {
		return stats, err
	}
	s.comp.Reset()

	fps := s.frames.FPS()
	for i := 0; i < s.frames.Len(); i++ {
		if !s.state.Running() {
			break
		}
		if s.state.Paused() && !s.waitWhilePaused() {
			break
		}

		frameStart := s.clock.Now()
		s.pullAudio(&stats)

		s.buf, err = s.comp.Render(s.buf[:0], s.frames.Frame(i))
		if err != nil {
			return stats, fmt.Errorf("playback: frame %d: %w", i, err)
		}
		if err = s.write(s.buf); err != nil {
			return stats, err
		}
		stats.Frames++
		if s.onFrame != nil {
			s.onFrame(i)
		}

		delay := FrameDelay(fps, s.state.Speed())
		if rest := delay - s.clock.Now().Sub(frameStart); rest > 0 {
			s.clock.Sleep(rest)
		}
	}
	return stats, nil
}

// waitWhilePaused shows the pause indicator and polls until resumed or
// stopped. It reports whether playback should continue.
func (s *Scheduler) waitWhilePaused() bool {
	if err := s.write(compositor.AppendStatusLine(s.buf[:0], s.status, PausedText)); err != nil {
		s.logger.Warn("pause indicator not shown", "error", err)
	}
	for {
		snap := s.state.Snapshot()
		if !snap.Running {
			return false
		}
		if !snap.Paused {
			break
		}
		s.clock.Sleep(s.poll)
	}
	if err := s.write(compositor.AppendStatusLine(s.buf[:0], s.status, "")); err != nil {
		s.logger.Warn("pause indicator not cleared", "error", err)
	}
	return true
}

func (s *Scheduler) pullAudio(stats *Stats) {
	if s.audio == nil {
		return
	}
	if err := s.audio.PullFrame(); err != nil {
		s.logger.Warn("audio disabled", "error", err)
		if cerr := s.audio.Close(); cerr != nil {
			s.logger.Debug("audio close failed", "error", cerr)
		}
		s.audio = nil
		stats.AudioDisabled = true
	}
}

func (s *Scheduler) cleanup() {
	if s.input != nil {
		if err := s.input.Stop(); err != nil {
			s.logger.Debug("input stop failed", "error", err)
		}
		s.input = nil
	}
	if s.audio != nil {
		if err := s.audio.Close(); err != nil {
			s.logger.Debug("audio close failed", "error", err)
		}
		s.audio = nil
	}
	if _, err := s.out.Write(compositor.Restore()); err != nil {
		s.logger.Warn("terminal restore failed", "error", err)
	}
}

func (s *Scheduler) write(b []byte) error {
	s.buf = b
	if len(b) == 0 {
		return nil
	}
	if _, err := s.out.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}
