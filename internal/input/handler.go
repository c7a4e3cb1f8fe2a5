package input

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/logging"
)

const (
	// escapeTimeout is how long a trailing ESC waits for the rest of an
	// escape sequence before it counts as the Escape key.
	escapeTimeout = 50 * time.Millisecond
	// maxPending bounds an unterminated sequence carried between reads.
	maxPending = 16
)

// Target receives decoded actions. *playback.State implements it.
type Target interface {
	Apply(a core.Action)
}

// Handler reads keys from a reader on its own goroutine and applies them to a
// Target until stopped. It never touches playback directly.
type Handler struct {
	in     io.Reader
	target Target
	mapper *KeyMapper
	logger *log.Logger
	fd     int
	raw    bool

	mu       sync.Mutex
	started  bool
	stopped  atomic.Bool
	oldState *term.State
	done     chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithRawTerminal puts the terminal behind fd into raw mode while the
// handler runs, so single key presses arrive unbuffered.
func WithRawTerminal(fd int) Option {
	return func(h *Handler) {
		h.fd = fd
		h.raw = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a handler reading from in.
func NewHandler(in io.Reader, target Target, opts ...Option) *Handler {
	h := &Handler{
		in:     in,
		target: target,
		mapper: NewKeyMapper(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = logging.OrDefault(h.logger)
	return h
}

// Start enables raw mode if configured and begins reading.
func (h *Handler) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return errors.New("input: handler already started")
	}

	if h.raw {
		st, err := term.MakeRaw(h.fd)
		if err != nil {
			return err
		}
		h.oldState = st
	}

	h.started = true
	go h.loop()
	return nil
}

// Stop restores the terminal and discards any further input. A read already
// blocked on the underlying reader is abandoned rather than interrupted.
func (h *Handler) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.started || h.stopped.Swap(true) {
		return nil
	}
	if h.oldState != nil {
		err := term.Restore(h.fd, h.oldState)
		h.oldState = nil
		return err
	}
	return nil
}

// Done is closed when the read loop exits.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

type chunk struct {
	data []byte
	err  error
}

// read feeds the loop from the underlying reader. It exits after the first
// error or once the loop is gone.
func (h *Handler) read(ch chan<- chunk) {
	for {
		buf := make([]byte, 64)
		n, err := h.in.Read(buf)
		select {
		case ch <- chunk{data: buf[:n], err: err}:
		case <-h.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (h *Handler) loop() {
	defer close(h.done)

	chunks := make(chan chunk)
	go h.read(chunks)

	// pending holds an escape sequence split across reads. A lone ESC only
	// becomes the Escape key after escapeTimeout passes with no follow-up.
	var pending []byte
	var timeout <-chan time.Time
	for {
		select {
		case c := <-chunks:
			if h.stopped.Load() {
				return
			}
			keys, rest := decode(append(pending, c.data...))
			pending = append([]byte(nil), rest...)
			if len(pending) > maxPending {
				pending = nil
			}
			h.apply(keys)

			timeout = nil
			if len(pending) > 0 {
				timeout = time.After(escapeTimeout)
			}
			if c.err != nil {
				h.apply(flushPending(pending))
				if !errors.Is(c.err, io.EOF) {
					h.logger.Debug("input read ended", "error", c.err)
				}
				return
			}
		case <-timeout:
			if h.stopped.Load() {
				return
			}
			h.apply(flushPending(pending))
			pending = nil
			timeout = nil
		}
	}
}

func (h *Handler) apply(keys []string) {
	for _, key := range keys {
		if a := h.mapper.MapKey(key); a != core.ActionNone {
			h.logger.Debug("key", "key", key, "action", a)
			h.target.Apply(a)
		}
	}
}
