package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"github.com/vovakirdan/tui-cinema/internal/compositor"
	"github.com/vovakirdan/tui-cinema/internal/input"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/playback"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

// Movie is a prepared frame cache that sessions play. It is read-only and
// shared by every session.
type Movie interface {
	playback.Frames
	Width() int
	Height() int
}

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.cinema/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// PollInterval is the pause polling interval of each session.
	PollInterval time.Duration

	// Source and Charset label recorded sessions.
	Source  string
	Charset string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:      ":23235",
		IdleTimeout:  30 * time.Minute,
		PollInterval: playback.DefaultPollInterval,
	}
}

// SSHServer plays one cached video to every SSH session that asks for a PTY.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	movie  Movie
	store  *storage.Store
	logger *log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	sessions sync.WaitGroup
}

// NewSSHServer creates a new SSH server for movie. store may be nil, in
// which case sessions are not recorded.
func NewSSHServer(cfg SSHServerConfig, movie Movie, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	srv := newSSHServer(cfg, movie, store, logger)

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".cinema", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			srv.playMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		srv.cancel()
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

func newSSHServer(cfg SSHServerConfig, movie Movie, store *storage.Store, logger *log.Logger) *SSHServer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = playback.DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SSHServer{
		config: cfg,
		movie:  movie,
		store:  store,
		logger: logging.OrDefault(logger),
		ctx:    ctx,
		cancel: cancel,
	}
}

// playMiddleware runs one playback per SSH session.
func (s *SSHServer) playMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		pty, winCh, ok := sshSession.Pty()
		if !ok {
			s.logger.Warn("no PTY requested", "user", sshSession.User())
			wish.Fatalln(sshSession, "cinema: a terminal is required, connect with ssh -t")
			return
		}

		if err := s.fits(pty.Window.Width, pty.Window.Height); err != nil {
			wish.Fatalln(sshSession, "cinema:", err)
			return
		}

		ctx, cancel := context.WithCancel(sshSession.Context())
		defer cancel()

		// Resizes are not followed; drain them so the request handler never blocks
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-winCh:
					if !ok {
						return
					}
				}
			}
		}()

		stats, err := s.Play(ctx, sshSession, sshSession.User())
		if err != nil {
			s.logger.Error("session playback failed", "user", sshSession.User(), "error", err)
		} else {
			s.logger.Info("session playback ended", "user", sshSession.User(), "frames", stats.Frames, "status", stats.Status)
		}

		next(sshSession)
	}
}

// fits checks that a terminal of cols x rows can show the movie and the
// pause indicator below it.
func (s *SSHServer) fits(cols, rows int) error {
	needW, needH := s.movie.Width(), s.movie.Height()+2
	if cols < needW || rows < needH {
		return fmt.Errorf("terminal is %dx%d, the video needs at least %dx%d", cols, rows, needW, needH)
	}
	return nil
}

// Play runs one playback over rw: keys are read from it and frames are
// written to it. It returns when the video ends, the user quits, ctx ends
// or the server shuts down.
func (s *SSHServer) Play(ctx context.Context, rw io.ReadWriter, user string) (playback.Stats, error) {
	s.sessions.Add(1)
	defer s.sessions.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopOnShutdown := context.AfterFunc(s.ctx, cancel)
	defer stopOnShutdown()

	logger := s.logger.With("user", user)
	state := playback.NewState()
	comp := compositor.New(s.movie.Width(), s.movie.Height())
	keys := input.NewHandler(rw, state, input.WithLogger(logger))

	sched := playback.NewScheduler(s.movie, state, comp, rw,
		playback.WithInput(keys),
		playback.WithPollInterval(s.config.PollInterval),
		playback.WithLogger(logger),
	)

	started := time.Now()
	stats, err := sched.Run(ctx)
	s.record(user, started, stats, err)
	return stats, err
}

// record saves a served session to the history.
func (s *SSHServer) record(user string, started time.Time, stats playback.Stats, runErr error) {
	if s.store == nil {
		return
	}

	outcome := storage.OutcomeCompleted
	switch {
	case runErr != nil:
		outcome = storage.OutcomeFailed
	case stats.Frames < s.movie.Len():
		outcome = storage.OutcomeStopped
	}

	_, err := s.store.RecordSession(storage.Session{
		Kind:      storage.KindServe,
		Source:    s.config.Source,
		Charset:   s.config.Charset,
		Columns:   s.movie.Width(),
		Rows:      s.movie.Height(),
		Frames:    stats.Frames,
		Duration:  stats.Elapsed,
		Outcome:   outcome,
		User:      user,
		StartedAt: started,
	})
	if err != nil {
		s.logger.Warn("could not record session", "user", user, "error", err)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done or the
// listener fails, then shuts down.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "frames", s.movie.Len())

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err, ok := <-errc:
		if ok {
			s.cancel()
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	}
}

// Shutdown stops every running playback and then the server.
func (s *SSHServer) Shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still running at shutdown")
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
