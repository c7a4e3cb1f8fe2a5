package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/cache"
	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/platform/tui"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

var (
	flagSSHAddr      string
	flagHostKey      string
	flagIdleTimeout  time.Duration
	flagServeWidth   int
	flagServeCharset string
	flagServeGray    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <video>",
	Short: "Start an SSH server that plays a video",
	Long: `Render a video once, then play it to every SSH client that connects
with a terminal. Each connection gets its own playback with the usual
controls; the rendered frames are shared.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.cinema/host_key

Examples:
  cinema serve movie.mp4                      # Listen on :23235
  cinema serve movie.mp4 --ssh :2222 --width 100
  cinema serve movie.mp4 --host-key ./my_host_key

Users can connect with:
  ssh -t localhost -p 23235`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
	serveCmd.Flags().IntVar(&flagServeWidth, "width", 80, "Output width in characters")
	serveCmd.Flags().StringVar(&flagServeCharset, "charset", "", "Charset name (default from config)")
	serveCmd.Flags().BoolVar(&flagServeGray, "no-color", false, "Draw in luma gray instead of source colors")
}

func runServe(_ *cobra.Command, args []string) {
	path := args[0]
	a := loadApp()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = a.cfg.Server.Address
	cfg.HostKeyPath = a.cfg.Server.HostKey
	cfg.IdleTimeout = a.cfg.Server.IdleTimeout
	cfg.PollInterval = a.cfg.Playback.PausePoll
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = flagIdleTimeout
	}

	charset := a.cfg.Playback.Charset
	if flagServeCharset != "" {
		charset = flagServeCharset
	}
	cs := lookupCharset(charset)
	cfg.Source, cfg.Charset = path, cs.Name

	// Clients pick their own terminals, so only the local probe decides the
	// progress display; color is the server's choice
	sel := a.detect(false, a.cfg.Playback.Colorize && !flagServeGray)

	ctx, stop := signalContext()
	defer stop()

	src, err := source.Open(path)
	if err != nil {
		fail("Error: %v", err)
	}
	defer src.Close()

	mapper, err := glyph.NewMapper(flagServeWidth, cs, sel.Colorize(), a.logger)
	if err != nil {
		fail("Error: %v", err)
	}

	limit := a.cfg.Playback.MaxFrames
	var frames *cache.Cache
	err = a.runWithProgress(ctx, sel, "Rendering frames", func(ctx context.Context, report func(done, total int)) error {
		builder := cache.NewBuilder(mapper,
			cache.WithLimit(limit),
			cache.WithProgress(capped(report, limit)),
			cache.WithLogger(a.logger),
		)
		var berr error
		frames, berr = builder.Build(ctx, src)
		return berr
	})
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		fail("Error rendering frames: %v", err)
	}
	src.Close()

	store := a.openStore()
	if store != nil {
		defer store.Close()
	}

	server, err := tui.NewSSHServer(cfg, frames, store, a.logger)
	if err != nil {
		fail("Error creating server: %v", err)
	}

	fmt.Printf("Serving %s (%d frames, %dx%d) on %s\n", path, frames.Len(), frames.Width(), frames.Height(), cfg.Address)
	fmt.Println("Connect with: ssh -t localhost -p <port>")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		if store != nil {
			store.Close()
		}
		fail("Server error: %v", err)
	}
}
