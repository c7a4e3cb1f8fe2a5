package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/audio"
	"github.com/vovakirdan/tui-cinema/internal/cache"
	"github.com/vovakirdan/tui-cinema/internal/compositor"
	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/input"
	"github.com/vovakirdan/tui-cinema/internal/platform/tui"
	"github.com/vovakirdan/tui-cinema/internal/playback"
	"github.com/vovakirdan/tui-cinema/internal/probe"
	"github.com/vovakirdan/tui-cinema/internal/source"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

var (
	flagPlayWidth   int
	flagPlayCharset string
	flagPlayNoColor bool
	flagPlayNoAudio bool
	flagPlayFrames  int
	flagPlayDelay   time.Duration
	flagPlaySpeed   float64
	flagPlayFPS     float64
)

var playCmd = &cobra.Command{
	Use:   "play <video>",
	Short: "Play a video in the terminal",
	Long: `Decode a video, render up to 5000 frames into glyph grids and play
them in the terminal with the soundtrack.

Controls:
  P/Space    - Pause or resume
  F/Up       - Faster (x1.2, up to 3.0x)
  S/Down     - Slower (/1.2, down to 0.3x)
  Q/Esc      - Stop

Width:
  By default the width follows the config preset; "auto" fits 85% of
  the terminal (at least 60 columns).

Examples:
  cinema play movie.mp4
  cinema play movie.mp4 --charset block
  cinema play movie.mp4 --width 160 --no-audio
  cinema play movie.mp4 --speed 1.5 --delay 0`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagPlayWidth, "width", 0, "Output width in characters (0 = config preset)")
	playCmd.Flags().StringVar(&flagPlayCharset, "charset", "", "Charset name (default from config)")
	playCmd.Flags().BoolVar(&flagPlayNoColor, "no-color", false, "Draw in luma gray instead of source colors")
	playCmd.Flags().BoolVar(&flagPlayNoAudio, "no-audio", false, "Do not play the soundtrack")
	playCmd.Flags().IntVar(&flagPlayFrames, "max-frames", 0, "Frame cache ceiling, at most 5000 (0 = config)")
	playCmd.Flags().DurationVar(&flagPlayDelay, "delay", -1, "Pause before the first frame (default from config)")
	playCmd.Flags().Float64Var(&flagPlaySpeed, "speed", 1, "Initial speed multiplier (0.1 to 5.0)")
	playCmd.Flags().Float64Var(&flagPlayFPS, "fps", 0, "Override the source frame rate")
}

// retimed overrides the frame rate of a cache.
type retimed struct {
	*cache.Cache
	fps float64
}

func (r retimed) FPS() float64 { return r.fps }

// runtimeConfig merges the config file, flags and probe results.
func (a app) runtimeConfig(cmd *cobra.Command, sel probe.Selection) core.RuntimeConfig {
	rc := core.RuntimeConfig{
		Width:    a.cfg.Playback.PlaybackWidth(sel.Cols),
		Charset:  a.cfg.Playback.Charset,
		Colorize: sel.Colorize(),
		Audio:    sel.Audio == probe.AudioBeep,
		FPS:      flagPlayFPS,
	}
	if cmd.Flags().Changed("width") && flagPlayWidth > 0 {
		rc.Width = flagPlayWidth
	}
	if flagPlayCharset != "" {
		rc.Charset = flagPlayCharset
	}
	return rc
}

func runPlay(cmd *cobra.Command, args []string) {
	path := args[0]
	a := loadApp()

	sel := a.detect(a.cfg.Playback.Audio && !flagPlayNoAudio, a.cfg.Playback.Colorize && !flagPlayNoColor)
	rc := a.runtimeConfig(cmd, sel)
	cs := lookupCharset(rc.Charset)

	maxFrames := a.cfg.Playback.MaxFrames
	if flagPlayFrames > 0 {
		maxFrames = min(flagPlayFrames, cache.MaxFrames)
	}
	delay := a.cfg.Playback.StartDelay
	if flagPlayDelay >= 0 {
		delay = flagPlayDelay
	}

	ctx, stop := signalContext()
	defer stop()

	store := a.openStore()
	if store != nil {
		defer store.Close()
	}
	started := time.Now()
	session := storage.Session{
		Kind:      storage.KindPlay,
		Source:    path,
		Charset:   cs.Name,
		StartedAt: started,
	}
	failed := func(format string, args ...any) {
		session.Outcome = storage.OutcomeFailed
		session.Duration = time.Since(started)
		a.record(store, session)
		if store != nil {
			store.Close()
		}
		fail(format, args...)
	}

	src, err := source.Open(path)
	if err != nil {
		failed("Error: %v", err)
	}
	defer src.Close()
	info := src.Info()

	mapper, err := glyph.NewMapper(rc.Width, cs, rc.Colorize, a.logger)
	if err != nil {
		failed("Error: %v", err)
	}

	// Render the frame cache
	var frames *cache.Cache
	err = a.runWithProgress(ctx, sel, "Rendering frames", func(ctx context.Context, report func(done, total int)) error {
		builder := cache.NewBuilder(mapper,
			cache.WithLimit(maxFrames),
			cache.WithProgress(capped(report, maxFrames)),
			cache.WithLogger(a.logger),
		)
		var berr error
		frames, berr = builder.Build(ctx, src)
		return berr
	})
	if errors.Is(err, context.Canceled) {
		fmt.Println("Cancelled.")
		return
	}
	if err != nil {
		failed("Error rendering frames: %v", err)
	}
	// Decoding is finished; release ffmpeg before playback
	src.Close()

	session.Columns, session.Rows = frames.Width(), frames.Height()

	var movie playback.Frames = frames
	if rc.FPS > 0 {
		movie = retimed{Cache: frames, fps: rc.FPS}
	}

	if sel.Rows > 0 && frames.Height()+2 > sel.Rows {
		a.logger.Warn("video is taller than the terminal", "rows", frames.Height(), "terminal", sel.Rows)
	}

	audioLabel := "off"
	if rc.Audio {
		audioLabel = "beep"
	}
	panel := tui.PlaybackInfo{
		Source:  path,
		Width:   info.Width,
		Height:  info.Height,
		FPS:     movie.FPS(),
		Frames:  frames.Len(),
		Capped:  frames.Capped(),
		Columns: frames.Width(),
		Rows:    frames.Height(),
		Charset: cs.Name,
		Audio:   audioLabel,
		Color:   string(sel.Color),
	}
	if st, statErr := os.Stat(path); statErr == nil {
		panel.SourceBytes = st.Size()
	}

	if sel.Input == probe.InputRaw && sel.StdoutTTY {
		err = tui.RunIntro(ctx, panel, delay, os.Stdin, os.Stdout)
	} else {
		err = tui.PrintIntro(ctx, panel, delay, os.Stdout)
	}
	if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
		fmt.Println("Cancelled.")
		return
	}
	if err != nil {
		failed("Error: %v", err)
	}

	state := playback.NewState()
	state.SetSpeed(flagPlaySpeed)

	opts := []playback.Option{
		playback.WithPollInterval(a.cfg.Playback.PausePoll),
		playback.WithLogger(a.logger),
	}
	if rc.Audio {
		player, audioErr := audio.NewPlayer(ctx, audio.Config{FFmpeg: sel.FFmpeg, Path: path, FPS: movie.FPS()}, a.logger)
		if audioErr != nil {
			a.logger.Warn("playing without sound", "error", audioErr)
		} else {
			opts = append(opts, playback.WithAudio(player))
		}
	}
	if sel.Input == probe.InputRaw {
		keys := input.NewHandler(os.Stdin, state,
			input.WithRawTerminal(int(os.Stdin.Fd())),
			input.WithLogger(a.logger),
		)
		opts = append(opts, playback.WithInput(keys))
	}

	comp := compositor.New(frames.Width(), frames.Height())
	sched := playback.NewScheduler(movie, state, comp, os.Stdout, opts...)
	// Stderr shares the terminal with the picture.
	a.logs.Hold()
	stats, runErr := sched.Run(ctx)
	a.logs.Release()

	session.Frames = stats.Frames
	session.Duration = stats.Elapsed
	switch {
	case runErr != nil:
		session.Outcome = storage.OutcomeFailed
	case stats.Frames < frames.Len():
		session.Outcome = storage.OutcomeStopped
	default:
		session.Outcome = storage.OutcomeCompleted
	}
	a.record(store, session)

	fmt.Println(tui.SummaryPanel(tui.Summary{
		Frames:        stats.Frames,
		Total:         frames.Len(),
		Elapsed:       stats.Elapsed,
		Outcome:       session.Outcome,
		AudioDisabled: stats.AudioDisabled,
	}))

	if runErr != nil {
		if store != nil {
			store.Close()
		}
		fail("Error during playback: %v", runErr)
	}
}
