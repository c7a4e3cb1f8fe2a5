package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/cache"
	"github.com/vovakirdan/tui-cinema/internal/config"
	"github.com/vovakirdan/tui-cinema/internal/encoder"
	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/source"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

var (
	flagConvColumns    int
	flagConvResolution string
	flagConvWidth      int
	flagConvHeight     int
	flagConvCharset    string
	flagConvCodec      string
	flagConvLimit      int
	flagConvNoColor    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <video> [output]",
	Short: "Render a video into a text-art video file",
	Long: `Render every frame of a video as glyphs and write the result as a
new video. Frames are streamed from the source, so there is no frame
ceiling; frames that fail to render are written black to keep timing.

Resolution presets:
  480p    - 854x480
  720p    - 1280x720
  1080p   - 1920x1080
  custom  - use --width and --height

Examples:
  cinema convert movie.mp4
  cinema convert movie.mp4 ascii.avi --resolution 1080p --columns 240
  cinema convert movie.mp4 out.avi --resolution custom --width 640 --height 360
  cinema convert movie.mp4 preview.avi --limit 300`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runConvert,
}

func init() {
	convertCmd.Flags().IntVar(&flagConvColumns, "columns", 0, "Glyph grid width (default from config)")
	convertCmd.Flags().StringVar(&flagConvResolution, "resolution", "", "Resolution preset: 480p, 720p, 1080p, custom")
	convertCmd.Flags().IntVar(&flagConvWidth, "width", 0, "Pixel width for the custom preset")
	convertCmd.Flags().IntVar(&flagConvHeight, "height", 0, "Pixel height for the custom preset")
	convertCmd.Flags().StringVar(&flagConvCharset, "charset", "", "Charset name (default from config)")
	convertCmd.Flags().StringVar(&flagConvCodec, "codec", "", "ffmpeg codec (default from config)")
	convertCmd.Flags().IntVar(&flagConvLimit, "limit", 0, "Convert only the first N frames, at most 5000 (0 = all)")
	convertCmd.Flags().BoolVar(&flagConvNoColor, "no-color", false, "Draw glyphs in luma gray")
}

// convertSettings applies the flags over the config section.
func convertSettings(cc config.ConvertConfig) (config.ConvertConfig, error) {
	if flagConvColumns > 0 {
		cc.Columns = flagConvColumns
	}
	if flagConvResolution != "" {
		cc.Resolution = config.ResolutionPreset(flagConvResolution)
	}
	if flagConvWidth > 0 {
		cc.Width = flagConvWidth
	}
	if flagConvHeight > 0 {
		cc.Height = flagConvHeight
	}
	if flagConvCodec != "" {
		cc.Codec = flagConvCodec
	}

	if !cc.Resolution.Valid() {
		return cc, fmt.Errorf("%w: unknown resolution %q", config.ErrInvalid, cc.Resolution)
	}
	w, h := cc.Dimensions()
	if w <= 0 || h <= 0 {
		return cc, fmt.Errorf("%w: resolution %dx%d", config.ErrInvalid, w, h)
	}
	// Each column needs at least one pixel of output width.
	if cc.Columns <= 0 || cc.Columns > w {
		return cc, fmt.Errorf("%w: columns must be in [1, %d], got %d", config.ErrInvalid, w, cc.Columns)
	}
	return cc, nil
}

func runConvert(_ *cobra.Command, args []string) {
	path := args[0]
	a := loadApp()

	cc, err := convertSettings(a.cfg.Convert)
	if err != nil {
		fail("Error: %v", err)
	}
	output := cc.Output
	if len(args) > 1 {
		output = args[1]
	}
	charset := a.cfg.Playback.Charset
	if flagConvCharset != "" {
		charset = flagConvCharset
	}
	cs := lookupCharset(charset)
	width, height := cc.Dimensions()

	sel := a.detect(false, a.cfg.Playback.Colorize && !flagConvNoColor)

	ctx, stop := signalContext()
	defer stop()

	store := a.openStore()
	if store != nil {
		defer store.Close()
	}
	session := storage.Session{
		Kind:      storage.KindConvert,
		Source:    path,
		Charset:   cs.Name,
		Output:    output,
		StartedAt: time.Now(),
	}

	src, err := source.Open(path)
	if err != nil {
		fail("Error: %v", err)
	}
	defer src.Close()

	mapper, err := glyph.NewMapper(cc.Columns, cs, sel.Colorize(), a.logger)
	if err != nil {
		fail("Error: %v", err)
	}

	var res encoder.Result
	err = a.runWithProgress(ctx, sel, "Converting frames", func(ctx context.Context, report func(done, total int)) error {
		conv := encoder.NewConverter(mapper, width, height,
			encoder.WithCodec(cc.Codec),
			encoder.WithProgress(report),
			encoder.WithLogger(a.logger),
		)

		if flagConvLimit <= 0 {
			var cerr error
			res, cerr = conv.Convert(ctx, src, output)
			return cerr
		}

		limit := min(flagConvLimit, cache.MaxFrames)
		builder := cache.NewBuilder(mapper,
			cache.WithLimit(limit),
			cache.WithProgress(capped(report, limit)),
			cache.WithLogger(a.logger),
		)
		frames, berr := builder.Build(ctx, src)
		if berr != nil {
			return berr
		}
		var eerr error
		res, eerr = conv.Encode(ctx, frames, output)
		return eerr
	})

	session.Frames = res.Frames
	session.Columns, session.Rows = res.Columns, res.Rows
	session.Duration = time.Since(session.StartedAt)
	switch {
	case errors.Is(err, context.Canceled):
		session.Outcome = storage.OutcomeStopped
	case err != nil:
		session.Outcome = storage.OutcomeFailed
	default:
		session.Outcome = storage.OutcomeCompleted
	}
	a.record(store, session)

	if errors.Is(err, context.Canceled) {
		fmt.Println("Cancelled; partial output removed.")
		return
	}
	if err != nil {
		if store != nil {
			store.Close()
		}
		fail("Error converting video: %v", err)
	}

	size := "unknown"
	if st, statErr := os.Stat(res.Output); statErr == nil {
		size = humanize.Bytes(uint64(st.Size()))
	}
	rows := [][]string{
		{"Output", res.Output},
		{"Size", size},
		{"Frames", humanize.Comma(int64(res.Frames))},
		{"Blank frames", strconv.Itoa(res.Blank)},
		{"Grid", fmt.Sprintf("%dx%d", res.Columns, res.Rows)},
		{"Resolution", fmt.Sprintf("%dx%d", width, height)},
		{"Codec", cc.Codec},
		{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
	}
	fmt.Println(renderTable([]string{"Conversion", ""}, rows, nil))
}
