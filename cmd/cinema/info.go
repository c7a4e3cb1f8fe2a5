package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/glyph"
	"github.com/vovakirdan/tui-cinema/internal/source"
)

var infoCmd = &cobra.Command{
	Use:   "info [video]",
	Short: "Show system capabilities and video details",
	Long: `Report which optional backends this terminal supports (ffmpeg,
audio, progress display, keyboard controls, color) and, when a video is
given, its metadata and the glyph grid it would be rendered to.

Examples:
  cinema info
  cinema info movie.mp4`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInfo,
}

func runInfo(_ *cobra.Command, args []string) {
	a := loadApp()
	sel := a.detect(a.cfg.Playback.Audio, a.cfg.Playback.Colorize)

	caps := sel.Report()
	rows := make([][]string, 0, len(caps))
	for _, c := range caps {
		rows = append(rows, []string{c.Name, c.Value, c.Detail})
	}
	fmt.Println(renderTable([]string{"Capability", "Selected", "Detail"}, rows, nil))
	for _, note := range sel.Notes {
		fmt.Println("  note:", note)
	}

	if len(args) == 0 {
		return
	}

	src, err := source.Open(args[0])
	if err != nil {
		fail("Error: %v", err)
	}
	defer src.Close()
	info := src.Info()

	size := "unknown"
	if st, statErr := os.Stat(info.Path); statErr == nil {
		size = humanize.Bytes(uint64(st.Size()))
	}
	width := a.cfg.Playback.PlaybackWidth(sel.Cols)
	duration := "unknown"
	if info.Frames > 0 {
		duration = (time.Duration(float64(info.Frames) / info.FPS * float64(time.Second))).Round(time.Second).String()
	}

	fmt.Println()
	fmt.Println(renderTable([]string{"Video", ""}, [][]string{
		{"File", filepath.Base(info.Path)},
		{"Size", size},
		{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"Frame rate", fmt.Sprintf("%.2f fps", info.FPS)},
		{"Frames", humanize.Comma(int64(info.Frames))},
		{"Duration", duration},
		{"Grid", fmt.Sprintf("%dx%d", width, glyph.GridHeight(width, info.Width, info.Height))},
	}, nil))
}
