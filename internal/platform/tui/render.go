package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))
	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Field is one labelled line of a panel.
type Field struct {
	Label string
	Value string
}

// Panel renders a bordered panel with a title and aligned fields.
func Panel(title string, fields []Field) string {
	labelWidth := 0
	for _, f := range fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		label := f.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(f.Label))
		b.WriteString(labelStyle.Render(label))
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(f.Value))
	}
	return panelStyle.Render(b.String())
}

// PlaybackInfo describes a prepared playback for the info panel.
type PlaybackInfo struct {
	Source      string
	SourceBytes int64 // 0 when unknown
	Width       int   // source pixels
	Height      int
	FPS         float64
	Frames      int  // cached frames
	Capped      bool // the cache hit its ceiling
	Columns     int
	Rows        int
	Charset     string
	Audio       string
	Color       string
}

// InfoPanel renders the panel shown before playback starts.
func InfoPanel(info PlaybackInfo) string {
	source := filepath.Base(info.Source)
	if info.SourceBytes > 0 {
		source += " (" + humanize.Bytes(uint64(info.SourceBytes)) + ")"
	}

	frames := humanize.Comma(int64(info.Frames))
	if info.Capped {
		frames += " (capped)"
	}

	fields := []Field{{"Source", source}}
	if info.Width > 0 && info.Height > 0 {
		fields = append(fields, Field{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)})
	}
	fields = append(fields,
		Field{"Frame rate", fmt.Sprintf("%.2f fps", info.FPS)},
		Field{"Frames", frames},
		Field{"Duration", formatDuration(framesDuration(info.Frames, info.FPS))},
		Field{"Grid", fmt.Sprintf("%dx%d", info.Columns, info.Rows)},
		Field{"Charset", info.Charset},
		Field{"Color", info.Color},
		Field{"Audio", info.Audio},
	)
	return Panel("Now playing", fields)
}

// ControlsPanel renders the key bindings available during playback.
func ControlsPanel() string {
	lines := []struct{ keys, what string }{
		{"p / space", "pause or resume"},
		{"f / up", "faster"},
		{"s / down", "slower"},
		{"q / esc", "stop"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Controls"))
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(keyStyle.Render(fmt.Sprintf("%-10s", l.keys)))
		b.WriteString(" ")
		b.WriteString(helpStyle.Render(l.what))
	}
	return panelStyle.Render(b.String())
}

// Intro joins the info and controls panels side by side.
func Intro(info PlaybackInfo) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, InfoPanel(info), "  ", ControlsPanel())
}

// Summary describes a finished playback.
type Summary struct {
	Frames        int
	Total         int
	Elapsed       time.Duration
	Outcome       string
	AudioDisabled bool
}

// SummaryPanel renders the panel printed after playback ends.
func SummaryPanel(s Summary) string {
	shown := humanize.Comma(int64(s.Frames))
	if s.Total > 0 {
		shown += " of " + humanize.Comma(int64(s.Total))
	}

	fields := []Field{
		{"Outcome", s.Outcome},
		{"Frames shown", shown},
		{"Wall time", formatDuration(s.Elapsed)},
	}
	if s.Elapsed > 0 && s.Frames > 0 {
		fields = append(fields, Field{"Average", fmt.Sprintf("%.1f fps", float64(s.Frames)/s.Elapsed.Seconds())})
	}
	if s.AudioDisabled {
		fields = append(fields, Field{"Audio", "disabled after an error"})
	}
	return Panel("Playback finished", fields)
}

func framesDuration(frames int, fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / fps * float64(time.Second))
}

func formatDuration(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}

// centerText pads text on the left to center it in width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
