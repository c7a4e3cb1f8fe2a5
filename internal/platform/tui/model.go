package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/logging"
)

const maxBarWidth = 60

// ProgressMsg reports how many frames a job has processed.
type ProgressMsg struct {
	Done  int
	Total int // 0 when unknown
}

// DoneMsg ends a progress program.
type DoneMsg struct{}

// ProgressModel is the Bubble Tea model drawn while a cache is built or a
// video is converted.
type ProgressModel struct {
	title      string
	bar        progress.Model
	keys       *KeyMapper
	cancel     context.CancelFunc
	done       int
	total      int
	cancelling bool
	finished   bool
}

// NewProgressModel creates a progress view. cancel is called once when the
// user asks to quit.
func NewProgressModel(title string, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{
		title:  title,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		keys:   NewKeyMapper(),
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if _, quit := m.keys.MapKey(msg); quit && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = core.Clamp(msg.Width-24, 10, maxBarWidth)
		return m, nil

	case ProgressMsg:
		m.done, m.total = msg.Done, msg.Total
		return m, nil

	case DoneMsg:
		m.finished = true
		return m, tea.Quit
	}

	return m, nil
}

// Percent returns the completed fraction, 0 when the total is unknown.
func (m ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return core.ClampF(float64(m.done)/float64(m.total), 0, 1)
}

// Done returns the number of processed frames.
func (m ProgressModel) Done() int {
	return m.done
}

// Cancelling reports whether the user asked to quit.
func (m ProgressModel) Cancelling() bool {
	return m.cancelling
}

// View renders the progress bar.
func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("  ")
	b.WriteString(frameCount(m.done, m.total))
	b.WriteString("\n")

	switch {
	case m.finished:
	case m.cancelling:
		b.WriteString(helpStyle.Render("cancelling..."))
		b.WriteString("\n")
	default:
		b.WriteString(helpStyle.Render("q to cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

func frameCount(done, total int) string {
	if total > 0 {
		return fmt.Sprintf("%s/%s frames", humanize.Comma(int64(done)), humanize.Comma(int64(total)))
	}
	return humanize.Comma(int64(done)) + " frames"
}

// Work is a long-running job that reports progress.
type Work func(ctx context.Context, report func(done, total int)) error

// RunProgress runs work while a progress bar is drawn on out. Pressing q or
// ctrl+c cancels the context passed to work. The returned error is work's.
func RunProgress(ctx context.Context, title string, in io.Reader, out io.Writer, work Work) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		NewProgressModel(title, cancel),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	errc := make(chan error, 1)
	go func() {
		errc <- work(ctx, func(done, total int) {
			p.Send(ProgressMsg{Done: done, Total: total})
		})
		p.Send(DoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("tui: progress view: %w", err)
	}
	return <-errc
}

// LogProgress returns a reporter that logs every step frames. It stands in
// for the progress bar when stdout is not a terminal.
func LogProgress(logger *log.Logger, what string, step int) func(done, total int) {
	logger = logging.OrDefault(logger)
	if step <= 0 {
		step = 250
	}
	return func(done, total int) {
		if done%step != 0 && done != total {
			return
		}
		if total > 0 {
			logger.Info(what, "done", done, "total", total)
		} else {
			logger.Info(what, "done", done)
		}
	}
}
