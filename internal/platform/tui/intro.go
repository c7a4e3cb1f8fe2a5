package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const countdownStep = time.Second

// IntroModel shows the info and controls panels and counts down the start
// delay. Enter or space starts at once, a quit key cancels.
type IntroModel struct {
	info      PlaybackInfo
	remaining time.Duration
	keys      *KeyMapper
	started   bool
	aborted   bool
}

// NewIntroModel creates an intro screen that starts playback after delay.
func NewIntroModel(info PlaybackInfo, delay time.Duration) IntroModel {
	return IntroModel{
		info:      info,
		remaining: max(delay, 0),
		keys:      NewKeyMapper(),
	}
}

// Init starts the countdown.
func (m IntroModel) Init() tea.Cmd {
	if m.remaining <= 0 {
		return func() tea.Msg { return TickMsg(time.Time{}) }
	}
	return tickCmd(min(m.remaining, countdownStep))
}

// Update handles messages and updates the model state.
func (m IntroModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if _, quit := m.keys.MapKey(msg); quit {
			m.aborted = true
			return m, tea.Quit
		}
		if m.keys.IsConfirm(msg) {
			m.started = true
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		m.remaining -= min(m.remaining, countdownStep)
		if m.remaining <= 0 {
			m.started = true
			return m, tea.Quit
		}
		return m, tickCmd(min(m.remaining, countdownStep))
	}

	return m, nil
}

// Started reports whether playback should begin.
func (m IntroModel) Started() bool {
	return m.started
}

// Aborted reports whether the user cancelled before playback.
func (m IntroModel) Aborted() bool {
	return m.aborted
}

// Remaining returns the time left on the countdown.
func (m IntroModel) Remaining() time.Duration {
	return m.remaining
}

// View renders the panels and the countdown line.
func (m IntroModel) View() string {
	var b strings.Builder
	b.WriteString(Intro(m.info))
	b.WriteString("\n")
	if m.started || m.aborted {
		return b.String()
	}
	secs := int(math.Ceil(m.remaining.Seconds()))
	b.WriteString(helpStyle.Render(fmt.Sprintf("Starting in %ds  (enter to start now, q to cancel)", secs)))
	b.WriteString("\n")
	return b.String()
}

// ErrAborted is returned when the user cancels from the intro screen.
var ErrAborted = errors.New("tui: playback cancelled")

// RunIntro shows the intro screen until the countdown ends. It returns
// ErrAborted when the user cancels, or ctx's error when ctx ends first.
func RunIntro(ctx context.Context, info PlaybackInfo, delay time.Duration, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		NewIntroModel(info, delay),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("tui: intro view: %w", err)
	}
	if m, ok := final.(IntroModel); ok && m.Aborted() {
		return ErrAborted
	}
	return nil
}

// PrintIntro writes the panels without a countdown and waits out the delay.
// It is used when the terminal cannot take key presses.
func PrintIntro(ctx context.Context, info PlaybackInfo, delay time.Duration, out io.Writer) error {
	fmt.Fprintln(out, Intro(info))
	if delay <= 0 {
		return nil
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
