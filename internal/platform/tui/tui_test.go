package tui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/logging"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestKeyMapper(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		name     string
		msg      tea.KeyMsg
		expected core.Action
		quit     bool
	}{
		{"q", runeKey('q'), core.ActionQuit, true},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{"esc", tea.KeyMsg{Type: tea.KeyEscape}, core.ActionQuit, true},
		{"p", runeKey('p'), core.ActionTogglePause, false},
		{"space", tea.KeyMsg{Type: tea.KeySpace}, core.ActionTogglePause, false},
		{"f", runeKey('f'), core.ActionSpeedUp, false},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, core.ActionSpeedUp, false},
		{"s", runeKey('s'), core.ActionSpeedDown, false},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, core.ActionSpeedDown, false},
		{"x", runeKey('x'), core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, quit := km.MapKey(tt.msg)
			if action != tt.expected || quit != tt.quit {
				t.Errorf("MapKey() = %v, %v, expected %v, %v", action, quit, tt.expected, tt.quit)
			}
		})
	}
}

func TestProgressModel(t *testing.T) {
	cancelled := 0
	m := NewProgressModel("Rendering", func() { cancelled++ })

	next, _ := m.Update(ProgressMsg{Done: 25, Total: 100})
	m = next.(ProgressModel)
	if m.Percent() != 0.25 {
		t.Errorf("Percent() = %v, expected 0.25", m.Percent())
	}
	if !strings.Contains(m.View(), "25/100 frames") {
		t.Errorf("View() = %q, expected the frame count", m.View())
	}

	next, _ = m.Update(runeKey('q'))
	m = next.(ProgressModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(ProgressModel)
	if cancelled != 1 {
		t.Errorf("cancel called %d times, expected 1", cancelled)
	}
	if !m.Cancelling() {
		t.Error("Cancelling() should be true after q")
	}

	next, cmd := m.Update(DoneMsg{})
	m = next.(ProgressModel)
	if !isQuit(cmd) {
		t.Error("DoneMsg should quit the program")
	}
}

func TestProgressModelUnknownTotal(t *testing.T) {
	m := NewProgressModel("Rendering", nil)
	next, _ := m.Update(ProgressMsg{Done: 1234})
	m = next.(ProgressModel)

	if m.Percent() != 0 {
		t.Errorf("Percent() = %v, expected 0", m.Percent())
	}
	if !strings.Contains(m.View(), "1,234 frames") {
		t.Errorf("View() = %q, expected the bare frame count", m.View())
	}

	// A quit key without a cancel func must not panic
	m.Update(runeKey('q'))
}

func TestLogProgress(t *testing.T) {
	var buf bytes.Buffer
	report := LogProgress(logging.New(&buf, "", "info"), "rendering", 2)
	for i := 1; i <= 5; i++ {
		report(i, 5)
	}

	// Logged at 2, 4 and the final 5
	if got := strings.Count(buf.String(), "rendering"); got != 3 {
		t.Errorf("logged %d lines, expected 3:\n%s", got, buf.String())
	}
}

func testInfo() PlaybackInfo {
	return PlaybackInfo{
		Source:      "/videos/clip.mp4",
		SourceBytes: 2_500_000,
		Width:       1920,
		Height:      1080,
		FPS:         25,
		Frames:      5000,
		Capped:      true,
		Columns:     120,
		Rows:        33,
		Charset:     "detailed",
		Audio:       "beep",
		Color:       "truecolor",
	}
}

func TestInfoPanel(t *testing.T) {
	out := InfoPanel(testInfo())

	for _, want := range []string{"clip.mp4", "2.5 MB", "1920x1080", "25.00 fps", "5,000 (capped)", "3m20s", "120x33", "detailed"} {
		if !strings.Contains(out, want) {
			t.Errorf("InfoPanel() missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryPanel(t *testing.T) {
	out := SummaryPanel(Summary{Frames: 250, Total: 500, Elapsed: 10 * time.Second, Outcome: "stopped", AudioDisabled: true})

	for _, want := range []string{"stopped", "250 of 500", "10s", "25.0 fps", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("SummaryPanel() missing %q:\n%s", want, out)
		}
	}
}

func TestIntroModelCountdown(t *testing.T) {
	m := NewIntroModel(testInfo(), 2500*time.Millisecond)
	if m.Init() == nil {
		t.Fatal("Init() should schedule a tick")
	}
	if !strings.Contains(m.View(), "Starting in 3s") {
		t.Errorf("View() = %q, expected a 3s countdown", m.View())
	}

	next, cmd := m.Update(TickMsg{})
	m = next.(IntroModel)
	if m.Remaining() != 1500*time.Millisecond || isQuit(cmd) {
		t.Errorf("Remaining() = %v, expected 1.5s and no quit", m.Remaining())
	}

	next, _ = m.Update(TickMsg{})
	m = next.(IntroModel)
	next, cmd = m.Update(TickMsg{})
	m = next.(IntroModel)
	if !m.Started() || !isQuit(cmd) {
		t.Errorf("Started() = %v after the countdown, expected true", m.Started())
	}
}

func TestIntroModelKeys(t *testing.T) {
	m := NewIntroModel(testInfo(), time.Minute)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if im := next.(IntroModel); !im.Started() || !isQuit(cmd) {
		t.Error("enter should start playback")
	}

	next, cmd = m.Update(runeKey('q'))
	if im := next.(IntroModel); !im.Aborted() || im.Started() || !isQuit(cmd) {
		t.Error("q should abort")
	}

	// Other keys are ignored
	next, cmd = m.Update(runeKey('f'))
	if im := next.(IntroModel); im.Started() || im.Aborted() || cmd != nil {
		t.Error("f should be ignored on the intro screen")
	}
}

func TestPrintIntro(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintIntro(context.Background(), testInfo(), 0, &buf); err != nil {
		t.Fatalf("PrintIntro() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Controls") {
		t.Error("PrintIntro() should print the controls panel")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := PrintIntro(ctx, testInfo(), time.Hour, io.Discard); !errors.Is(err, context.Canceled) {
		t.Errorf("PrintIntro() error = %v, expected context.Canceled", err)
	}
}

type fakeLister struct {
	sessions []storage.Session
	kinds    []string
}

func (f *fakeLister) RecentSessions(kind string, limit int) ([]storage.Session, error) {
	f.kinds = append(f.kinds, kind)
	var out []storage.Session
	for _, s := range f.sessions {
		if kind == "" || s.Kind == kind {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestHistoryModelTabs(t *testing.T) {
	lister := &fakeLister{sessions: []storage.Session{
		{Kind: storage.KindPlay, Source: "/a/one.mp4", Charset: "simple", Columns: 80, Rows: 22, Frames: 1200, Outcome: storage.OutcomeCompleted},
		{Kind: storage.KindConvert, Source: "two.mp4", Charset: "block", Frames: 10, Outcome: storage.OutcomeFailed},
	}}

	m := NewHistoryModel(lister, "", 120, 40)
	if len(m.Sessions()) != 2 {
		t.Fatalf("Sessions() = %d, expected 2", len(m.Sessions()))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(HistoryModel)
	if m.Kind() != storage.KindPlay || len(m.Sessions()) != 1 {
		t.Errorf("after tab Kind() = %q with %d sessions, expected play with 1", m.Kind(), len(m.Sessions()))
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(HistoryModel)
	if m.Kind() != storage.KindServe || len(m.Sessions()) != 0 {
		t.Errorf("after two shift+tab Kind() = %q, expected serve with no sessions", m.Kind())
	}
	if !strings.Contains(m.View(), "No sessions recorded yet") {
		t.Error("View() should show the empty message")
	}

	_, cmd := m.Update(runeKey('q'))
	if !isQuit(cmd) {
		t.Error("q should quit the history browser")
	}
}

func TestHistoryModelStartKind(t *testing.T) {
	lister := &fakeLister{}
	m := NewHistoryModel(lister, storage.KindConvert, 60, 20)
	if m.Kind() != storage.KindConvert {
		t.Errorf("Kind() = %q, expected convert", m.Kind())
	}
	if len(lister.kinds) != 1 || lister.kinds[0] != storage.KindConvert {
		t.Errorf("queried kinds = %v, expected [convert]", lister.kinds)
	}
}

func TestSessionRow(t *testing.T) {
	row := SessionRow(storage.Session{
		Kind: storage.KindPlay, Source: "/x/y/movie.mkv", Charset: "art",
		Columns: 100, Rows: 30, Frames: 4321, Outcome: storage.OutcomeStopped,
		StartedAt: time.Date(2026, 2, 3, 4, 5, 0, 0, time.Local),
	})
	expected := []string{"Feb 03 04:05", "play", "movie.mkv", "art", "100x30", "4,321", "stopped"}
	for i := range expected {
		if row[i] != expected[i] {
			t.Errorf("SessionRow()[%d] = %q, expected %q", i, row[i], expected[i])
		}
	}

	if row := SessionRow(storage.Session{}); row[4] != "-" {
		t.Errorf("SessionRow() grid = %q for an unknown size, expected -", row[4])
	}
}

type fakeMovie struct {
	grids []core.Grid
	fps   float64
}

func (m *fakeMovie) Len() int              { return len(m.grids) }
func (m *fakeMovie) Frame(i int) core.Grid { return m.grids[i] }
func (m *fakeMovie) FPS() float64          { return m.fps }
func (m *fakeMovie) Width() int            { return 2 }
func (m *fakeMovie) Height() int           { return 1 }

func newMovie(n int, fps float64) *fakeMovie {
	m := &fakeMovie{fps: fps}
	for i := range n {
		g := core.NewGrid(2, 1)
		g.Fill(core.Cell{Glyph: rune('a' + i), Color: core.Gray(200)})
		m.grids = append(m.grids, g)
	}
	return m
}

type sessionRW struct {
	io.Reader
	io.Writer
}

func TestSSHServerPlay(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	cfg := DefaultSSHServerConfig()
	cfg.Source, cfg.Charset = "clip.mp4", "minimal"
	srv := newSSHServer(cfg, newMovie(3, 500), store, logging.Discard())

	var out bytes.Buffer
	stats, err := srv.Play(context.Background(), sessionRW{strings.NewReader(""), &out}, "alice")
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if stats.Frames != 3 {
		t.Errorf("Play() frames = %d, expected 3", stats.Frames)
	}
	for _, glyph := range []string{"aa", "bb", "cc"} {
		if !strings.Contains(out.String(), glyph) {
			t.Errorf("output missing frame %q", glyph)
		}
	}
	if !strings.HasSuffix(out.String(), "\x1b[?25h\x1b[0m\x1b[H\x1b[J") {
		t.Error("output should end with the terminal restore sequence")
	}

	sessions, err := store.RecentSessions(storage.KindServe, 10)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("RecentSessions() = %v, %v; expected one serve session", sessions, err)
	}
	if s := sessions[0]; s.User != "alice" || s.Outcome != storage.OutcomeCompleted || s.Frames != 3 {
		t.Errorf("recorded session = %+v, expected alice/completed/3 frames", s)
	}
}

func TestSSHServerPlayQuitKey(t *testing.T) {
	srv := newSSHServer(DefaultSSHServerConfig(), newMovie(3, 2), nil, logging.Discard())

	stats, err := srv.Play(context.Background(), sessionRW{strings.NewReader("q"), io.Discard}, "bob")
	if err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	if stats.Frames >= 3 || stats.Status != core.StatusStopped {
		t.Errorf("Play() = %d frames, %v, expected an early stop", stats.Frames, stats.Status)
	}
}

func TestSSHServerShutdownStopsPlayback(t *testing.T) {
	srv := newSSHServer(DefaultSSHServerConfig(), newMovie(3, 1), nil, logging.Discard())
	srv.cancel()

	done := make(chan struct{})
	go func() {
		srv.Play(context.Background(), sessionRW{strings.NewReader(""), io.Discard}, "carol")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Play() kept running after shutdown")
	}
}

func TestSSHServerFits(t *testing.T) {
	srv := newSSHServer(DefaultSSHServerConfig(), newMovie(1, 30), nil, logging.Discard())

	tests := []struct {
		cols, rows int
		ok         bool
	}{
		{80, 24, true},
		{2, 3, true},
		{1, 24, false},
		{80, 2, false},
	}
	for _, tt := range tests {
		if err := srv.fits(tt.cols, tt.rows); (err == nil) != tt.ok {
			t.Errorf("fits(%d, %d) = %v, expected ok=%v", tt.cols, tt.rows, err, tt.ok)
		}
	}
}
