package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/platform/tui"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

var (
	flagHistoryKind  string
	flagHistoryLimit int
	flagHistoryPlain bool
	flagHistoryStats bool
	flagHistoryClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "Browse recorded sessions",
	Long: `Show recent play, convert and serve sessions from the history
database. In a terminal the list opens as an interactive browser;
use --plain for a table. Pass a session ID from the plain table to
show every recorded detail of that session.

Examples:
  cinema history
  cinema history 3f2b8c1e-5d4a-4f7e-9b2a-1c6d8e0f4a57
  cinema history --kind play --plain
  cinema history --stats
  cinema history --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryKind, "kind", "", "Only show one kind: play, convert, serve")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum sessions in the plain table")
	historyCmd.Flags().BoolVar(&flagHistoryPlain, "plain", false, "Print a table instead of the browser")
	historyCmd.Flags().BoolVar(&flagHistoryStats, "stats", false, "Print totals per kind")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the whole history")
}

func runHistory(_ *cobra.Command, args []string) {
	a := loadApp()

	switch flagHistoryKind {
	case "", storage.KindPlay, storage.KindConvert, storage.KindServe:
	default:
		fail("Error: unknown kind %q (use play, convert or serve)", flagHistoryKind)
	}

	if a.cfg.Storage.DB == "" {
		fail("Error: history is disabled (storage.db is empty)")
	}
	store, err := storage.Open(a.cfg.Storage.DB)
	if err != nil {
		fail("Error opening history database: %v", err)
	}
	defer store.Close()

	switch {
	case len(args) == 1:
		printSession(store, args[0])

	case flagHistoryClear:
		if err := store.ClearSessions(); err != nil {
			store.Close()
			fail("Error: %v", err)
		}
		fmt.Println("History cleared.")

	case flagHistoryStats:
		printStats(store)

	default:
		sel := a.detect(false, false)
		if !flagHistoryPlain && sel.StdoutTTY && sel.StdinTTY {
			if err := tui.RunHistory(store, flagHistoryKind, sel.Cols, sel.Rows); err != nil {
				store.Close()
				fail("Error: %v", err)
			}
			return
		}
		printSessions(store)
	}
}

func printSessions(store *storage.Store) {
	sessions, err := store.RecentSessions(flagHistoryKind, flagHistoryLimit)
	if err != nil {
		store.Close()
		fail("Error retrieving history: %v", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		fmt.Println()
		fmt.Println("Run 'cinema play <video>' to start one!")
		return
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = append([]string{s.ID}, tui.SessionRow(s)...)
	}
	fmt.Println(renderTable(
		[]string{"ID", "Started", "Kind", "Source", "Charset", "Grid", "Frames", "Outcome"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
}

func printSession(store *storage.Store, id string) {
	s, err := store.SessionByID(id)
	if err != nil {
		store.Close()
		fail("Error retrieving session: %v", err)
	}
	if s == nil {
		store.Close()
		fail("Error: no session with ID %q", id)
	}
	fmt.Println(renderTable(
		[]string{"Field", "Value"},
		sessionDetail(*s),
		[]columnAlignment{alignLeft, alignLeft},
	))
}

// sessionDetail lists every recorded field of one session. Fields that do
// not apply to its kind are left out.
func sessionDetail(s storage.Session) [][]string {
	grid := "-"
	if s.Columns > 0 && s.Rows > 0 {
		grid = fmt.Sprintf("%dx%d", s.Columns, s.Rows)
	}
	rows := [][]string{
		{"ID", s.ID},
		{"Kind", s.Kind},
		{"Started", s.StartedAt.Format(time.DateTime)},
		{"Source", s.Source},
		{"Charset", s.Charset},
		{"Grid", grid},
		{"Frames", humanize.Comma(int64(s.Frames))},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
		{"Outcome", s.Outcome},
	}
	if s.User != "" {
		rows = append(rows, []string{"User", s.User})
	}
	if s.Output != "" {
		rows = append(rows, []string{"Output", s.Output})
	}
	return rows
}

func printStats(store *storage.Store) {
	stats, err := store.Stats()
	if err != nil {
		store.Close()
		fail("Error retrieving history: %v", err)
	}

	if len(stats) == 0 {
		fmt.Println("No sessions recorded yet.")
		return
	}

	rows := make([][]string, len(stats))
	for i, s := range stats {
		rows[i] = []string{
			s.Kind,
			humanize.Comma(int64(s.Count)),
			humanize.Comma(s.Frames),
			s.Watched.Round(time.Second).String(),
			humanize.Time(s.LastStart),
		}
	}
	fmt.Println(renderTable(
		[]string{"Kind", "Sessions", "Frames", "Time", "Last"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
}
