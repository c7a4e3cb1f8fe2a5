package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tui-cinema/internal/config"
	"github.com/vovakirdan/tui-cinema/internal/storage"
)

func TestConvertSettings(t *testing.T) {
	defer func() {
		flagConvColumns, flagConvResolution, flagConvWidth, flagConvHeight, flagConvCodec = 0, "", 0, 0, ""
	}()

	base := config.Default().Convert

	tests := []struct {
		name       string
		columns    int
		resolution string
		width      int
		height     int
		wantW      int
		wantH      int
		wantErr    bool
	}{
		{"defaults", 0, "", 0, 0, 1280, 720, false},
		{"1080p", 240, "1080p", 0, 0, 1920, 1080, false},
		{"custom", 0, "custom", 640, 360, 640, 360, false},
		{"unknown preset", 0, "4k", 0, 0, 0, 0, true},
		{"custom without size", 0, "custom", 0, 0, 0, 0, true},
		{"columns at frame width", 1280, "", 0, 0, 1280, 720, false},
		{"columns wider than frame", 1300, "", 0, 0, 0, 0, true},
		{"columns wider than custom frame", 0, "custom", 100, 60, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flagConvColumns, flagConvResolution = tt.columns, tt.resolution
			flagConvWidth, flagConvHeight = tt.width, tt.height

			cc := base
			if tt.name == "custom without size" {
				cc.Width, cc.Height = 0, 0
			}
			got, err := convertSettings(cc)
			if tt.wantErr {
				if !errors.Is(err, config.ErrInvalid) {
					t.Errorf("convertSettings() error = %v, expected ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("convertSettings() error = %v", err)
			}
			if w, h := got.Dimensions(); w != tt.wantW || h != tt.wantH {
				t.Errorf("Dimensions() = %dx%d, expected %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if tt.columns > 0 && got.Columns != tt.columns {
				t.Errorf("Columns = %d, expected %d", got.Columns, tt.columns)
			}
		})
	}
}

func TestCapped(t *testing.T) {
	var gotTotal int
	report := capped(func(done, total int) { gotTotal = total }, 5000)

	tests := []struct {
		total    int
		expected int
	}{
		{0, 5000},
		{10000, 5000},
		{120, 120},
	}
	for _, tt := range tests {
		report(1, tt.total)
		if gotTotal != tt.expected {
			t.Errorf("capped total(%d) = %d, expected %d", tt.total, gotTotal, tt.expected)
		}
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Name", "Count"}, [][]string{{"play", "3"}, {"convert"}}, []columnAlignment{alignLeft, alignRight})

	for _, want := range []string{"Name", "Count", "play", "convert", "╭"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderTable() missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Error("renderTable() with no headers should be empty")
	}
}

func TestSessionDetail(t *testing.T) {
	started := time.Date(2024, 3, 9, 20, 15, 0, 0, time.UTC)
	tests := []struct {
		name     string
		session  storage.Session
		expected map[string]string
	}{
		{
			name: "served",
			session: storage.Session{
				ID: "abc", Kind: storage.KindServe, Source: "/v/clip.mp4", Charset: "detailed",
				Columns: 80, Rows: 24, Frames: 1234, Duration: 1500 * time.Millisecond,
				Outcome: storage.OutcomeCompleted, User: "alice", StartedAt: started,
			},
			expected: map[string]string{
				"ID": "abc", "Grid": "80x24", "Frames": "1,234", "Duration": "1.5s",
				"Started": "2024-03-09 20:15:00", "User": "alice",
			},
		},
		{
			name: "converted without grid",
			session: storage.Session{
				ID: "def", Kind: storage.KindConvert, Output: "out.avi",
				Outcome: storage.OutcomeFailed, StartedAt: started,
			},
			expected: map[string]string{"Grid": "-", "Output": "out.avi", "Outcome": storage.OutcomeFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string]string{}
			for _, row := range sessionDetail(tt.session) {
				got[row[0]] = row[1]
			}
			for field, want := range tt.expected {
				if got[field] != want {
					t.Errorf("sessionDetail()[%q] = %q, expected %q", field, got[field], want)
				}
			}
			if tt.session.User == "" {
				if _, ok := got["User"]; ok {
					t.Error("User row should be omitted")
				}
			}
			if tt.session.Output == "" {
				if _, ok := got["Output"]; ok {
					t.Error("Output row should be omitted")
				}
			}
		})
	}
}

func TestSessionDetailFieldOrder(t *testing.T) {
	rows := sessionDetail(storage.Session{ID: "x", Kind: storage.KindPlay})
	var fields []string
	for _, row := range rows {
		fields = append(fields, row[0])
	}
	expected := []string{"ID", "Kind", "Started", "Source", "Charset", "Grid", "Frames", "Duration", "Outcome"}
	if !reflect.DeepEqual(fields, expected) {
		t.Errorf("fields = %v, expected %v", fields, expected)
	}
}
