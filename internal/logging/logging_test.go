package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"warn", log.WarnLevel},
		{"", log.InfoLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			l := New(&bytes.Buffer{}, "test", tc.level)
			if l.GetLevel() != tc.expected {
				t.Errorf("GetLevel() = %v, expected %v", l.GetLevel(), tc.expected)
			}
		})
	}
}

func TestNewWritesPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "cinema", "info")
	l.Info("hello", "frames", 3)

	out := buf.String()
	if !strings.Contains(out, "cinema") || !strings.Contains(out, "hello") || !strings.Contains(out, "frames=3") {
		t.Errorf("unexpected log line %q", out)
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) == nil {
		t.Error("OrDefault(nil) should return the default logger")
	}
	l := Discard()
	if OrDefault(l) != l {
		t.Error("OrDefault should return the given logger")
	}
}

func TestHoldWriter(t *testing.T) {
	var out bytes.Buffer
	hw := NewHoldWriter(&out)
	l := New(hw, "test", "info")

	l.Info("before")
	hw.Hold()
	l.Warn("during")
	if strings.Contains(out.String(), "during") {
		t.Errorf("held output leaked: %q", out.String())
	}
	if err := hw.Release(); err != nil {
		t.Fatalf("Release() failed: %v", err)
	}
	l.Info("after")

	got := out.String()
	b, d, a := strings.Index(got, "before"), strings.Index(got, "during"), strings.Index(got, "after")
	if b < 0 || d < 0 || a < 0 || !(b < d && d < a) {
		t.Errorf("output = %q, expected before, during, after in order", got)
	}
}
