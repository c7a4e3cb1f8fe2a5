// Package probe resolves optional capabilities once at startup into an
// explicit backend selection, so the rest of the program never checks
// availability on its own.
package probe

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// AudioBackend selects how the soundtrack is played.
type AudioBackend string

const (
	AudioBeep AudioBackend = "beep"
	AudioOff  AudioBackend = "off"
)

// ProgressBackend selects how cache-build progress is shown.
type ProgressBackend string

const (
	ProgressBar ProgressBackend = "bar" // bubbletea progress bar
	ProgressLog ProgressBackend = "log" // periodic log lines
)

// InputBackend selects how playback controls are read.
type InputBackend string

const (
	InputRaw  InputBackend = "raw"  // raw-mode terminal on stdin
	InputNone InputBackend = "none" // no controls, play to the end
)

// ColorBackend selects the cell color source.
type ColorBackend string

const (
	ColorTrue ColorBackend = "truecolor" // source colors
	ColorGray ColorBackend = "grayscale" // luma gray
)

// Env is the process environment the probe inspects.
type Env struct {
	StdinFd    uintptr
	StdoutFd   uintptr
	Getenv     func(string) string
	LookPath   func(string) (string, error)
	IsTerminal func(fd uintptr) bool
	Size       func(fd int) (width, height int, err error)
}

// System returns the environment of the current process.
func System() Env {
	return Env{
		StdinFd:  os.Stdin.Fd(),
		StdoutFd: os.Stdout.Fd(),
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		IsTerminal: func(fd uintptr) bool {
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
		Size: term.GetSize,
	}
}

// Wants are the user's requests; the probe may downgrade them.
type Wants struct {
	Audio    bool
	Colorize bool
	FFmpeg   string
}

// Selection is the resolved set of backends.
type Selection struct {
	Audio     AudioBackend
	Progress  ProgressBackend
	Input     InputBackend
	Color     ColorBackend
	FFmpeg    string // resolved ffmpeg path, empty when missing
	StdinTTY  bool
	StdoutTTY bool
	Cols      int // terminal size, 0 when unknown
	Rows      int
	Notes     []string // why a request was downgraded
}

// Detect inspects env once and picks a backend for every optional subsystem.
func Detect(env Env, want Wants) Selection {
	s := Selection{
		StdinTTY:  env.IsTerminal(env.StdinFd),
		StdoutTTY: env.IsTerminal(env.StdoutFd),
	}

	if s.StdoutTTY {
		if w, h, err := env.Size(int(env.StdoutFd)); err == nil {
			s.Cols, s.Rows = w, h
		}
	}

	bin := want.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	if path, err := env.LookPath(bin); err == nil {
		s.FFmpeg = path
	}

	switch {
	case !want.Audio:
		s.Audio = AudioOff
	case s.FFmpeg == "":
		s.Audio = AudioOff
		s.Notes = append(s.Notes, "audio disabled: ffmpeg not found")
	default:
		s.Audio = AudioBeep
	}

	if s.StdoutTTY {
		s.Progress = ProgressBar
	} else {
		s.Progress = ProgressLog
	}

	if s.StdinTTY {
		s.Input = InputRaw
	} else {
		s.Input = InputNone
		s.Notes = append(s.Notes, "controls disabled: stdin is not a terminal")
	}

	switch {
	case !want.Colorize:
		s.Color = ColorGray
	case env.Getenv("NO_COLOR") != "":
		s.Color = ColorGray
		s.Notes = append(s.Notes, "color disabled: NO_COLOR is set")
	default:
		s.Color = ColorTrue
	}

	return s
}

// Colorize reports whether cells should carry source colors.
func (s Selection) Colorize() bool {
	return s.Color == ColorTrue
}

// Capability is one row of a capability report.
type Capability struct {
	Name   string
	Value  string
	Detail string
}

// Report lists the selection for display.
func (s Selection) Report() []Capability {
	ffmpeg := s.FFmpeg
	if ffmpeg == "" {
		ffmpeg = "not found"
	}
	size := "unknown"
	if s.Cols > 0 {
		size = fmt.Sprintf("%dx%d", s.Cols, s.Rows)
	}
	return []Capability{
		{Name: "ffmpeg", Value: ffmpeg, Detail: "decoding, audio and conversion"},
		{Name: "terminal", Value: size, Detail: "stdout tty: " + yesNo(s.StdoutTTY) + ", stdin tty: " + yesNo(s.StdinTTY)},
		{Name: "audio", Value: string(s.Audio), Detail: "gopxl/beep speaker"},
		{Name: "progress", Value: string(s.Progress), Detail: "cache build display"},
		{Name: "input", Value: string(s.Input), Detail: "p/space pause, q/esc quit, f/s speed"},
		{Name: "color", Value: string(s.Color), Detail: "24-bit foreground"},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
