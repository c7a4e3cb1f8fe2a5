package compositor

import (
	"strconv"
	"unicode/utf8"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

// Escape sequence fragments. Only 24-bit foreground color and absolute cursor
// addressing are used.
var (
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")
	csiReset      = []byte("\x1b[0m")
	csiHome       = []byte("\x1b[H")
	csiClear      = []byte("\x1b[2J")
	csiEraseDown  = []byte("\x1b[J")
	csiEraseLine  = []byte("\x1b[2K")
	csiFgRGB      = []byte("\x1b[38;2;")
)

// AppendSetup appends the sequence that prepares the screen for playback:
// cursor hidden, colors reset, screen cleared.
func AppendSetup(dst []byte) []byte {
	dst = append(dst, csiCursorHide...)
	dst = append(dst, csiReset...)
	dst = append(dst, csiClear...)
	return append(dst, csiHome...)
}

// AppendRestore appends the sequence that returns the terminal to its normal
// state: cursor shown, colors reset, screen cleared from home.
func AppendRestore(dst []byte) []byte {
	dst = append(dst, csiCursorShow...)
	dst = append(dst, csiReset...)
	dst = append(dst, csiHome...)
	return append(dst, csiEraseDown...)
}

// Restore returns the restore sequence as a fresh slice.
func Restore() []byte {
	return AppendRestore(nil)
}

// AppendCursorPos appends an absolute cursor move. row and col are 0-indexed.
func AppendCursorPos(dst []byte, row, col int) []byte {
	dst = append(dst, '\x1b', '[')
	dst = strconv.AppendInt(dst, int64(row+1), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col+1), 10)
	return append(dst, 'H')
}

// AppendFg appends a 24-bit foreground color.
func AppendFg(dst []byte, c core.RGB) []byte {
	dst = append(dst, csiFgRGB...)
	dst = strconv.AppendInt(dst, int64(c.R), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(c.G), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(c.B), 10)
	return append(dst, 'm')
}

// AppendStatusLine writes text on the given row after erasing it. An empty
// text just clears the row.
func AppendStatusLine(dst []byte, row int, text string) []byte {
	dst = AppendCursorPos(dst, row, 0)
	dst = append(dst, csiReset...)
	dst = append(dst, csiEraseLine...)
	return append(dst, text...)
}

func appendGlyph(dst []byte, r rune) []byte {
	return utf8.AppendRune(dst, r)
}
