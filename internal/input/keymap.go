// Package input turns raw keyboard bytes into playback control actions.
package input

import (
	"strings"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

// KeyMapper translates key names to playback actions.
// Key names follow the Bubble Tea convention ("p", " ", "esc", "up", "ctrl+c").
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key name to an action, or ActionNone when unbound.
func (km *KeyMapper) MapKey(key string) core.Action {
	switch strings.ToLower(key) {
	case "ctrl+c", "q", "esc":
		return core.ActionQuit
	case "p", " ", "space":
		return core.ActionTogglePause
	case "f", "up", "right", "+":
		return core.ActionSpeedUp
	case "s", "down", "left", "-":
		return core.ActionSpeedDown
	}
	return core.ActionNone
}

// Decode splits a chunk of terminal input into key names. Arrow keys arrive as
// CSI or SS3 sequences; an ESC not followed by either is the Escape key.
// Unrecognized or truncated escape sequences are dropped.
func Decode(b []byte) []string {
	keys, rest := decode(b)
	return append(keys, flushPending(rest)...)
}

// decode is Decode without resolving a trailing incomplete escape sequence.
// The unconsumed bytes are returned so the caller can join them with the
// next read.
func decode(b []byte) ([]string, []byte) {
	var keys []string
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0x1b:
			name, n, ok := decodeEscape(b[i:])
			if !ok {
				return keys, b[i:]
			}
			if name != "" {
				keys = append(keys, name)
			}
			i += n
			continue
		case c == 0x03:
			keys = append(keys, "ctrl+c")
		case c == '\r' || c == '\n':
			keys = append(keys, "enter")
		case c >= 0x20 && c < 0x7f:
			keys = append(keys, string(rune(c)))
		}
		i++
	}
	return keys, nil
}

// flushPending resolves bytes held back by decode once no more input is
// coming: a lone ESC is the Escape key, anything longer is dropped.
func flushPending(rest []byte) []string {
	if len(rest) == 1 && rest[0] == 0x1b {
		return []string{"esc"}
	}
	return nil
}

// decodeEscape reports ok=false when b ends before the sequence does.
func decodeEscape(b []byte) (string, int, bool) {
	if len(b) < 2 {
		return "", 0, false
	}
	if b[1] != '[' && b[1] != 'O' {
		return "esc", 1, true
	}
	// Skip parameter bytes up to the final byte of the sequence.
	j := 2
	for j < len(b) && b[j] >= 0x30 && b[j] <= 0x3f {
		j++
	}
	if j >= len(b) {
		return "", 0, false
	}
	switch b[j] {
	case 'A':
		return "up", j + 1, true
	case 'B':
		return "down", j + 1, true
	case 'C':
		return "right", j + 1, true
	case 'D':
		return "left", j + 1, true
	}
	return "", j + 1, true
}
