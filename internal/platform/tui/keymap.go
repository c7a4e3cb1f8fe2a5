package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-cinema/internal/core"
	"github.com/vovakirdan/tui-cinema/internal/input"
)

// KeyMapper translates Bubble Tea key messages to playback actions.
// It shares its bindings with the raw terminal input handler.
type KeyMapper struct {
	keys *input.KeyMapper
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: input.NewKeyMapper()}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	action = km.keys.MapKey(msg.String())
	return action, action == core.ActionQuit
}

// IsConfirm reports whether the key confirms a prompt.
func (km *KeyMapper) IsConfirm(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", " ", "space":
		return true
	}
	return false
}
