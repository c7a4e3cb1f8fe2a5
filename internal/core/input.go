package core

// Action represents a semantic playback control, abstracted from physical key presses.
type Action int

const (
	ActionNone        Action = iota
	ActionTogglePause        // P, Space
	ActionQuit               // Q, Esc, Ctrl+C
	ActionSpeedUp            // F, Up, Right
	ActionSpeedDown          // S, Down, Left
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionTogglePause:
		return "TogglePause"
	case ActionQuit:
		return "Quit"
	case ActionSpeedUp:
		return "SpeedUp"
	case ActionSpeedDown:
		return "SpeedDown"
	default:
		return "Unknown"
	}
}
