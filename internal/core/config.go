package core

// RuntimeConfig carries the per-session rendering parameters resolved by the
// command layer from the config file, flags and terminal size.
type RuntimeConfig struct {
	Width    int     // Output width in characters
	Charset  string  // Charset name, see registry
	Colorize bool    // Use source colors instead of luma gray
	Audio    bool    // Play the audio track when a backend is available
	FPS      float64 // Override for the source frame rate (0 = use source)
}

// PlaybackStatus represents the state of the playback state machine.
type PlaybackStatus int

const (
	StatusRunning PlaybackStatus = iota
	StatusPaused
	StatusStopped
)

// String returns a human-readable name for the status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusRunning:
		return "Running"
	case StatusPaused:
		return "Paused"
	case StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}
