// Package playback paces cached grids onto an output device under live
// pause, speed and stop control.
package playback

import (
	"math"
	"sync"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

// Speed limits. SetSpeed accepts anything in [MinSpeed, MaxSpeed]; the
// keyboard steps stay within the narrower [KeyMinSpeed, KeyMaxSpeed].
const (
	MinSpeed    = 0.1
	MaxSpeed    = 5.0
	KeyMinSpeed = 0.3
	KeyMaxSpeed = 3.0
	SpeedStep   = 1.2
)

// State is the control surface shared by the scheduler and the input handler.
// Every method takes the same lock and returns without blocking.
type State struct {
	mu      sync.Mutex
	running bool
	paused  bool
	speed   float64
}

// Snapshot is a consistent copy of State.
type Snapshot struct {
	Running bool
	Paused  bool
	Speed   float64
}

// NewState returns a running, unpaused state at normal speed.
func NewState() *State {
	return &State{running: true, speed: 1.0}
}

// TogglePause flips the paused flag and returns the new value. It has no
// effect once stopped.
func (s *State) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.paused = !s.paused
	}
	return s.paused
}

// Stop ends playback. It is terminal and idempotent.
func (s *State) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// SetSpeed sets the multiplier clamped to [MinSpeed, MaxSpeed] and returns
// the effective value. NaN and calls after Stop leave the speed unchanged.
func (s *State) SetSpeed(m float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && !math.IsNaN(m) {
		s.speed = core.ClampF(m, MinSpeed, MaxSpeed)
	}
	return s.speed
}

// SpeedUp multiplies the speed by SpeedStep, up to KeyMaxSpeed. A speed
// already above KeyMaxSpeed is left alone.
func (s *State) SpeedUp() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.speed = math.Max(s.speed, math.Min(KeyMaxSpeed, s.speed*SpeedStep))
	}
	return s.speed
}

// SpeedDown divides the speed by SpeedStep, down to KeyMinSpeed. A speed
// already below KeyMinSpeed is left alone.
func (s *State) SpeedDown() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.speed = math.Min(s.speed, math.Max(KeyMinSpeed, s.speed/SpeedStep))
	}
	return s.speed
}

// Apply performs the mutation bound to a control action.
func (s *State) Apply(a core.Action) {
	switch a {
	case core.ActionTogglePause:
		s.TogglePause()
	case core.ActionQuit:
		s.Stop()
	case core.ActionSpeedUp:
		s.SpeedUp()
	case core.ActionSpeedDown:
		s.SpeedDown()
	}
}

// Running reports whether playback has not been stopped.
func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Paused reports whether playback is paused.
func (s *State) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Speed returns the current multiplier.
func (s *State) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// Snapshot returns all fields under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Running: s.running, Paused: s.paused, Speed: s.speed}
}

// Status maps the flags onto the scheduler state machine.
func (s *State) Status() core.PlaybackStatus {
	snap := s.Snapshot()
	switch {
	case !snap.Running:
		return core.StatusStopped
	case snap.Paused:
		return core.StatusPaused
	default:
		return core.StatusRunning
	}
}
