package playback

import (
	"math"
	"sync"
	"testing"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

func TestSetSpeedClamps(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0.01, 0.1},
		{100, 5.0},
		{1.5, 1.5},
		{0.1, 0.1},
		{5.0, 5.0},
		{-3, 0.1},
		{math.Inf(1), 5.0},
	}

	for _, tt := range tests {
		s := NewState()
		if got := s.SetSpeed(tt.in); got != tt.expected {
			t.Errorf("SetSpeed(%v) = %v, expected %v", tt.in, got, tt.expected)
		}
		if got := s.Speed(); got != tt.expected {
			t.Errorf("Speed() after SetSpeed(%v) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestSetSpeedIgnoresNaN(t *testing.T) {
	s := NewState()
	s.SetSpeed(2)
	if got := s.SetSpeed(math.NaN()); got != 2 {
		t.Errorf("SetSpeed(NaN) = %v, expected 2", got)
	}
}

func TestSpeedSteps(t *testing.T) {
	s := NewState()
	if got := s.SpeedUp(); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("SpeedUp() = %v, expected 1.2", got)
	}
	for i := 0; i < 20; i++ {
		s.SpeedUp()
	}
	if got := s.Speed(); got != KeyMaxSpeed {
		t.Errorf("Speed() after many SpeedUp = %v, expected %v", got, KeyMaxSpeed)
	}
	for i := 0; i < 40; i++ {
		s.SpeedDown()
	}
	if got := s.Speed(); got != KeyMinSpeed {
		t.Errorf("Speed() after many SpeedDown = %v, expected %v", got, KeyMinSpeed)
	}
}

func TestSpeedStepsNeverJumpBack(t *testing.T) {
	s := NewState()
	s.SetSpeed(4.5)
	if got := s.SpeedUp(); got != 4.5 {
		t.Errorf("SpeedUp() above key range = %v, expected 4.5", got)
	}
	s.SetSpeed(0.2)
	if got := s.SpeedDown(); got != 0.2 {
		t.Errorf("SpeedDown() below key range = %v, expected 0.2", got)
	}
}

func TestTogglePause(t *testing.T) {
	s := NewState()
	if s.Status() != core.StatusRunning {
		t.Errorf("Status() = %v, expected Running", s.Status())
	}
	if !s.TogglePause() || s.Status() != core.StatusPaused {
		t.Error("first TogglePause() should pause")
	}
	if s.TogglePause() || s.Status() != core.StatusRunning {
		t.Error("second TogglePause() should resume")
	}
}

func TestStopIsTerminal(t *testing.T) {
	s := NewState()
	s.SetSpeed(2)
	s.Stop()
	s.Stop()

	s.TogglePause()
	s.SetSpeed(4)
	s.SpeedUp()

	snap := s.Snapshot()
	if snap.Running || snap.Paused || snap.Speed != 2 {
		t.Errorf("Snapshot() after Stop = %+v, expected stopped, unpaused, speed 2", snap)
	}
	if s.Status() != core.StatusStopped {
		t.Errorf("Status() = %v, expected Stopped", s.Status())
	}
}

func TestApply(t *testing.T) {
	s := NewState()
	s.Apply(core.ActionSpeedUp)
	s.Apply(core.ActionSpeedDown)
	if math.Abs(s.Speed()-1.0) > 1e-9 {
		t.Errorf("Speed() after up+down = %v, expected 1.0", s.Speed())
	}
	s.Apply(core.ActionNone)
	s.Apply(core.ActionTogglePause)
	if !s.Paused() {
		t.Error("ActionTogglePause should pause")
	}
	s.Apply(core.ActionQuit)
	if s.Running() {
		t.Error("ActionQuit should stop")
	}
}

func TestStateConcurrentMutators(t *testing.T) {
	s := NewState()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				switch (i + j) % 4 {
				case 0:
					s.TogglePause()
				case 1:
					s.SpeedUp()
				case 2:
					s.SpeedDown()
				case 3:
					s.SetSpeed(float64(j) / 50)
				}
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if sp := s.Speed(); sp < MinSpeed || sp > MaxSpeed {
		t.Errorf("Speed() = %v, outside [%v, %v]", sp, MinSpeed, MaxSpeed)
	}
}
