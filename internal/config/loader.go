package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-cinema/internal/registry"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// MaxFramesLimit is the largest accepted playback.max_frames.
const MaxFramesLimit = 5000

// Load loads the configuration.
// Search order: customPath -> ~/.cinema/config.yaml -> ./configs/cinema.yaml -> embedded default.
// Files are layered over Default, so a file only needs the keys it changes.
// An explicit customPath that cannot be read or parsed is an error; the
// implicit locations are skipped when missing or malformed.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		cfg, err := loadFile(customPath)
		if err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	for _, path := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "cinema.yaml")} {
		if path == "" {
			continue
		}
		if cfg, err := loadFile(path); err == nil {
			return cfg, cfg.Validate()
		}
	}

	cfg, err := Parse(defaultYAML)
	if err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every field a run depends on.
func (c Config) Validate() error {
	p := c.Playback
	if p.Width < 0 {
		return fmt.Errorf("%w: playback.width must not be negative, got %d", ErrInvalid, p.Width)
	}
	if p.Width == 0 && !p.WidthPreset.Valid() {
		return fmt.Errorf("%w: playback.width_preset %q is not one of auto, small, medium, large", ErrInvalid, p.WidthPreset)
	}
	if !registry.Exists(p.Charset) {
		return fmt.Errorf("%w: playback.charset %q is unknown", ErrInvalid, p.Charset)
	}
	if p.MaxFrames < 1 || p.MaxFrames > MaxFramesLimit {
		return fmt.Errorf("%w: playback.max_frames must be in [1, %d], got %d", ErrInvalid, MaxFramesLimit, p.MaxFrames)
	}
	if p.PausePoll <= 0 {
		return fmt.Errorf("%w: playback.pause_poll must be positive", ErrInvalid)
	}
	if p.StartDelay < 0 {
		return fmt.Errorf("%w: playback.start_delay must not be negative", ErrInvalid)
	}

	cv := c.Convert
	if !cv.Resolution.Valid() {
		return fmt.Errorf("%w: convert.resolution %q is not one of 480p, 720p, 1080p, custom", ErrInvalid, cv.Resolution)
	}
	w, h := cv.Dimensions()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: convert size must be positive, got %dx%d", ErrInvalid, w, h)
	}
	if cv.Columns <= 0 || cv.Columns > w {
		return fmt.Errorf("%w: convert.columns must be in [1, %d], got %d", ErrInvalid, w, cv.Columns)
	}

	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("%w: server.idle_timeout must not be negative", ErrInvalid)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cinema", filename)
}
