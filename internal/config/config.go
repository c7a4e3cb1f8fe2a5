// Package config provides YAML-based configuration loading and presets for
// playback, conversion and the SSH server.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Convert  ConvertConfig  `yaml:"convert"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Tools    ToolsConfig    `yaml:"tools"`
}

// PlaybackConfig controls terminal playback.
type PlaybackConfig struct {
	Width       int           `yaml:"width"`        // Explicit width in characters, 0 = use preset
	WidthPreset WidthPreset   `yaml:"width_preset"` // auto, small, medium or large
	Charset     string        `yaml:"charset"`
	Colorize    bool          `yaml:"colorize"`
	Audio       bool          `yaml:"audio"`
	MaxFrames   int           `yaml:"max_frames"` // Cache ceiling, at most 5000
	PausePoll   time.Duration `yaml:"pause_poll"`
	StartDelay  time.Duration `yaml:"start_delay"` // Pause between the info panel and the first frame
}

// ConvertConfig controls offline conversion to a video file.
type ConvertConfig struct {
	Columns    int              `yaml:"columns"`    // Glyph grid width
	Resolution ResolutionPreset `yaml:"resolution"` // 480p, 720p, 1080p or custom
	Width      int              `yaml:"width"`      // Pixel width for the custom preset
	Height     int              `yaml:"height"`     // Pixel height for the custom preset
	Codec      string           `yaml:"codec"`
	Output     string           `yaml:"output"`
}

// ServerConfig controls the SSH playback server.
type ServerConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"` // Empty = ~/.cinema/host_key
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// StorageConfig locates the session history database.
type StorageConfig struct {
	DB string `yaml:"db"` // Empty disables history
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ToolsConfig locates external binaries.
type ToolsConfig struct {
	FFmpeg string `yaml:"ffmpeg"`
}
