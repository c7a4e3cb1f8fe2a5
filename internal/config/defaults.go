package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/cinema.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/cinema.yaml.
func Default() Config {
	return Config{
		Playback: PlaybackConfig{
			WidthPreset: WidthAuto,
			Charset:     "detailed",
			Colorize:    true,
			Audio:       true,
			MaxFrames:   5000,
			PausePoll:   100 * time.Millisecond,
			StartDelay:  3 * time.Second,
		},
		Convert: ConvertConfig{
			Columns:    160,
			Resolution: Resolution720p,
			Width:      1280,
			Height:     720,
			Codec:      "mjpeg",
			Output:     "converted_ascii_video.avi",
		},
		Server: ServerConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
		Storage: StorageConfig{
			DB: "~/.cinema/history.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tools: ToolsConfig{
			FFmpeg: "ffmpeg",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
