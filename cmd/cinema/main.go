// cinema plays video files as colored text in the terminal.
//
// Usage:
//
//	cinema play <video>             - Play a video in the terminal
//	cinema convert <video> [out]    - Render a video into a text-art video file
//	cinema serve <video>            - Play a video to SSH clients
//	cinema charsets                 - List the glyph ramps
//	cinema info [video]             - Show system capabilities and video details
//	cinema history                  - Browse recorded sessions
//	cinema config                   - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.cinema/config.yaml)
//	--log-level <lvl>   - debug, info, warn or error
//	--db <path>         - Session history database
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfigPath string
	flagLogLevel   string
	flagDBPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cinema",
	Short: "TUI Cinema - Watch videos as text art in your terminal",
	Long: `TUI Cinema converts video frames into colored glyphs and plays them
in the terminal, renders them into a text-art video file, or streams them
to SSH clients.

Available commands:
  play      - Play a video in the terminal
  convert   - Render a video into a text-art video file
  serve     - Start an SSH server that plays a video
  charsets  - List the glyph ramps
  info      - Show system capabilities and video details
  history   - Browse recorded sessions
  config    - Print the effective configuration

Examples:
  cinema play movie.mp4
  cinema play movie.mp4 --charset block --width 120
  cinema convert movie.mp4 out.avi --resolution 1080p
  cinema serve movie.mp4 --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to config YAML (default: search ~/.cinema, ./configs)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to session history database (default from config)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(charsetsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}
