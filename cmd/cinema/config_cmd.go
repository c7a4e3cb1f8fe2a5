package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/config"
)

var flagConfigDefault bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the search order and flag overrides
have been applied, as YAML. Save the output to ~/.cinema/config.yaml to
customize it.

Examples:
  cinema config
  cinema config --default > ~/.cinema/config.yaml`,
	Run: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefault, "default", false, "Print the built-in defaults instead")
}

func runConfig(_ *cobra.Command, _ []string) {
	if flagConfigDefault {
		os.Stdout.Write(config.DefaultYAML())
		return
	}

	a := loadApp()
	data, err := a.cfg.Marshal()
	if err != nil {
		fail("Error: %v", err)
	}
	fmt.Print(string(data))
}
