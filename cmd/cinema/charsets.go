package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cinema/internal/registry"
)

var charsetsCmd = &cobra.Command{
	Use:   "charsets",
	Short: "List all available charsets",
	Long:  `Shows every registered glyph ramp, darkest glyph first.`,
	Run:   runCharsets,
}

func runCharsets(_ *cobra.Command, _ []string) {
	sets := registry.List()

	if len(sets) == 0 {
		fmt.Println("No charsets available.")
		return
	}

	rows := make([][]string, 0, len(sets))
	for _, cs := range sets {
		name := cs.Name
		if name == registry.Default {
			name += " (default)"
		}
		rows = append(rows, []string{name, strconv.Itoa(cs.Size), cs.Preview})
	}

	fmt.Println(renderTable([]string{"Charset", "Levels", "Ramp"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
	fmt.Println()
	fmt.Println("Run 'cinema play <video> --charset <name>' to use one.")
}
