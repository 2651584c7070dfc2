package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conway [file]",
		Short: "Conway's Game of Life over your text",
		Long: `conway renders text as a Game of Life grid in the terminal.

Load a file (or pipe text on stdin), then use colon commands to seed the
simulation: random noise, the full text, only the visible region, or a
hand-edited canvas.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runTUI,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug or info)")
	cmd.PersistentFlags().Int("width", 0, "Surface width (TUI: until the terminal reports its size)")
	cmd.PersistentFlags().Int("height", 0, "Surface height (TUI: until the terminal reports its size)")
	cmd.PersistentFlags().Int("interval", 0, "Milliseconds between generations")
	cmd.PersistentFlags().Float64("density", -1, "Random seeding density in [0,1]")
	cmd.PersistentFlags().String("alive-glyph", "", "Glyph for live cells")
	cmd.PersistentFlags().String("dead-glyph", "", "Glyph for dead cells")
	cmd.Flags().String("log-file", "", "Write logs to this file (stderr belongs to the UI)")

	cmd.AddCommand(newServeCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("conway version %s\n", version)
		},
	}
}
