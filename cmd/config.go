// ABOUTME: Config command for the pestr CLI
// ABOUTME: Shows the resolved configuration and where it came from

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hpcutil/pestr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Display the configuration pestr would run with, after merging built-in
defaults, the config file, and PESTR_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runConfig(os.Stdout, os.Stderr)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// runConfig resolves and prints the configuration, returning the exit code.
func runConfig(w, errw io.Writer) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 2
	}

	if jsonOutput {
		fmt.Fprintln(w, formatConfigJSON(cfg))
	} else {
		fmt.Fprintln(w, formatConfigHuman(cfg))
	}
	return 0
}

// formatConfigHuman formats the resolved configuration for human readability
func formatConfigHuman(cfg config.Config) string {
	file := cfg.File
	if file == "" {
		file = "(none)"
	}

	return fmt.Sprintf(`Config file:     %s
CPUs per node:   %d

Search:
  PE radius:     %g
  Thread radius: %g
  Conserve nodes: %t`,
		file,
		cfg.CPUsPerNode,
		cfg.Search.PERadius,
		cfg.Search.ThreadRadius,
		cfg.Search.ConserveNodes)
}

// formatConfigJSON formats the resolved configuration as JSON
func formatConfigJSON(cfg config.Config) string {
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
