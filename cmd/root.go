// ABOUTME: Root command for the pestr CLI
// ABOUTME: Resolves configuration, evaluates the geometry, and reports

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hpcutil/pestr/internal/config"
	"github.com/hpcutil/pestr/internal/geometry"
	"github.com/hpcutil/pestr/internal/report"
	"github.com/hpcutil/pestr/internal/tui/browser"
	"github.com/hpcutil/pestr/internal/tui/wizard"
)

var (
	configPath     string
	cpusPerNode    int
	hyperthreading bool
	suggest        bool
	conserveNodes  bool
	peRadius       float64
	threadRadius   float64
	jsonOutput     bool
	interactive    bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "pestr PES THREADS",
	Short: "Reservation geometry calculator for parallel jobs",
	Long: `pestr computes the node reservation implied by a parallel job geometry:
given a PE (MPI task) count and a threads-per-PE count, it reports how many
nodes the job occupies, how many CPU cores it uses, and whether any reserved
cores sit idle. With --suggest it searches nearby geometries that fill their
reservation perfectly.

Configuration is resolved from built-in defaults, then the config file
(~/.config/pestr/config.yaml or --config), then PESTR_* environment
variables, then flags.

Environment Variables:
  PESTR_CPUS_PER_NODE           CPUs per node (default: 128)
  PESTR_SEARCH_PE_RADIUS        PE search radius (default: 0.25)
  PESTR_SEARCH_THREAD_RADIUS    Thread search radius (default: 0.5)
  PESTR_SEARCH_CONSERVE_NODES   Conserve node count in suggestions

Exit codes:
  0 - report produced
  1 - invalid geometry or search parameters
  2 - usage or configuration error`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runRoot(cmd.Flags(), args, os.Stdout, os.Stderr)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/pestr/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")

	rootCmd.Flags().IntVarP(&cpusPerNode, "cpus-per-node", "n", config.DefaultCPUsPerNode, "Number of CPUs per node on the target machine")
	rootCmd.Flags().BoolVarP(&hyperthreading, "hyperthreading", "y", false, "Enable hyperthreading (double the node CPU count)")
	rootCmd.Flags().BoolVarP(&suggest, "suggest", "s", false, "Suggest alternate geometries that fill their reservation")
	rootCmd.Flags().BoolVarP(&conserveNodes, "conserve-nodes", "c", false, "Conserve total node count in suggested geometries")
	rootCmd.Flags().Float64VarP(&peRadius, "pe-radius", "p", config.DefaultPERadius, "Fractional search radius around the PE count")
	rootCmd.Flags().Float64VarP(&threadRadius, "thread-radius", "t", config.DefaultThreadRadius, "Fractional search radius around the thread count")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Collect the geometry interactively and browse suggestions")
}

// resolveConfig loads the layered configuration and applies any flags the
// user set explicitly, which take precedence over file and environment.
func resolveConfig(flags *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if flags != nil {
		if flags.Changed("cpus-per-node") {
			cfg.CPUsPerNode = cpusPerNode
		}
		if flags.Changed("pe-radius") {
			cfg.Search.PERadius = peRadius
		}
		if flags.Changed("thread-radius") {
			cfg.Search.ThreadRadius = threadRadius
		}
		if flags.Changed("conserve-nodes") {
			cfg.Search.ConserveNodes = conserveNodes
		}
	}

	return cfg, nil
}

// runRoot executes the evaluation and returns the process exit code.
func runRoot(flags *pflag.FlagSet, args []string, w, errw io.Writer) int {
	cfg, err := resolveConfig(flags)
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 2
	}

	if interactive {
		return runInteractive(cfg, w, errw)
	}

	if len(args) != 2 {
		fmt.Fprintln(errw, "error: PES and THREADS arguments are required (or use --interactive)")
		return 2
	}

	pes, err := parsePositiveInt("PES", args[0])
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 2
	}
	threads, err := parsePositiveInt("THREADS", args[1])
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 2
	}

	g := geometry.Geometry{
		PEs:            pes,
		ThreadsPerPE:   threads,
		CPUsPerNode:    cfg.CPUsPerNode,
		Hyperthreading: hyperthreading,
	}

	res, err := geometry.Reserve(g)
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 1
	}

	var alternates []geometry.Alternate
	if suggest {
		alternates, err = geometry.Search(g, geometry.SearchOptions{
			PERadius:      cfg.Search.PERadius,
			ThreadRadius:  cfg.Search.ThreadRadius,
			ConserveNodes: cfg.Search.ConserveNodes,
		})
		if err != nil {
			fmt.Fprintf(errw, "error: %v\n", err)
			return 1
		}
	}

	if jsonOutput {
		if err := report.JSON(w, g, res, alternates); err != nil {
			fmt.Fprintf(errw, "error: %v\n", err)
			return 2
		}
		return 0
	}

	report.Text(w, res, alternates)
	return 0
}

// runInteractive walks the wizard, prints the report, and opens the
// alternates browser when the search produced results. The selected
// geometry is echoed as "PES THREADS" for shell consumption.
func runInteractive(cfg config.Config, w, errw io.Writer) int {
	result, err := wizard.Run(cfg)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0
		}
		fmt.Fprintf(errw, "error: %v\n", err)
		return 2
	}

	res, err := geometry.Reserve(result.Geometry)
	if err != nil {
		fmt.Fprintf(errw, "error: %v\n", err)
		return 1
	}

	var alternates []geometry.Alternate
	if result.Suggest {
		alternates, err = geometry.Search(result.Geometry, result.Search)
		if err != nil {
			fmt.Fprintf(errw, "error: %v\n", err)
			return 1
		}
	}

	report.Text(w, res, alternates)

	if len(alternates) > 0 {
		model, err := tea.NewProgram(browser.New(alternates)).Run()
		if err != nil {
			fmt.Fprintf(errw, "error: %v\n", err)
			return 2
		}
		if choice := model.(browser.Model).Choice(); choice != nil {
			fmt.Fprintf(w, "%d %d\n", choice.Geometry.PEs, choice.Geometry.ThreadsPerPE)
		}
	}

	return 0
}

// parsePositiveInt validates a positional argument.
func parsePositiveInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be > 0, got %d", name, n)
	}
	return n, nil
}
