// ABOUTME: Interactive geometry entry built on huh forms
// ABOUTME: Collects job shape and search options when no arguments are given

package wizard

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hpcutil/pestr/internal/config"
	"github.com/hpcutil/pestr/internal/geometry"
	"github.com/hpcutil/pestr/internal/tui/styles"
)

// Result carries the values collected by the wizard.
type Result struct {
	Geometry geometry.Geometry
	Search   geometry.SearchOptions
	Suggest  bool
}

// Run presents the form, seeded with resolved configuration values, and
// returns the collected inputs. Cancelling the form returns
// huh.ErrUserAborted.
func Run(cfg config.Config) (*Result, error) {
	var (
		pes            string
		threads        string
		cpusPerNode    = strconv.Itoa(cfg.CPUsPerNode)
		hyperthreading bool
		suggest        bool
		peRadius       = formatRadius(cfg.Search.PERadius)
		threadRadius   = formatRadius(cfg.Search.ThreadRadius)
		conserveNodes  = cfg.Search.ConserveNodes
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("PEs").
				Description("Number of PEs (MPI tasks) allocated to the job").
				Value(&pes).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Threads per PE").
				Value(&threads).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("CPUs per node").
				Description("Physical CPU cores per node on the target machine").
				Value(&cpusPerNode).
				Validate(validatePositiveInt),
			huh.NewConfirm().
				Title("Hyperthreading?").
				Description("Doubles the usable CPU count per node").
				Value(&hyperthreading),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Suggest alternate geometries?").
				Value(&suggest),
			huh.NewInput().
				Title("PE radius").
				Description("Fractional search distance around the PE count").
				Value(&peRadius).
				Validate(validateRadius),
			huh.NewInput().
				Title("Thread radius").
				Description("Fractional search distance around the thread count").
				Value(&threadRadius).
				Validate(validateRadius),
			huh.NewConfirm().
				Title("Conserve node count?").
				Description("Only suggest geometries using the same number of nodes").
				Value(&conserveNodes),
		),
	).WithTheme(formTheme())

	if err := form.Run(); err != nil {
		return nil, err
	}

	// Validators ran already; these parses cannot fail.
	peCount, _ := strconv.Atoi(pes)
	threadCount, _ := strconv.Atoi(threads)
	nodeCPUs, _ := strconv.Atoi(cpusPerNode)
	peR, _ := strconv.ParseFloat(peRadius, 64)
	threadR, _ := strconv.ParseFloat(threadRadius, 64)

	return &Result{
		Geometry: geometry.Geometry{
			PEs:            peCount,
			ThreadsPerPE:   threadCount,
			CPUsPerNode:    nodeCPUs,
			Hyperthreading: hyperthreading,
		},
		Search: geometry.SearchOptions{
			PERadius:      peR,
			ThreadRadius:  threadR,
			ConserveNodes: conserveNodes,
		},
		Suggest: suggest,
	}, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a positive integer")
	}
	if n < 1 {
		return fmt.Errorf("must be > 0")
	}
	return nil
}

func validateRadius(s string) error {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("must be a real number")
	}
	if r < 0 {
		return fmt.Errorf("must be >= 0")
	}
	return nil
}

func formatRadius(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}

// formTheme adapts the base huh theme to the shared palette.
func formTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(styles.Muted)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(styles.Danger).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(styles.Danger)

	return t
}
