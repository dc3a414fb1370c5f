// ABOUTME: Resolved run configuration for pestr
// ABOUTME: Merges built-in defaults, a YAML config file, and PESTR_* env vars

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Built-in defaults, the lowest-precedence layer.
const (
	DefaultCPUsPerNode  = 128
	DefaultPERadius     = 0.25
	DefaultThreadRadius = 0.5
)

// Config holds every tunable the CLI resolves before the core runs.
// Precedence, lowest to highest: defaults, config file, PESTR_* environment
// variables. Command-line flags are layered on top by the cmd package.
type Config struct {
	CPUsPerNode int          `json:"cpus_per_node"`
	Search      SearchConfig `json:"search"`

	// File is the config file that was actually read, empty if none.
	File string `json:"file,omitempty"`
}

// SearchConfig holds the alternate-geometry search tunables.
type SearchConfig struct {
	PERadius      float64 `json:"pe_radius"`
	ThreadRadius  float64 `json:"thread_radius"`
	ConserveNodes bool    `json:"conserve_nodes"`
}

// DefaultPath returns the default config file location, following XDG
// conventions. Empty if no home directory can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pestr", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pestr", "config.yaml")
}

// Load resolves the configuration. An empty path means the default
// location, where a missing file silently falls back to defaults; an
// explicitly given file must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("cpus_per_node", DefaultCPUsPerNode)
	v.SetDefault("search.pe_radius", DefaultPERadius)
	v.SetDefault("search.thread_radius", DefaultThreadRadius)
	v.SetDefault("search.conserve_nodes", false)

	v.SetEnvPrefix("PESTR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	file := ""
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		err := v.ReadInConfig()
		switch {
		case err == nil:
			file = path
		case !explicit && errors.Is(err, fs.ErrNotExist):
			// No config file is fine; defaults and env apply.
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	return Config{
		CPUsPerNode: v.GetInt("cpus_per_node"),
		Search: SearchConfig{
			PERadius:      v.GetFloat64("search.pe_radius"),
			ThreadRadius:  v.GetFloat64("search.thread_radius"),
			ConserveNodes: v.GetBool("search.conserve_nodes"),
		},
		File: file,
	}, nil
}
