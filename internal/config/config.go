// Package config holds runtime configuration: defaults, config-file and
// environment overrides, CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Fixed output names inside the source directory.
const (
	DefaultReportName    = "image_repair_report.txt"
	DefaultRepairDirName = "repaired"
	DefaultFilterDirName = "filtered_dataset"
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then layered with a YAML file ([LoadFile]), the environment ([ApplyEnv])
// and CLI flags ([ApplyFlags]) before being passed (by pointer) to the
// packages that need it.
type Config struct {
	// Paths (set from positional args).
	SourceDir string `yaml:"-"`

	// Processing.
	Workers          int           `yaml:"workers"`           // Default: runtime.NumCPU().
	ToolTimeout      time.Duration `yaml:"tool_timeout"`      // Default: 30s per external invocation.
	SnippetThreshold int64         `yaml:"snippet_threshold"` // Default: 1000 bytes.
	MagickBinary     string        `yaml:"magick_binary"`     // Empty: prefer "magick", fall back to "convert".

	// Behavior flags.
	IncludeRepaired bool `yaml:"include_repaired"` // Filter also copies validated repair artifacts.
	SkipFilter      bool `yaml:"skip_filter"`      // "run" stops after diagnosis.
	Strict          bool `yaml:"strict"`           // Exit non-zero when any file is FAILED.

	// Output names (relative to SourceDir).
	ReportName    string `yaml:"report_name"`
	RepairDirName string `yaml:"repair_dir"`
	FilterDirName string `yaml:"filter_dir"`

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`
	LogFile   string    `yaml:"log_file"`
}

// DefaultConfig returns a Config with the defaults used before any file,
// environment or flag override is applied.
func DefaultConfig() Config {
	return Config{
		Workers:          runtime.NumCPU(),
		ToolTimeout:      30 * time.Second,
		SnippetThreshold: 1000,
		ReportName:       DefaultReportName,
		RepairDirName:    DefaultRepairDirName,
		FilterDirName:    DefaultFilterDirName,
		ColorMode:        ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks numeric ranges, enum fields and output names. SourceDir
// is not required here; commands that need it check it themselves.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid workers %d (must be at least 1)", c.Workers)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("invalid tool timeout %s (must be positive)", c.ToolTimeout)
	}
	if c.SnippetThreshold <= 0 {
		return fmt.Errorf("invalid snippet threshold %d (must be positive)", c.SnippetThreshold)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	for _, n := range []struct{ field, value string }{
		{"report name", c.ReportName},
		{"repair dir", c.RepairDirName},
		{"filter dir", c.FilterDirName},
	} {
		if err := validateName(n.value); err != nil {
			return fmt.Errorf("invalid %s: %w", n.field, err)
		}
	}
	if c.RepairDirName == c.FilterDirName {
		return errors.New("repair dir and filter dir must differ")
	}

	switch c.MagickBinary {
	case "", "magick", "convert":
		// valid
	default:
		if !filepath.IsAbs(c.MagickBinary) {
			return fmt.Errorf("invalid magick binary %q (use 'magick', 'convert' or an absolute path)", c.MagickBinary)
		}
	}
	return nil
}

// validateName requires a single path element: the outputs always live
// directly inside the source directory.
func validateName(name string) error {
	if name == "" {
		return errors.New("must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q must be a plain file or directory name", name)
	}
	return nil
}

// ReportPath is the report file inside SourceDir.
func (c *Config) ReportPath() string { return filepath.Join(c.SourceDir, c.ReportName) }

// RepairDir is the repair-artifact directory inside SourceDir.
func (c *Config) RepairDir() string { return filepath.Join(c.SourceDir, c.RepairDirName) }

// FilterDir is the curated dataset directory inside SourceDir.
func (c *Config) FilterDir() string { return filepath.Join(c.SourceDir, c.FilterDirName) }
