package config

// This file binds CLI flags. Flags are registered with DefaultConfig values
// so help text shows the defaults, but only flags the user actually set are
// copied into Config; that keeps file and environment overrides intact.

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Flag names shared by the CLI and ApplyFlags.
const (
	FlagConfig          = "config"
	FlagWorkers         = "workers"
	FlagTimeout         = "timeout"
	FlagMagick          = "magick"
	FlagVerbose         = "verbose"
	FlagColor           = "color"
	FlagNoColor         = "no-color"
	FlagLog             = "log"
	FlagIncludeRepaired = "include-repaired"
	FlagSkipFilter      = "skip-filter"
	FlagStrict          = "strict"
)

// DefineGlobalFlags registers flags that every subcommand accepts.
func DefineGlobalFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.String(FlagConfig, "", "YAML config file")
	fs.IntP(FlagWorkers, "j", def.Workers, "Files diagnosed in parallel")
	fs.Duration(FlagTimeout, def.ToolTimeout, "Timeout for each external tool invocation")
	fs.String(FlagMagick, "", "ImageMagick binary (magick | convert | absolute path)")
	fs.BoolP(FlagVerbose, "v", false, "Verbose output")
	fs.String(FlagColor, string(def.ColorMode), "Color output: auto | always | never")
	fs.Bool(FlagNoColor, false, "Same as --color=never")
	fs.StringP(FlagLog, "l", "", "Append logs to file")
}

// DefineFilterFlags registers flags for commands that build the dataset.
func DefineFilterFlags(fs *pflag.FlagSet) {
	fs.Bool(FlagIncludeRepaired, false, "Also copy validated files from the repair directory")
}

// DefineRunFlags registers flags specific to the full run command.
func DefineRunFlags(fs *pflag.FlagSet) {
	fs.Bool(FlagSkipFilter, false, "Stop after diagnosis; do not build the filtered dataset")
	fs.Bool(FlagStrict, false, "Exit non-zero when any file could not be fixed")
}

// ApplyFlags copies every flag the user set on fs into cfg. Flags that are
// not defined on fs are ignored, so the same function serves every command.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	var err error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return err == nil && f != nil && f.Changed
	}

	if changed(FlagWorkers) {
		cfg.Workers, err = fs.GetInt(FlagWorkers)
	}
	if changed(FlagTimeout) {
		cfg.ToolTimeout, err = fs.GetDuration(FlagTimeout)
	}
	if changed(FlagMagick) {
		cfg.MagickBinary, err = fs.GetString(FlagMagick)
	}
	if changed(FlagVerbose) {
		cfg.Verbose, err = fs.GetBool(FlagVerbose)
	}
	if changed(FlagColor) {
		var s string
		s, err = fs.GetString(FlagColor)
		cfg.ColorMode = ColorMode(s)
	}
	if changed(FlagNoColor) {
		var off bool
		off, err = fs.GetBool(FlagNoColor)
		if off {
			cfg.ColorMode = ColorNever
		}
	}
	if changed(FlagLog) {
		cfg.LogFile, err = fs.GetString(FlagLog)
	}
	if changed(FlagIncludeRepaired) {
		cfg.IncludeRepaired, err = fs.GetBool(FlagIncludeRepaired)
	}
	if changed(FlagSkipFilter) {
		cfg.SkipFilter, err = fs.GetBool(FlagSkipFilter)
	}
	if changed(FlagStrict) {
		cfg.Strict, err = fs.GetBool(FlagStrict)
	}
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	return nil
}

// Resolve builds the effective Config for a command invocation:
// defaults, then the --config file, then the environment, then set flags.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	cfg := DefaultConfig()

	if f := fs.Lookup(FlagConfig); f != nil && f.Value.String() != "" {
		if err := LoadFile(f.Value.String(), &cfg); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := ApplyFlags(fs, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
