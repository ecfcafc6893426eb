package config

// This file layers the optional YAML config file and environment variables
// on top of DefaultConfig. Flags are applied last, see flags.go.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	envconfig "github.com/gobeaver/beaver-kit/config"
	"gopkg.in/yaml.v3"
)

// LoadFile decodes the YAML file at path over cfg. Keys that are absent
// keep their current value; unknown keys are an error so typos surface.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return decodeYAML(data, cfg)
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// envOverrides mirrors the overridable Config fields as raw strings so that
// "unset" can be told apart from a zero value. The loader prefixes every
// name with BEAVER_, e.g. BEAVER_IMAGEMEND_WORKERS.
type envOverrides struct {
	Workers         string `env:"IMAGEMEND_WORKERS"`
	ToolTimeout     string `env:"IMAGEMEND_TOOL_TIMEOUT"`
	MagickBinary    string `env:"IMAGEMEND_MAGICK_BINARY"`
	IncludeRepaired string `env:"IMAGEMEND_INCLUDE_REPAIRED"`
	Strict          string `env:"IMAGEMEND_STRICT"`
	Color           string `env:"IMAGEMEND_COLOR"`
	LogFile         string `env:"IMAGEMEND_LOG_FILE"`
}

// ApplyEnv reads IMAGEMEND_* overrides from the environment into cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Load(&env); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	return env.apply(cfg)
}

func (e *envOverrides) apply(cfg *Config) error {
	if v := strings.TrimSpace(e.Workers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("IMAGEMEND_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := strings.TrimSpace(e.ToolTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IMAGEMEND_TOOL_TIMEOUT: %w", err)
		}
		cfg.ToolTimeout = d
	}
	if v := strings.TrimSpace(e.MagickBinary); v != "" {
		cfg.MagickBinary = v
	}
	if v := strings.TrimSpace(e.IncludeRepaired); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IMAGEMEND_INCLUDE_REPAIRED: %w", err)
		}
		cfg.IncludeRepaired = b
	}
	if v := strings.TrimSpace(e.Strict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IMAGEMEND_STRICT: %w", err)
		}
		cfg.Strict = b
	}
	if v := strings.TrimSpace(e.Color); v != "" {
		cfg.ColorMode = ColorMode(strings.ToLower(v))
	}
	if v := strings.TrimSpace(e.LogFile); v != "" {
		cfg.LogFile = v
	}
	return nil
}
