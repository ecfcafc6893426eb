// Package check reports which optional external tools are usable
// (imagemend check) and performs the pre-pipeline dependency validation.
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/backmassage/imagemend/internal/config"
	"github.com/backmassage/imagemend/internal/magick"
	"github.com/backmassage/imagemend/internal/probe"
	"github.com/backmassage/imagemend/internal/report"
	"github.com/backmassage/imagemend/internal/tool"
)

// Tool names as shown in the check output and the report header.
const (
	ToolPngcheck    = "pngcheck"
	ToolImageMagick = "imagemagick"
	ToolFile        = "file"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrMagickNotFound   = errors.New("configured ImageMagick binary not found")
	ErrMagickTestFailed = errors.New("ImageMagick test re-encode failed")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Inventory probes each optional tool once.
func Inventory(ctx context.Context, cfg *config.Config, r *tool.Runner) []report.ToolStatus {
	enc := magick.NewEncoder(r, cfg.MagickBinary)

	statuses := []report.ToolStatus{
		{Name: ToolPngcheck, Purpose: "PNG chunk diagnostics"},
		{Name: ToolImageMagick, Purpose: "re-encode repairs"},
		{Name: ToolFile, Purpose: "content descriptions"},
	}
	for i := range statuses {
		s := &statuses[i]
		switch s.Name {
		case ToolPngcheck:
			s.Available = r.Available("pngcheck")
			if s.Available {
				s.Version = r.Version(ctx, "pngcheck", "-h")
			}
		case ToolImageMagick:
			if v, err := enc.Version(ctx); err == nil {
				s.Available, s.Version = true, v
			} else {
				s.Available = enc.Available()
			}
		case ToolFile:
			s.Available = r.Available("file")
			if s.Available {
				s.Version = r.Version(ctx, "file", "--version")
			}
		}
	}
	return statuses
}

// WarnMissing logs a warning for each unavailable tool, naming what is
// lost without it.
func WarnMissing(log Logger, statuses []report.ToolStatus) {
	for _, s := range statuses {
		if s.Available {
			continue
		}
		switch s.Name {
		case ToolImageMagick:
			log.Warn("ImageMagick not found. Re-encode and extension-change repairs will fail.")
		case ToolPngcheck:
			log.Warn("pngcheck not found. PNG analysis won't be available.")
		case ToolFile:
			log.Warn("file not found. Failed files won't get a content description.")
		}
	}
}

// RunCheck runs the interactive check flow: prints availability and
// versions of every tool and round-trips a tiny PNG through ImageMagick.
// It reports whether repairs can run at all.
func RunCheck(ctx context.Context, cfg *config.Config, r *tool.Runner, log Logger) bool {
	log.Info("=== System Check ===")

	statuses := Inventory(ctx, cfg, r)
	for _, s := range statuses {
		switch {
		case s.Available && s.Version != "":
			log.Success("%s: %s", s.Name, s.Version)
		case s.Available:
			log.Success("%s: available", s.Name)
		default:
			log.Warn("%s: not found (%s disabled)", s.Name, s.Purpose)
		}
	}

	enc := magick.NewEncoder(r, cfg.MagickBinary)
	if !enc.Available() {
		log.Error("No ImageMagick binary (magick or convert) on PATH")
		return false
	}
	log.Info("Testing ImageMagick re-encode...")
	if err := testReencode(ctx, enc); err != nil {
		log.Error("%v", err)
		return false
	}
	log.Success("ImageMagick re-encode works")
	return true
}

// CheckDeps is the pre-pipeline validation. Every tool is optional, but
// an explicitly configured ImageMagick binary must exist.
func CheckDeps(cfg *config.Config, r *tool.Runner) error {
	if cfg.MagickBinary == "" {
		return nil
	}
	if _, err := r.LookPath(cfg.MagickBinary); err != nil {
		return fmt.Errorf("%w: %s", ErrMagickNotFound, cfg.MagickBinary)
	}
	return nil
}

// testReencode writes a 4x4 PNG to a temp dir, strips it through the
// encoder and decodes the output.
func testReencode(ctx context.Context, enc *magick.Encoder) error {
	dir, err := os.MkdirTemp("", "imagemend-check-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	if err := os.WriteFile(src, buf.Bytes(), 0o644); err != nil {
		return err
	}

	out := enc.Strip(ctx, src, dst)
	if !out.OK() {
		return fmt.Errorf("%w: %s", ErrMagickTestFailed, out.Reason())
	}
	if res := probe.Probe(dst); !res.Valid {
		return fmt.Errorf("%w: %s", ErrMagickTestFailed, res.Err)
	}
	return nil
}
