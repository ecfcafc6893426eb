// Package repair implements the ordered repair strategies tried on a file
// that failed its validity probe. Strategies never modify the source; any
// file they produce lands in the repair directory and is kept only after
// it independently re-validates.
package repair

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/backmassage/imagemend/internal/logging"
	"github.com/backmassage/imagemend/internal/magick"
	"github.com/backmassage/imagemend/internal/probe"
	"github.com/backmassage/imagemend/internal/report"
	"github.com/backmassage/imagemend/internal/tool"
)

// Strategy names as they appear in attempts.
const (
	NamePngcheck        = "pngcheck"
	NameImageMagick     = "imagemagick"
	NameExtensionChange = "extension-change"
	NameContentSnippet  = "content-snippet"
)

// Subject is the file under repair.
type Subject struct {
	Path         string
	Name         string
	Base         string // Name without extension
	Ext          string // as found, e.g. ".PNG"
	Size         int64
	DetectedType string
	RepairDir    string
}

// NewSubject describes dir/name for the strategies.
func NewSubject(dir, name string, size int64, detectedType, repairDir string) *Subject {
	ext := filepath.Ext(name)
	return &Subject{
		Path:         filepath.Join(dir, name),
		Name:         name,
		Base:         strings.TrimSuffix(name, ext),
		Ext:          ext,
		Size:         size,
		DetectedType: detectedType,
		RepairDir:    repairDir,
	}
}

// Strategy is one repair technique.
type Strategy interface {
	Name() string
	Applies(s *Subject) bool
	Attempt(ctx context.Context, s *Subject) []report.Attempt
}

// Validator re-checks a produced artifact. probe.Probe in production.
type Validator func(path string) probe.Result

// Deps are the collaborators shared by the built-in strategies.
type Deps struct {
	Runner           *tool.Runner
	Encoder          *magick.Encoder
	Validate         Validator
	SnippetThreshold int64
	Log              logging.Leveled
	Verbose          bool
}

func (d *Deps) validate(path string) probe.Result {
	if d.Validate != nil {
		return d.Validate(path)
	}
	return probe.Probe(path)
}

func (d *Deps) debug(format string, args ...interface{}) {
	if d.Log != nil {
		d.Log.Debug(d.Verbose, format, args...)
	}
}

// Chain runs strategies in order.
type Chain struct {
	strategies []Strategy
}

// NewChain returns a chain over the given strategies.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Default is pngcheck, imagemagick, extension-change, content-snippet.
func Default(d *Deps) *Chain {
	return NewChain(
		&Pngcheck{deps: d},
		&ImageMagick{deps: d},
		&ExtensionChange{deps: d},
		&ContentSnippet{deps: d},
	)
}

// Names lists the strategies in execution order.
func (c *Chain) Names() []string {
	out := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Name()
	}
	return out
}

// Run executes every applicable strategy, even after one succeeds, and
// returns their attempts concatenated in order.
func (c *Chain) Run(ctx context.Context, s *Subject) []report.Attempt {
	var attempts []report.Attempt
	for _, st := range c.strategies {
		if !st.Applies(s) {
			continue
		}
		attempts = append(attempts, st.Attempt(ctx, s)...)
	}
	return attempts
}

// Succeeded returns the first successful attempt, if any.
func Succeeded(attempts []report.Attempt) (report.Attempt, bool) {
	for _, a := range attempts {
		if a.Succeeded {
			return a, true
		}
	}
	return report.Attempt{}, false
}
