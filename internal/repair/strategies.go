package repair

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/imagemend/internal/report"
)

// ExtensionCandidates are tried in this order by ExtensionChange.
var ExtensionCandidates = []string{".jpg", ".png"}

// Pngcheck records `pngcheck -v` diagnostics for PNG-looking files. It
// never produces a file and never counts as a fix.
type Pngcheck struct{ deps *Deps }

func (p *Pngcheck) Name() string { return NamePngcheck }

func (p *Pngcheck) Applies(s *Subject) bool {
	return strings.EqualFold(s.Ext, ".png") || strings.HasPrefix(s.DetectedType, "image/png")
}

func (p *Pngcheck) Attempt(ctx context.Context, s *Subject) []report.Attempt {
	res := p.deps.Runner.Run(ctx, "pngcheck", "-v", s.Path)
	note := res.Output()
	if res.Err != nil {
		note = res.Reason()
	}
	return []report.Attempt{{Strategy: NamePngcheck, Note: note}}
}

// ImageMagick force re-encodes the file with metadata stripped into
// <base>_repaired<ext>.
type ImageMagick struct{ deps *Deps }

func (m *ImageMagick) Name() string { return NameImageMagick }

func (m *ImageMagick) Applies(*Subject) bool { return true }

func (m *ImageMagick) Attempt(ctx context.Context, s *Subject) []report.Attempt {
	target := filepath.Join(s.RepairDir, s.Base+"_repaired"+s.Ext)
	res, reason := m.deps.produce(ctx, m.deps.Encoder.Strip, s.Path, target)
	if reason != "" {
		return []report.Attempt{{Strategy: NameImageMagick, Note: "Failed: " + reason}}
	}
	return []report.Attempt{{
		Strategy:  NameImageMagick,
		Note:      fmt.Sprintf("FIXED: re-encoded with ImageMagick (%s)", res.Dimensions()),
		Succeeded: true,
		Artifact:  target,
	}}
}

// ExtensionChange re-encodes into each candidate format other than the
// file's own, stopping at the first one that validates. Artifacts are named
// <name>_changed<cand> from the full source name, so x.bmp and x.webp
// never share a target.
type ExtensionChange struct{ deps *Deps }

func (e *ExtensionChange) Name() string { return NameExtensionChange }

func (e *ExtensionChange) Applies(*Subject) bool { return true }

func (e *ExtensionChange) Attempt(ctx context.Context, s *Subject) []report.Attempt {
	var attempts []report.Attempt
	for _, cand := range ExtensionCandidates {
		if strings.EqualFold(cand, s.Ext) {
			continue
		}
		target := filepath.Join(s.RepairDir, s.Name+"_changed"+cand)
		res, reason := e.deps.produce(ctx, e.deps.Encoder.Convert, s.Path, target)
		if reason != "" {
			attempts = append(attempts, report.Attempt{
				Strategy: NameExtensionChange,
				Note:     fmt.Sprintf("Failed with %s: %s", cand, reason),
			})
			continue
		}
		attempts = append(attempts, report.Attempt{
			Strategy:  NameExtensionChange,
			Note:      fmt.Sprintf("FIXED: changed extension to %s (%s)", cand, res.Dimensions()),
			Succeeded: true,
			Artifact:  target,
		})
		break
	}
	return attempts
}
