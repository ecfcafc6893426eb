package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/imagemend/internal/check"
	"github.com/backmassage/imagemend/internal/config"
	"github.com/backmassage/imagemend/internal/diagnose"
	"github.com/backmassage/imagemend/internal/display"
	"github.com/backmassage/imagemend/internal/fsx"
	"github.com/backmassage/imagemend/internal/logging"
	"github.com/backmassage/imagemend/internal/magick"
	"github.com/backmassage/imagemend/internal/repair"
	"github.com/backmassage/imagemend/internal/report"
	"github.com/backmassage/imagemend/internal/sniff"
	"github.com/backmassage/imagemend/internal/tool"
)

// Run is the top-level batch entry point. It discovers files, diagnoses
// them with at most cfg.Workers in flight, logs the summary and writes the
// report. Originals are never written, renamed or deleted.
//
// Cancelling ctx stops scheduling new files; files already started run to
// completion, then Run returns ctx.Err() without writing a report.
func Run(ctx context.Context, cfg *config.Config, runner *tool.Runner, log logging.Leveled) (*report.BatchReport, error) {
	start := time.Now()

	if err := check.CheckDeps(cfg, runner); err != nil {
		return nil, err
	}
	files, err := Discover(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	if err := fsx.EnsureDir(cfg.RepairDir()); err != nil {
		return nil, fmt.Errorf("create repair directory: %w", err)
	}

	rep := report.New(cfg.SourceDir, start)
	rep.Tools = check.Inventory(ctx, cfg, runner)
	check.WarnMissing(log, rep.Tools)

	stats := newRunStats(files)

	deps := &repair.Deps{
		Runner:           runner,
		Encoder:          magick.NewEncoder(runner, cfg.MagickBinary),
		SnippetThreshold: cfg.SnippetThreshold,
		Log:              log,
		Verbose:          cfg.Verbose,
	}
	chain := repair.Default(deps)
	diag := diagnose.New(chain, runner, cfg.RepairDir(), log, cfg.Verbose)
	logBatchHeader(cfg, log, stats, runner, chain)

	// A started file finishes even if the batch is cancelled.
	fileCtx := context.WithoutCancel(ctx)

	records := make([]report.FileRecord, len(files))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			log.Info("%s %s (%s)", display.FormatProgress(i+1, stats.Total), f.Name, display.FormatBytes(f.Size))
			rec := diag.Diagnose(fileCtx, cfg.SourceDir, f.Name)
			records[i] = rec
			stats.Finish(f.Size)
			logOutcome(log, rec)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("Interrupted after %d of %d files; no report written", stats.Done(), stats.Total)
		return nil, err
	}

	rep.Records = records
	rep.Duration = time.Since(start)
	logSummary(log, rep, stats)

	if err := rep.Write(cfg.SourceDir, cfg.ReportName); err != nil {
		return nil, err
	}
	log.Info("Detailed report saved to %s", cfg.ReportPath())
	return rep, nil
}

func logBatchHeader(cfg *config.Config, log logging.Leveled, stats *RunStats, runner *tool.Runner, chain *repair.Chain) {
	log.Info("Analyzing images in: %s", cfg.SourceDir)
	log.Info("Found %d files (%s)", stats.Total, display.FormatBytes(stats.TotalBytes))
	log.Debug(cfg.Verbose, "Workers: %d, tool timeout: %s", cfg.Workers, runner.Timeout())
	log.Debug(cfg.Verbose, "Repair chain: %s", strings.Join(chain.Names(), " -> "))
	log.Debug(cfg.Verbose, "Repair directory: %s", cfg.RepairDir())
}

func logOutcome(log logging.Leveled, rec report.FileRecord) {
	switch rec.Outcome {
	case report.OutcomeOK, report.OutcomeFixed:
		log.Success("  %s: %s", rec.Filename, rec.Result())
	case report.OutcomeSkipped:
		log.Warn("  %s: %s", rec.Filename, rec.Result())
	default:
		log.Error("  %s: %s", rec.Filename, rec.ErrorMessage)
		if cat := sniff.Category(rec.DetectedType); rec.DetectedType != sniff.Unknown && cat != "image" {
			log.Info("    content is %s (%s), not an image", cat, rec.DetectedType)
		}
		for _, a := range rec.Attempts {
			log.Info("    %s: %s", a.Strategy, firstLine(a.Note))
		}
	}
	if rec.Description != "" {
		log.Info("    file says: %s", rec.Description)
	}
}

func logSummary(log logging.Leveled, rep *report.BatchReport, stats *RunStats) {
	c := rep.Counts()
	log.Info("==== SUMMARY REPORT ====")
	log.Info("Total files: %d (%s in %s)", c.Total, display.FormatBytes(stats.DoneBytes()), display.FormatDuration(rep.Duration))
	log.Info("Valid files: %d", c.Valid)
	log.Info("Fixed files: %d", c.Fixed)
	log.Info("Failed files: %d", c.Failed)
	log.Info("Skipped files: %d", c.Skipped)

	if fixed := rep.Fixed(); len(fixed) > 0 {
		log.Info("== Successfully Fixed Files ==")
		for _, r := range fixed {
			log.Success("%s: %s -> %s", r.Filename, r.Result(), filepath.Base(r.Fix))
		}
	}
	if failed := rep.Failed(); len(failed) > 0 {
		log.Info("== Files That Could Not Be Fixed ==")
		for _, r := range failed {
			log.Error("%s: %s - %s", r.Filename, r.TypeLabel(), r.ErrorMessage)
		}
	}
	log.Info("== Suggestions ==")
	for _, s := range report.Suggestions {
		log.Info("%s", s)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
