// Package diagnose produces the FileRecord for one file: a zero-size
// check, a full-decode probe, and on failure the repair chain.
package diagnose

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/backmassage/imagemend/internal/fsx"
	"github.com/backmassage/imagemend/internal/logging"
	"github.com/backmassage/imagemend/internal/probe"
	"github.com/backmassage/imagemend/internal/repair"
	"github.com/backmassage/imagemend/internal/report"
	"github.com/backmassage/imagemend/internal/sniff"
	"github.com/backmassage/imagemend/internal/tool"
)

// Diagnoser is safe for concurrent use when its collaborators are.
type Diagnoser struct {
	chain     *repair.Chain
	runner    *tool.Runner
	repairDir string
	log       logging.Leveled
	verbose   bool
	prober    func(string) probe.Result
}

// Option customizes a Diagnoser.
type Option func(*Diagnoser)

// WithProber replaces probe.Probe.
func WithProber(fn func(string) probe.Result) Option {
	return func(d *Diagnoser) { d.prober = fn }
}

// New returns a Diagnoser that writes artifacts under repairDir.
func New(chain *repair.Chain, runner *tool.Runner, repairDir string, log logging.Leveled, verbose bool, opts ...Option) *Diagnoser {
	d := &Diagnoser{
		chain:     chain,
		runner:    runner,
		repairDir: repairDir,
		log:       log,
		verbose:   verbose,
		prober:    probe.Probe,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Diagnose classifies dir/name. It never fails: every problem, including
// the file vanishing since discovery, is recorded in the returned record.
func (d *Diagnoser) Diagnose(ctx context.Context, dir, name string) report.FileRecord {
	path := filepath.Join(dir, name)
	rec := report.FileRecord{Filename: name}
	state := StatePending

	move := func(next State) {
		if state.Terminal() {
			d.log.Debug(d.verbose, "%s: already %s, ignoring %s", name, state, next)
			return
		}
		d.log.Debug(d.verbose, "%s: %s -> %s", name, state, next)
		state = next
	}

	fi, err := os.Stat(path)
	if err != nil {
		rec.ErrorMessage = "cannot stat file: " + err.Error()
		rec.Outcome = report.OutcomeFailed
		move(StateFailed)
		return rec
	}
	rec.Size = fi.Size()

	if rec.Size == 0 {
		rec.Outcome = report.OutcomeSkipped
		move(StateSkipped)
		return rec
	}

	if sum, err := fsx.Fingerprint(path); err == nil {
		rec.Checksum = sum
	} else {
		d.log.Debug(d.verbose, "%s: checksum: %v", name, err)
	}

	if mime, err := sniff.Sniff(path); err != nil {
		rec.DetectedType = sniff.Unknown
		rec.SniffError = err.Error()
	} else {
		rec.DetectedType = mime
	}
	d.log.Debug(d.verbose, "%s: detected type %s", name, rec.DetectedType)

	move(StateProbing)
	res := d.prober(path)
	if res.Valid {
		rec.Width, rec.Height = res.Width, res.Height
		rec.Outcome = report.OutcomeOK
		move(StateOK)
		return rec
	}
	rec.ErrorMessage = res.Err

	move(StateRepairing)
	desc, err := sniff.Describe(ctx, d.runner, path)
	switch {
	case err == nil:
		rec.Description = desc
	case errors.Is(err, tool.ErrUnavailable):
		// file(1) is optional.
	default:
		d.log.Debug(d.verbose, "%s: file(1): %v", name, err)
	}

	subject := repair.NewSubject(dir, name, rec.Size, rec.DetectedType, d.repairDir)
	rec.Attempts = d.chain.Run(ctx, subject)
	if fix, ok := repair.Succeeded(rec.Attempts); ok {
		rec.Fix = fix.Artifact
		rec.Outcome = report.OutcomeFixed
		move(StateFixed)
		return rec
	}
	rec.Outcome = report.OutcomeFailed
	move(StateFailed)
	return rec
}
