package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/imagemend/internal/config"
	"github.com/backmassage/imagemend/internal/fsx"
	"github.com/backmassage/imagemend/internal/logging"
	"github.com/backmassage/imagemend/internal/pipeline"
	"github.com/backmassage/imagemend/internal/probe"
)

// Pass identifies where a candidate came from.
type Pass int

const (
	PassOriginal Pass = iota
	PassRepaired
)

func (p Pass) String() string {
	if p == PassRepaired {
		return "repaired"
	}
	return "original"
}

// Result summarizes one Filter run.
type Result struct {
	Copied     int
	Rejected   int
	Renamed    int
	Duplicates int
	Failed     int
	Names      []string // target names in filtered_dataset, in copy order
	Stale      []string // files in filtered_dataset this run did not write
}

type candidate struct {
	pass Pass
	name string
	path string
	res  probe.Result
}

// Filter re-probes the source directory (and repaired/ when
// cfg.IncludeRepaired is set) and copies every valid image into
// cfg.FilterDir(). Probing runs on cfg.Workers goroutines; copies happen
// afterwards in order, original pass first. A copy that fails is logged
// and counted; only setup failures are returned as errors.
func Filter(ctx context.Context, cfg *config.Config, log logging.Leveled) (Result, error) {
	var result Result

	cands, err := collect(cfg)
	if err != nil {
		return result, err
	}
	if err := fsx.EnsureDir(cfg.FilterDir()); err != nil {
		return result, fmt.Errorf("create filtered dataset directory: %w", err)
	}
	log.Info("Filtering %d files into %s", len(cands), cfg.FilterDir())

	if err := probeAll(ctx, cands, cfg.Workers); err != nil {
		return result, err
	}

	resolver := NewCollisionResolver()
	for _, c := range cands {
		if !c.res.Valid {
			result.Rejected++
			log.Debug(cfg.Verbose, "rejected %s %s: %s", c.pass, c.name, c.res.Err)
			continue
		}

		// An unreadable file gets an empty fingerprint, which never matches.
		sum, _ := fsx.Fingerprint(c.path)
		target, dup := resolver.Resolve(c.path, c.name, sum)
		if dup {
			result.Duplicates++
			log.Debug(cfg.Verbose, "skipped %s: same content as %s", c.name, target)
			continue
		}
		if target != c.name {
			result.Renamed++
			log.Warn("%s %s collides with an existing name, copied as %s", c.pass, c.name, target)
		}

		if err := fsx.CopyFile(c.path, filepath.Join(cfg.FilterDir(), target)); err != nil {
			result.Failed++
			log.Error("copy %s: %v", c.name, err)
			continue
		}
		result.Copied++
		result.Names = append(result.Names, target)
	}

	log.Success("Created filtered dataset with %d valid images", result.Copied)
	if result.Rejected > 0 {
		log.Info("Left out %d files that did not decode", result.Rejected)
	}

	// Earlier runs' copies are never deleted; report them instead.
	result.Stale = staleFiles(cfg.FilterDir(), result.Names)
	if n := len(result.Stale); n > 0 {
		log.Warn("%d files in %s were not verified by this run and were left in place: %s",
			n, cfg.FilterDir(), strings.Join(result.Stale, ", "))
	}
	return result, nil
}

// staleFiles lists regular files in dir whose names are not in written.
// Dot files are skipped.
func staleFiles(dir string, written []string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	keep := make(map[string]bool, len(written))
	for _, name := range written {
		keep[name] = true
	}
	var stale []string
	for _, e := range entries {
		if keep[e.Name()] || strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		stale = append(stale, e.Name())
	}
	return stale
}

// collect lists original-pass candidates, then repaired-pass candidates.
func collect(cfg *config.Config) ([]candidate, error) {
	entries, err := pipeline.Discover(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		cands = append(cands, candidate{
			pass: PassOriginal,
			name: e.Name,
			path: filepath.Join(cfg.SourceDir, e.Name),
		})
	}
	if !cfg.IncludeRepaired {
		return cands, nil
	}

	names, err := repairedFiles(cfg.RepairDir())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		cands = append(cands, candidate{
			pass: PassRepaired,
			name: name,
			path: filepath.Join(cfg.RepairDir(), name),
		})
	}
	return cands, nil
}

// repairedFiles returns the sorted regular files in dir. A missing dir is
// not an error. Dot files are in-flight temp artifacts and are ignored.
func repairedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// probeAll fills in res for every candidate. Cancellation stops scheduling
// and is returned once in-flight probes finish.
func probeAll(ctx context.Context, cands []candidate, workers int) error {
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range cands {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			cands[i].res = probe.Probe(cands[i].path)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
