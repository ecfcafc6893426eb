package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/backmassage/imagemend/internal/fsx"
)

// Suggestions close every report and the console summary.
var Suggestions = []string{
	"1. For all fixed files, check the 'repaired' directory and verify the images look correct",
	"2. For failed files, consider:",
	"   - Recreating or re-downloading the original images",
	"   - Checking if the file extensions match the actual content type",
	"   - Using specialized repair tools for specific formats",
}

// Render writes the text report to w.
func (b *BatchReport) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...any) { fmt.Fprintf(bw, format, args...) }

	p("Image Repair Report\n")
	p("==================\n\n")

	p("Run: %s\n", b.RunID)
	p("Source: %s\n", b.SourceDir)
	p("Started: %s\n", b.StartedAt.UTC().Format(time.RFC3339))
	p("Duration: %s\n\n", b.Duration.Round(time.Millisecond))

	if len(b.Tools) > 0 {
		p("Tools:\n")
		for _, t := range b.Tools {
			state := "unavailable"
			if t.Available {
				state = "available"
				if t.Version != "" {
					state += " (" + t.Version + ")"
				}
			}
			p("- %s: %s\n", t.Name, state)
		}
		p("\n")
	}

	c := b.Counts()
	p("Summary:\n")
	p("- Total files: %d\n", c.Total)
	p("- Valid files: %d\n", c.Valid)
	p("- Fixed files: %d\n", c.Fixed)
	p("- Failed files: %d\n", c.Failed)
	p("- Skipped files: %d\n\n", c.Skipped)

	p("Detailed Results:\n")
	for _, r := range b.Records {
		p("%s\n", r.Filename)
		p("  Type: %s\n", r.TypeLabel())
		p("  Size: %d bytes\n", r.Size)
		if r.Checksum != "" {
			p("  Checksum: %s\n", r.Checksum)
		}
		if r.SniffError != "" {
			p("  Sniff error: %s\n", r.SniffError)
		}
		if r.Description != "" {
			p("  Description: %s\n", r.Description)
		}
		if r.ErrorMessage != "" {
			p("  Error: %s\n", r.ErrorMessage)
		}
		p("  Result: %s\n", r.Result())
		if r.Fix != "" {
			p("  Fix: %s\n", r.Fix)
		}
		if len(r.Attempts) > 0 {
			p("  Attempts:\n")
			for _, a := range r.Attempts {
				p("    - %s: %s\n", a.Strategy, indent(a.Note, "      "))
			}
		}
		p("\n")
	}

	if fixed := b.Fixed(); len(fixed) > 0 {
		p("Successfully Fixed Files:\n")
		for _, r := range fixed {
			p("%s: %s\n", r.Filename, r.Result())
		}
		p("\n")
	}
	if failed := b.Failed(); len(failed) > 0 {
		p("Files That Could Not Be Fixed:\n")
		for _, r := range failed {
			p("%s: %s - %s\n", r.Filename, r.TypeLabel(), r.ErrorMessage)
		}
		p("\n")
	}

	p("Suggestions:\n")
	for _, s := range Suggestions {
		p("%s\n", s)
	}
	return bw.Flush()
}

// Bytes renders the report into memory.
func (b *BatchReport) Bytes() []byte {
	var buf bytes.Buffer
	_ = b.Render(&buf)
	return buf.Bytes()
}

// Write stores the rendered report as dir/name, replacing any previous
// report atomically.
func (b *BatchReport) Write(dir, name string) error {
	if err := fsx.WriteFileAtomic(dir, name, b.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// indent prefixes every line after the first so multi-line tool output
// stays inside its attempt entry.
func indent(s, prefix string) string {
	s = strings.TrimRight(s, "\n")
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
