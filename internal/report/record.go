// Package report holds the per-file outcome records of a batch run and
// renders them into the durable text report.
package report

import (
	"fmt"
	"strings"
)

// Outcome is the terminal classification of one file.
type Outcome string

const (
	OutcomeOK      Outcome = "OK"
	OutcomeFixed   Outcome = "FIXED"
	OutcomeFailed  Outcome = "FAILED"
	OutcomeSkipped Outcome = "SKIPPED"
)

// Attempt is one repair strategy step. A strategy may record several.
type Attempt struct {
	Strategy  string
	Note      string
	Succeeded bool
	Artifact  string // promoted file under repaired/, set only on success
}

// FileRecord is the diagnosis of one discovered file.
type FileRecord struct {
	Filename     string
	Size         int64
	DetectedType string // empty when never sniffed (zero-size)
	SniffError   string
	Description  string // file(1) output, failures only
	ErrorMessage string // first probe failure
	Outcome      Outcome
	Width        int
	Height       int
	Fix          string // artifact of the first succeeding attempt
	Attempts     []Attempt
	Checksum     string
}

// Result is the one-line verdict shown in logs and the report.
func (r FileRecord) Result() string {
	switch r.Outcome {
	case OutcomeOK:
		return fmt.Sprintf("OK: Valid image (%dx%d)", r.Width, r.Height)
	case OutcomeSkipped:
		return "SKIP: Zero-sized file"
	case OutcomeFixed:
		for _, a := range r.Attempts {
			if a.Succeeded {
				return a.Note
			}
		}
		return "FIXED"
	}
	if len(r.Attempts) == 0 {
		if r.ErrorMessage != "" {
			return "FAILED: " + r.ErrorMessage
		}
		return "FAILED"
	}
	parts := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		parts = append(parts, a.Strategy+": "+firstLine(a.Note))
	}
	return "FAILED: " + strings.Join(parts, "; ")
}

// TypeLabel is the detected type as printed, "zero-size" for skipped files.
func (r FileRecord) TypeLabel() string {
	switch {
	case r.DetectedType != "":
		return r.DetectedType
	case r.Outcome == OutcomeSkipped:
		return "zero-size"
	}
	return "-"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
