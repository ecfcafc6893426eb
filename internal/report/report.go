package report

import (
	"time"

	"github.com/google/uuid"
)

// ToolStatus records whether an optional external program was usable.
type ToolStatus struct {
	Name      string
	Purpose   string
	Available bool
	Version   string
}

// Counts are derived from the records; never stored independently.
type Counts struct {
	Total   int
	Valid   int
	Fixed   int
	Failed  int
	Skipped int
}

// BatchReport is the result of one run. Records keep discovery order.
type BatchReport struct {
	RunID     string
	SourceDir string
	StartedAt time.Time
	Duration  time.Duration
	Tools     []ToolStatus
	Records   []FileRecord
}

// New starts a report for dir with a fresh run ID.
func New(dir string, started time.Time) *BatchReport {
	return &BatchReport{
		RunID:     uuid.NewString(),
		SourceDir: dir,
		StartedAt: started,
	}
}

// Counts tallies outcomes.
func (b *BatchReport) Counts() Counts {
	c := Counts{Total: len(b.Records)}
	for _, r := range b.Records {
		switch r.Outcome {
		case OutcomeOK:
			c.Valid++
		case OutcomeFixed:
			c.Fixed++
		case OutcomeFailed:
			c.Failed++
		case OutcomeSkipped:
			c.Skipped++
		}
	}
	return c
}

// Fixed returns the FIXED records in order.
func (b *BatchReport) Fixed() []FileRecord { return b.with(OutcomeFixed) }

// Failed returns the FAILED records in order.
func (b *BatchReport) Failed() []FileRecord { return b.with(OutcomeFailed) }

func (b *BatchReport) with(o Outcome) []FileRecord {
	var out []FileRecord
	for _, r := range b.Records {
		if r.Outcome == o {
			out = append(out, r)
		}
	}
	return out
}
