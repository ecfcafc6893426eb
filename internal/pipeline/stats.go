package pipeline

import "sync/atomic"

// RunStats tracks progress across a batch run. Workers update it
// concurrently.
type RunStats struct {
	Total      int
	TotalBytes int64

	done      atomic.Int64
	doneBytes atomic.Int64
}

func newRunStats(files []Entry) *RunStats {
	s := &RunStats{Total: len(files)}
	for _, f := range files {
		s.TotalBytes += f.Size
	}
	return s
}

// Finish records one completed file and returns how many are done.
func (s *RunStats) Finish(size int64) int {
	s.doneBytes.Add(size)
	return int(s.done.Add(1))
}

// Done returns the number of completed files.
func (s *RunStats) Done() int { return int(s.done.Load()) }

// DoneBytes returns the bytes of completed files.
func (s *RunStats) DoneBytes() int64 { return s.doneBytes.Load() }
