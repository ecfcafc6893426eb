// Package logtest provides a recording logger for tests.
package logtest

import (
	"fmt"
	"strings"
	"sync"
)

// Line is one recorded log call.
type Line struct {
	Level string
	Msg   string
}

// Recorder implements logging.Leveled and keeps every line.
type Recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *Recorder) add(level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, Line{Level: level, Msg: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *Recorder) Success(f string, a ...interface{}) { r.add("OK", f, a...) }
func (r *Recorder) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *Recorder) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }

// Debug is recorded only when verbose, matching the real logger.
func (r *Recorder) Debug(verbose bool, f string, a ...interface{}) {
	if verbose {
		r.add("DEBUG", f, a...)
	}
}

// Lines returns a copy of everything recorded.
func (r *Recorder) Lines() []Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Line(nil), r.lines...)
}

// Contains reports whether any line at level contains substr.
func (r *Recorder) Contains(level, substr string) bool {
	for _, l := range r.Lines() {
		if l.Level == level && strings.Contains(l.Msg, substr) {
			return true
		}
	}
	return false
}
