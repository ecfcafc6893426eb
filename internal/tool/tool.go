// Package tool runs the optional external programs the pipeline leans on
// (pngcheck, ImageMagick, file) with a per-invocation timeout and captured
// output. A missing binary or an expired deadline is reported through
// sentinel errors so callers can record it as a repair note instead of
// failing the batch.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrUnavailable is returned when a program cannot be found on PATH.
	ErrUnavailable = errors.New("tool unavailable")
	// ErrTimeout is returned when a program outlives the runner timeout.
	ErrTimeout = errors.New("timed out")
)

// DefaultTimeout bounds a single invocation when the runner has none.
const DefaultTimeout = 30 * time.Second

// Result holds the outcome of a single external invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// OK reports whether the program ran and exited 0.
func (r Result) OK() bool { return r.Err == nil && r.ExitCode == 0 }

// Output returns trimmed stderr, or trimmed stdout when stderr is empty.
func (r Result) Output() string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Reason is a one-line failure description suited for a repair note.
func (r Result) Reason() string {
	switch {
	case errors.Is(r.Err, ErrUnavailable):
		return ErrUnavailable.Error()
	case errors.Is(r.Err, ErrTimeout):
		return r.Err.Error()
	}
	if out := firstLine(r.Output()); out != "" {
		return out
	}
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.ExitCode != 0 {
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
	return ""
}

// Runner executes external programs. The zero value is not usable; build
// one with New.
type Runner struct {
	timeout  time.Duration
	lookPath func(string) (string, error)
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLookPath replaces PATH resolution, mainly so tests can point at
// fake scripts.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Runner) { r.lookPath = fn }
}

// New returns a Runner bounding each invocation by timeout.
func New(timeout time.Duration, opts ...Option) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	r := &Runner{timeout: timeout, lookPath: exec.LookPath}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Timeout returns the per-invocation limit.
func (r *Runner) Timeout() time.Duration { return r.timeout }

// LookPath resolves name to an executable path or wraps ErrUnavailable.
func (r *Runner) LookPath(name string) (string, error) {
	p, err := r.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, ErrUnavailable)
	}
	return p, nil
}

// Available reports whether name resolves.
func (r *Runner) Available(name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}

// Resolve returns the first of names that resolves, in order.
func (r *Runner) Resolve(names ...string) (string, error) {
	for _, n := range names {
		if r.Available(n) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%s: %w", strings.Join(names, "|"), ErrUnavailable)
}

// Run executes name with args under the runner timeout and captures both
// output streams. It never returns a Go error; failures live in Result.Err.
func (r *Runner) Run(ctx context.Context, name string, args ...string) Result {
	path, err := r.LookPath(name)
	if err != nil {
		return Result{ExitCode: -1, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Err = fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		res.ExitCode = -1
	case ctx.Err() != nil:
		res.Err = ctx.Err()
		res.ExitCode = -1
	case runErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			res.Err = fmt.Errorf("%s: %w", name, runErr)
			if res.ExitCode == 0 {
				res.ExitCode = -1
			}
		}
	}
	return res
}

// Version runs `name <flag>` and returns the first output line, or "" when
// the program is missing or fails.
func (r *Runner) Version(ctx context.Context, name, flag string) string {
	res := r.Run(ctx, name, flag)
	if res.Err != nil {
		return ""
	}
	return firstLine(strings.TrimSpace(res.Stdout + "\n" + res.Stderr))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
