// Package tooltest builds fake external programs for tests: small shell
// scripts in a temp directory, resolved through tool.WithLookPath.
package tooltest

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/backmassage/imagemend/internal/tool"
)

// Bin is a directory of fake programs.
type Bin struct {
	Dir string
}

// NewBin creates an empty fake bin directory. Tests are skipped where
// /bin/sh scripts cannot run.
func NewBin(t testing.TB) *Bin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
	return &Bin{Dir: t.TempDir()}
}

// Script installs an executable named name whose body is a /bin/sh script.
func (b *Bin) Script(t testing.TB, name, body string) string {
	t.Helper()
	p := filepath.Join(b.Dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write fake %s: %v", name, err)
	}
	return p
}

// LookPath resolves only programs installed in the bin. Absolute paths
// are passed to exec.LookPath unchanged.
func (b *Bin) LookPath(name string) (string, error) {
	if filepath.IsAbs(name) {
		return exec.LookPath(name)
	}
	p := filepath.Join(b.Dir, name)
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return "", exec.ErrNotFound
	}
	return p, nil
}

// Runner returns a tool.Runner that only sees this bin's programs. A zero
// timeout selects tool.DefaultTimeout.
func (b *Bin) Runner(timeout time.Duration) *tool.Runner {
	return tool.New(timeout, tool.WithLookPath(b.LookPath))
}

// Empty returns a Runner for which every program is unavailable.
func Empty() *tool.Runner {
	return tool.New(0, tool.WithLookPath(func(string) (string, error) {
		return "", exec.ErrNotFound
	}))
}
