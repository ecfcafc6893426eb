//go:build unix

package fsx

import (
	"errors"
	"os"
	"syscall"
	"testing"
)

func TestRename_CrossDeviceEXDEV(t *testing.T) {
	old := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	err := Rename("/a", "/b")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var xdev *CrossDeviceError
	if !errors.As(err, &xdev) {
		t.Fatalf("expected CrossDeviceError, got %T %v", err, err)
	}
}
