package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic_SuccessAndNoTempLeft(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteFileAtomic(dir, "report.txt", []byte("hello")))
	require.NoError(t, WriteFileAtomic(dir, "report.txt", []byte("replaced")))

	b, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(b))
	assertNoTemp(t, dir)
}

func TestWriteFileAtomic_RenameFail_NothingWritten(t *testing.T) {
	dir := t.TempDir()

	old := renameFunc
	renameFunc = func(oldpath, newpath string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	require.Error(t, WriteFileAtomic(dir, "report.txt", []byte("hello")))

	_, err := os.Stat(filepath.Join(dir, "report.txt"))
	assert.True(t, os.IsNotExist(err), "report must be absent after a failed write")
	assertNoTemp(t, dir)
}

func TestWriteFileAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "report.txt"), 0o755))

	err := WriteFileAtomic(dir, "report.txt", []byte("hello"))
	require.Error(t, err)
	assert.True(t, IsPathTypeConflict(err), "got %T %v", err, err)
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "repaired")

	require.NoError(t, EnsureDir(target))
	require.NoError(t, EnsureDir(target), "existing dir is fine")

	file := filepath.Join(dir, "filtered_dataset")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err := EnsureDir(file)
	require.Error(t, err)
	assert.True(t, IsPathTypeConflict(err))
}

func TestCopyFile_PreservesContentModeAndTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(src, []byte("pixels"), 0o600))
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	dst := filepath.Join(dir, "out.png")
	require.NoError(t, CopyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(b))

	fi, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, fi.ModTime().Equal(mtime), "mtime %v", fi.ModTime())
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	src2, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(src2), "source untouched")
	assertNoTemp(t, dir)
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, CopyFile(filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.png")))
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("different"), 0o644))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(fa, "xxh64:"))
	assert.Len(t, fa, len("xxh64:")+16)
	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)

	_, err = Fingerprint(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %q", e.Name())
		}
	}
}
