package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *BatchReport {
	return &BatchReport{
		RunID:     "3f2b8c1e-0000-4000-8000-000000000001",
		SourceDir: "/data/images",
		StartedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Tools: []ToolStatus{
			{Name: "pngcheck", Available: true, Version: "pngcheck 3.0.3"},
			{Name: "imagemagick", Available: true, Version: "Version: ImageMagick 7.1.1-21"},
			{Name: "file"},
		},
		Records: []FileRecord{
			{
				Filename: "a.png", Size: 1234, DetectedType: "image/png",
				Checksum: "xxh64:00000000000000aa",
				Outcome:  OutcomeOK, Width: 10, Height: 10,
			},
			{
				Filename: "b.jpg", Size: 2048, DetectedType: "image/jpeg",
				Checksum:     "xxh64:00000000000000bb",
				ErrorMessage: "image file is truncated",
				Outcome:      OutcomeFixed,
				Fix:          "/data/images/repaired/b_repaired.jpg",
				Attempts: []Attempt{
					{Strategy: "imagemagick", Note: "FIXED: re-encoded with ImageMagick (64x48)", Succeeded: true, Artifact: "/data/images/repaired/b_repaired.jpg"},
					{Strategy: "extension-change", Note: "Failed with .png: improper image header"},
				},
			},
			{
				Filename: "c.png", Size: 23, DetectedType: "text/plain",
				Checksum:     "xxh64:00000000000000cc",
				Description:  "ASCII text",
				ErrorMessage: "cannot identify image file",
				Outcome:      OutcomeFailed,
				Attempts: []Attempt{
					{Strategy: "pngcheck", Note: "c.png  this is neither a PNG or JNG image nor a MNG stream\nERROR: c.png\n"},
					{Strategy: "imagemagick", Note: "Failed: improper image header"},
					{Strategy: "extension-change", Note: "Failed with .jpg: improper image header"},
					{Strategy: "content-snippet", Note: "hello world, I am text"},
				},
			},
			{Filename: "d.webp", Size: 0, Outcome: OutcomeSkipped},
		},
	}
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "batch_report", sampleReport().Bytes())
}

func TestCounts(t *testing.T) {
	c := sampleReport().Counts()
	assert.Equal(t, Counts{Total: 4, Valid: 1, Fixed: 1, Failed: 1, Skipped: 1}, c)
	assert.Equal(t, c.Total, c.Valid+c.Fixed+c.Failed+c.Skipped)
}

func TestFixedAndFailed_KeepOrder(t *testing.T) {
	b := &BatchReport{Records: []FileRecord{
		{Filename: "z.png", Outcome: OutcomeFailed},
		{Filename: "a.png", Outcome: OutcomeFixed},
		{Filename: "m.png", Outcome: OutcomeFailed},
	}}
	failed := b.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "z.png", failed[0].Filename)
	assert.Equal(t, "m.png", failed[1].Filename)
	assert.Len(t, b.Fixed(), 1)
}

func TestResult(t *testing.T) {
	tests := []struct {
		name string
		rec  FileRecord
		want string
	}{
		{"ok", FileRecord{Outcome: OutcomeOK, Width: 3, Height: 4}, "OK: Valid image (3x4)"},
		{"skipped", FileRecord{Outcome: OutcomeSkipped}, "SKIP: Zero-sized file"},
		{"fixed picks first success", FileRecord{Outcome: OutcomeFixed, Attempts: []Attempt{
			{Strategy: "imagemagick", Note: "Failed: x"},
			{Strategy: "extension-change", Note: "FIXED: changed extension to .jpg (8x8)", Succeeded: true},
			{Strategy: "extension-change", Note: "FIXED: changed extension to .png (8x8)", Succeeded: true},
		}}, "FIXED: changed extension to .jpg (8x8)"},
		{"failed without attempts", FileRecord{Outcome: OutcomeFailed, ErrorMessage: "stat: gone"}, "FAILED: stat: gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Result())
		})
	}
}

func TestWrite_Atomic(t *testing.T) {
	dir := t.TempDir()
	b := sampleReport()

	require.NoError(t, b.Write(dir, "image_repair_report.txt"))
	got, err := os.ReadFile(filepath.Join(dir, "image_repair_report.txt"))
	require.NoError(t, err)
	assert.Equal(t, string(b.Bytes()), string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the report remains")
}

func TestWrite_FailsWhenTargetIsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "image_repair_report.txt"), 0o755))

	err := sampleReport().Write(dir, "image_repair_report.txt")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "write report:"))
}

func TestNew_AssignsRunID(t *testing.T) {
	a := New("/x", time.Now())
	b := New("/x", time.Now())
	_, err := uuid.Parse(a.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}
