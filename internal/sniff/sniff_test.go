package sniff

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/imagemend/internal/tool"
	"github.com/backmassage/imagemend/internal/tool/tooltest"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, OctetStream},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, "image/jpeg"},
		{"png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), "image/png"},
		{"gif", []byte("GIF89a\x01\x00"), "image/gif"},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), "audio/wav"},
		{"bmp", []byte("BM\x36\x00\x00\x00"), "image/bmp"},
		{"tiff le", []byte{'I', 'I', 0x2A, 0x00, 0x08}, "image/tiff"},
		{"tiff be", []byte{'M', 'M', 0x00, 0x2A, 0x00}, "image/tiff"},
		{"pdf", []byte("%PDF-1.7\n"), "application/pdf"},
		{"zip", []byte("PK\x03\x04\x14\x00"), "application/zip"},
		{"html", []byte("<!DOCTYPE html><html></html>"), "text/html"},
		{"plain text", []byte("This is not an image, just notes.\n"), "text/plain"},
		{"short binary", []byte{0x00, 0x01, 0x02, 0x03}, OctetStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bytes(tt.data))
		})
	}
}

func TestSniff_File(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.png")
	require.NoError(t, os.WriteFile(p, []byte("hello world, I am text"), 0o644))

	got, err := Sniff(p)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", got)
}

func TestSniff_Unreadable(t *testing.T) {
	_, err := Sniff(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"image/png":                "image",
		"text/plain":               "text",
		"application/json":         "text",
		"application/zip":          "archive",
		"application/x-tar":        "archive",
		"application/pdf":          "document",
		"application/x-executable": "executable",
		"audio/ogg":                "audio",
		"video/webm":               "video",
		OctetStream:                "binary",
	}
	for mime, want := range tests {
		assert.Equal(t, want, Category(mime), mime)
	}
}

func TestDescribe(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "file", `echo "ASCII text"`)

	got, err := Describe(context.Background(), bin.Runner(0), "/tmp/whatever")
	require.NoError(t, err)
	assert.Equal(t, "ASCII text", got)

	_, err = Describe(context.Background(), tooltest.Empty(), "/tmp/whatever")
	assert.True(t, errors.Is(err, tool.ErrUnavailable))
}
