package probe

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/backmassage/imagemend/internal/testimage"
)

func TestProbe_ValidFormats(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 5, 3))
	gray.Set(1, 1, color.Gray{Y: 200})

	var bmpBuf, tiffBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, gray); err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(&tiffBuf, gray, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
		w, h   int
	}{
		{"a.png", testimage.PNG(t, 10, 10), "png", 10, 10},
		{"b.jpg", testimage.JPEG(t, 16, 8), "jpeg", 16, 8},
		{"c.gif", testimage.GIF(t, 4, 4), "gif", 4, 4},
		{"d.bmp", bmpBuf.Bytes(), "bmp", 5, 3},
		{"e.tiff", tiffBuf.Bytes(), "tiff", 5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testimage.Write(t, dir, tt.name, tt.data)
			got := Probe(p)
			if !got.Valid {
				t.Fatalf("Valid = false, Err = %q", got.Err)
			}
			if got.Format != tt.format {
				t.Errorf("Format = %q, want %q", got.Format, tt.format)
			}
			if got.Width != tt.w || got.Height != tt.h {
				t.Errorf("size = %s, want %dx%d", got.Dimensions(), tt.w, tt.h)
			}
			if got.Err != "" {
				t.Errorf("Err = %q, want empty", got.Err)
			}
		})
	}
}

func TestProbe_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{"truncated.png", testimage.Truncated(testimage.PNG(t, 64, 64)), ""},
		{"truncated.jpg", testimage.Truncated(testimage.JPEG(t, 64, 64)), ""},
		{"text.png", []byte("definitely not pixels"), "cannot identify image file"},
		{"empty.png", nil, "empty file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testimage.Write(t, dir, tt.name, tt.data)
			got := Probe(p)
			if got.Valid {
				t.Fatalf("Valid = true for %s", tt.name)
			}
			if got.Err == "" {
				t.Fatal("Err is empty for an invalid file")
			}
			if tt.wantErr != "" && !strings.Contains(got.Err, tt.wantErr) {
				t.Errorf("Err = %q, want it to contain %q", got.Err, tt.wantErr)
			}
		})
	}
}

func TestProbe_Unreadable(t *testing.T) {
	got := Probe(filepath.Join(t.TempDir(), "gone.png"))
	if got.Valid {
		t.Fatal("Valid = true for missing file")
	}
	if !strings.Contains(got.Err, "cannot read file") {
		t.Errorf("Err = %q", got.Err)
	}
}

func TestProbe_Deterministic(t *testing.T) {
	data := testimage.Truncated(testimage.PNG(t, 32, 32))
	first := Bytes(data)
	for i := 0; i < 3; i++ {
		if got := Bytes(data); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
}

func TestDimensions(t *testing.T) {
	if got := (Result{Width: 640, Height: 480}).Dimensions(); got != "640x480" {
		t.Errorf("Dimensions() = %q", got)
	}
}
