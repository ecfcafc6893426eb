package probe

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the decoded canvas so a forged header cannot make a
// single probe allocate gigabytes.
const MaxPixels = 178_956_970

// Probe fully decodes the file at path. It never returns an error and
// never panics; every failure is described in Result.Err.
func Probe(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return invalid("cannot read file: %v", err)
	}
	return Bytes(data)
}

// Bytes runs the same checks as Probe over an in-memory image.
func Bytes(data []byte) (res Result) {
	if len(data) == 0 {
		return invalid("empty file")
	}

	defer func() {
		if p := recover(); p != nil {
			res = invalid("decoder panic: %v", p)
		}
	}()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return invalid("%s", describe(err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return invalid("%s: zero image dimensions %dx%d", format, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return invalid("%s: image too large (%dx%d)", format, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return invalid("%s: %s", format, describe(err))
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return invalid("%s: zero image dimensions", format)
	}
	return Result{Valid: true, Width: b.Dx(), Height: b.Dy(), Format: format}
}

func describe(err error) string {
	switch {
	case errors.Is(err, image.ErrFormat):
		return "cannot identify image file"
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return "image file is truncated"
	}
	return err.Error()
}
