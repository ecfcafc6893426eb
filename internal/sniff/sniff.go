// Package sniff identifies a file's media type from its leading bytes,
// independent of its extension.
package sniff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/backmassage/imagemend/internal/tool"
)

// Unknown is recorded when sniffing failed.
const Unknown = "unknown"

// OctetStream is the type of empty or unrecognizable binary input.
const OctetStream = "application/octet-stream"

// headerSize covers every signature in the table, including tar at 257.
const headerSize = 512

type signature struct {
	mime   string
	offset int
	magic  []byte
}

// Ordered most specific first; RIFF and ISO-BMFF containers are refined
// after the match.
var signatures = []signature{
	{"image/jpeg", 0, []byte{0xFF, 0xD8, 0xFF}},
	{"image/png", 0, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
	{"image/gif", 0, []byte("GIF87a")},
	{"image/gif", 0, []byte("GIF89a")},
	{"image/webp", 8, []byte("WEBP")},
	{"image/bmp", 0, []byte("BM")},
	{"image/tiff", 0, []byte{'I', 'I', 0x2A, 0x00}},
	{"image/tiff", 0, []byte{'M', 'M', 0x00, 0x2A}},
	{"image/x-icon", 0, []byte{0x00, 0x00, 0x01, 0x00}},
	{"image/heic", 4, []byte("ftypheic")},
	{"image/heic", 4, []byte("ftypmif1")},
	{"image/avif", 4, []byte("ftypavif")},
	{"image/vnd.adobe.photoshop", 0, []byte("8BPS")},

	{"application/pdf", 0, []byte("%PDF-")},
	{"application/zip", 0, []byte{'P', 'K', 0x03, 0x04}},
	{"application/zip", 0, []byte{'P', 'K', 0x05, 0x06}},
	{"application/gzip", 0, []byte{0x1F, 0x8B}},
	{"application/x-tar", 257, []byte("ustar")},
	{"application/x-rar-compressed", 0, []byte("Rar!\x1a\x07")},
	{"application/x-7z-compressed", 0, []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}},
	{"application/x-bzip2", 0, []byte("BZh")},
	{"application/x-xz", 0, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}},

	{"audio/mpeg", 0, []byte("ID3")},
	{"audio/flac", 0, []byte("fLaC")},
	{"audio/ogg", 0, []byte("OggS")},
	{"audio/wav", 0, []byte("RIFF")},
	{"video/webm", 0, []byte{0x1A, 0x45, 0xDF, 0xA3}},
	{"video/mp4", 4, []byte("ftyp")},

	{"application/xml", 0, []byte("<?xml")},
	{"text/html", 0, []byte("<!DOCTYPE html")},
	{"text/html", 0, []byte("<!doctype html")},
	{"text/html", 0, []byte("<html")},
	{"text/html", 0, []byte("<HTML")},

	{"application/x-msdownload", 0, []byte("MZ")},
	{"application/x-executable", 0, []byte{0x7F, 'E', 'L', 'F'}},
	{"application/x-mach-binary", 0, []byte{0xCF, 0xFA, 0xED, 0xFE}},
}

// Sniff reads up to 512 bytes from path and returns its media type. An
// unreadable file is an error, never a guess.
func Sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", path, err)
	}
	defer f.Close()
	return Reader(f)
}

// Reader sniffs the first 512 bytes of r.
func Reader(r io.Reader) (string, error) {
	buf := make([]byte, headerSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("sniff: %w", err)
	}
	return Bytes(buf[:n]), nil
}

// Bytes returns the media type of data. Empty input is
// application/octet-stream.
func Bytes(data []byte) string {
	if len(data) == 0 {
		return OctetStream
	}
	if m := matchMagic(data); m != "" {
		return refine(data, m)
	}
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i > 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

func matchMagic(data []byte) string {
	for _, sig := range signatures {
		end := sig.offset + len(sig.magic)
		if end > len(data) {
			continue
		}
		if bytes.Equal(data[sig.offset:end], sig.magic) {
			return sig.mime
		}
	}
	return ""
}

func refine(data []byte, mime string) string {
	switch mime {
	case "audio/wav":
		if len(data) >= 12 {
			switch string(data[8:12]) {
			case "WEBP":
				return "image/webp"
			case "AVI ":
				return "video/x-msvideo"
			}
		}
	case "video/mp4":
		if len(data) >= 12 {
			switch string(data[8:12]) {
			case "M4A ":
				return "audio/mp4"
			case "qt  ":
				return "video/quicktime"
			}
		}
	}
	return mime
}

// Category returns a coarse family for a media type: image, text, audio,
// video, archive, document, executable or binary.
func Category(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "image"
	case IsText(mime):
		return "text"
	case strings.HasPrefix(mime, "audio/"):
		return "audio"
	case strings.HasPrefix(mime, "video/"):
		return "video"
	case strings.Contains(mime, "zip"), strings.Contains(mime, "tar"),
		strings.Contains(mime, "rar"), strings.Contains(mime, "7z"),
		strings.Contains(mime, "bzip"), strings.Contains(mime, "x-xz"):
		return "archive"
	case mime == "application/pdf":
		return "document"
	case mime == "application/x-msdownload", mime == "application/x-executable",
		mime == "application/x-mach-binary":
		return "executable"
	}
	return "binary"
}

// IsText reports whether mime names a textual format.
func IsText(mime string) bool {
	return strings.HasPrefix(mime, "text/") ||
		mime == "application/json" ||
		mime == "application/xml"
}

// Describe returns the `file -b` description of path. A missing file(1)
// yields tool.ErrUnavailable.
func Describe(ctx context.Context, r *tool.Runner, path string) (string, error) {
	res := r.Run(ctx, "file", "-b", path)
	if res.Err != nil {
		return "", res.Err
	}
	if !res.OK() {
		return "", fmt.Errorf("file: %s", res.Reason())
	}
	return strings.TrimSpace(res.Stdout), nil
}
