package repair

import (
	"context"
	"io"
	"os"
	"strings"
	stdunicode "unicode"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/backmassage/imagemend/internal/report"
	"github.com/backmassage/imagemend/internal/sniff"
)

const (
	// DefaultSnippetThreshold is the size below which a failing file gets
	// a content snippet, and the number of bytes read for it.
	DefaultSnippetThreshold = 1000
	snippetChars            = 100
	binaryNote              = "binary data"
)

// ContentSnippet records the readable prefix of small or textual files
// so a reader can tell "an HTML error page saved as .png" at a glance.
// Diagnostic only.
type ContentSnippet struct{ deps *Deps }

func (c *ContentSnippet) Name() string { return NameContentSnippet }

func (c *ContentSnippet) threshold() int64 {
	if c.deps.SnippetThreshold > 0 {
		return c.deps.SnippetThreshold
	}
	return DefaultSnippetThreshold
}

func (c *ContentSnippet) Applies(s *Subject) bool {
	return s.Size < c.threshold() || sniff.IsText(s.DetectedType)
}

func (c *ContentSnippet) Attempt(_ context.Context, s *Subject) []report.Attempt {
	f, err := os.Open(s.Path)
	if err != nil {
		return []report.Attempt{{Strategy: NameContentSnippet, Note: "Failed: " + err.Error()}}
	}
	defer f.Close()

	buf := make([]byte, c.threshold())
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return []report.Attempt{{Strategy: NameContentSnippet, Note: "Failed: " + err.Error()}}
	}
	return []report.Attempt{{Strategy: NameContentSnippet, Note: Snippet(buf[:n])}}
}

// Snippet decodes data permissively (UTF-8, or UTF-16 when a BOM says so),
// drops undecodable sequences and returns the first 100 characters. Mostly
// non-printable input yields "binary data".
func Snippet(data []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(dec, data)
	if err != nil {
		return binaryNote
	}

	var (
		b         strings.Builder
		kept      int
		total     int
		printable int
	)
	for _, r := range string(text) {
		total++
		if r == stdunicode.ReplacementChar || r == '\uFEFF' {
			continue
		}
		if kept < snippetChars {
			b.WriteRune(r)
		}
		kept++
		if isReadable(r) {
			printable++
		}
	}
	if printable == 0 || printable*2 < total {
		return binaryNote
	}
	return b.String()
}

func isReadable(r rune) bool {
	return r == '\n' || r == '\r' || r == '\t' || stdunicode.IsPrint(r)
}
