package magick

import (
	"regexp"
	"strings"
)

// Kind classifies a failed re-encode.
type Kind int

const (
	KindNone Kind = iota
	KindMissingDelegate
	KindCorruptData
	KindUnsupported
	KindPolicy
	KindToolError
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMissingDelegate:
		return "missing delegate"
	case KindCorruptData:
		return "corrupt data"
	case KindUnsupported:
		return "unsupported format"
	case KindPolicy:
		return "blocked by policy"
	}
	return "tool error"
}

// Checked in order by Classify; the first match wins.
var (
	reMissingDelegate = regexp.MustCompile(
		`(?i)no decode delegate for this image format|` +
			`no encode delegate for this image format|` +
			`delegate library support not built-in`)

	reCorruptData = regexp.MustCompile(
		`(?i)improper image header|` +
			`corrupt image|` +
			`premature end of (jpeg|data)|` +
			`insufficient image data|` +
			`unexpected end-of-file|` +
			`CRC error|` +
			`negative or zero image size|` +
			`IDAT: (incorrect|invalid)|` +
			`Not a JPEG file`)

	reUnsupported = regexp.MustCompile(
		`(?i)no images defined|` +
			`unable to open image|` +
			`unrecognized image format`)

	rePolicy = regexp.MustCompile(
		`(?i)not authorized|security policy`)

	// "convert: <msg> `file' @ error/png.c/ReadPNGImage/1234."
	reLocation = regexp.MustCompile(` @ (error|warning|fatal)/\S+`)
	reProgram  = regexp.MustCompile(`^(magick|convert)(\.exe)?: `)
)

// Classify maps ImageMagick stderr to a Kind.
func Classify(stderr string) Kind {
	switch {
	case strings.TrimSpace(stderr) == "":
		return KindNone
	case reMissingDelegate.MatchString(stderr):
		return KindMissingDelegate
	case reCorruptData.MatchString(stderr):
		return KindCorruptData
	case reUnsupported.MatchString(stderr):
		return KindUnsupported
	case rePolicy.MatchString(stderr):
		return KindPolicy
	}
	return KindToolError
}

// Clean reduces ImageMagick stderr to its first meaningful line with the
// program prefix and source location removed.
func Clean(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = reProgram.ReplaceAllString(line, "")
		line = reLocation.ReplaceAllString(line, "")
		return strings.TrimSuffix(strings.TrimSpace(line), ".")
	}
	return ""
}
