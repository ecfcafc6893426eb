package magick

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/imagemend/internal/tool"
	"github.com/backmassage/imagemend/internal/tool/tooltest"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		stderr string
		want   Kind
	}{
		{"", KindNone},
		{"convert: no decode delegate for this image format `' @ error/constitute.c/ReadImage/575.", KindMissingDelegate},
		{"convert: improper image header `c.png' @ error/png.c/ReadPNGImage/4092.", KindCorruptData},
		{"magick: Premature end of JPEG file `b.jpg' @ warning/jpeg.c/JPEGWarningHandler/403.", KindCorruptData},
		{"convert: no images defined `out.png' @ error/convert.c/ConvertImageCommand/3342.", KindUnsupported},
		{"convert: attempt to perform an operation not allowed by the security policy `PDF'", KindPolicy},
		{"Segmentation fault", KindToolError},
	}
	for _, tt := range tests {
		if got := Classify(tt.stderr); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"convert: improper image header `c.png' @ error/png.c/ReadPNGImage/4092.\n", "improper image header `c.png'"},
		{"\n\nmagick: no images defined `x.jpg' @ error/magick-cli.c/MagickImageCommand/1092.", "no images defined `x.jpg'"},
		{"plain failure", "plain failure"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArgs(t *testing.T) {
	got := StripArgs("/in/a.png", "/out/a_repaired.png")
	want := []string{"/in/a.png", "-strip", "/out/a_repaired.png"}
	if len(got) != len(want) {
		t.Fatalf("StripArgs = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("StripArgs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if c := ConvertArgs("a", "b"); len(c) != 2 || c[0] != "a" || c[1] != "b" {
		t.Errorf("ConvertArgs = %v", c)
	}
}

func TestEncoder_BinaryPreference(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "convert", "exit 0")
	r := bin.Runner(0)

	got, err := NewEncoder(r, "").Binary()
	if err != nil || got != "convert" {
		t.Fatalf("Binary() = %q, %v; want convert", got, err)
	}

	bin.Script(t, "magick", "exit 0")
	if got, _ := NewEncoder(r, "").Binary(); got != "magick" {
		t.Errorf("Binary() = %q, want magick", got)
	}
	if got, _ := NewEncoder(r, "convert").Binary(); got != "convert" {
		t.Errorf("configured Binary() = %q, want convert", got)
	}

	_, err = NewEncoder(tooltest.Empty(), "").Binary()
	if !errors.Is(err, tool.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestEncoder_StripAndFailure(t *testing.T) {
	bin := tooltest.NewBin(t)
	// argv: src -strip dst
	bin.Script(t, "magick", `if [ "$2" = "-strip" ]; then cp "$1" "$3"; exit 0; fi
echo "magick: improper image header '$1' @ error/png.c/ReadPNGImage/4092." 1>&2
exit 1`)
	enc := NewEncoder(bin.Runner(0), "")

	dir := t.TempDir()
	src := filepath.Join(dir, "a.png")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "a_repaired.png")
	out := enc.Strip(context.Background(), src, dst)
	if !out.OK() {
		t.Fatalf("Strip failed: %+v", out)
	}
	if b, _ := os.ReadFile(dst); string(b) != "payload" {
		t.Errorf("artifact = %q", b)
	}

	out = enc.Convert(context.Background(), src, filepath.Join(dir, "a_changed.jpg"))
	if out.OK() {
		t.Fatal("Convert should fail with the fake")
	}
	if out.Kind != KindCorruptData {
		t.Errorf("Kind = %v, want corrupt data", out.Kind)
	}
	if want := "improper image header '" + src + "'"; out.Reason() != want {
		t.Errorf("Reason() = %q, want %q", out.Reason(), want)
	}
}

func TestEncoder_Unavailable(t *testing.T) {
	out := NewEncoder(tooltest.Empty(), "").Strip(context.Background(), "a", "b")
	if !errors.Is(out.Err, tool.ErrUnavailable) {
		t.Fatalf("Err = %v", out.Err)
	}
	if out.Reason() != "tool unavailable" {
		t.Errorf("Reason() = %q", out.Reason())
	}
}
