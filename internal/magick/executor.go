package magick

import (
	"context"
	"fmt"

	"github.com/backmassage/imagemend/internal/tool"
)

// Candidates in preference order when no binary is configured.
var Candidates = []string{"magick", "convert"}

// Encoder runs ImageMagick re-encodes through a tool.Runner.
type Encoder struct {
	runner *tool.Runner
	binary string
}

// NewEncoder returns an Encoder. An empty binary selects the first
// available of Candidates at call time.
func NewEncoder(r *tool.Runner, binary string) *Encoder {
	return &Encoder{runner: r, binary: binary}
}

// Binary resolves the program name to invoke.
func (e *Encoder) Binary() (string, error) {
	if e.binary != "" {
		if _, err := e.runner.LookPath(e.binary); err != nil {
			return "", err
		}
		return e.binary, nil
	}
	return e.runner.Resolve(Candidates...)
}

// Available reports whether a usable ImageMagick binary exists.
func (e *Encoder) Available() bool {
	_, err := e.Binary()
	return err == nil
}

// Strip re-encodes src to dst with metadata stripped.
func (e *Encoder) Strip(ctx context.Context, src, dst string) Outcome {
	return e.run(ctx, StripArgs(src, dst))
}

// Convert re-encodes src to dst in the format named by dst's extension.
func (e *Encoder) Convert(ctx context.Context, src, dst string) Outcome {
	return e.run(ctx, ConvertArgs(src, dst))
}

// Outcome is a classified re-encode result.
type Outcome struct {
	tool.Result
	Kind Kind
}

// Reason is the one-line failure text recorded in a repair note.
func (o Outcome) Reason() string {
	if o.Err != nil {
		return o.Result.Reason()
	}
	if msg := Clean(o.Output()); msg != "" {
		return msg
	}
	return o.Result.Reason()
}

func (e *Encoder) run(ctx context.Context, args []string) Outcome {
	bin, err := e.Binary()
	if err != nil {
		return Outcome{Result: tool.Result{ExitCode: -1, Err: err}, Kind: KindToolError}
	}
	res := e.runner.Run(ctx, bin, args...)
	out := Outcome{Result: res}
	if !res.OK() {
		out.Kind = Classify(res.Stderr)
		if out.Kind == KindNone {
			out.Kind = KindToolError
		}
	}
	return out
}

// Version returns the ImageMagick version banner line.
func (e *Encoder) Version(ctx context.Context) (string, error) {
	bin, err := e.Binary()
	if err != nil {
		return "", err
	}
	v := e.runner.Version(ctx, bin, "-version")
	if v == "" {
		return "", fmt.Errorf("%s -version: no output", bin)
	}
	return v, nil
}
