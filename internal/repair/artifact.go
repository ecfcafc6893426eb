package repair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/imagemend/internal/fsx"
	"github.com/backmassage/imagemend/internal/magick"
	"github.com/backmassage/imagemend/internal/probe"
)

type encodeFunc func(ctx context.Context, src, dst string) magick.Outcome

// produce runs encode into a temp file beside target, checks the result is
// non-empty and decodes, then renames it to target. On any failure the
// temp file is removed and target is left untouched. The temp name keeps
// target's extension so ImageMagick selects the right output format.
func (d *Deps) produce(ctx context.Context, encode encodeFunc, src, target string) (probe.Result, string) {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	base := filepath.Base(target)
	tmp, err := os.CreateTemp(dir, "."+base[:len(base)-len(ext)]+".tmp-*"+ext)
	if err != nil {
		return probe.Result{}, fmt.Sprintf("cannot create artifact: %v", err)
	}
	tmpName := tmp.Name()
	_ = tmp.Close()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpName)
		}
	}()

	out := encode(ctx, src, tmpName)
	if !out.OK() {
		d.debug("%s -> %s: %s (%s)", filepath.Base(src), base, out.Reason(), out.Kind)
		return probe.Result{}, out.Reason()
	}

	fi, err := os.Stat(tmpName)
	if err != nil || fi.Size() == 0 {
		return probe.Result{}, "re-encode produced no output"
	}

	res := d.validate(tmpName)
	if !res.Valid {
		return res, res.Err
	}
	if err := fsx.Rename(tmpName, target); err != nil {
		return probe.Result{}, fmt.Sprintf("cannot promote artifact: %v", err)
	}
	keep = true
	return res, ""
}
