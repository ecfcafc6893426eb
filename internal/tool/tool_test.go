package tool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/imagemend/internal/tool"
	"github.com/backmassage/imagemend/internal/tool/tooltest"
)

func TestRun_CapturesStreamsAndExitCode(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "noisy", `echo "out line"; echo "err line" 1>&2; exit 3`)
	r := bin.Runner(0)

	res := r.Run(context.Background(), "noisy")
	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.OK())
	assert.Equal(t, "out line\n", res.Stdout)
	assert.Equal(t, "err line", res.Output(), "stderr wins when present")
	assert.Equal(t, "err line", res.Reason())
}

func TestRun_OutputFallsBackToStdout(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "quiet", `echo "only stdout"`)

	res := bin.Runner(0).Run(context.Background(), "quiet")
	assert.True(t, res.OK())
	assert.Equal(t, "only stdout", res.Output())
}

func TestRun_Unavailable(t *testing.T) {
	res := tooltest.Empty().Run(context.Background(), "pngcheck", "-v", "x.png")
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, tool.ErrUnavailable))
	assert.False(t, res.OK())
	assert.Equal(t, "tool unavailable", res.Reason())
}

func TestRun_Timeout(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "slow", `sleep 5`)
	r := bin.Runner(100 * time.Millisecond)

	start := time.Now()
	res := r.Run(context.Background(), "slow")
	assert.Less(t, time.Since(start), 4*time.Second)
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, tool.ErrTimeout))
	assert.Equal(t, "timed out after 100ms", res.Reason())
}

func TestResolve_PrefersFirstAvailable(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "convert", `exit 0`)
	r := bin.Runner(0)

	name, err := r.Resolve("magick", "convert")
	require.NoError(t, err)
	assert.Equal(t, "convert", name)

	bin.Script(t, "magick", `exit 0`)
	name, err = r.Resolve("magick", "convert")
	require.NoError(t, err)
	assert.Equal(t, "magick", name)

	_, err = tooltest.Empty().Resolve("magick", "convert")
	assert.True(t, errors.Is(err, tool.ErrUnavailable))
}

func TestVersion(t *testing.T) {
	bin := tooltest.NewBin(t)
	bin.Script(t, "pngcheck", `echo "pngcheck 3.0.3, by Alexander Lehmann" 1>&2; echo "more" 1>&2; exit 0`)
	r := bin.Runner(0)

	assert.Equal(t, "pngcheck 3.0.3, by Alexander Lehmann", r.Version(context.Background(), "pngcheck", "-h"))
	assert.Equal(t, "", tooltest.Empty().Version(context.Background(), "pngcheck", "-h"))
}

func TestNew_DefaultTimeout(t *testing.T) {
	assert.Equal(t, tool.DefaultTimeout, tool.New(0).Timeout())
	assert.Equal(t, 5*time.Second, tool.New(5*time.Second).Timeout())
}
