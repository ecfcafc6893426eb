package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/backmassage/imagemend/internal/config"
	"github.com/backmassage/imagemend/internal/display"
	"github.com/backmassage/imagemend/internal/logging"
	"github.com/backmassage/imagemend/internal/term"
	"github.com/backmassage/imagemend/internal/tool"
)

// Seams for tests.
var (
	newRunner = func(timeout time.Duration) *tool.Runner { return tool.New(timeout) }
	stdinTTY  = func() bool { return term.IsTerminal(os.Stdin) }
)

var errNoDir = errors.New("missing directory argument")

// session is the resolved state shared by every command invocation.
type session struct {
	cfg    config.Config
	log    *logging.Logger
	runner *tool.Runner
}

// newSession resolves configuration for cmd, points it at dir (which may
// be empty for commands that need no directory), opens the logger on the
// command's writers and prints the banner.
func newSession(cmd *cobra.Command, dir, version string) (*session, error) {
	cfg, err := config.Resolve(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.SourceDir = config.NormalizeDirArg(dir)
		if err := checkSourceDir(cfg.SourceDir); err != nil {
			return nil, err
		}
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	display.PrintBanner(cmd.OutOrStdout(), version)

	return &session{cfg: cfg, log: log, runner: newRunner(cfg.ToolTimeout)}, nil
}

func (s *session) Close() { _ = s.log.Close() }

// signalContext cancels on SIGINT/SIGTERM so the batch stops scheduling
// new files and lets the ones in progress finish.
func (s *session) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			s.log.Warn("Received interrupt, finishing files in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

func checkSourceDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source directory %s: not a directory", dir)
	}
	return nil
}

// dirArg returns the positional directory, prompting for it when none was
// given and stdin is a terminal.
func dirArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !stdinTTY() {
		return "", errNoDir
	}
	return prompt(cmd.InOrStdin(), cmd.OutOrStdout())
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter the directory path containing your images: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read directory: %w", err)
	}
	dir := strings.TrimSpace(line)
	if dir == "" {
		return "", errNoDir
	}
	return dir, nil
}
