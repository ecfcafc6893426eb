package cli

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/imagemend/internal/check"
	"github.com/backmassage/imagemend/internal/config"
	"github.com/backmassage/imagemend/internal/dataset"
	"github.com/backmassage/imagemend/internal/pipeline"
)

// NewRunCommand creates the run command: diagnose, repair, then filter.
func NewRunCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Diagnose and repair a directory, then build the filtered dataset",
		Long: `Diagnose every image in dir, attempt repairs for the ones that fail,
write image_repair_report.txt and copy every valid image into
filtered_dataset/. Without dir, the path is read from the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(cmd, args)
			if err != nil {
				return err
			}
			return runBatch(cmd, dir, version, true)
		},
	}
	config.DefineRunFlags(cmd.Flags())
	config.DefineFilterFlags(cmd.Flags())
	return cmd
}

// NewDiagnoseCommand creates the diagnose command: run without the filter.
func NewDiagnoseCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose <dir>",
		Short: "Diagnose and repair a directory and write the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], version, false)
		},
	}
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <dir>",
		Short: "Copy every image that decodes cleanly into filtered_dataset/",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, args[0], version)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx, stop := s.signalContext(cmd.Context())
			defer stop()

			res, err := dataset.Filter(ctx, &s.cfg, s.log)
			if err != nil {
				s.log.Error("%v", err)
				return errSilent
			}
			if res.Failed > 0 {
				return errSilent
			}
			return nil
		},
	}
	config.DefineFilterFlags(cmd.Flags())
	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report which external tools are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, "", version)
			if err != nil {
				return err
			}
			defer s.Close()
			if !check.RunCheck(cmd.Context(), &s.cfg, s.runner, s.log) {
				return errSilent
			}
			return nil
		},
	}
}

func runBatch(cmd *cobra.Command, dir, version string, filter bool) error {
	s, err := newSession(cmd, dir, version)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx, stop := s.signalContext(cmd.Context())
	defer stop()

	rep, err := pipeline.Run(ctx, &s.cfg, s.runner, s.log)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("%v", err)
		}
		return errSilent
	}

	if filter && !s.cfg.SkipFilter {
		if _, err := dataset.Filter(ctx, &s.cfg, s.log); err != nil {
			s.log.Error("%v", err)
			return errSilent
		}
	}

	if n := rep.Counts().Failed; s.cfg.Strict && n > 0 {
		s.log.Error("%d files could not be fixed", n)
		return errSilent
	}
	return nil
}
