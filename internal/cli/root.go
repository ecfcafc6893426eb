// Package cli wires the imagemend cobra commands to the pipeline, dataset
// and check packages.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/imagemend/internal/config"
)

// errSilent marks failures that were already logged; Execute only maps
// them to exit code 1.
var errSilent = errors.New("already reported")

// NewRootCommand creates the imagemend root command.
func NewRootCommand(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imagemend",
		Short: "Diagnose and repair a directory of images",
		Long: `imagemend decodes every image in a directory, tries to repair the
ones that fail, writes a plain-text report and builds a dataset of the
images that decode cleanly. Originals are never modified.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("imagemend v{{.Version}}\n")

	config.DefineGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand(version))
	cmd.AddCommand(NewDiagnoseCommand(version))
	cmd.AddCommand(NewFilterCommand(version))
	cmd.AddCommand(NewCheckCommand(version))

	return cmd
}

// Execute runs the root command with os.Args and returns the process exit
// code.
func Execute(version, commit string) int {
	cmd := NewRootCommand(version, commit)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(cmd.ErrOrStderr(), "imagemend: %v\n", err)
		}
		return 1
	}
	return 0
}
