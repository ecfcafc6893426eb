// Command imagemend diagnoses and repairs a directory of images and
// builds a dataset of the ones that decode cleanly.
package main

import (
	"os"

	"github.com/backmassage/imagemend/internal/cli"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.1.0"
	commit  = "unknown"
)

func main() {
	os.Exit(cli.Execute(version, commit))
}
