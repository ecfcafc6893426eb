package display

import (
	"fmt"
	"io"

	"github.com/backmassage/imagemend/internal/term"
)

const banner = ` _                                                  _
(_)_ __ ___   __ _  __ _  ___ _ __ ___   ___ _ __   __| |
| | '_ ` + "`" + ` _ \ / _` + "`" + ` |/ _` + "`" + ` |/ _ \ '_ ` + "`" + ` _ \ / _ \ '_ \ / _` + "`" + ` |
| | | | | | | (_| | (_| |  __/ | | | | |  __/ | | | (_| |
|_|_| |_| |_|\__,_|\__, |\___|_| |_| |_|\___|_| |_|\__,_|
                   |___/
`

// PrintBanner writes the ASCII art banner to w, in magenta when colors
// are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	if version != "" {
		fmt.Fprintf(w, "%s\n", term.Paint(term.Cyan, "  batch image diagnosis and repair "+version))
	}
	fmt.Fprintln(w)
}
