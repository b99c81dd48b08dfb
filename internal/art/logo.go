package art

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/gnomegl/labslurp/internal/utils"
)

// PrintLogo writes the banner. Callers pass stderr so piped output stays clean.
func PrintLogo(w io.Writer) {
	banner := figure.NewFigure("labslurp", "chunky", false)
	color.New(color.FgCyan).Fprint(w, banner.String())
	fmt.Fprintln(w, color.HiRedString("               v%s for GitLab", utils.GetVersion()))
	fmt.Fprintln(w)
}
