package display

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// PrintBanner prints the ASCII banner and version line to stdout.
// Color follows the global switch configured by term.Configure.
func PrintBanner(version string) {
	banner := ` _     _               _ _ _
| |__ | |___ _ __ ___ (_) | |
| '_ \| / __| '_ ` + "`" + ` _ \| | | |
| | | | \__ \ | | | | | | | |
|_| |_|_|___/_| |_| |_|_|_|_|
`
	fmt.Fprint(os.Stdout, color.New(color.FgHiMagenta, color.Bold).Sprint(banner))
	fmt.Fprintf(os.Stdout, "hlsmill v%s  |  adaptive HLS packager\n\n", version)
}
