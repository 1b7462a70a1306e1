package theme

import (
	"fmt"
	"io"
	"os"
)

// ANSI colors for the banner
const (
	cyan    = "\033[36m"
	magenta = "\033[35m"
	yellow  = "\033[33m"
	reset   = "\033[0m"
)

// Banner returns the simview banner.
func Banner() string {
	art := "" +
		"  ✦✵✷   " + magenta + "SIMVIEW" + reset + "   ✷✵✦\n" +
		cyan + "   ┌─ post ─┐   ┌─ trace ─┐   ┌─ user ─┐\n" + reset +
		cyan + "   └───┬────┘   └────┬────┘   └───┬────┘\n" + reset +
		cyan + "       └────── perception ───────┘\n" + reset +
		yellow + "     ────────────────────────────────\n" + reset +
		"   what every agent sees, and what they did ✦\n"
	return art
}

// PrintBanner writes the banner to w, or to stderr when w is nil so stdout
// stays clean for rendered artifacts.
func PrintBanner(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprint(w, Banner())
}
