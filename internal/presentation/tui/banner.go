package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"  _____     _",
	" |_   _| __(_) __ _  __ _  ___",
	"   | || '__| |/ _` |/ _` |/ _ \\",
	"   | || |  | | (_| | (_| |  __/",
	"   |_||_|  |_|\\__,_|\\__, |\\___|",
	"                    |___/",
}

// The banner fades through the four severity colors.
var bannerColors = []string{"#ef4444", "#f97316", "#eab308", "#22c55e", "#3b82f6", "#6366f1"}

// PrintBanner writes the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.EnvColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, termenv.String("   intake and triage assistant v"+version).Faint())
	fmt.Fprintln(w)
}
