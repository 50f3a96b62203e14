package pacaur

import (
	"fmt"
	"os"
)

// color-compatible printer interface (works with *color.Theme and RGBColor)
type colorPrinter interface {
	Sprintf(format string, a ...any) string
}

// cPrintf prints a styled human-readable message on stderr. Stdout carries
// only the JSON result document.
func cPrintf(p colorPrinter, format string, a ...any) {
	if p == nil {
		fmt.Fprintf(os.Stderr, format, a...)
		return
	}
	fmt.Fprint(os.Stderr, p.Sprintf(format, a...))
}

// debugf prints debug messages on stderr when Debug is true
func debugf(format string, args ...any) {
	if Debug {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
