// Package status prints colored status lines for the CLI.
package status

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold)
	failMark = color.New(color.FgRed, color.Bold)
	name     = color.New(color.FgCyan)
)

// Success prints a line prefixed with a green check mark.
func Success(w io.Writer, format string, args ...any) {
	okMark.Fprint(w, "✓ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// Failure prints a line prefixed with a red cross.
func Failure(w io.Writer, format string, args ...any) {
	failMark.Fprint(w, "✗ ")
	fmt.Fprintf(w, format+"\n", args...)
}

// Name returns s highlighted as an identifier.
func Name(s string) string {
	return name.Sprint(s)
}
