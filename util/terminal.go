package util

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is assumed when the writer is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the column width of w when it wraps a terminal,
// or DefaultWidth otherwise.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	return DefaultWidth
}
