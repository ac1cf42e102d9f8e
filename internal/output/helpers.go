package output

import (
	"os"

	"golang.org/x/term"
)

const defaultTerminalWidth = 120

// WidthFunc reports the current terminal width in columns.
type WidthFunc func() (int, error)

func StdoutWidth() (int, error) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	return width, err
}

func terminalWidth(fn WidthFunc) int {
	if fn == nil {
		return defaultTerminalWidth
	}
	width, err := fn()
	if err != nil || width <= 0 {
		return defaultTerminalWidth
	}
	return width
}
