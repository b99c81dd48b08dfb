package display

import (
	"io"
	"os"

	"golang.org/x/term"
)

type terminalInfo struct {
	width      int
	maxDisplay int
}

func getTerminalInfo(w io.Writer) *terminalInfo {
	width := 80
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	}
	return &terminalInfo{
		width:      width,
		maxDisplay: min(width-4, 120),
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func truncateString(s string, maxLen int) string {
	if maxLen < 10 {
		maxLen = 10
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' || c == '\r' {
			return s[:i]
		}
	}
	return s
}
