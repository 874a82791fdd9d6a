// Package tui decides how terminal output is rendered and holds the shared styles.
package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Mode represents how reports are written.
type Mode int

const (
	// ModePlain writes one line per record: pipes, files, CI logs.
	ModePlain Mode = iota
	// ModeStyled draws bordered tables for a human at the terminal.
	ModeStyled
)

// DetectMode returns ModePlain when:
//   - w is not a terminal
//   - EGRESOS_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
func DetectMode(w io.Writer) Mode {
	if os.Getenv("EGRESOS_PLAIN") == "1" || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ModePlain
	}
	return ModeStyled
}
