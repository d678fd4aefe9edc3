package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/dashboard/tui/theme"
)

// PrettyLogger writes short styled status lines for humans, next to the
// structured component logs.
type PrettyLogger struct {
	writer io.Writer
	theme  *theme.Theme
}

// NewPrettyLogger creates a pretty logger writing to stderr.
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{
		writer: os.Stderr,
		theme:  theme.DefaultTheme,
	}
}

// WithWriter sets a custom writer for pretty output
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

// Success prints message with a success icon.
func (p *PrettyLogger) Success(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.theme.Success.Render(theme.IconSuccess),
		p.theme.Success.Render(message))
}

// InfoPretty prints an informational line.
func (p *PrettyLogger) InfoPretty(message string) {
	fmt.Fprintf(p.writer, "%s %s\n", p.theme.Info.Render(theme.IconInfo), message)
}

// WarnPretty prints a warning line.
func (p *PrettyLogger) WarnPretty(message string) {
	fmt.Fprintf(p.writer, "%s %s\n",
		p.theme.Warning.Render(theme.IconWarning),
		p.theme.Warning.Render(message))
}

// ErrorPretty prints message and, when present, err.
func (p *PrettyLogger) ErrorPretty(message string, err error) {
	fmt.Fprintf(p.writer, "%s %s",
		p.theme.Error.Render(theme.IconError),
		p.theme.Error.Render(message))
	if err != nil {
		fmt.Fprintf(p.writer, ": %s", err.Error())
	}
	fmt.Fprintln(p.writer)
}

// Field prints a key-value pair.
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "%s: %s\n",
		p.theme.Muted.Render(key),
		p.theme.Bold.Render(fmt.Sprint(value)))
}
