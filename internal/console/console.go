// Package console prints the colorized status narration of a cdn-bundle
// run and, in debug mode, the computed paths and versions.
//
// Narration is the tool's audit trail: every step of every package is
// announced in green, failures in red. Debug detail goes through a
// charmbracelet/log logger so it can be silenced by level.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Printer writes status lines to an output stream.
type Printer struct {
	out    io.Writer
	logger *log.Logger
	debug  bool
}

// New returns a Printer writing to out. When debug is true, Debug and
// Path lines are emitted as well.
func New(out io.Writer, debug bool) *Printer {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(out, log.Options{
		Prefix: "cdn-bundle",
		Level:  level,
	})

	return &Printer{out: out, logger: logger, debug: debug}
}

// Discard returns a Printer that drops everything.
func Discard() *Printer {
	return New(io.Discard, false)
}

// DebugEnabled reports whether debug output is on.
func (p *Printer) DebugEnabled() bool {
	return p.debug
}

// Success prints a green status line.
func (p *Printer) Success(format string, args ...any) {
	p.println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a yellow status line.
func (p *Printer) Warn(format string, args ...any) {
	p.println(labelStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints a red error line.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	p.println(errorStyle.Render(err.Error()))
}

// Path prints "<label> <path>" with a yellow label. Debug only.
func (p *Printer) Path(label, path string) {
	if !p.debug {
		return
	}
	p.println(labelStyle.Render(label) + " " + path)
}

// Debug logs a structured debug message. Dropped unless debug is on.
func (p *Printer) Debug(msg string, keyvals ...any) {
	p.logger.Debug(msg, keyvals...)
}

func (p *Printer) println(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}
