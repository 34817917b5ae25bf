// Package diagnostic renders the toolchain's error taxonomy — one
// method per compiler stage — to a writer as colorized
// `error: <code> at <location>: <message>` lines with an optional dim hint
// underneath. Color is dropped entirely when NoColor is set.
package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/parser"
	"github.com/dr8co/zinc/semantic"
	"github.com/dr8co/zinc/vm"
)

// Printer writes diagnostics to W, colorizing unless NoColor is set.
type Printer struct {
	W       io.Writer
	NoColor bool
}

// New builds a Printer writing to w.
func New(w io.Writer, noColor bool) *Printer {
	return &Printer{W: w, NoColor: noColor}
}

var (
	errorColor = color.New(color.FgRed, color.Bold)
	hintColor  = color.New(color.FgHiBlack)
)

func (p *Printer) paint(c *color.Color, format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	if p.NoColor {
		return s
	}
	return c.Sprint(s)
}

func (p *Printer) line(format string, args ...interface{}) {
	fmt.Fprintln(p.W, p.paint(errorColor, format, args...))
}

func (p *Printer) hint(text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(p.W, p.paint(hintColor, "  hint: %s", text))
}

// LexError reports one lexical error.
func (p *Printer) LexError(e *lexer.Error) {
	p.line("error: %s at %s: %s", e.Kind, e.Location, e.Message)
}

// ParseErrors reports the syntactic errors collected by a parser run
//, one per line with its hint, if any.
func (p *Printer) ParseErrors(errs []*parser.Error) {
	for _, e := range errs {
		p.line("error: %s at %s: expected %v, found %q", e.Kind, e.Location, e.Wanted, e.Found)
		p.hint(e.Hint)
	}
}

// SemanticErrors reports the type/analysis errors collected by a
// semantic analyzer run.
func (p *Printer) SemanticErrors(errs []*semantic.Error) {
	for _, e := range errs {
		p.line("error: %s at %s: %s", e.Kind, e.Location, e.Message)
	}
}

// EmitError reports an emission-time bug-class error.
func (p *Printer) EmitError(err error) {
	p.line("error: emission: %s", err.Error())
}

// RuntimeError reports a fatal VM fault, including
// the instruction pointer where it was detected when available.
func (p *Printer) RuntimeError(err error) {
	if rt, ok := err.(*vm.RuntimeError); ok {
		p.line("error: runtime: %s (at instruction %d)", rt.Error(), rt.IP)
		return
	}
	p.line("error: runtime: %s", err.Error())
}
