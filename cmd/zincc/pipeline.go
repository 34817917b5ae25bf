package main

import (
	"os"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/diagnostic"
	"github.com/dr8co/zinc/emitter"
	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/parser"
	"github.com/dr8co/zinc/semantic"
)

// compileFile runs a Zinc source file through lex -> parse -> analyze
// -> emit, printing any diagnostics to stderr via diag. ok reports
// whether every stage succeeded.
func compileFile(path string, diag *diagnostic.Printer) (*bytecode.Program, bool) {
	src, err := os.ReadFile(path)
	if err != nil {
		diag.RuntimeError(err)
		return nil, false
	}

	l := lexer.New(string(src), 0)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		// A malformed token surfaces to the parser as an Illegal lexeme;
		// the lexer's own record of what went wrong is the more precise
		// diagnostic, so report it instead when one exists.
		if lexErr := l.LastError(); lexErr != nil {
			diag.LexError(lexErr)
			return nil, false
		}
		diag.ParseErrors(errs)
		return nil, false
	}

	an := semantic.New()
	ir := an.Analyze(prog)
	if errs := an.Errors(); len(errs) > 0 {
		diag.SemanticErrors(errs)
		return nil, false
	}

	bc, err := emitter.Emit(ir)
	if err != nil {
		diag.EmitError(err)
		return nil, false
	}
	return bc, true
}
