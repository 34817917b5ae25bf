package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/diagnostic"
)

// disasmCmd prints a Zinc source or `.znbc` bytecode file's assembly
// text to stdout.
type disasmCmd struct {
	noColor bool
}

func (*disasmCmd) Name() string { return "disasm" }
func (*disasmCmd) Synopsis() string { return "print a program's disassembly" }
func (*disasmCmd) Usage() string {
	return "disasm <file.zn|file.znbc>\n"
}

func (c *disasmCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noColor, "no-color", cfg.NoColor, "disable colorized diagnostics")
}

func (c *disasmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "disasm: missing input file")
		return subcommands.ExitUsageError
	}
	diag := diagnostic.New(os.Stderr, c.noColor)

	var bc *bytecode.Program
	var ok bool
	if strings.HasSuffix(args[0], ".znbc") {
		bc, ok = loadProgram(args[0], diag)
	} else {
		bc, ok = compileFile(args[0], diag)
	}
	if !ok {
		return subcommands.ExitFailure
	}

	fmt.Print(bc.Disassemble())
	return subcommands.ExitSuccess
}
