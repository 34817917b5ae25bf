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

// buildCmd compiles a Zinc source file to a `.znbc` bytecode file.
type buildCmd struct {
	out     string
	noColor bool
}

func (*buildCmd) Name() string { return "build" }
func (*buildCmd) Synopsis() string { return "compile a Zinc source file to bytecode" }
func (*buildCmd) Usage() string {
	return "build [-o out.znbc] <file.zn>\n"
}

func (c *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "o", "", "output bytecode file (default: <input>.znbc)")
	f.BoolVar(&c.noColor, "no-color", cfg.NoColor, "disable colorized diagnostics")
}

func (c *buildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "build: missing source file")
		return subcommands.ExitUsageError
	}
	diag := diagnostic.New(os.Stderr, c.noColor)

	bc, ok := compileFile(args[0], diag)
	if !ok {
		return subcommands.ExitFailure
	}

	out := c.out
	if out == "" {
		out = strings.TrimSuffix(args[0], ".zn") + ".znbc"
	}
	f2, err := os.Create(out)
	if err != nil {
		diag.RuntimeError(err)
		return subcommands.ExitFailure
	}
	defer f2.Close()

	if err := bytecode.Encode(f2, bc); err != nil {
		diag.RuntimeError(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("wrote %s\n", out)
	return subcommands.ExitSuccess
}
