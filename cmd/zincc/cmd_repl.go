package main

import (
	"context"
	"flag"
	"os"
	"os/user"

	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"

	"github.com/dr8co/zinc/repl"
)

// replCmd starts an interactive Zinc session: the full-screen
// Bubble Tea interface on a real terminal, or a readline-backed
// line-at-a-time fallback when stdout is piped or colors are off.
type replCmd struct {
	noColor bool
	debug   bool
}

func (*replCmd) Name() string { return "repl" }
func (*replCmd) Synopsis() string { return "start an interactive Zinc session" }
func (*replCmd) Usage() string {
	return "repl\n"
}

func (c *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noColor, "no-color", cfg.NoColor, "disable colorized output")
	f.BoolVar(&c.debug, "debug", cfg.Debug, "print the disassembled bytecode of each input")
}

func (c *replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	username := "zinc"
	if usr, err := user.Current(); err == nil {
		username = usr.Username
	}
	opts := repl.Options{NoColor: c.noColor, Debug: c.debug}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !interactive || c.noColor || os.Getenv("TERM") == "dumb" {
		repl.StartLine(username, opts)
		return subcommands.ExitSuccess
	}
	repl.Start(username, opts)
	return subcommands.ExitSuccess
}
