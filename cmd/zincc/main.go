// Command zincc is the Zinc toolchain driver: it lexes, parses,
// analyzes, emits and runs Zinc source, or starts an interactive
// session, depending on the subcommand given. Each subcommand lives
// in its own file as one google/subcommands implementation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/dr8co/zinc/internal/config"
)

const version = "0.1.0"

// cfg holds the rc-file defaults every subcommand's SetFlags seeds its
// flags from; command-line flags still override it.
var cfg config.Config

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "zincc: warning: reading ~/.zincrc.yaml: %v\n", err)
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&disasmCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&versionCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func printVersion() {
	fmt.Printf("zincc %s\n", version)
}
