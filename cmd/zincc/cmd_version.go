package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

// versionCmd prints the toolchain version.
type versionCmd struct{}

func (*versionCmd) Name() string { return "version" }
func (*versionCmd) Synopsis() string { return "print the zincc version" }
func (*versionCmd) Usage() string {
	return "version\n"
}
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printVersion()
	return subcommands.ExitSuccess
}
