package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/dr8co/zinc/bytecode"
	"github.com/dr8co/zinc/diagnostic"
	"github.com/dr8co/zinc/vm"
)

// runCmd executes a Zinc source or `.znbc` bytecode file, optionally
// supplying a witness JSON file matching the program's input-argument
// descriptor.
type runCmd struct {
	witness string
	noColor bool
}

func (*runCmd) Name() string { return "run" }
func (*runCmd) Synopsis() string { return "execute a Zinc source or bytecode file" }
func (*runCmd) Usage() string {
	return "run [-witness w.json] <file.zn|file.znbc>\n"
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.witness, "witness", "", "path to a witness JSON file")
	f.BoolVar(&c.noColor, "no-color", cfg.NoColor, "disable colorized diagnostics")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "run: missing input file")
		return subcommands.ExitUsageError
	}
	diag := diagnostic.New(os.Stderr, c.noColor)

	bc, ok := loadProgram(args[0], diag)
	if !ok {
		return subcommands.ExitFailure
	}

	desc, err := vm.ParseInputDesc(bc.InputDesc)
	if err != nil {
		diag.RuntimeError(err)
		return subcommands.ExitFailure
	}

	var inputs []vm.Value
	if c.witness != "" {
		raw, err := os.ReadFile(c.witness)
		if err != nil {
			diag.RuntimeError(err)
			return subcommands.ExitFailure
		}
		inputs, err = vm.DecodeWitness(raw, desc)
		if err != nil {
			diag.RuntimeError(err)
			return subcommands.ExitFailure
		}
	} else if len(desc) > 0 {
		inputs, err = promptWitness(desc)
		if err != nil {
			diag.RuntimeError(err)
			return subcommands.ExitFailure
		}
	}

	machine := vm.New(bc)
	results, err := machine.Run(inputs)
	if err != nil {
		diag.RuntimeError(err)
		return subcommands.ExitFailure
	}

	for _, r := range results {
		fmt.Println(r.String())
	}
	return subcommands.ExitSuccess
}

// promptWitness asks for each entry-function input on the terminal
// when no witness file was given, one value per descriptor field,
// re-prompting until the value parses and fits the declared type.
func promptWitness(desc []vm.InputField) ([]vm.Value, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, err
	}
	defer rl.Close()

	obj := make(map[string]interface{}, len(desc))
	for _, f := range desc {
		for {
			rl.SetPrompt(fmt.Sprintf("%s = ", f.Name))
			line, err := rl.Readline()
			if err != nil {
				return nil, err
			}
			line = strings.TrimSpace(line)
			if f.Type == bytecode.TagBool {
				if line == "true" || line == "false" {
					obj[f.Name] = line == "true"
					break
				}
				fmt.Println("expected true or false")
				continue
			}
			obj[f.Name] = line
			// Validate eagerly through the same path a witness file
			// takes, so a typo is caught before the run starts.
			raw, _ := json.Marshal(map[string]interface{}{f.Name: obj[f.Name]})
			if _, err := vm.DecodeWitness(raw, []vm.InputField{f}); err != nil {
				fmt.Println(err)
				continue
			}
			break
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return vm.DecodeWitness(raw, desc)
}

// loadProgram compiles a `.zn` source file or decodes a `.znbc`
// bytecode file, dispatching on extension.
func loadProgram(path string, diag *diagnostic.Printer) (*bytecode.Program, bool) {
	if strings.HasSuffix(path, ".znbc") {
		f, err := os.Open(path)
		if err != nil {
			diag.RuntimeError(err)
			return nil, false
		}
		defer f.Close()
		bc, err := bytecode.Decode(f)
		if err != nil {
			diag.RuntimeError(err)
			return nil, false
		}
		return bc, true
	}
	return compileFile(path, diag)
}
