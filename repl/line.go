package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// StartLine runs the REPL as a plain line-at-a-time session on
// chzyer/readline instead of the full-screen Bubble Tea interface —
// the mode `zincc repl` picks when stdout is not a terminal, when
// `-no-color` is set, or when TERM=dumb. Evaluation goes through the same
// runSource pipeline; only the presentation differs.
func StartLine(username string, options Options) {
	rl, err := readline.New(Prompt)
	if err != nil {
		fmt.Println("Error starting line editor:", err)
		return
	}
	defer rl.Close()

	if username != "" {
		fmt.Printf("Hello %s! Type Zinc code, e.g. `let x: u8 = 1 + 2; x`\n", username)
	}

	var buffer string
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buffer != "" {
				buffer = ""
				rl.SetPrompt(Prompt)
				continue
			}
			return
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Println("Error reading input:", err)
			return
		}

		if buffer != "" {
			buffer += "\n" + line
		} else {
			if strings.TrimSpace(line) == "" {
				continue
			}
			buffer = line
		}

		if !isBalanced(buffer) {
			rl.SetPrompt(ContPrompt)
			continue
		}

		output, isErr := runSource(wrapSource(buffer), options.Debug)
		if isErr {
			fmt.Fprintln(rl.Stderr(), output)
		} else {
			fmt.Println(output)
		}
		buffer = ""
		rl.SetPrompt(Prompt)
	}
}
