// Package repl implements an interactive shell for Zinc: a full-screen
// Bubble Tea session that lexes, parses, analyzes, emits and runs
// whatever the user types through the real compiler pipeline, rather
// than a tree-walking evaluator.
//
// The model/update/view split, the spinner-while-evaluating and the
// balanced-bracket multiline-input discipline all feed a single
// evaluation path: the full lex -> parse -> analyze -> emit -> run
// pipeline, since Zinc has no tree-walking interpreter.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/zinc/emitter"
	"github.com/dr8co/zinc/lexer"
	"github.com/dr8co/zinc/parser"
	"github.com/dr8co/zinc/semantic"
	"github.com/dr8co/zinc/token"
	"github.com/dr8co/zinc/vm"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = "zinc>> "

	// ContPrompt is the continuation prompt used in multiline input mode.
	ContPrompt = "...   "
)

// Options contains configuration options for the REPL.
type Options struct {
	NoColor bool // Disable styled output
	Debug   bool // Print the disassembled bytecode of each input
}

// Start initializes and runs the REPL with the given username and options.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8BE9FD"))
)

type evalResultMsg struct {
	output  string
	isError bool
	elapsed time.Duration
}

type historyEntry struct {
	input          string
	output         string
	isError        bool
	evaluationTime time.Duration
}

type model struct {
	textInput       textinput.Model
	history         []historyEntry
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter Zinc code"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		username:  username,
		spinner:   s,
		options:   options,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether brackets, braces and parens balance —
// the heuristic deciding whether to enter multiline-input mode.
func isBalanced(input string) bool {
	var stack []rune
	pairs := map[rune]rune{')': '(', '}': '{', ']': '['}
	for _, char := range input {
		switch char {
		case '(', '{', '[':
			stack = append(stack, char)
		case ')', '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[char] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// wrapSource wraps a bare statement/expression in an implicit
// `fn main() { ... }` if the input doesn't already declare one,
// so the REPL can evaluate fragments without boilerplate.
func wrapSource(input string) string {
	if strings.Contains(input, "fn main") {
		return input
	}
	return "fn main() { " + input + " }"
}

// evalCmd runs input through the full compiler pipeline (lex, parse,
// analyze, emit, run) asynchronously.
func evalCmd(input string, debug bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		output, isErr := runSource(wrapSource(input), debug)
		return evalResultMsg{output: output, isError: isErr, elapsed: time.Since(start)}
	}
}

func runSource(src string, debug bool) (string, bool) {
	l := lexer.New(src, 0)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return formatParseErrors(errs), true
	}

	an := semantic.New()
	ir := an.Analyze(prog)
	if errs := an.Errors(); len(errs) > 0 {
		return formatSemanticErrors(errs), true
	}

	bc, err := emitter.Emit(ir)
	if err != nil {
		return "Emission error: " + err.Error(), true
	}
	if debug {
		fmt.Print(bc.Disassemble())
	}

	machine := vm.New(bc)
	results, err := machine.Run(nil)
	if err != nil {
		return "Runtime error: " + err.Error(), true
	}
	if len(results) == 0 {
		return "()", false
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", "), false
}

func formatParseErrors(errs []*parser.Error) string {
	var s strings.Builder
	s.WriteString("Parse errors:\n")
	for i, e := range errs {
		fmt.Fprintf(&s, "  %d. %s\n", i+1, e.Error())
		if e.Hint != "" {
			fmt.Fprintf(&s, "     hint: %s\n", e.Hint)
		}
	}
	return s.String()
}

func formatSemanticErrors(errs []*semantic.Error) string {
	var s strings.Builder
	s.WriteString("Semantic errors:\n")
	for i, e := range errs {
		fmt.Fprintf(&s, "  %d. %s\n", i+1, e.Error())
	}
	return s.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			isError:        msg.isError,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline && m.multilineBuffer != "" {
					return m.startEval(m.multilineBuffer, true)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					return m.startEval(m.multilineBuffer, true)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}
			return m.startEval(input, false)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) startEval(input string, wasMultiline bool) (tea.Model, tea.Cmd) {
	m.evaluating = true
	m.currentInput = input
	m.textInput.SetValue("")
	if wasMultiline {
		m.isMultiline = false
		m.multilineBuffer = ""
	}
	return m, evalCmd(input, m.options.Debug)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " Zinc REPL "))
	s.WriteString("\n")
	if m.username != "" {
		fmt.Fprintf(&s, "\nHello %s! Type Zinc code, e.g. `let x: u8 = 1 + 2; x`\n", m.username)
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		for i, line := range strings.Split(entry.input, "\n") {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightLine(line))
			s.WriteString("\n")
		}
		if entry.isError {
			s.WriteString(m.applyStyle(errorStyle, entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}
		if entry.evaluationTime > 10*time.Millisecond {
			s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())))
		}
		s.WriteString("\n\n")
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightLine(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Evaluating...\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightLine(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	help := "\nPress Esc or Ctrl+C/D to exit | unbalanced brackets enter multiline mode"
	s.WriteString(m.applyStyle(historyStyle, help))

	return s.String()
}

// highlightLine renders one line of Zinc source with crude
// token-class-based coloring: keywords, integer literals and sized
// int/field type names get distinct colors, everything else prints
// as-is. A single tokenizer walk is enough here; anything richer
// would need its own pretty-printer.
func (m model) highlightLine(line string) string {
	if m.options.NoColor || line == "" {
		return line
	}
	l := lexer.New(line, 0)
	var s strings.Builder
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		switch tok.Type {
		case token.Function, token.Let, token.Mut, token.Const, token.If, token.Else,
			token.For, token.In, token.Match, token.Return, token.Struct, token.Enum,
			token.TypeKw, token.Contract, token.Impl, token.Use, token.As, token.Mod,
			token.True, token.False:
			s.WriteString(keywordStyle.Render(tok.Literal))
		case token.Int:
			s.WriteString(literalStyle.Render(tok.Literal))
		case token.Field, token.Bool, token.Unit, token.UnsignedW, token.SignedW:
			s.WriteString(typeStyle.Render(tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
		s.WriteString(" ")
	}
	return strings.TrimRight(s.String(), " ")
}
