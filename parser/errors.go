package parser

import (
	"fmt"

	"github.com/dr8co/zinc/token"
)

// Error is a syntactic error: an unexpected token, a
// missing identifier, or a malformed literal. Every variant carries a
// Location and, for Expected, an actionable hint.
type Error struct {
	Kind     string
	Wanted   []string
	Found    string
	Hint     string
	Location token.Location
}

// Error kinds.
const (
	ErrExpected           = "Expected"
	ErrExpectedIdentifier = "ExpectedIdentifier"
	ErrExpectedLiteral    = "ExpectedLiteral"
)

// Error renders the diagnostic line without the hint; presentation
// layers (the CLI's diagnostic printer, the REPL) decide how to show
// the hint themselves.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: expected %v, found %q at %s", e.Kind, e.Wanted, e.Found, e.Location)
}
