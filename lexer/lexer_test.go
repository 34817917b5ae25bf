package lexer

import (
	"testing"

	"github.com/dr8co/zinc/token"
)

// TestNextToken tests the functionality of the NextToken method in the Lexer to ensure all tokens are correctly identified.
func TestNextToken(t *testing.T) {
	input := `let five: u8 = 5;
let ten: i32 = -10;
fn add(x: u8, y: u8) -> u8 {
    x + y
}
let result = add(five, ten);
!-/ *5;
5 < 10 > 5;

if (5 < 10) {
    return true;
} else {
    return false;
}

10 == 10;
10 != 9;
10 <= 9;
10 >= 9;
true && false;
true || false;
1 ^ 2;

"foobar"
"foo\nbar"
x::y
a -> b
a => b
a..b
0xFF
1_000
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.Let, "let"},
		{token.Ident, "five"},
		{token.Colon, ":"},
		{token.UnsignedW, "u8"},
		{token.Assign, "="},
		{token.Int, "5"},
		{token.Semicolon, ";"},
		{token.Let, "let"},
		{token.Ident, "ten"},
		{token.Colon, ":"},
		{token.SignedW, "i32"},
		{token.Assign, "="},
		{token.Minus, "-"},
		{token.Int, "10"},
		{token.Semicolon, ";"},
		{token.Function, "fn"},
		{token.Ident, "add"},
		{token.Lparen, "("},
		{token.Ident, "x"},
		{token.Colon, ":"},
		{token.UnsignedW, "u8"},
		{token.Comma, ","},
		{token.Ident, "y"},
		{token.Colon, ":"},
		{token.UnsignedW, "u8"},
		{token.Rparen, ")"},
		{token.MinusArrow, "->"},
		{token.UnsignedW, "u8"},
		{token.Lbrace, "{"},
		{token.Ident, "x"},
		{token.Plus, "+"},
		{token.Ident, "y"},
		{token.Rbrace, "}"},
		{token.Let, "let"},
		{token.Ident, "result"},
		{token.Assign, "="},
		{token.Ident, "add"},
		{token.Lparen, "("},
		{token.Ident, "five"},
		{token.Comma, ","},
		{token.Ident, "ten"},
		{token.Rparen, ")"},
		{token.Semicolon, ";"},
		{token.Bang, "!"},
		{token.Minus, "-"},
		{token.Slash, "/"},
		{token.Asterisk, "*"},
		{token.Int, "5"},
		{token.Semicolon, ";"},
		{token.Int, "5"},
		{token.Lt, "<"},
		{token.Int, "10"},
		{token.Gt, ">"},
		{token.Int, "5"},
		{token.Semicolon, ";"},
		{token.If, "if"},
		{token.Lparen, "("},
		{token.Int, "5"},
		{token.Lt, "<"},
		{token.Int, "10"},
		{token.Rparen, ")"},
		{token.Lbrace, "{"},
		{token.Return, "return"},
		{token.True, "true"},
		{token.Semicolon, ";"},
		{token.Rbrace, "}"},
		{token.Else, "else"},
		{token.Lbrace, "{"},
		{token.Return, "return"},
		{token.False, "false"},
		{token.Semicolon, ";"},
		{token.Rbrace, "}"},
		{token.Int, "10"},
		{token.Eq, "=="},
		{token.Int, "10"},
		{token.Semicolon, ";"},
		{token.Int, "10"},
		{token.NotEq, "!="},
		{token.Int, "9"},
		{token.Semicolon, ";"},
		{token.Int, "10"},
		{token.Lte, "<="},
		{token.Int, "9"},
		{token.Semicolon, ";"},
		{token.Int, "10"},
		{token.Gte, ">="},
		{token.Int, "9"},
		{token.Semicolon, ";"},
		{token.True, "true"},
		{token.AmpAmp, "&&"},
		{token.False, "false"},
		{token.Semicolon, ";"},
		{token.True, "true"},
		{token.PipePipe, "||"},
		{token.False, "false"},
		{token.Semicolon, ";"},
		{token.Int, "1"},
		{token.Caret, "^"},
		{token.Int, "2"},
		{token.Semicolon, ";"},
		{token.String, "foobar"},
		{token.String, "foo\nbar"},
		{token.Ident, "x"},
		{token.DoubleColon, "::"},
		{token.Ident, "y"},
		{token.Ident, "a"},
		{token.MinusArrow, "->"},
		{token.Ident, "b"},
		{token.Ident, "a"},
		{token.Arrow, "=>"},
		{token.Ident, "b"},
		{token.Ident, "a"},
		{token.DotDot, ".."},
		{token.Ident, "b"},
		{token.Int, "0xFF"},
		{token.Int, "1000"},
		{token.EOF, ""},
	}

	l := New(input, 0)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestLocations verifies that line/column are tracked correctly
// across newlines, with 1-based lines and columns.
func TestLocations(t *testing.T) {
	input := "let\nx = 1;"
	l := New(input, 7)

	tok := l.NextToken() // "let"
	if tok.Location.Line != 1 || tok.Location.FileID != 7 {
		t.Fatalf("let: expected line=1 fileID=7, got %+v", tok.Location)
	}

	tok = l.NextToken() // "x"
	if tok.Location.Line != 2 {
		t.Fatalf("x: expected line=2, got %+v", tok.Location)
	}
}

// TestUnterminatedString verifies the lexer reports an error and an
// Illegal token rather than looping forever on an unclosed literal.
func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`, 0)
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected Illegal, got %q", tok.Type)
	}
	if l.LastError() == nil || l.LastError().Kind != ErrUnterminatedString {
		t.Fatalf("expected ErrUnterminatedString, got %+v", l.LastError())
	}
}

// TestNestedBlockComment verifies comments nest one level, per the
// lexer's skipTrivia doc comment.
func TestNestedBlockComment(t *testing.T) {
	l := New("/* outer /* inner */ still-outer */ 42", 0)
	tok := l.NextToken()
	if tok.Type != token.Int || tok.Literal != "42" {
		t.Fatalf("expected Int 42 after nested comment, got %q %q", tok.Type, tok.Literal)
	}
}
