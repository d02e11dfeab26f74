// Package lexer provides lexical analysis for event scripts.
package lexer

import (
	"strings"

	"github.com/zurustar/evscript/pkg/compiler/token"
)

// Lexer tokenizes event script source code.
type Lexer struct {
	input    string
	position int // offset of the next unread byte
	line     int // line of input[position]
	column   int // column of input[position], counted in characters
}

// New creates a new Lexer.
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// NextToken returns the next token. At end of input it keeps returning EOF.
func (l *Lexer) NextToken() token.Token {
	space := l.skipWhitespace()

	tok := token.Token{
		Line:        l.line,
		Column:      l.column,
		Offset:      l.position,
		SpaceBefore: space,
	}

	if l.position >= len(l.input) {
		tok.Type = token.EOF
		return tok
	}

	ch := l.input[l.position]
	switch {
	case ch == '\n':
		tok.Type = token.NEWLINE
		tok.Literal = l.read(1)
	case ch == '\r' && l.peekChar() == '\n':
		tok.Type = token.NEWLINE
		tok.Literal = l.read(2)
	case ch == '-' && strings.HasPrefix(l.input[l.position:], "---"):
		tok.Type = token.SECTION
		tok.Literal = l.read(3)
	case ch == '(':
		tok.Type = token.LPAREN
		tok.Literal = l.read(1)
	case ch == ')':
		tok.Type = token.RPAREN
		tok.Literal = l.read(1)
	case ch == '[':
		tok.Type = token.LBRACKET
		tok.Literal = l.read(1)
	case ch == ']':
		tok.Type = token.RBRACKET
		tok.Literal = l.read(1)
	case ch == ',':
		tok.Type = token.COMMA
		tok.Literal = l.read(1)
	case ch == '"':
		tok.Type = token.STRING
		tok.Literal = l.readString()
	case isIdentStart(ch):
		tok.Type = token.IDENT
		tok.Literal = l.readIdentifier()
	default:
		tok.Type = token.OTHER
		tok.Literal = l.read(1)
	}
	return tok
}

// Tokenize returns every token of input, ending with a single EOF token.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// skipWhitespace skips spaces and tabs. Line breaks are tokens.
func (l *Lexer) skipWhitespace() bool {
	skipped := false
	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch != ' ' && ch != '\t' {
			break
		}
		l.read(1)
		skipped = true
	}
	return skipped
}

// read consumes n bytes and returns them, keeping line and column current.
func (l *Lexer) read(n int) string {
	start := l.position
	for i := 0; i < n && l.position < len(l.input); i++ {
		ch := l.input[l.position]
		l.position++
		switch {
		case ch == '\n':
			l.line++
			l.column = 1
		case ch&0xC0 != 0x80:
			// UTF-8 continuation bytes do not start a new column.
			l.column++
		}
	}
	return l.input[start:l.position]
}

func (l *Lexer) peekChar() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	n := 1
	for l.position+n < len(l.input) && isIdentPart(l.input[l.position+n]) {
		n++
	}
	return l.read(n)
}

// readString reads a double-quoted string literal including its quotes.
// An unterminated literal stops at the end of the line.
func (l *Lexer) readString() string {
	n := 1
	for l.position+n < len(l.input) {
		ch := l.input[l.position+n]
		if ch == '\n' {
			break
		}
		n++
		if ch == '\\' && l.position+n < len(l.input) && l.input[l.position+n] != '\n' {
			n++
			continue
		}
		if ch == '"' {
			break
		}
	}
	return l.read(n)
}

// isIdentStart reports whether ch can begin an identifier. Bytes of
// multi-byte UTF-8 characters are accepted so Japanese names work.
func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' ||
		'0' <= ch && ch <= '9' || ch == '_' || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '-'
}
