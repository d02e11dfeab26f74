// Package token defines the lexical tokens of event scripts.
package token

type TokenType string

// Token is a lexical unit of event script source. Line and Column are
// 1-indexed; Offset is the byte offset of the first byte of Literal.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
	Offset  int
	// SpaceBefore reports whether horizontal whitespace directly precedes
	// the token.
	SpaceBefore bool
}

const (
	EOF     = "EOF"
	NEWLINE = "NEWLINE" // \n or \r\n
	SECTION = "---"

	// Identifiers + Literals
	IDENT  = "IDENT"  // test_section0, text-id, has_item
	STRING = "STRING" // "abc", only meaningful inside expressions

	// Delimiters
	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
	COMMA    = ","

	// OTHER is any other printable byte. Expression operators arrive as
	// OTHER tokens and are passed through untouched.
	OTHER = "OTHER"
)

// Instruction keywords. These are plain identifiers to the lexer; the
// instruction grammar compares literals against them.
const (
	KwJump         = "jump"
	KwJumpIf       = "jump_if"
	KwTalk         = "talk"
	KwGSet         = "gset"
	KwReceiveMoney = "receive_money"
	KwRemoveItem   = "remove_item"
	KwSpecial      = "special"
)

// IsKeyword reports whether ident names an instruction.
func IsKeyword(ident string) bool {
	switch ident {
	case KwJump, KwJumpIf, KwTalk, KwGSet, KwReceiveMoney, KwRemoveItem, KwSpecial:
		return true
	}
	return false
}
