package expr

import (
	"errors"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer tokenizes expression text. Identifiers follow the script
// lexer: ASCII letters, digits, underscores and any non-ASCII character,
// with hyphens after the first character (has_item(rusty-key), has_item(1up),
// has_item(鍵)). An all-digit word is an integer, so Ident needs at least one
// non-digit before any hyphen and is tried first. Subtraction between two
// identifiers needs surrounding spaces.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[0-9]*[a-zA-Z_\x{80}-\x{10FFFF}][a-zA-Z0-9_\x{80}-\x{10FFFF}\-]*`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Operator", Pattern: `\|\||&&|==|!=|<=|>=|[-+*/%<>!$()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// The grammar nodes below mirror the precedence ladder; lowering turns them
// into the Expr tree.

type orNode struct {
	Left *andNode   `parser:"@@"`
	Rest []*andNode `parser:"( '||' @@ )*"`
}

type andNode struct {
	Left *cmpNode   `parser:"@@"`
	Rest []*cmpNode `parser:"( '&&' @@ )*"`
}

type cmpNode struct {
	Left  *sumNode `parser:"@@"`
	Right *opSum   `parser:"@@?"`
}

type opSum struct {
	Op    string   `parser:"@( '==' | '!=' | '<=' | '>=' | '<' | '>' )"`
	Right *sumNode `parser:"@@"`
}

type sumNode struct {
	Left *termNode `parser:"@@"`
	Rest []*opTerm `parser:"@@*"`
}

type opTerm struct {
	Op    string    `parser:"@( '+' | '-' )"`
	Right *termNode `parser:"@@"`
}

type termNode struct {
	Left *unaryNode `parser:"@@"`
	Rest []*opUnary `parser:"@@*"`
}

type opUnary struct {
	Op    string     `parser:"@( '*' | '/' | '%' )"`
	Right *unaryNode `parser:"@@"`
}

type unaryNode struct {
	Ops     []string     `parser:"@( '!' | '-' )*"`
	Operand *primaryNode `parser:"@@"`
}

type primaryNode struct {
	Int     *intLit  `parser:"  @Int"`
	Bool    *boolLit `parser:"| @( 'true' | 'false' )"`
	Str     *string  `parser:"| @String"`
	HasItem *string  `parser:"| 'has_item' '(' @Ident ')'"`
	GVar    *string  `parser:"| '$' '(' @Ident ')'"`
	Group   *orNode  `parser:"| '(' @@ ')'"`
}

type intLit int64

// errIntRange is returned through participle when an integer literal does
// not fit in int64.
var errIntRange = errors.New("integer literal out of range")

func (i *intLit) Capture(values []string) error {
	n, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return errIntRange
	}
	*i = intLit(n)
	return nil
}

type boolLit bool

func (b *boolLit) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

var exprParser = participle.MustBuild[orNode](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)
