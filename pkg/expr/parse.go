package expr

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// SyntaxError reports malformed expression text. Offset is the byte offset
// into the text handed to Parse.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression at offset %d: %s", e.Offset, e.Message)
}

// Parser is the expression collaborator used by the script compiler.
// The zero value is ready to use and safe for concurrent use.
type Parser struct{}

// ParseExpr implements the compiler's expression collaborator contract.
func (Parser) ParseExpr(text string) (Expr, error) {
	return Parse(text)
}

// Parse parses a complete expression. The whole text must be consumed.
func Parse(text string) (Expr, error) {
	tree, err := exprParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			msg := perr.Message()
			if errors.Is(err, errIntRange) {
				msg = errIntRange.Error()
			}
			return nil, &SyntaxError{Offset: perr.Position().Offset, Message: msg}
		}
		return nil, &SyntaxError{Message: err.Error()}
	}
	return lowerOr(tree), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// fixed tables.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

func lowerOr(n *orNode) Expr {
	e := lowerAnd(n.Left)
	for _, r := range n.Rest {
		e = &Binary{Op: "||", X: e, Y: lowerAnd(r)}
	}
	return e
}

func lowerAnd(n *andNode) Expr {
	e := lowerCmp(n.Left)
	for _, r := range n.Rest {
		e = &Binary{Op: "&&", X: e, Y: lowerCmp(r)}
	}
	return e
}

func lowerCmp(n *cmpNode) Expr {
	left := lowerSum(n.Left)
	if n.Right == nil {
		return left
	}
	return &Binary{Op: n.Right.Op, X: left, Y: lowerSum(n.Right.Right)}
}

func lowerSum(n *sumNode) Expr {
	e := lowerTerm(n.Left)
	for _, r := range n.Rest {
		e = &Binary{Op: r.Op, X: e, Y: lowerTerm(r.Right)}
	}
	return e
}

func lowerTerm(n *termNode) Expr {
	e := lowerUnary(n.Left)
	for _, r := range n.Rest {
		e = &Binary{Op: r.Op, X: e, Y: lowerUnary(r.Right)}
	}
	return e
}

func lowerUnary(n *unaryNode) Expr {
	e := lowerPrimary(n.Operand)
	for i := len(n.Ops) - 1; i >= 0; i-- {
		e = &Unary{Op: n.Ops[i], X: e}
	}
	return e
}

func lowerPrimary(n *primaryNode) Expr {
	switch {
	case n.Int != nil:
		return &Int{Value: int64(*n.Int)}
	case n.Bool != nil:
		return &Bool{Value: bool(*n.Bool)}
	case n.Str != nil:
		return &String{Value: *n.Str}
	case n.HasItem != nil:
		return &HasItem{ItemID: *n.HasItem}
	case n.GVar != nil:
		return &GVar{Name: *n.GVar}
	default:
		return lowerOr(n.Group)
	}
}
