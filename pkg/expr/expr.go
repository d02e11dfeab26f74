// Package expr provides the expression language embedded in event scripts.
// Expressions appear as the condition of jump_if, the value of gset and the
// amount of receive_money. The instruction grammar treats them as opaque
// values produced by this package.
package expr

import (
	"strconv"
	"strings"
)

// Expr is a parsed expression. The set of implementations is closed.
type Expr interface {
	// String renders the expression in canonical source form.
	String() string
	expr()
}

// Int is an integer literal.
type Int struct {
	Value int64
}

// Bool is a boolean literal (true / false).
type Bool struct {
	Value bool
}

// String is a string literal.
type String struct {
	Value string
}

// GVar references a global script variable: $(name).
type GVar struct {
	Name string
}

// HasItem tests whether the player holds an item: has_item(id).
type HasItem struct {
	ItemID string
}

// Unary applies a prefix operator ("!" or "-").
type Unary struct {
	Op string
	X  Expr
}

// Binary applies an infix operator.
type Binary struct {
	Op string
	X  Expr
	Y  Expr
}

func (*Int) expr()     {}
func (*Bool) expr()    {}
func (*String) expr()  {}
func (*GVar) expr()    {}
func (*HasItem) expr() {}
func (*Unary) expr()   {}
func (*Binary) expr()  {}

func (e *Int) String() string { return strconv.FormatInt(e.Value, 10) }

func (e *Bool) String() string { return strconv.FormatBool(e.Value) }

func (e *String) String() string { return strconv.Quote(e.Value) }

func (e *GVar) String() string { return "$(" + e.Name + ")" }

func (e *HasItem) String() string { return "has_item(" + e.ItemID + ")" }

func (e *Unary) String() string {
	operand := e.X.String()
	if _, ok := e.X.(*Binary); ok {
		operand = "(" + operand + ")"
	}
	return e.Op + operand
}

func (e *Binary) String() string {
	prec := precedence[e.Op]
	var b strings.Builder
	b.WriteString(wrap(e.X, prec, false))
	b.WriteString(" ")
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(wrap(e.Y, prec, true))
	return b.String()
}

// wrap parenthesizes a binary operand when printing it bare would change how
// it reparses. Operators are left-associative, so an equal-precedence right
// operand needs parentheses too.
func wrap(operand Expr, parent int, right bool) string {
	bin, ok := operand.(*Binary)
	if !ok {
		return operand.String()
	}
	child := precedence[bin.Op]
	if child < parent || (right && child == parent) {
		return "(" + bin.String() + ")"
	}
	return bin.String()
}

// Binding strength of infix operators, loosest first.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5, "%": 5,
}
