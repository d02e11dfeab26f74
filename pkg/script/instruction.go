package script

import "github.com/zurustar/evscript/pkg/expr"

// Op names an instruction form. The value is the keyword used in source.
type Op string

const (
	OpJump         Op = "jump"
	OpJumpIf       Op = "jump_if"
	OpTalk         Op = "talk"
	OpGSet         Op = "gset"
	OpReceiveMoney Op = "receive_money"
	OpRemoveItem   Op = "remove_item"
	OpSpecial      Op = "special"
)

// Instruction is one step of a section. The set of implementations is
// closed: only the types in this file satisfy it, so a type switch over
// them is exhaustive.
type Instruction interface {
	Op() Op
	instruction()
}

// Jump transfers control to another section.
type Jump struct {
	Section string
}

// JumpIf transfers control to Section when Cond evaluates truthy.
type JumpIf struct {
	Section string
	Cond    expr.Expr
}

// Talk displays the text identified by TextID. Choices is empty (never nil)
// when the dialogue offers no choices.
type Talk struct {
	TextID  string
	Choices []Choice
}

// Choice is one selectable answer of a Talk: the label text id and the
// section to continue in.
type Choice struct {
	Label   string
	Section string
}

// GSet assigns Value to the global variable Var.
type GSet struct {
	Var   string
	Value expr.Expr
}

// ReceiveMoney grants the player Amount.
type ReceiveMoney struct {
	Amount expr.Expr
}

// RemoveItem removes ItemID from the player's inventory.
type RemoveItem struct {
	ItemID string
}

// Special invokes a built-in behavior.
type Special struct {
	Kind SpecialKind
}

func (*Jump) Op() Op         { return OpJump }
func (*JumpIf) Op() Op       { return OpJumpIf }
func (*Talk) Op() Op         { return OpTalk }
func (*GSet) Op() Op         { return OpGSet }
func (*ReceiveMoney) Op() Op { return OpReceiveMoney }
func (*RemoveItem) Op() Op   { return OpRemoveItem }
func (*Special) Op() Op      { return OpSpecial }

func (*Jump) instruction()         {}
func (*JumpIf) instruction()       {}
func (*Talk) instruction()         {}
func (*GSet) instruction()         {}
func (*ReceiveMoney) instruction() {}
func (*RemoveItem) instruction()   {}
func (*Special) instruction()      {}
