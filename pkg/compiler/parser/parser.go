// Package parser recognizes the section and instruction grammar of event
// scripts.
//
// The parser works on the complete token slice produced by the lexer so that
// a failed instruction can be rewound without consuming input. Every failure
// is recorded; when parsing cannot continue, the failure that got furthest
// into the source is reported.
package parser

import (
	"errors"
	"fmt"

	"github.com/zurustar/evscript/pkg/compiler/lexer"
	"github.com/zurustar/evscript/pkg/compiler/token"
	"github.com/zurustar/evscript/pkg/expr"
	"github.com/zurustar/evscript/pkg/script"
)

// ExpressionParser parses the expression text embedded in an instruction.
// Implementations must consume the whole text. A returned *expr.SyntaxError
// lets the parser point at the exact position inside the expression.
type ExpressionParser interface {
	ParseExpr(text string) (expr.Expr, error)
}

// Parser parses event script source into sections.
type Parser struct {
	source string
	tokens []token.Token
	pos    int
	exprs  ExpressionParser

	// furthest is the failure with the largest offset seen so far.
	furthest *ParserError
}

// New creates a new Parser. A nil exprs uses the built-in expression
// language.
func New(source string, exprs ExpressionParser) *Parser {
	if exprs == nil {
		exprs = expr.Parser{}
	}
	return &Parser{
		source: source,
		tokens: lexer.Tokenize(source),
		exprs:  exprs,
	}
}

// ParseScript parses the whole source. It either consumes all input or
// returns the furthest *ParserError.
func (p *Parser) ParseScript() ([]script.Section, error) {
	var sections []script.Section

	p.skipNewlines()
	for !p.curTokenIs(token.EOF) {
		section, ok := p.parseSection()
		if !ok {
			return nil, p.err()
		}
		sections = append(sections, section)
	}

	return sections, nil
}

// parseSection parses a header and the instructions that follow it. The
// instruction list ends at the first instruction that does not parse, the
// next header, or end of input.
func (p *Parser) parseSection() (script.Section, bool) {
	start := p.pos

	if !p.curTokenIs(token.SECTION) {
		p.failAt(p.curToken(), "expected section header \"---\", got %s", describe(p.curToken()))
		return script.Section{}, false
	}
	p.nextToken()

	name := p.curToken()
	if name.Type != token.IDENT {
		p.failAt(name, "expected section name after \"---\", got %s", describe(name))
		p.pos = start
		return script.Section{}, false
	}
	if !name.SpaceBefore {
		p.failAt(name, "expected space between \"---\" and section name")
		p.pos = start
		return script.Section{}, false
	}
	p.nextToken()

	if !p.endOfStatement("section header") {
		p.pos = start
		return script.Section{}, false
	}

	section := script.Section{Name: name.Literal, Instructions: []script.Instruction{}}
	for {
		p.skipNewlines()
		if p.curTokenIs(token.EOF) || p.curTokenIs(token.SECTION) {
			break
		}
		inst, ok := p.parseInstruction()
		if !ok {
			break
		}
		section.Instructions = append(section.Instructions, inst)
	}

	return section, true
}

// parseInstruction parses one instruction including its line break. On
// failure the position is restored.
func (p *Parser) parseInstruction() (script.Instruction, bool) {
	start := p.pos
	keyword := p.curToken()

	if keyword.Type != token.IDENT {
		p.failAt(keyword, "expected instruction, got %s", describe(keyword))
		return nil, false
	}
	if !token.IsKeyword(keyword.Literal) {
		p.failAt(keyword, "unknown instruction %q", keyword.Literal)
		return nil, false
	}

	var (
		inst script.Instruction
		ok   bool
	)
	p.nextToken()
	switch keyword.Literal {
	case token.KwJump:
		inst, ok = p.parseJump()
	case token.KwJumpIf:
		inst, ok = p.parseJumpIf()
	case token.KwTalk:
		inst, ok = p.parseTalk()
	case token.KwGSet:
		inst, ok = p.parseGSet()
	case token.KwReceiveMoney:
		inst, ok = p.parseReceiveMoney()
	case token.KwRemoveItem:
		inst, ok = p.parseRemoveItem()
	case token.KwSpecial:
		inst, ok = p.parseSpecial()
	}

	if ok {
		ok = p.endOfStatement(keyword.Literal)
	}
	if !ok {
		p.pos = start
		return nil, false
	}
	return inst, true
}

// jump(section)
func (p *Parser) parseJump() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	target, ok := p.identifier("section name")
	if !ok || !p.expect(token.RPAREN) {
		return nil, false
	}
	return &script.Jump{Section: target}, true
}

// jump_if(section, expr)
func (p *Parser) parseJumpIf() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	target, ok := p.identifier("section name")
	if !ok || !p.expect(token.COMMA) {
		return nil, false
	}
	cond, ok := p.expression()
	if !ok {
		return nil, false
	}
	return &script.JumpIf{Section: target, Cond: cond}, true
}

// talk(text) or talk(text, [(label, section), ...])
//
// The choices form is recognized by the comma after the text id, so the
// longer form always wins over the plain one.
func (p *Parser) parseTalk() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	textID, ok := p.identifier("text id")
	if !ok {
		return nil, false
	}
	talk := &script.Talk{TextID: textID, Choices: []script.Choice{}}

	p.skipNewlines()
	if p.curTokenIs(token.COMMA) {
		p.nextToken()
		choices, ok := p.parseChoices()
		if !ok {
			return nil, false
		}
		talk.Choices = choices
	}

	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return talk, true
}

// [(label, section), ...]; the list may be empty.
func (p *Parser) parseChoices() ([]script.Choice, bool) {
	if !p.expect(token.LBRACKET) {
		return nil, false
	}

	choices := []script.Choice{}
	p.skipNewlines()
	if p.curTokenIs(token.RBRACKET) {
		p.nextToken()
		return choices, true
	}

	for {
		choice, ok := p.parseChoice()
		if !ok {
			return nil, false
		}
		choices = append(choices, choice)

		p.skipNewlines()
		switch {
		case p.curTokenIs(token.COMMA):
			p.nextToken()
		case p.curTokenIs(token.RBRACKET):
			p.nextToken()
			return choices, true
		default:
			p.failAt(p.curToken(), "expected \",\" or \"]\" in choice list, got %s", describe(p.curToken()))
			return nil, false
		}
	}
}

// (label, section)
func (p *Parser) parseChoice() (script.Choice, bool) {
	if !p.expect(token.LPAREN) {
		return script.Choice{}, false
	}
	label, ok := p.identifier("choice label")
	if !ok || !p.expect(token.COMMA) {
		return script.Choice{}, false
	}
	target, ok := p.identifier("section name")
	if !ok || !p.expect(token.RPAREN) {
		return script.Choice{}, false
	}
	return script.Choice{Label: label, Section: target}, true
}

// gset(variable, expr)
func (p *Parser) parseGSet() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	name, ok := p.identifier("variable name")
	if !ok || !p.expect(token.COMMA) {
		return nil, false
	}
	value, ok := p.expression()
	if !ok {
		return nil, false
	}
	return &script.GSet{Var: name, Value: value}, true
}

// receive_money(expr)
func (p *Parser) parseReceiveMoney() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	amount, ok := p.expression()
	if !ok {
		return nil, false
	}
	return &script.ReceiveMoney{Amount: amount}, true
}

// remove_item(item)
func (p *Parser) parseRemoveItem() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	item, ok := p.identifier("item id")
	if !ok || !p.expect(token.RPAREN) {
		return nil, false
	}
	return &script.RemoveItem{ItemID: item}, true
}

// special(kind)
func (p *Parser) parseSpecial() (script.Instruction, bool) {
	if !p.expect(token.LPAREN) {
		return nil, false
	}
	p.skipNewlines()
	sym := p.curToken()
	if sym.Type != token.IDENT {
		p.failAt(sym, "expected special instruction name, got %s", describe(sym))
		return nil, false
	}
	kind, ok := script.ParseSpecialKind(sym.Literal)
	if !ok {
		p.failAt(sym, "unknown special instruction %q", sym.Literal)
		return nil, false
	}
	p.nextToken()
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return &script.Special{Kind: kind}, true
}

// expression collects the tokens up to the ")" that closes the argument
// list and hands their source text to the expression parser. The closing
// ")" is consumed.
func (p *Parser) expression() (expr.Expr, bool) {
	p.skipNewlines()
	first := p.curToken()

	depth := 0
	for {
		tok := p.curToken()
		switch tok.Type {
		case token.EOF:
			p.failAt(tok, "unterminated argument list, expected \")\"")
			return nil, false
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				if tok.Offset == first.Offset {
					p.failAt(tok, "expected expression, got \")\"")
					return nil, false
				}
				text := p.source[first.Offset:tok.Offset]
				e, err := p.exprs.ParseExpr(text)
				if err != nil {
					p.failExpr(first.Offset, err)
					return nil, false
				}
				p.nextToken()
				return e, true
			}
			depth--
		}
		p.nextToken()
	}
}

// identifier reads an identifier argument.
func (p *Parser) identifier(what string) (string, bool) {
	p.skipNewlines()
	tok := p.curToken()
	if tok.Type != token.IDENT {
		p.failAt(tok, "expected %s, got %s", what, describe(tok))
		return "", false
	}
	p.nextToken()
	return tok.Literal, true
}

// expect consumes a delimiter. Line breaks before it are skipped, which is
// what allows argument lists to span lines.
func (p *Parser) expect(t token.TokenType) bool {
	p.skipNewlines()
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.failAt(p.curToken(), "expected %q, got %s", string(t), describe(p.curToken()))
	return false
}

// endOfStatement consumes exactly one line break. End of input does not end
// a statement.
func (p *Parser) endOfStatement(what string) bool {
	tok := p.curToken()
	if tok.Type == token.NEWLINE {
		p.nextToken()
		return true
	}
	p.failAt(tok, "expected end of line after %s, got %s", what, describe(tok))
	return false
}

func (p *Parser) curToken() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.tokens[p.pos].Type == t
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

// failAt records a failure at tok. Only a failure further into the source
// than every earlier one replaces the current candidate.
func (p *Parser) failAt(tok token.Token, format string, args ...any) {
	p.record(&ParserError{
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
		Offset:  tok.Offset,
	})
}

// failExpr records an expression failure. base is the offset of the
// expression text within the source.
func (p *Parser) failExpr(base int, err error) {
	offset := base
	msg := err.Error()
	var se *expr.SyntaxError
	if errors.As(err, &se) {
		offset += se.Offset
		msg = "invalid expression: " + se.Message
	}
	if offset > len(p.source) {
		offset = len(p.source)
	}
	line, column := p.position(offset)
	p.record(&ParserError{Message: msg, Line: line, Column: column, Offset: offset})
}

func (p *Parser) err() error {
	if p.furthest == nil {
		tok := p.curToken()
		return &ParserError{Message: "syntax error", Line: tok.Line, Column: tok.Column, Offset: tok.Offset}
	}
	return p.furthest
}

func (p *Parser) record(err *ParserError) {
	if p.furthest == nil || err.Offset > p.furthest.Offset {
		p.furthest = err
	}
}

// position converts a byte offset to a line and character column.
func (p *Parser) position(offset int) (int, int) {
	line, column := 1, 1
	for i := 0; i < offset; i++ {
		ch := p.source[i]
		switch {
		case ch == '\n':
			line++
			column = 1
		case ch&0xC0 != 0x80:
			column++
		}
	}
	return line, column
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	default:
		return fmt.Sprintf("%q", tok.Literal)
	}
}
