package parser

import "fmt"

// ParserError is a syntax error at a source position. Line and Column are
// 1-indexed; Offset is a byte offset into the source.
type ParserError struct {
	Message string
	Line    int
	Column  int
	Offset  int
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
}
