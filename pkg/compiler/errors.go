// Package compiler provides the compilation pipeline for event scripts.
// This file defines the ScriptParseError type for structured error reporting.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zurustar/evscript/pkg/compiler/parser"
)

// ScriptParseError represents a failed compilation with location information.
// It implements the error interface and provides detailed context about where
// the error occurred in the source code.
//
// Compilation is all-or-nothing: when a ScriptParseError is returned no
// partial script is produced.
type ScriptParseError struct {
	// Description is the human-readable message of the failure that got
	// furthest into the source.
	Description string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context contains the source code around the error location.
	// This includes 2 lines before and after the error line,
	// with a pointer (^) indicating the error column.
	Context string
}

// Error implements the error interface.
// It returns a formatted error message including location, description, and context.
func (e *ScriptParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("script parse error at line %d, column %d: %s\n%s",
			e.Line, e.Column, e.Description, e.Context)
	}
	return fmt.Sprintf("script parse error at line %d, column %d: %s",
		e.Line, e.Column, e.Description)
}

// NewScriptParseError creates a new ScriptParseError with source context.
//
// Parameters:
//   - description: The error description
//   - line: The 1-indexed line number
//   - column: The 1-indexed column number
//   - source: The full source code for generating context
//
// Returns:
//   - *ScriptParseError: A new error with context
func NewScriptParseError(description string, line, column int, source string) *ScriptParseError {
	return &ScriptParseError{
		Description: description,
		Line:        line,
		Column:      column,
		Context:     GenerateErrorContext(source, line, column),
	}
}

// wrapParseError converts an error from the parser into a ScriptParseError.
// Errors that carry no position are reported at line 1, column 1.
func wrapParseError(err error, source string) *ScriptParseError {
	var pe *parser.ParserError
	if errors.As(err, &pe) {
		return NewScriptParseError(pe.Message, pe.Line, pe.Column, source)
	}
	return NewScriptParseError(err.Error(), 1, 1, source)
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers
// and a pointer (^) indicating the error column.
//
// Parameters:
//   - source: The full source code
//   - line: The 1-indexed line number of the error
//   - column: The 1-indexed column number of the error
//
// Returns:
//   - string: Formatted context string with line numbers and error pointer
//
// Example output:
//
//	  1 | --- village
//	  2 | talk(greeting)
//	> 3 | jump(inn) now
//	    |           ^
//	  4 | --- inn
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	// Calculate the range of lines to show (2 before and 2 after)
	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder

	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := strings.TrimSuffix(lines[i], "\r")

		if lineNum == line {
			// Error line - mark with >
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lineContent))
			// "> " + lineNumWidth + " | "
			pointerIndent := 2 + lineNumWidth + 3
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n", strings.Repeat(" ", pointerIndent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", pointerIndent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lineContent))
		}
	}

	return buf.String()
}
