// Package compiler provides the compilation pipeline for event scripts.
// It transforms source text into a script.Script through two phases:
// 1. Parser: sections and instructions (the lexer runs inside the parser)
// 2. Assembly: sections folded into a name-indexed Script
//
// This package provides a unified API for compiling event scripts:
// - Compile: Compiles a source string to a Script
// - CompileWithOptions: Compiles with a custom expression parser
// - CompileFile: Compiles a file (handles Shift-JIS encoding)
// - CompileSources: Compiles many loaded sources in parallel
// - CompileDirectory: Loads and compiles all scripts from a directory
package compiler

import (
	"fmt"

	"github.com/zurustar/evscript/pkg/compiler/parser"
	"github.com/zurustar/evscript/pkg/script"
	"github.com/zurustar/evscript/pkg/source"
)

// CompileOptions provides configuration options for compilation.
type CompileOptions struct {
	// Expressions parses the condition and value expressions embedded in
	// instructions. nil selects the built-in expression language.
	Expressions parser.ExpressionParser

	// Jobs limits how many sources CompileSources compiles at once.
	// Zero or less means one per available CPU.
	Jobs int

	// Extensions selects the files CompileDirectory loads. Empty means
	// source.DefaultExtension.
	Extensions []string
}

// Compile compiles source code to a Script.
// It chains the parser → assembler pipeline.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//
// Returns:
//   - *script.Script: The compiled script (nil if compilation failed)
//   - error: A *ScriptParseError if the source does not parse completely
func Compile(source string) (*script.Script, error) {
	return CompileWithOptions(source, CompileOptions{})
}

// CompileWithOptions compiles source code with additional options.
// Only opts.Expressions affects a single compilation.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//   - opts: Compilation options
//
// Returns:
//   - *script.Script: The compiled script (nil if compilation failed)
//   - error: A *ScriptParseError if the source does not parse completely
func CompileWithOptions(source string, opts CompileOptions) (*script.Script, error) {
	p := parser.New(source, opts.Expressions)
	sections, err := p.ParseScript()
	if err != nil {
		return nil, wrapParseError(err, source)
	}
	return script.FromSections(sections), nil
}

// CompileFile compiles a file to a Script.
// It reads the file, handles Shift-JIS to UTF-8 encoding conversion,
// and then compiles the content.
//
// Parameters:
//   - path: Path to the script file
//
// Returns:
//   - *script.Script: The compiled script
//   - error: A read error wrapped with the path, or a *ScriptParseError
func CompileFile(path string) (*script.Script, error) {
	return CompileFileWithOptions(path, CompileOptions{})
}

// CompileFileWithOptions compiles a file with additional options.
//
// Parameters:
//   - path: Path to the script file
//   - opts: Compilation options
//
// Returns:
//   - *script.Script: The compiled script
//   - error: A read error wrapped with the path, or a *ScriptParseError
func CompileFileWithOptions(path string, opts CompileOptions) (*script.Script, error) {
	src, err := source.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return CompileWithOptions(src.Content, opts)
}

// CompileResult represents the compilation result for a single script.
type CompileResult struct {
	// FileName is the base name of the script file
	FileName string
	// Path is the path of the file relative to the directory it was loaded from
	Path string
	// Script is the compiled script (nil if compilation failed)
	Script *script.Script
	// Err is the compilation error (nil if successful)
	Err error
}

// Failed returns the results whose compilation did not succeed, in order.
func Failed(results []CompileResult) []CompileResult {
	var failed []CompileResult
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
