// Package parsing wraps github.com/smacker/go-tree-sitter and its
// javascript grammar to produce the ParsedFile contract spec.md §6
// hands to the engine: a filename, a language mode, an AST root with
// stable node kinds and byte spans, a span_to_location function using
// 1-based UTF-16 columns, and a parse_errors list.
//
// This package is the one explicitly out-of-scope collaborator spec.md
// §1 calls "the source-text parser"; it exists here so the repository
// is runnable end to end, grounded on the teacher's
// internal/analysis/static/javascript/fingerprinter.go parse step.
package parsing

import (
	"context"
	"fmt"
	"unicode/utf16"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the recognized dialect of a parsed file.
type Language string

const (
	JavaScript Language = "JavaScript"
	TypeScript Language = "TypeScript"
	JSX        Language = "JSX"
	TSX        Language = "TSX"
)

// ParseError describes a syntax error the parser could not recover
// from, reported at a byte-span-derived location.
type ParseError struct {
	Message string
	Range   Range
}

// Position is a 1-based UTF-16 line/column location.
type Position struct {
	Line   int
	Column int
}

// Range is a pair of Positions.
type Range struct {
	Start Position
	End   Position
}

// ParsedFile is the opaque handle the engine consumes.
type ParsedFile struct {
	Filename string
	Language Language
	Source   []byte
	Root     *sitter.Node
	Errors   []ParseError

	tree      *sitter.Tree
	lineStart []int // byte offset of the start of each 1-based line
}

// Close releases the underlying tree-sitter tree. Callers should defer
// Close after a successful Parse.
func (f *ParsedFile) Close() {
	if f.tree != nil {
		f.tree.Close()
	}
}

// HasFatalError reports whether the root node's error covers the
// entire tree, i.e. parsing produced a non-recoverable result per
// spec.md §4.1 ("If parsing produced a non-recoverable tree, no rule
// runs").
func (f *ParsedFile) HasFatalError() bool {
	return f.Root == nil || (f.Root.HasError() && f.Root.ChildCount() == 0)
}

// LanguageForExt maps a file extension (including the leading dot) to
// a Language, defaulting to JavaScript for unrecognized extensions.
func LanguageForExt(ext string) Language {
	switch ext {
	case ".ts":
		return TypeScript
	case ".tsx":
		return TSX
	case ".jsx":
		return JSX
	default:
		return JavaScript
	}
}

func grammarFor(lang Language) *sitter.Language {
	switch lang {
	case TypeScript:
		return typescript.GetLanguage()
	case TSX:
		return tsx.GetLanguage()
	default:
		// tree-sitter-javascript parses JSX as part of its grammar, so
		// both JavaScript and JSX use the same language.
		return javascript.GetLanguage()
	}
}

// Parse parses source text under the given filename and language
// dialect into a ParsedFile.
func Parse(ctx context.Context, filename string, lang Language, source []byte) (*ParsedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(grammarFor(lang))

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	f := &ParsedFile{
		Filename:  filename,
		Language:  lang,
		Source:    source,
		Root:      tree.RootNode(),
		tree:      tree,
		lineStart: computeLineStarts(source),
	}
	f.Errors = collectParseErrors(f.Root, f)
	return f, nil
}

func computeLineStarts(source []byte) []int {
	starts := []int{0, 0} // 1-indexed; starts[1] is the start of line 1
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// SpanToLocation converts a byte span into a 1-based UTF-16
// line/column Range, matching the editor-protocol convention spec.md
// §6 requires.
func (f *ParsedFile) SpanToLocation(startByte, endByte uint32) Range {
	return Range{
		Start: f.byteToPosition(startByte),
		End:   f.byteToPosition(endByte),
	}
}

// NodeRange is a convenience wrapper around SpanToLocation for a
// tree-sitter node.
func (f *ParsedFile) NodeRange(n *sitter.Node) Range {
	if n == nil {
		return Range{}
	}
	return f.SpanToLocation(n.StartByte(), n.EndByte())
}

func (f *ParsedFile) byteToPosition(b uint32) Position {
	line := lineForByte(f.lineStart, int(b))
	lineStartByte := f.lineStart[line]
	col := utf16ColumnOf(f.Source, lineStartByte, int(b))
	return Position{Line: line, Column: col + 1}
}

func lineForByte(lineStart []int, b int) int {
	lo, hi := 1, len(lineStart)-1
	line := 1
	for lo <= hi {
		mid := (lo + hi) / 2
		if lineStart[mid] <= b {
			line = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return line
}

// utf16ColumnOf returns the number of UTF-16 code units between
// lineStartByte and targetByte within source.
func utf16ColumnOf(source []byte, lineStartByte, targetByte int) int {
	if targetByte <= lineStartByte {
		return 0
	}
	units := utf16.Encode([]rune(string(source[lineStartByte:targetByte])))
	return len(units)
}

func collectParseErrors(n *sitter.Node, f *ParsedFile) []ParseError {
	var errs []ParseError
	if n == nil {
		return errs
	}
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.IsError() || node.IsMissing() {
			r := f.SpanToLocation(node.StartByte(), node.EndByte())
			errs = append(errs, ParseError{
				Message: fmt.Sprintf("unexpected token near %q", node.Type()),
				Range:   r,
			})
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(n)
	return errs
}
