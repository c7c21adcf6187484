// Package parser extracts module imports from Python source text.
//
// It is a lossy, position-preserving, single-pass parser: it recognises just
// enough of Python's lexical and block structure to find import statements
// and their "if TYPE_CHECKING:" context, and skips everything else without
// producing spurious records. Line continuations, parenthesised multi-line
// import lists, interleaved comments, triple-quoted literals, ";"-separated
// compound statements, and imports nested inside function or class bodies
// are all handled.
package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/l3aro/py-import-scan/pkg/types"
)

// ParseError reports that the source text could not be consumed in its
// entirety. The block driver's catch-all skip rule makes this unreachable for
// ordinary input; the type is kept for the API contract.
type ParseError struct {
	Line   int
	Offset int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse stalled at line %d (byte %d)", e.Line, e.Offset)
}

// ImportParser extracts import statements from Python source. The zero value
// is ready to use; a single instance is safe for concurrent use since each
// parse owns its own state.
type ImportParser struct{}

// NewImportParser creates a new Python import parser.
func NewImportParser() *ImportParser {
	return &ImportParser{}
}

// ParseString extracts all imports from Python source text.
func (p *ImportParser) ParseString(source string) ([]types.Import, error) {
	return ParseImports(source)
}

// ParseBytes extracts all imports from Python source bytes.
func (p *ImportParser) ParseBytes(source []byte) ([]types.Import, error) {
	return ParseImports(string(source))
}

// ParseFile reads path and extracts all imports from it.
func (p *ImportParser) ParseFile(path string) ([]types.Import, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseImports(string(content))
}

// ParseImports extracts the imports of the given Python source text, in
// source order. Records inside a recognised "if TYPE_CHECKING:" or
// "if typing.TYPE_CHECKING:" region carry TypecheckingOnly set. Input that is
// not an import statement is skipped; invalid Python is not rejected.
func ParseImports(source string) ([]types.Import, error) {
	s := &scanner{src: source, line: 1, limit: len(source), out: []types.Import{}}
	for !s.eof() {
		before := s.pos
		s.block(false)
		if s.pos == before {
			return nil, &ParseError{Line: s.line, Offset: s.pos}
		}
	}
	return s.out, nil
}

// emit converts statement records into output records with the current
// typechecking flag.
func (s *scanner) emit(records []importRecord, typechecking bool) {
	for _, r := range records {
		s.out = append(s.out, types.Import{
			ImportedObject:   r.object,
			LineNumber:       r.line,
			LineContents:     r.span,
			TypecheckingOnly: typechecking,
		})
	}
}

// block is the driver loop: it consumes the current region by repeatedly
// matching, in fixed priority, a TYPE_CHECKING construct, whitespace, a line
// terminator, a triple-quoted literal, a comment, a statement list, or --
// as the safety net -- the rest of the line.
func (s *scanner) block(typechecking bool) {
	for !s.eof() {
		if s.typeCheckingGuard() {
			continue
		}
		if s.hws(true) {
			continue
		}
		if s.lineEnd() {
			continue
		}
		if s.blockLiteral() {
			continue
		}
		if s.comment() {
			continue
		}
		if s.statementList(typechecking) {
			continue
		}
		s.skipRestOfLine()
	}
}

// typeCheckingGuard matches "if TYPE_CHECKING:" and "if typing.TYPE_CHECKING:"
// in both the single-line form (statements after the colon) and the block form
// (an indented block on the following lines). The condition is matched
// lexically; no other "if" form is recognised. The guarded region is parsed
// with the typechecking flag forced true, so nested guards keep it true.
func (s *scanner) typeCheckingGuard() bool {
	m := s.save()
	if !s.keyword("if") {
		return false
	}
	s.advance(2)
	if !s.hws(true) {
		s.restore(m)
		return false
	}
	switch {
	case s.keyword("typing.TYPE_CHECKING"):
		s.advance(len("typing.TYPE_CHECKING"))
	case s.keyword("TYPE_CHECKING"):
		s.advance(len("TYPE_CHECKING"))
	default:
		s.restore(m)
		return false
	}
	s.hws(false)
	if s.peek() != ':' {
		s.restore(m)
		return false
	}
	s.advance(1)
	s.hws(false)

	if s.eof() {
		return true
	}
	if s.peek() == '#' || s.peek() == '\n' || s.hasPrefix("\r\n") {
		s.comment()
		s.lineEnd()
		s.indentedBlock()
		return true
	}
	if !s.statementList(true) {
		s.restore(m)
		return false
	}
	return true
}

// indentedBlock parses the body of a block-form guard. The indentation prefix
// is the verbatim leading whitespace of the first non-blank line after the
// header; lines belong to the block while they are blank or start with that
// exact prefix.
func (s *scanner) indentedBlock() {
	for {
		b := s.save()
		s.hws(false)
		if !s.lineEnd() {
			s.restore(b)
			break
		}
	}
	if s.eof() {
		return
	}
	indentStart := s.pos
	s.hws(false)
	indent := s.src[indentStart:s.pos]
	if indent == "" {
		return
	}
	end := s.blockEnd(indentStart, indent)

	outerLimit := s.limit
	s.limit = end
	s.block(true)
	s.limit = outerLimit
}

// blockEnd scans forward line by line from start and returns the byte offset
// just past the last line belonging to a block with the given indentation
// prefix.
func (s *scanner) blockEnd(start int, indent string) int {
	i := start
	for i < s.limit {
		next := s.limit
		contentEnd := s.limit
		if idx := strings.IndexByte(s.src[i:s.limit], '\n'); idx >= 0 {
			contentEnd = i + idx
			next = contentEnd + 1
			if contentEnd > i && s.src[contentEnd-1] == '\r' {
				contentEnd--
			}
		}
		if !isBlankLine(s.src[i:contentEnd]) && !strings.HasPrefix(s.src[i:s.limit], indent) {
			return i
		}
		i = next
	}
	return s.limit
}

func isBlankLine(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return false
		}
	}
	return true
}
