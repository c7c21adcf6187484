package parser

import (
	"strings"

	"github.com/l3aro/py-import-scan/pkg/types"
)

// scanner is the mutable state of one ParseImports call: the input, a
// position-tracked cursor, the exclusive bound of the region being parsed
// (narrowed while inside an indented block), and the accumulated records.
type scanner struct {
	src   string
	pos   int
	line  int // 1-based line of pos
	limit int // exclusive bound of the current region
	out   []types.Import
}

// importRecord is the parser-internal record; the typechecking flag and the
// chain line number are filled in by the layers above the statement parsers.
type importRecord struct {
	object string
	line   int
	span   string
}

// mark is a saved cursor position for backtracking.
type mark struct {
	pos  int
	line int
}

func (s *scanner) save() mark {
	return mark{pos: s.pos, line: s.line}
}

func (s *scanner) restore(m mark) {
	s.pos = m.pos
	s.line = m.line
}

func (s *scanner) eof() bool {
	return s.pos >= s.limit
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

// advance consumes n bytes, keeping the line count in sync.
func (s *scanner) advance(n int) {
	if s.pos+n > s.limit {
		n = s.limit - s.pos
	}
	s.line += strings.Count(s.src[s.pos:s.pos+n], "\n")
	s.pos += n
}

func (s *scanner) hasPrefix(p string) bool {
	return s.pos+len(p) <= s.limit && s.src[s.pos:s.pos+len(p)] == p
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// keyword matches kw followed by a non-identifier boundary, so that e.g.
// "importlib" is never mistaken for the "import" keyword. It consumes nothing.
func (s *scanner) keyword(kw string) bool {
	if !s.hasPrefix(kw) {
		return false
	}
	if s.pos+len(kw) < s.limit && isIdentChar(s.src[s.pos+len(kw)]) {
		return false
	}
	return true
}

// ident consumes a maximal non-empty run of identifier characters.
func (s *scanner) ident() (string, bool) {
	start := s.pos
	for !s.eof() && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false
	}
	return s.src[start:s.pos], true
}

// module consumes a dot-separated sequence of identifiers. A trailing dot
// that is not followed by an identifier is left unconsumed.
func (s *scanner) module() (string, bool) {
	start := s.pos
	if _, ok := s.ident(); !ok {
		return "", false
	}
	for {
		m := s.save()
		if s.peek() != '.' {
			break
		}
		s.advance(1)
		if _, ok := s.ident(); !ok {
			s.restore(m)
			break
		}
	}
	return s.src[start:s.pos], true
}

// relModule consumes a relative module reference: zero or more leading dots
// followed by a module, or one or more dots on their own (as in
// "from . import x"). The textual form, leading dots included, is returned
// verbatim.
func (s *scanner) relModule() (string, bool) {
	start := s.pos
	dots := 0
	for s.peek() == '.' {
		s.advance(1)
		dots++
	}
	if _, ok := s.module(); !ok && dots == 0 {
		return "", false
	}
	return s.src[start:s.pos], true
}

// hws consumes horizontal whitespace: spaces, tabs, and backslash-newline
// continuations. With required set, at least one token must be consumed.
func (s *scanner) hws(required bool) bool {
	consumed := false
	for {
		switch {
		case s.peek() == ' ' || s.peek() == '\t':
			s.advance(1)
		case s.hasPrefix("\\\r\n"):
			s.advance(3)
		case s.hasPrefix("\\\n"):
			s.advance(2)
		default:
			return consumed || !required
		}
		consumed = true
	}
}

// lineEnd consumes a single line terminator.
func (s *scanner) lineEnd() bool {
	if s.hasPrefix("\r\n") {
		s.advance(2)
		return true
	}
	if s.peek() == '\n' {
		s.advance(1)
		return true
	}
	return false
}

// comment consumes a "#" comment up to, but not including, the next line
// terminator.
func (s *scanner) comment() bool {
	if s.peek() != '#' {
		return false
	}
	rest := s.src[s.pos:s.limit]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		if idx > 0 && rest[idx-1] == '\r' {
			idx--
		}
		s.advance(idx)
	} else {
		s.advance(len(rest))
	}
	return true
}

// blockLiteral consumes a triple-quoted string region. Everything up to the
// first matching closing triple-quote is consumed; an unterminated literal is
// consumed to the end of the region.
func (s *scanner) blockLiteral() bool {
	var quote string
	switch {
	case s.hasPrefix(`"""`):
		quote = `"""`
	case s.hasPrefix("'''"):
		quote = "'''"
	default:
		return false
	}
	s.advance(3)
	if idx := strings.Index(s.src[s.pos:s.limit], quote); idx >= 0 {
		s.advance(idx + 3)
	} else {
		s.advance(s.limit - s.pos)
	}
	return true
}

// msc consumes any mixture of newlines, horizontal whitespace, and comments.
// Python permits these freely between tokens of a parenthesised import list.
func (s *scanner) msc(required bool) bool {
	consumed := false
	for {
		before := s.pos
		s.hws(false)
		if s.lineEnd() || s.comment() {
			consumed = true
			continue
		}
		if s.pos > before {
			consumed = true
			continue
		}
		return consumed || !required
	}
}

// skipRestOfLine is the driver's safety net: it consumes at least one byte,
// up to the next line terminator.
func (s *scanner) skipRestOfLine() {
	idx := strings.IndexByte(s.src[s.pos:s.limit], '\n')
	switch {
	case idx < 0:
		s.advance(s.limit - s.pos)
	case idx == 0:
		s.advance(1)
	default:
		s.advance(idx)
	}
}
