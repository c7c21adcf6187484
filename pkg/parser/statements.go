package parser

import "strings"

// joinImported forms the canonical dotted name for a from-import item. When
// the relative module is a pure-dot form ("." or ".."), the item is appended
// without an extra separator.
func joinImported(relModule, item string) string {
	if strings.HasSuffix(relModule, ".") {
		return relModule + item
	}
	return relModule + "." + item
}

// asAlias consumes an optional "as <identifier>" clause. The alias itself is
// discarded; only the consumed span matters for the statement's verbatim text.
func (s *scanner) asAlias() {
	m := s.save()
	if !s.hws(true) || !s.keyword("as") {
		s.restore(m)
		return
	}
	s.advance(2)
	if !s.hws(true) {
		s.restore(m)
		return
	}
	if _, ok := s.ident(); !ok {
		s.restore(m)
	}
}

// simpleImport parses "import a.b [as x], c [as y], ...". Each listed module
// becomes one record; every record carries the whole statement's span.
func (s *scanner) simpleImport() ([]importRecord, bool) {
	m := s.save()
	if !s.keyword("import") {
		return nil, false
	}
	s.advance(len("import"))
	if !s.hws(true) {
		s.restore(m)
		return nil, false
	}
	mod, ok := s.module()
	if !ok {
		s.restore(m)
		return nil, false
	}
	modules := []string{mod}
	s.asAlias()
	for {
		c := s.save()
		s.hws(false)
		if s.peek() != ',' {
			s.restore(c)
			break
		}
		s.advance(1)
		s.hws(false)
		mod, ok := s.module()
		if !ok {
			s.restore(c)
			break
		}
		modules = append(modules, mod)
		s.asAlias()
	}
	span := s.src[m.pos:s.pos]
	records := make([]importRecord, len(modules))
	for i, name := range modules {
		records[i] = importRecord{object: name, line: m.line, span: span}
	}
	return records, true
}

// fromImport parses the three from-import forms: single-line identifier
// lists, parenthesised multi-line lists, and wildcard imports.
func (s *scanner) fromImport() ([]importRecord, bool) {
	m := s.save()
	if !s.keyword("from") {
		return nil, false
	}
	s.advance(len("from"))
	if !s.hws(true) {
		s.restore(m)
		return nil, false
	}
	rel, ok := s.relModule()
	if !ok {
		s.restore(m)
		return nil, false
	}
	if !s.hws(true) || !s.keyword("import") {
		s.restore(m)
		return nil, false
	}
	s.advance(len("import"))

	// Wildcard form.
	w := s.save()
	if s.hws(true) && s.peek() == '*' {
		s.advance(1)
		span := s.src[m.pos:s.pos]
		return []importRecord{{object: joinImported(rel, "*"), line: m.line, span: span}}, true
	}
	s.restore(w)

	// Parenthesised form.
	p := s.save()
	s.hws(false)
	if s.peek() == '(' {
		s.advance(1)
		items, ok := s.parenItems()
		if !ok {
			s.restore(m)
			return nil, false
		}
		span := s.src[m.pos:s.pos]
		records := make([]importRecord, len(items))
		for i, item := range items {
			records[i] = importRecord{object: joinImported(rel, item), line: m.line, span: span}
		}
		return records, true
	}
	s.restore(p)

	// Single-line identifier list.
	if !s.hws(true) {
		s.restore(m)
		return nil, false
	}
	item, ok := s.ident()
	if !ok {
		s.restore(m)
		return nil, false
	}
	items := []string{item}
	s.asAlias()
	for {
		c := s.save()
		s.hws(false)
		if s.peek() != ',' {
			s.restore(c)
			break
		}
		s.advance(1)
		s.hws(false)
		item, ok := s.ident()
		if !ok {
			s.restore(c)
			break
		}
		items = append(items, item)
		s.asAlias()
	}
	span := s.src[m.pos:s.pos]
	records := make([]importRecord, len(items))
	for i, item := range items {
		records[i] = importRecord{object: joinImported(rel, item), line: m.line, span: span}
	}
	return records, true
}

// parenItems parses the inside of "( ... )" after the opening parenthesis:
// one or more identifiers with optional aliases, comma-separated, trailing
// comma permitted, with newlines, whitespace and comments allowed anywhere
// between tokens.
func (s *scanner) parenItems() ([]string, bool) {
	var items []string
	for {
		s.msc(false)
		item, ok := s.ident()
		if !ok {
			return nil, false
		}
		items = append(items, item)
		s.parenAlias()
		s.msc(false)
		switch s.peek() {
		case ',':
			s.advance(1)
			s.msc(false)
			if s.peek() == ')' {
				s.advance(1)
				return items, true
			}
		case ')':
			s.advance(1)
			return items, true
		default:
			return nil, false
		}
	}
}

// parenAlias consumes "as <identifier>" inside a parenthesised list, where
// the surrounding whitespace may include bare newlines and comments.
func (s *scanner) parenAlias() {
	m := s.save()
	if !s.msc(true) || !s.keyword("as") {
		s.restore(m)
		return
	}
	s.advance(2)
	if !s.msc(true) {
		s.restore(m)
		return
	}
	if _, ok := s.ident(); !ok {
		s.restore(m)
	}
}

// statement parses a single import statement of any form.
func (s *scanner) statement() ([]importRecord, bool) {
	if records, ok := s.simpleImport(); ok {
		return records, true
	}
	return s.fromImport()
}

// statementList parses a ";"-separated chain of import statements on one
// logical line, with an optional trailing ";". All records produced by the
// chain share the chain's starting line number.
func (s *scanner) statementList(typechecking bool) bool {
	m := s.save()
	records, ok := s.statement()
	if !ok {
		return false
	}
	for {
		c := s.save()
		s.hws(false)
		if s.peek() != ';' {
			s.restore(c)
			break
		}
		s.advance(1)
		s.hws(false)
		more, ok := s.statement()
		if !ok {
			// Trailing ";" is permitted; anything after it that is not a
			// statement is left for the driver's skip rule.
			break
		}
		records = append(records, more...)
	}
	for i := range records {
		records[i].line = m.line
	}
	s.emit(records, typechecking)
	return true
}
