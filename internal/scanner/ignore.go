package scanner

import (
	"path"
	"strings"
)

// IgnorePattern is a single gitignore-style pattern from a .pisignore file.
type IgnorePattern struct {
	pattern  string
	negation bool // pattern starts with !
	dirOnly  bool // pattern ends with /
	anchored bool // pattern starts with / (or contains a slash)
	segments []string
}

// ParseIgnorePattern parses one gitignore-style pattern line.
func ParseIgnorePattern(line string) IgnorePattern {
	p := IgnorePattern{pattern: line}

	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.anchored = true
		line = line[1:]
	} else if strings.Contains(line, "/") {
		// A slash anywhere in the pattern anchors it to the ignore file's
		// directory, per gitignore semantics.
		p.anchored = true
	}
	p.segments = strings.Split(line, "/")

	return p
}

// IsNegation reports whether this is a "!" re-include pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.negation
}

// Match checks rel (slash-separated, relative to the ignore file's directory)
// against the pattern.
func (p IgnorePattern) Match(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		// A directory pattern still ignores everything inside the directory.
		if !p.matchParent(rel) {
			return false
		}
		return true
	}

	pathSegs := strings.Split(rel, "/")
	if p.anchored {
		return matchSegments(p.segments, pathSegs)
	}
	// Unanchored patterns may match at any depth.
	for start := 0; start < len(pathSegs); start++ {
		if matchSegments(p.segments, pathSegs[start:]) {
			return true
		}
	}
	return false
}

// matchParent reports whether any ancestor directory of rel matches the
// pattern.
func (p IgnorePattern) matchParent(rel string) bool {
	pathSegs := strings.Split(rel, "/")
	for end := 1; end < len(pathSegs); end++ {
		prefix := pathSegs[:end]
		if p.anchored {
			if matchSegments(p.segments, prefix) {
				return true
			}
			continue
		}
		for start := 0; start < len(prefix); start++ {
			if matchSegments(p.segments, prefix[start:]) {
				return true
			}
		}
	}
	return false
}

// matchSegments matches pattern segments (supporting "**", "*", "?" and
// character classes) against path segments. The pattern must cover the whole
// path, except that a trailing "**" matches any remainder and a last pattern
// segment that matches a directory also matches everything beneath it.
func matchSegments(patternSegs, pathSegs []string) bool {
	if len(patternSegs) == 0 {
		return len(pathSegs) == 0
	}
	if patternSegs[0] == "**" {
		if len(patternSegs) == 1 {
			return true
		}
		for i := 0; i <= len(pathSegs); i++ {
			if matchSegments(patternSegs[1:], pathSegs[i:]) {
				return true
			}
		}
		return false
	}
	if len(pathSegs) == 0 {
		return false
	}
	ok, err := path.Match(patternSegs[0], pathSegs[0])
	if err != nil || !ok {
		return false
	}
	if len(patternSegs) == 1 && len(pathSegs) > 1 {
		// "build" matches "build/lib/x.py": a matched directory ignores its
		// contents.
		return true
	}
	return matchSegments(patternSegs[1:], pathSegs[1:])
}
