// Package types defines the core data structures for import extraction.
// It includes the import record produced by the parser and the per-file
// and per-project aggregates built on top of it.
package types

import "strings"

// Import represents a single discovered import statement occurrence.
//
// ImportedObject is the fully-qualified dotted name, e.g. "os", "foo.bar",
// ".pkg.mod", "..pkg", "foo.*". Relative imports keep their leading dots
// verbatim; wildcard imports end in "*".
type Import struct {
	ImportedObject   string `json:"imported_object" msgpack:"imported_object" yaml:"imported_object"`
	LineNumber       int    `json:"line_number" msgpack:"line_number" yaml:"line_number"`
	LineContents     string `json:"line_contents" msgpack:"line_contents" yaml:"line_contents"`
	TypecheckingOnly bool   `json:"typechecking_only" msgpack:"typechecking_only" yaml:"typechecking_only"`
}

// IsRelative reports whether the import is package-relative (starts with a dot).
func (i Import) IsRelative() bool {
	return strings.HasPrefix(i.ImportedObject, ".")
}

// IsWildcard reports whether the import is a wildcard import (from X import *).
func (i Import) IsWildcard() bool {
	return strings.HasSuffix(i.ImportedObject, "*")
}

// RelativeLevel returns the number of leading dots of a relative import.
// It returns 0 for absolute imports.
func (i Import) RelativeLevel() int {
	level := 0
	for _, ch := range i.ImportedObject {
		if ch == '.' {
			level++
		} else {
			break
		}
	}
	return level
}

// TopLevelModule returns the first dotted segment of an absolute import,
// e.g. "foo" for "foo.bar.baz". Relative imports have no top-level module
// and return "".
func (i Import) TopLevelModule() string {
	if i.IsRelative() {
		return ""
	}
	name := i.ImportedObject
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[:idx]
	}
	if name == "*" {
		return ""
	}
	return name
}

// FileImports holds all imports extracted from a single file.
type FileImports struct {
	Path    string   `json:"path" msgpack:"path" yaml:"path"`
	Imports []Import `json:"imports" msgpack:"imports" yaml:"imports"`
}

// Modules returns the unique imported objects of the file, unsorted, in
// first-occurrence order.
func (f FileImports) Modules() []string {
	seen := make(map[string]bool, len(f.Imports))
	var modules []string
	for _, imp := range f.Imports {
		if !seen[imp.ImportedObject] {
			seen[imp.ImportedObject] = true
			modules = append(modules, imp.ImportedObject)
		}
	}
	return modules
}
