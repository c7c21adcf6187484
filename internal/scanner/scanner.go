// Package scanner discovers Python source files under a root directory.
// It respects .pisignore files with gitignore-style patterns and skips the
// usual build and environment directories.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents information about a discovered Python file.
type FileInfo struct {
	Path     string // Relative path from root, slash-separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden     bool     // Skip hidden files and directories (starting with .)
	FollowSymlinks bool     // Follow symlinks (within root only)
	ExtraExcludes  []string // Directory names excluded in addition to the defaults
	IgnoreFileName string   // Name of the ignore file (default: .pisignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".pisignore",
	}
}

// defaultExcludes are directory names never descended into.
var defaultExcludes = []string{
	"__pycache__",
	".git",
	".hg",
	".svn",
	"node_modules",
	".venv",
	"venv",
	".tox",
	".nox",
	".mypy_cache",
	".pytest_cache",
	".eggs",
	"dist",
	"build",
}

// pythonExtensions are the file extensions treated as Python source.
var pythonExtensions = map[string]bool{
	".py":  true,
	".pyw": true,
	".pyi": true,
}

// IsPythonFile reports whether the file name has a Python source extension.
func IsPythonFile(name string) bool {
	return pythonExtensions[strings.ToLower(filepath.Ext(name))]
}

// Scanner provides Python file discovery.
type Scanner struct {
	opts Options
	root string
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".pisignore"
	}
	return &Scanner{opts: opts}
}

// scopedPatterns are the patterns of one ignore file plus the directory they
// apply to, relative to the scan root.
type scopedPatterns struct {
	dir      string // slash-separated, "" for the root
	patterns []IgnorePattern
}

// Scan walks the tree rooted at root and returns every Python source file
// that is not hidden, excluded, or ignored.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	s.root = absRoot

	var scopes []scopedPatterns
	var files []FileInfo

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if rel == "." {
			patterns, err := s.loadIgnorePatterns(path)
			if err == nil && len(patterns) > 0 {
				scopes = append(scopes, scopedPatterns{dir: "", patterns: patterns})
			}
			return nil
		}
		relSlash := filepath.ToSlash(rel)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isExcluded(d.Name()) {
				return filepath.SkipDir
			}
			if s.ignored(scopes, relSlash, true) {
				return filepath.SkipDir
			}
			patterns, err := s.loadIgnorePatterns(path)
			if err == nil && len(patterns) > 0 {
				scopes = append(scopes, scopedPatterns{dir: relSlash, patterns: patterns})
			}
			return nil
		}

		if !IsPythonFile(d.Name()) {
			return nil
		}
		if s.ignored(scopes, relSlash, false) {
			return nil
		}

		info, err := s.resolve(path, d)
		if err != nil || info == nil {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relSlash,
			FullPath: path,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

// resolve returns the file info to record, following symlinks when enabled.
// It returns (nil, nil) for entries that must be skipped.
func (s *Scanner) resolve(path string, d fs.DirEntry) (os.FileInfo, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return info, nil
	}
	if !s.opts.FollowSymlinks {
		return nil, nil
	}
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	realAbs, err := filepath.Abs(realPath)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(realAbs, s.root+string(filepath.Separator)) && realAbs != s.root {
		return nil, nil
	}
	target, err := os.Stat(realPath)
	if err != nil || target.IsDir() {
		return nil, err
	}
	return target, nil
}

// isExcluded checks the built-in and configured directory exclusions.
func (s *Scanner) isExcluded(name string) bool {
	for _, exclude := range defaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	for _, exclude := range s.opts.ExtraExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// ignored evaluates rel against every ignore file whose directory contains
// it. Later patterns win, so a negation can re-include an earlier match.
func (s *Scanner) ignored(scopes []scopedPatterns, rel string, isDir bool) bool {
	result := false
	for _, scope := range scopes {
		local := rel
		if scope.dir != "" {
			if !strings.HasPrefix(rel, scope.dir+"/") {
				continue
			}
			local = strings.TrimPrefix(rel, scope.dir+"/")
		}
		for _, p := range scope.patterns {
			if p.Match(local, isDir) {
				result = !p.IsNegation()
			}
		}
	}
	return result
}

// loadIgnorePatterns loads patterns from the ignore file in dir, if present.
func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, sc.Err()
}
