// Package index builds a project-wide import index: every Python file under
// a root, mapped to the imports the parser extracts from it.
package index

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/l3aro/py-import-scan/internal/log"
	"github.com/l3aro/py-import-scan/internal/scanner"
	"github.com/l3aro/py-import-scan/pkg/cache"
	"github.com/l3aro/py-import-scan/pkg/parser"
	"github.com/l3aro/py-import-scan/pkg/types"
)

// Options configures an index build.
type Options struct {
	Workers        int    // parallel parse workers (0 means NumCPU)
	IgnoreFileName string // per-directory ignore file name
	ExtraExcludes  []string
	FollowSymlinks bool
	Cache          *cache.ParseCache // optional parse cache
	Logger         log.Logger        // optional; defaults to the package logger
}

// FileError records a file that could not be read during a build. The build
// itself does not fail for unreadable files.
type FileError struct {
	Path string `json:"path" msgpack:"path" yaml:"path"`
	Err  string `json:"error" msgpack:"error" yaml:"error"`
}

// Index is the result of scanning a project for imports.
type Index struct {
	Root    string                    `json:"root" msgpack:"root" yaml:"root"`
	Files   map[string][]types.Import `json:"files" msgpack:"files" yaml:"files"`
	Errors  []FileError               `json:"errors,omitempty" msgpack:"errors" yaml:"errors,omitempty"`
	Built   time.Time                 `json:"built" msgpack:"built" yaml:"built"`
	Elapsed time.Duration             `json:"elapsed_ns" msgpack:"elapsed_ns" yaml:"elapsed_ns"`
}

// Stats summarises an index.
type Stats struct {
	FileCount        int `json:"file_count" yaml:"file_count"`
	ImportCount      int `json:"import_count" yaml:"import_count"`
	TypecheckingOnly int `json:"typechecking_only" yaml:"typechecking_only"`
	ErrorCount       int `json:"error_count" yaml:"error_count"`
}

// Build scans root for Python files and parses each one's imports with a
// bounded worker pool.
func Build(root string, opts Options) (*Index, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sc := scanner.New(scanner.Options{
		SkipHidden:     true,
		FollowSymlinks: opts.FollowSymlinks,
		ExtraExcludes:  opts.ExtraExcludes,
		IgnoreFileName: opts.IgnoreFileName,
	})
	files, err := sc.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	logger.Debug("scan complete", "root", root, "files", len(files))

	start := time.Now()
	idx := &Index{
		Root:  root,
		Files: make(map[string][]types.Import, len(files)),
		Built: start,
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan scanner.FileInfo)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range jobs {
				imports, err := parseFile(file.FullPath, opts.Cache)
				mu.Lock()
				if err != nil {
					idx.Errors = append(idx.Errors, FileError{Path: file.Path, Err: err.Error()})
				} else {
					idx.Files[file.Path] = imports
				}
				mu.Unlock()
			}
		}()
	}
	for _, file := range files {
		jobs <- file
	}
	close(jobs)
	wg.Wait()

	sort.Slice(idx.Errors, func(i, j int) bool { return idx.Errors[i].Path < idx.Errors[j].Path })
	idx.Elapsed = time.Since(start)
	logger.Info("index built",
		"root", root,
		"files", len(idx.Files),
		"errors", len(idx.Errors),
		"elapsed", idx.Elapsed)
	return idx, nil
}

// parseFile parses one file, going through the cache when one is configured.
func parseFile(path string, pc *cache.ParseCache) ([]types.Import, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return parser.ParseImports(string(content))
	}
	key := cache.Key(content)
	if imports, ok := pc.Get(key); ok {
		return imports, nil
	}
	imports, err := parser.ParseImports(string(content))
	if err != nil {
		return nil, err
	}
	pc.Put(key, imports)
	return imports, nil
}

// Paths returns the indexed file paths, sorted.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.Files))
	for path := range idx.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ImportsOf returns the imports of one indexed file.
func (idx *Index) ImportsOf(path string) []types.Import {
	return idx.Files[filepath.ToSlash(path)]
}

// Modules returns the sorted unique imported objects across the project.
func (idx *Index) Modules() []string {
	seen := make(map[string]bool)
	for _, imports := range idx.Files {
		for _, imp := range imports {
			seen[imp.ImportedObject] = true
		}
	}
	modules := make([]string, 0, len(seen))
	for name := range seen {
		modules = append(modules, name)
	}
	sort.Strings(modules)
	return modules
}

// ImportersOf returns the files importing the given module, either exactly
// or anything beneath it (so "foo" also finds "foo.bar" and "foo.*"). The
// result is sorted by path.
func (idx *Index) ImportersOf(module string) []types.FileImports {
	var result []types.FileImports
	for path, imports := range idx.Files {
		var matched []types.Import
		for _, imp := range imports {
			if imp.ImportedObject == module || strings.HasPrefix(imp.ImportedObject, module+".") {
				matched = append(matched, imp)
			}
		}
		if len(matched) > 0 {
			result = append(result, types.FileImports{Path: path, Imports: matched})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

// Stats summarises the index.
func (idx *Index) Stats() Stats {
	s := Stats{
		FileCount:  len(idx.Files),
		ErrorCount: len(idx.Errors),
	}
	for _, imports := range idx.Files {
		s.ImportCount += len(imports)
		for _, imp := range imports {
			if imp.TypecheckingOnly {
				s.TypecheckingOnly++
			}
		}
	}
	return s
}

// Save persists the index as msgpack.
func (idx *Index) Save(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(idx); err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	return nil
}

// SaveFile persists the index to path, creating parent directories.
func (idx *Index) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()
	return idx.Save(f)
}

// Load restores an index written by Save.
func Load(r io.Reader) (*Index, error) {
	var idx Index
	if err := msgpack.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index: %w", err)
	}
	return &idx, nil
}

// LoadFile restores an index from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// ExportYAML writes the index as YAML.
func (idx *Index) ExportYAML(w io.Writer) error {
	if err := yaml.NewEncoder(w).Encode(idx); err != nil {
		return fmt.Errorf("encoding index as YAML: %w", err)
	}
	return nil
}
