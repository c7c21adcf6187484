package scanner

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for path, content := range files {
		fullPath := filepath.Join(tmpDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
	return tmpDir
}

func scanPaths(t *testing.T, root string, opts Options) map[string]bool {
	t.Helper()
	results, err := New(opts).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	found := make(map[string]bool)
	for _, f := range results {
		found[f.Path] = true
	}
	return found
}

func TestScanFindsPythonFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py":                  "import os\n",
		"pkg/mod.py":               "import sys\n",
		"pkg/stub.pyi":             "import typing\n",
		"script.pyw":               "import tkinter\n",
		"README.md":                "# readme\n",
		"main.go":                  "package main\n",
		".hidden/secret.py":        "import os\n",
		"__pycache__/mod.cpython-311.pyc": "",
		"venv/lib/site.py":         "import site\n",
		".git/hooks/x.py":          "import os\n",
	})

	found := scanPaths(t, root, DefaultOptions())

	for _, want := range []string{"main.py", "pkg/mod.py", "pkg/stub.pyi", "script.pyw"} {
		if !found[want] {
			t.Errorf("expected to find %s", want)
		}
	}
	for _, excluded := range []string{
		"README.md", "main.go", ".hidden/secret.py",
		"venv/lib/site.py", ".git/hooks/x.py",
	} {
		if found[excluded] {
			t.Errorf("expected %s to be excluded", excluded)
		}
	}
}

func TestScanRespectsIgnoreFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		".pisignore":          "generated/\n*_pb2.py\n!keep_pb2.py\n",
		"app.py":              "import os\n",
		"thing_pb2.py":        "import proto\n",
		"keep_pb2.py":         "import proto\n",
		"generated/out.py":    "import os\n",
		"sub/other_pb2.py":    "import proto\n",
	})

	found := scanPaths(t, root, DefaultOptions())

	if !found["app.py"] {
		t.Error("expected to find app.py")
	}
	if !found["keep_pb2.py"] {
		t.Error("expected negation pattern to re-include keep_pb2.py")
	}
	for _, excluded := range []string{"thing_pb2.py", "generated/out.py", "sub/other_pb2.py"} {
		if found[excluded] {
			t.Errorf("expected %s to be ignored", excluded)
		}
	}
}

func TestScanNestedIgnoreFileScope(t *testing.T) {
	root := writeTree(t, map[string]string{
		"sub/.pisignore": "local.py\n",
		"local.py":       "import os\n",
		"sub/local.py":   "import os\n",
		"sub/other.py":   "import os\n",
	})

	found := scanPaths(t, root, DefaultOptions())

	if !found["local.py"] {
		t.Error("nested ignore file must not apply outside its directory")
	}
	if found["sub/local.py"] {
		t.Error("expected sub/local.py to be ignored")
	}
	if !found["sub/other.py"] {
		t.Error("expected to find sub/other.py")
	}
}

func TestScanExtraExcludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app.py":           "import os\n",
		"generated/gen.py": "import os\n",
	})

	opts := DefaultOptions()
	opts.ExtraExcludes = []string{"generated"}
	found := scanPaths(t, root, opts)

	if !found["app.py"] {
		t.Error("expected to find app.py")
	}
	if found["generated/gen.py"] {
		t.Error("expected generated/ to be excluded")
	}
}

func TestIgnorePatternMatching(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"foo.py", "foo.py", false, true},
		{"foo.py", "sub/foo.py", false, true},
		{"/foo.py", "foo.py", false, true},
		{"/foo.py", "sub/foo.py", false, false},
		{"*.pyc", "a.pyc", false, true},
		{"*.pyc", "a.py", false, false},
		{"build/", "build", true, true},
		{"build/", "build/lib/x.py", false, true},
		{"docs/*.py", "docs/conf.py", false, true},
		{"docs/*.py", "other/conf.py", false, false},
		{"**/migrations", "app/migrations", true, true},
		{"a/**/b.py", "a/x/y/b.py", false, true},
	}

	for _, tt := range tests {
		p := ParseIgnorePattern(tt.pattern)
		if got := p.Match(tt.path, tt.isDir); got != tt.want {
			t.Errorf("ParseIgnorePattern(%q).Match(%q, %v) = %v, want %v",
				tt.pattern, tt.path, tt.isDir, got, tt.want)
		}
	}
}

func TestIsPythonFile(t *testing.T) {
	for _, name := range []string{"a.py", "b.PYI", "c.pyw"} {
		if !IsPythonFile(name) {
			t.Errorf("expected %s to be a Python file", name)
		}
	}
	for _, name := range []string{"a.go", "b.txt", "noext"} {
		if IsPythonFile(name) {
			t.Errorf("expected %s not to be a Python file", name)
		}
	}
}
