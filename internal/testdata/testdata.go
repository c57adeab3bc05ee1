// Package testdata carries small UCD source samples shared by tests
// across the module. Fixtures are embedded; Dir materializes them into a
// temporary directory so directory-based parsing runs against real files.
package testdata

import (
	"embed"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

//go:embed *.txt *.ucd
var fixtures embed.FS

// Read returns the contents of one fixture.
func Read(t *testing.T, name string) []byte {
	t.Helper()
	data, err := fixtures.ReadFile(name)
	if err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return data
}

// Write materializes one fixture into dir and returns its path.
func Write(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Read(t, name), 0644); err != nil {
		t.Fatalf("fixture %s: %v", name, err)
	}
	return path
}

// UCDDir returns the path of the optional full-release directory that
// download.go fetches. Tests wanting real release data skip when it is
// absent.
func UCDDir() string {
	_, pkgdir, _, ok := runtime.Caller(0)
	if !ok {
		panic("no debug info")
	}
	return filepath.Join(filepath.Dir(pkgdir), "ucd")
}

// Dir materializes all fixtures into a fresh temporary directory.
func Dir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := fixtures.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		Write(t, dir, e.Name())
	}
	return dir
}
