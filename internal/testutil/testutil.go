// Package testutil writes throwaway Go modules and loads them with
// go/packages for analysis tests.
package testutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

// ModulePath is the module path of every module written by WriteModule.
const ModulePath = "example.com/app"

// Mode mirrors the load mode the generator uses.
const Mode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes | packages.NeedTypesInfo |
	packages.NeedSyntax | packages.NeedModule

// WriteModule creates a module in a temp dir declaring goVersion and
// containing files keyed by slash-separated relative path.
func WriteModule(t testing.TB, goVersion string, files map[string]string) string {
	t.Helper()
	return WriteModulePath(t, ModulePath, goVersion, files)
}

// WriteModulePath is WriteModule with an explicit module path.
func WriteModulePath(t testing.TB, modulePath, goVersion string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	gomod := "module " + modulePath + "\n\ngo " + goVersion + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644))
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// Load loads patterns from dir. Packages with type errors are returned as
// they are.
func Load(t testing.TB, dir string, patterns ...string) []*packages.Package {
	t.Helper()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	pkgs, err := packages.Load(&packages.Config{Mode: Mode, Dir: dir, Tests: false}, patterns...)
	require.NoError(t, err)
	require.NotEmpty(t, pkgs)
	return pkgs
}

// Package writes a single-package module from files and loads it.
func Package(t testing.TB, files map[string]string) *packages.Package {
	t.Helper()
	dir := WriteModule(t, "1.21", files)
	pkgs := Load(t, dir, "./")
	require.Len(t, pkgs, 1)
	return pkgs[0]
}

// Find returns the loaded package with the given import path.
func Find(t testing.TB, pkgs []*packages.Package, pkgPath string) *packages.Package {
	t.Helper()
	for _, p := range pkgs {
		if p.PkgPath == pkgPath {
			return p
		}
	}
	require.Failf(t, "package not loaded", "%s", pkgPath)
	return nil
}

// MemoryOutput collects written files in memory, keyed by path.
type MemoryOutput struct {
	Files map[string]string
}

func NewMemoryOutput() *MemoryOutput { return &MemoryOutput{Files: map[string]string{}} }

// Create matches the generator's output factory signature.
func (m *MemoryOutput) Create(path string) (io.WriteCloser, error) {
	return &memoryFile{path: path, out: m}, nil
}

// File returns the content written to the file with the given base name.
func (m *MemoryOutput) File(base string) (string, bool) {
	for p, content := range m.Files {
		if filepath.Base(p) == base {
			return content, true
		}
	}
	return "", false
}

type memoryFile struct {
	bytes.Buffer
	path string
	out  *MemoryOutput
}

func (f *memoryFile) Close() error {
	f.out.Files[f.path] = f.String()
	return nil
}
