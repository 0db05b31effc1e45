package annotation

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"slices"
	"strconv"

	"golang.org/x/tools/go/packages"

	"github.com/calumari/simplebuilder/internal/diag"
)

// ErrNotFound is returned when a referenced declaration does not exist.
var ErrNotFound = errors.New("declaration not found")

var (
	errNoTypes  = errors.New("no type information")
	errNoSyntax = errors.New("no syntax")
)

// Ref names a type as written in a file: Name or Qualifier.Name.
type Ref struct {
	Pkg       *packages.Package
	File      *ast.File
	Qualifier string
	Name      string
}

func (r Ref) String() string {
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

// Decl is the metadata of a resolved type declaration.
type Decl struct {
	PkgPath string
	Name    string
	Doc     Doc
	Pos     token.Position
}

// Source reads the doc metadata of a referenced type declaration.
type Source interface {
	TypeDoc(ref Ref) (Decl, error)
}

// resolvePackage finds the package a reference points into.
func resolvePackage(ref Ref) (*packages.Package, error) {
	if ref.Pkg == nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	if ref.Qualifier == "" {
		return ref.Pkg, nil
	}
	if ref.File == nil {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	for _, imp := range ref.File.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		dep := ref.Pkg.Imports[p]
		var local string
		switch {
		case imp.Name != nil:
			local = imp.Name.Name
		case dep != nil && dep.Name != "":
			local = dep.Name
		default:
			local = path.Base(p)
		}
		if local != ref.Qualifier {
			continue
		}
		if dep == nil {
			return nil, fmt.Errorf("%s: package %s not loaded: %w", ref, p, ErrNotFound)
		}
		return dep, nil
	}
	return nil, fmt.Errorf("%s: no import named %s: %w", ref, ref.Qualifier, ErrNotFound)
}

// findTypeSpec returns the spec and its doc comment for the named type.
func findTypeSpec(file *ast.File, match func(*ast.TypeSpec) bool) (*ast.TypeSpec, *ast.CommentGroup) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if !match(ts) {
				continue
			}
			if ts.Doc != nil {
				return ts, ts.Doc
			}
			if len(gd.Specs) == 1 {
				return ts, gd.Doc
			}
			return ts, nil
		}
	}
	return nil, nil
}

// TypedSource reads metadata through type-checked packages.
type TypedSource struct{}

func (TypedSource) TypeDoc(ref Ref) (Decl, error) {
	pkg, err := resolvePackage(ref)
	if err != nil {
		return Decl{}, err
	}
	if pkg.Types == nil {
		return Decl{}, fmt.Errorf("%s: %w", pkg.PkgPath, errNoTypes)
	}
	obj, ok := pkg.Types.Scope().Lookup(ref.Name).(*types.TypeName)
	if !ok {
		return Decl{}, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	for _, f := range pkg.Syntax {
		ts, doc := findTypeSpec(f, func(ts *ast.TypeSpec) bool { return ts.Name.Pos() == obj.Pos() })
		if ts == nil {
			continue
		}
		return Decl{PkgPath: pkg.PkgPath, Name: ref.Name, Doc: Parse(doc), Pos: pkg.Fset.Position(obj.Pos())}, nil
	}
	return Decl{}, fmt.Errorf("%s: %w", pkg.PkgPath, errNoSyntax)
}

// SyntaxSource reads metadata by parsing the package's files, including
// files excluded by build constraints, so declarations the type checker
// never saw are still visible.
type SyntaxSource struct {
	fset  *token.FileSet
	files map[string]*ast.File
}

func NewSyntaxSource() *SyntaxSource {
	return &SyntaxSource{fset: token.NewFileSet(), files: make(map[string]*ast.File)}
}

func (s *SyntaxSource) TypeDoc(ref Ref) (Decl, error) {
	pkg, err := resolvePackage(ref)
	if err != nil {
		return Decl{}, err
	}
	names := append(slices.Clone(pkg.GoFiles), pkg.IgnoredFiles...)
	for _, name := range names {
		f, err := s.parse(name)
		if err != nil {
			continue
		}
		ts, doc := findTypeSpec(f, func(ts *ast.TypeSpec) bool { return ts.Name.Name == ref.Name })
		if ts == nil {
			continue
		}
		return Decl{PkgPath: pkg.PkgPath, Name: ref.Name, Doc: Parse(doc), Pos: s.fset.Position(ts.Pos())}, nil
	}
	return Decl{}, fmt.Errorf("%s: %w", ref, ErrNotFound)
}

func (s *SyntaxSource) parse(filename string) (*ast.File, error) {
	if f, ok := s.files[filename]; ok {
		return f, nil
	}
	f, err := parser.ParseFile(s.fset, filename, nil, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	s.files[filename] = f
	return f, nil
}

// FallbackSource tries Primary and falls back to Secondary on any error.
type FallbackSource struct {
	Primary   Source
	Secondary Source
	Logger    diag.Logger
}

func (s FallbackSource) TypeDoc(ref Ref) (Decl, error) {
	d, err := s.Primary.TypeDoc(ref)
	if err == nil {
		return d, nil
	}
	if s.Logger != nil {
		s.Logger.Debug("typed metadata unavailable, reading syntax", "ref", ref.String(), "err", err)
	}
	return s.Secondary.TypeDoc(ref)
}

// NewSource returns the default typed-then-syntax source.
func NewSource(logger diag.Logger) Source {
	return FallbackSource{Primary: TypedSource{}, Secondary: NewSyntaxSource(), Logger: logger}
}
