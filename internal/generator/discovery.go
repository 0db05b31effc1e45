package generator

import (
	"cmp"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/mod/semver"
	"golang.org/x/tools/go/packages"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/compilerargs"
	"github.com/calumari/simplebuilder/internal/config"
	"github.com/calumari/simplebuilder/internal/naming"
)

const (
	builderDirective = "builder"
	minGoVersion     = "v1.21"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes | packages.NeedTypesInfo |
	packages.NeedSyntax | packages.NeedModule

// target is one type declaration carrying the builder directive.
type target struct {
	obj  *types.TypeName
	pkg  *packages.Package
	file *ast.File
	doc  annotation.Doc
	pos  token.Position
	conf config.Configuration

	builder  string
	newName  string
	fromName string
	create   string
}

func (t *target) name() string { return t.obj.Name() }

// filename is where the builder of t is written.
func (t *target) filename() string {
	return filepath.Join(filepath.Dir(t.pos.Filename), inflect.Underscore(t.builder)+".go")
}

// assignNames derives the builder and constructor names from the resolved
// configuration.
func (t *target) assignNames() {
	c := t.conf
	t.builder = naming.Access(naming.UpperFirst(t.name())+c.Suffix, c.BuilderAccess.Exported())
	exported := c.BuilderConstructorAccess.Exported()
	t.newName = naming.Access("New"+naming.UpperFirst(t.builder), exported)
	t.fromName = t.newName + "From"
	t.create = naming.Access("Create"+naming.UpperFirst(t.name()), exported)
}

// loadPackages loads the configured patterns. Type errors are logged and
// tolerated; packages that could not be listed or parsed at all fail the
// run.
func (g *generator) loadPackages() ([]*packages.Package, error) {
	dir, err := filepath.Abs(cmp.Or(g.cfg.Dir, "."))
	if err != nil {
		return nil, err
	}
	patterns := g.cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./"}
	}
	pkgs, err := packages.Load(&packages.Config{Mode: loadMode, Dir: dir}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}
	for _, p := range pkgs {
		for _, e := range p.Errors {
			if e.Kind == packages.ListError || p.Types == nil {
				return nil, fmt.Errorf("loading %s: %w", cmp.Or(p.PkgPath, p.ID), e)
			}
			g.logger.Warn("package has errors", "pkg", p.PkgPath, "err", e.Msg)
		}
	}
	return pkgs, nil
}

// checkGoVersion fails when pkg belongs to a module declaring a Go version
// older than generated code needs. Packages outside a module pass.
func (g *generator) checkGoVersion(pkg *packages.Package) error {
	if pkg.Module == nil || pkg.Module.GoVersion == "" {
		return nil
	}
	if semver.Compare(canonicalGoVersion(pkg.Module.GoVersion), minGoVersion) < 0 {
		g.logger.Error("unsupported go version", "module", pkg.Module.Path, "go", pkg.Module.GoVersion)
		return ErrUnsupportedGoVersion
	}
	return nil
}

// canonicalGoVersion turns a go.mod version such as 1.21, 1.22.3 or
// 1.23rc1 into semver form, dropping any pre-release suffix.
func canonicalGoVersion(v string) string {
	if i := strings.IndexFunc(v, func(r rune) bool { return r != '.' && !unicode.IsDigit(r) }); i >= 0 {
		v = v[:i]
	}
	return "v" + strings.TrimSuffix(v, ".")
}

// discover finds every type declaration with a builder directive, in
// package and source order, and resolves its configuration.
func (g *generator) discover(pkgs []*packages.Package) []*target {
	resolver := &config.Resolver{
		Defaults: config.Defaults(),
		Args:     config.FromReader(compilerargs.NewReader(g.cfg.Args)),
		Source:   g.source,
		Reporter: g.reporter,
		Logger:   g.logger,
	}
	var out []*target
	for _, pkg := range pkgs {
		if pkg.TypesInfo == nil {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok || gd.Tok != token.TYPE {
					continue
				}
				for _, spec := range gd.Specs {
					ts := spec.(*ast.TypeSpec)
					groups := []*ast.CommentGroup{ts.Doc}
					if len(gd.Specs) == 1 {
						groups = []*ast.CommentGroup{gd.Doc, ts.Doc}
					}
					doc := annotation.Parse(groups...)
					if _, ok := doc.Directive(config.Namespace, builderDirective); !ok {
						continue
					}
					obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
					if !ok {
						g.logger.Warn("builder target has no type information", "target", ts.Name.Name)
						continue
					}
					t := &target{obj: obj, pkg: pkg, file: file, doc: doc, pos: pkg.Fset.Position(ts.Name.Pos())}
					t.conf = resolver.Resolve(config.Target{Name: obj.Name(), Pkg: pkg, File: file, Doc: doc, Pos: t.pos})
					t.assignNames()
					g.logger.Debug("found builder target", "target", obj.Name(), "pkg", pkg.PkgPath, "builder", t.builder)
					if nestable(obj) {
						g.index[typeKey(obj)] = t
					}
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// nestable reports whether obj can receive a builder at all.
func nestable(obj *types.TypeName) bool {
	named, ok := obj.Type().(*types.Named)
	if !ok || obj.IsAlias() || named.TypeParams().Len() > 0 {
		return false
	}
	_, ok = named.Underlying().(*types.Struct)
	return ok
}

func typeKey(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// nested resolves property types to the builders of other targets. A
// builder from another package is only usable when it and its constructor
// are exported.
func (g *generator) nested(from *target) analyzer.NestedResolver {
	return func(n *types.Named) (analyzer.NestedBuilder, bool) {
		t, ok := g.index[typeKey(n.Obj())]
		if !ok {
			return analyzer.NestedBuilder{}, false
		}
		if t.pkg.PkgPath != from.pkg.PkgPath && (!token.IsExported(t.builder) || !token.IsExported(t.newName)) {
			g.logger.Debug("nested builder not accessible", "target", from.name(), "builder", t.builder)
			return analyzer.NestedBuilder{}, false
		}
		return analyzer.NestedBuilder{
			PkgPath: t.pkg.PkgPath,
			PkgName: t.pkg.Name,
			Name:    t.builder,
			New:     t.newName,
			NewFrom: t.fromName,
		}, true
	}
}

// outputs returns the generated file names of the targets of pkg.
func (g *generator) outputs(pkg *packages.Package, targets []*target) map[string]bool {
	out := map[string]bool{}
	for _, t := range targets {
		if t.pkg == pkg {
			out[t.filename()] = true
		}
	}
	return out
}
