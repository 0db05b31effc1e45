package generator

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"go/ast"
	"go/types"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/go/packages"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/candidate"
	"github.com/calumari/simplebuilder/internal/conflict"
	"github.com/calumari/simplebuilder/internal/diag"
)

// run orchestrates loading, discovery, analysis and file emission.
func (g *generator) run() error {
	pkgs, err := g.loadPackages()
	if err != nil {
		return err
	}
	for _, pkg := range pkgs {
		if err := g.checkGoVersion(pkg); err != nil {
			return err
		}
	}
	targets := g.discover(pkgs)
	if len(targets) == 0 {
		g.logger.Info("no builder targets found", "patterns", g.cfg.Patterns)
		return nil
	}

	analyzers := map[*packages.Package]*analyzer.Analyzer{}
	for _, t := range targets {
		a, ok := analyzers[t.pkg]
		if !ok {
			a = g.newAnalyzer(t.pkg, targets)
			analyzers[t.pkg] = a
		}
		err := g.process(a, t)
		switch {
		case err == nil:
		case errors.Is(err, analyzer.ErrMalformedTarget):
			g.logger.Debug("skipping malformed target", "target", t.name(), "err", err)
		default:
			diag.Errorf(g.reporter, t.pos, t.name(), "%v", err)
		}
	}
	if g.errors.n > 0 {
		return fmt.Errorf("%d error(s) reported: %w", g.errors.n, ErrTargetsFailed)
	}
	return nil
}

func (g *generator) newAnalyzer(pkg *packages.Package, targets []*target) *analyzer.Analyzer {
	outputs := g.outputs(pkg, targets)
	a := analyzer.New(pkg, g.filter)
	a.Reporter = g.reporter
	a.Logger = g.logger.With("pkg", pkg.PkgPath)
	// previous output may have been written without a header
	a.Generated = func(f *ast.File) bool {
		return ast.IsGenerated(f) || outputs[pkg.Fset.Position(f.Package).Filename]
	}
	return a
}

// process generates the builder of one target. A panic is recovered and
// returned so one broken target does not stop the run.
func (g *generator) process(a *analyzer.Analyzer, t *target) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generating %s: panic: %v", t.builder, r)
		}
	}()

	a.Nested = g.nested(t)
	res, err := a.Analyze(t.obj)
	if err != nil {
		return err
	}
	if err := g.checkNames(t); err != nil {
		return err
	}

	ctx := candidate.Context{
		Config:    t.conf,
		Qualifier: relativeTo(t.pkg.Types),
		PkgPath:   t.pkg.PkgPath,
		Target:    t.name(),
		Builder:   t.builder,
	}
	cands := candidate.Collect(res.Properties, res.Proxies, ctx)
	cands = conflict.Resolve(t.builder, t.pos, cands, g.reporter)
	methods := make([]string, len(cands))
	for i, c := range cands {
		methods[i] = c.Name
	}
	fields := conflict.FieldNames(t.builder, res.Properties, g.reporter, methods...)

	e := &emitter{g: g, t: t, res: res, fields: fields}
	f := e.file(cands)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return fmt.Errorf("rendering %s: %w", t.builder, err)
	}
	return g.write(t, buf.Bytes())
}

// checkNames fails when a hand-written declaration already uses the name of
// the builder type or its constructors.
func (g *generator) checkNames(t *target) error {
	for _, name := range []string{t.builder, t.newName, t.fromName} {
		if g.declaredByHand(t.pkg, name) {
			return fmt.Errorf("%s is already declared in package %s", name, t.pkg.Name)
		}
	}
	return nil
}

// declaredByHand reports whether name is declared at package level outside
// generated files.
func (g *generator) declaredByHand(pkg *packages.Package, name string) bool {
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		return false
	}
	for _, f := range pkg.Syntax {
		if f.FileStart <= obj.Pos() && obj.Pos() < f.FileEnd {
			return !ast.IsGenerated(f)
		}
	}
	return true
}

func (g *generator) write(t *target, src []byte) error {
	path := t.filename()
	w, err := g.cfg.Output(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	g.logger.Info("generated builder", "target", t.name(), "builder", t.builder, "file", path)
	return nil
}

// relativeTo qualifies types from other packages by package name, matching
// how the generated file imports them.
func relativeTo(pkg *types.Package) types.Qualifier {
	return func(p *types.Package) string {
		if p == nil || p == pkg || p.Path() == pkg.Path() {
			return ""
		}
		return p.Name()
	}
}

// newFile creates a jennifer file for the package of t with the generated
// code header when enabled.
func (g *generator) newFile(t *target) *jen.File {
	f := jen.NewFilePathName(t.pkg.PkgPath, t.pkg.Name)
	if t.conf.UsingGeneratedHeader.On() {
		f.HeaderComment("Code generated by simplebuilder. DO NOT EDIT.")
		if g.cfg.Command != "" {
			f.HeaderComment("version: " + cmp.Or(g.cfg.Version, "devel"))
			f.HeaderComment("command: " + g.cfg.Command)
		}
	}
	f.ImportName(runtimePath, candidate.RuntimePkg)
	return f
}
