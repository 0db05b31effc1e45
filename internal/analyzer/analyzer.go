// Package analyzer turns a builder target type into the list of properties
// a builder can set and the target methods it can forward.
package analyzer

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/diag"
	"github.com/calumari/simplebuilder/internal/naming"
)

const (
	tagKey          = "simplebuilder"
	ignoreDirective = "ignore"
)

// ErrMalformedTarget is returned for targets no builder can be generated
// for: non-struct and generic types.
var ErrMalformedTarget = errors.New("malformed builder target")

// NestedResolver reports the generated builder of a named struct type.
type NestedResolver func(*types.Named) (NestedBuilder, bool)

// Analyzer inspects target types of one package.
type Analyzer struct {
	Pkg      *packages.Package
	Filter   annotation.Filter
	Nested   NestedResolver
	Reporter diag.Reporter
	Logger   diag.Logger
	// Generated reports files whose methods are ignored as setters and
	// proxies. Defaults to ast.IsGenerated.
	Generated func(*ast.File) bool

	funcs map[token.Pos]funcDecl
}

type funcDecl struct {
	decl      *ast.FuncDecl
	generated bool
}

// New returns an analyzer for pkg.
func New(pkg *packages.Package, filter annotation.Filter) *Analyzer {
	return &Analyzer{Pkg: pkg, Filter: filter, Logger: diag.NopLogger{}}
}

// Analyze inspects the named target type.
func (a *Analyzer) Analyze(obj *types.TypeName) (*Result, error) {
	named, ok := obj.Type().(*types.Named)
	if !ok || obj.IsAlias() {
		return nil, fmt.Errorf("%s is an alias: %w", obj.Name(), ErrMalformedTarget)
	}
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("%s is generic: %w", obj.Name(), ErrMalformedTarget)
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s is not a struct: %w", obj.Name(), ErrMalformedTarget)
	}
	if a.Logger == nil {
		a.Logger = diag.NopLogger{}
	}
	a.indexFuncs()

	methods := map[string]*types.Func{}
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		methods[m.Name()] = m
	}
	fields := a.fieldNodes(obj)

	res := &Result{Target: obj, Named: named}
	res.Constructor = a.constructor(named)

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Embedded() {
			continue
		}
		node := fields[f.Name()]
		var doc annotation.Doc
		if node != nil {
			doc = annotation.Parse(node.Doc, node.Comment)
		}
		tag := reflect.StructTag(st.Tag(i))
		if tag.Get(tagKey) == "-" {
			continue
		}
		if _, ok := doc.Directive(tagKey, ignoreDirective); ok {
			continue
		}
		p, ok := a.property(f, methods, res.Constructor)
		if !ok {
			continue
		}
		anns := doc.Annotations()
		if p.Path == PathSetter {
			if fd, ok := a.funcs[methods[p.Setter].Pos()]; ok {
				anns = append(anns, annotation.Parse(fd.decl.Doc).Annotations()...)
			}
		}
		for _, ann := range anns {
			if annotation.IsNotNull(ann) {
				p.NotNull = true
			}
		}
		p.Annotations = a.Filter.Retain(anns)
		p.JSONName = jsonName(tag, p.Name)
		res.Properties = append(res.Properties, p)
	}

	a.bindConstructor(res)
	used := map[string]bool{}
	for _, p := range res.Properties {
		if !p.Getter.Field {
			used[p.Getter.Name] = true
		}
		if p.Setter != "" {
			used[p.Setter] = true
		}
	}
	res.Proxies = a.proxies(named, used)
	if m, ok := methods["With"]; ok && !a.isGenerated(m) {
		res.HasWith = true
	}
	return res, nil
}

// property derives the property of field f, or false when the field has no
// getter or no mutation path.
func (a *Analyzer) property(f *types.Var, methods map[string]*types.Func, ctor *Constructor) (Property, bool) {
	getter, name, ok := findGetter(f, methods)
	if !ok {
		a.Logger.Debug("field has no getter", "field", f.Name())
		return Property{}, false
	}
	p := Property{
		Name:      name,
		FieldName: f.Name(),
		Type:      f.Type(),
		Getter:    getter,
		Param:     -1,
		Nillable:  isNillable(f.Type()),
		Optional:  optionalOf(f.Type()),
		Pos:       a.position(f.Pos()),
	}
	p.Shape, p.Elem, p.Key = shapeOf(f.Type())

	switch {
	case a.isSetter(methods["Set"+name], f.Type()):
		p.Path, p.Setter = PathSetter, "Set"+name
	case ctor != nil && ctor.paramFor(f) >= 0:
		p.Path, p.Param = PathConstructor, ctor.paramFor(f)
	case f.Exported():
		p.Path = PathField
	default:
		a.Logger.Debug("field is not settable", "field", f.Name())
		return Property{}, false
	}

	if a.Nested != nil {
		t, ptr, ok := StructOf(f.Type())
		if n, isNamed := t.(*types.Named); ok && isNamed && n.TypeParams().Len() == 0 {
			if nb, found := a.Nested(n); found {
				p.Nested, p.NestedPointer = &nb, ptr
			}
		}
	}
	return p, true
}

// findGetter accepts an exported field or a no-argument method X, GetX or
// IsX (bool only) returning the field type.
func findGetter(f *types.Var, methods map[string]*types.Func) (Getter, string, bool) {
	if f.Exported() {
		return Getter{Field: true, Name: f.Name()}, f.Name(), true
	}
	bases := []string{naming.UpperFirst(f.Name())}
	if upper := strings.ToUpper(f.Name()); upper != bases[0] {
		// initialisms: id -> ID()
		bases = append(bases, upper)
	}
	isBool := false
	if b, ok := f.Type().Underlying().(*types.Basic); ok && b.Kind() == types.Bool {
		isBool = true
	}
	for _, base := range bases {
		prefixes := []string{"", "Get"}
		if isBool {
			prefixes = append(prefixes, "Is")
		}
		for _, prefix := range prefixes {
			m, ok := methods[prefix+base]
			if !ok {
				continue
			}
			sig := m.Type().(*types.Signature)
			if sig.Params().Len() == 0 && sig.Results().Len() == 1 && types.Identical(sig.Results().At(0).Type(), f.Type()) {
				return Getter{Name: prefix + base}, base, true
			}
		}
	}
	return Getter{}, "", false
}

// jsonName follows encoding/json: the tag name, the property name when the
// tag has none, or "" for "-".
func jsonName(tag reflect.StructTag, name string) string {
	v, ok := tag.Lookup("json")
	if !ok {
		return name
	}
	n, _, _ := strings.Cut(v, ",")
	switch n {
	case "-":
		if v == "-" {
			return ""
		}
		return "-"
	case "":
		return name
	}
	return n
}

func (a *Analyzer) isSetter(m *types.Func, t types.Type) bool {
	if m == nil || a.isGenerated(m) {
		return false
	}
	sig := m.Type().(*types.Signature)
	if _, ptr := sig.Recv().Type().(*types.Pointer); !ptr {
		return false
	}
	return sig.Params().Len() == 1 && sig.Results().Len() == 0 && !sig.Variadic() &&
		types.Identical(sig.Params().At(0).Type(), t)
}

// constructor finds New<Type> returning T, *T, or either with an error.
func (a *Analyzer) constructor(named *types.Named) *Constructor {
	name := "New" + named.Obj().Name()
	fn, ok := a.Pkg.Types.Scope().Lookup(name).(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	res := sig.Results()
	if sig.TypeParams().Len() > 0 || sig.Variadic() || res.Len() < 1 || res.Len() > 2 {
		a.Logger.Debug("ignoring constructor with unsupported signature", "func", name)
		return nil
	}
	if res.Len() == 2 && !isErrorType(res.At(1).Type()) {
		return nil
	}
	c := &Constructor{Name: name, Error: res.Len() == 2}
	switch rt := res.At(0).Type().(type) {
	case *types.Pointer:
		if !types.Identical(rt.Elem(), named) {
			return nil
		}
		c.Pointer = true
	default:
		if !types.Identical(rt, named) {
			return nil
		}
	}
	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		c.Params = append(c.Params, Param{Name: p.Name(), Type: p.Type(), Property: -1})
	}
	return c
}

// paramFor returns the index of the parameter named like f with f's type.
func (c *Constructor) paramFor(f *types.Var) int {
	for i, p := range c.Params {
		if strings.EqualFold(p.Name, f.Name()) && types.Identical(p.Type, f.Type()) {
			return i
		}
	}
	return -1
}

// bindConstructor links parameters to properties. A constructor with a
// parameter no property can supply is dropped.
func (a *Analyzer) bindConstructor(res *Result) {
	c := res.Constructor
	if c == nil {
		return
	}
	for i := range c.Params {
		for j, p := range res.Properties {
			if strings.EqualFold(c.Params[i].Name, p.FieldName) && types.Identical(c.Params[i].Type, p.Type) {
				c.Params[i].Property = j
				break
			}
		}
	}
	for _, p := range c.Params {
		if p.Property >= 0 {
			continue
		}
		if a.Reporter != nil {
			diag.Warnf(a.Reporter, a.position(res.Target.Pos()), res.Target.Name(),
				"constructor %s parameter %q matches no property, building with new(%s)", c.Name, p.Name, res.Target.Name())
		}
		res.Constructor = nil
		kept := res.Properties[:0]
		for _, prop := range res.Properties {
			if prop.Path == PathConstructor {
				if !prop.Getter.Field {
					a.Logger.Debug("field is not settable without constructor", "field", prop.FieldName)
					continue
				}
				prop.Path, prop.Param = PathField, -1
			}
			kept = append(kept, prop)
		}
		res.Properties = kept
		return
	}
}

// proxies collects exported pointer-receiver methods with parameters and no
// results that are not property accessors.
func (a *Analyzer) proxies(named *types.Named, used map[string]bool) []Proxy {
	var out []Proxy
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if !m.Exported() || used[m.Name()] || a.isGenerated(m) {
			continue
		}
		sig := m.Type().(*types.Signature)
		if _, ptr := sig.Recv().Type().(*types.Pointer); !ptr {
			continue
		}
		if sig.Params().Len() == 0 || sig.Results().Len() != 0 {
			continue
		}
		px := Proxy{Name: m.Name(), Variadic: sig.Variadic(), Pos: a.position(m.Pos())}
		for j := 0; j < sig.Params().Len(); j++ {
			px.Params = append(px.Params, sig.Params().At(j))
		}
		if fd, ok := a.funcs[m.Pos()]; ok {
			px.Annotations = a.Filter.Retain(annotation.Parse(fd.decl.Doc).Annotations())
		}
		out = append(out, px)
	}
	return out
}

func (a *Analyzer) indexFuncs() {
	if a.funcs != nil {
		return
	}
	a.funcs = map[token.Pos]funcDecl{}
	isGenerated := a.Generated
	if isGenerated == nil {
		isGenerated = ast.IsGenerated
	}
	for _, f := range a.Pkg.Syntax {
		generated := isGenerated(f)
		for _, d := range f.Decls {
			if fd, ok := d.(*ast.FuncDecl); ok && fd.Recv != nil {
				a.funcs[fd.Name.Pos()] = funcDecl{decl: fd, generated: generated}
			}
		}
	}
}

func (a *Analyzer) isGenerated(m *types.Func) bool {
	fd, ok := a.funcs[m.Pos()]
	return ok && fd.generated
}

// fieldNodes maps the field names of obj's struct declaration to their
// syntax nodes.
func (a *Analyzer) fieldNodes(obj *types.TypeName) map[string]*ast.Field {
	out := map[string]*ast.Field{}
	for _, f := range a.Pkg.Syntax {
		ast.Inspect(f, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok {
				return true
			}
			if ts.Name.Pos() != obj.Pos() {
				return false
			}
			if st, ok := ts.Type.(*ast.StructType); ok {
				for _, fld := range st.Fields.List {
					for _, id := range fld.Names {
						out[id.Name] = fld
					}
				}
			}
			return false
		})
	}
	return out
}

func (a *Analyzer) position(pos token.Pos) token.Position {
	if a.Pkg.Fset == nil {
		return token.Position{}
	}
	return a.Pkg.Fset.Position(pos)
}
