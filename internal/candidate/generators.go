package candidate

import (
	"fmt"
	"go/types"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/config"
	"github.com/calumari/simplebuilder/internal/naming"
)

// RuntimePkg is the package generated builders import for runtime support.
const RuntimePkg = "builder"

// Context is what generators know about the builder being generated.
type Context struct {
	Config    config.Configuration
	Qualifier types.Qualifier
	// PkgPath is the import path of the target package.
	PkgPath string
	Target  string
	Builder string

	// stems holds the disambiguated method stems set by Collect.
	stems map[*analyzer.Property]string
}

// Generator proposes candidates for one property.
type Generator func(p *analyzer.Property, ctx Context) []Candidate

// Generators lists the per-property generators in registration order.
var Generators = []Generator{
	SetterGen,
	SupplierGen,
	ConsumerGen,
	BuilderConsumerGen,
	VarArgsGen,
	FormatGen,
	AddElementGen,
	UnboxedGen,
}

func (ctx Context) typ(t types.Type) string { return types.TypeString(t, ctx.Qualifier) }

func (ctx Context) method(name string) string {
	return naming.Access(name, ctx.Config.MethodAccess.Exported())
}

func (ctx Context) base(p *analyzer.Property) string {
	if s, ok := ctx.stems[p]; ok {
		return s
	}
	return p.Name + ctx.Config.SetterSuffix
}

// Stems returns the stem every property's method names are built from.
// Properties whose setters would share a name under the method access rule,
// ID and Id with unexported methods, get a numeric suffix in declaration
// order.
func Stems(props []analyzer.Property, ctx Context) []string {
	out := make([]string, len(props))
	seen := map[string]bool{}
	for i, p := range props {
		stem := p.Name + ctx.Config.SetterSuffix
		for n := 2; seen[ctx.method(stem)]; n++ {
			stem = p.Name + strconv.Itoa(n) + ctx.Config.SetterSuffix
		}
		seen[ctx.method(stem)] = true
		out[i] = stem
	}
	return out
}

// paramName avoids the receiver name b and the closure parameter v used
// by generated bodies.
func paramName(name string) string {
	name = naming.Ident(name)
	if name == "b" || name == "v" {
		return name + "_"
	}
	return name
}

func SetterGen(p *analyzer.Property, ctx Context) []Candidate {
	name := ctx.method(ctx.base(p))
	return []Candidate{{
		Kind:     KindSetter,
		Name:     name,
		Params:   []Param{{Name: paramName(naming.LowerFirst(p.Name)), Type: ctx.typ(p.Type)}},
		Priority: Setter,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s.", name, p.Name),
	}}
}

func SupplierGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateFieldSupplier.On() {
		return nil
	}
	name := ctx.method(ctx.base(p) + "Func")
	return []Candidate{{
		Kind:     KindSupplier,
		Name:     name,
		Params:   []Param{{Name: "fn", Type: "func() " + ctx.typ(p.Type)}},
		Priority: Supplier,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s to the value returned by fn.", name, p.Name),
	}}
}

// ConsumerGen applies to struct and pointer-to-struct properties. The
// consumer receives a fresh zero value to populate.
func ConsumerGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateFieldConsumer.On() || p.Optional != nil {
		return nil
	}
	st, _, ok := analyzer.StructOf(p.Type)
	if !ok {
		return nil
	}
	name := ctx.method(ctx.base(p) + "With")
	return []Candidate{{
		Kind:     KindConsumer,
		Name:     name,
		Params:   []Param{{Name: "fn", Type: "func(*" + ctx.typ(st) + ")"}},
		Priority: Consumer,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s to a new value populated by fn.", name, p.Name),
	}}
}

// BuilderConsumerGen hands fn a builder for the property: the generated
// builder of a nested target, a strings.Builder, or a collection builder.
func BuilderConsumerGen(p *analyzer.Property, ctx Context) []Candidate {
	c := ctx.Config
	if !c.GenerateBuilderConsumer.On() {
		return nil
	}
	var kind Kind
	var arg string
	switch {
	case p.Nested != nil:
		kind, arg = KindNestedBuilder, ctx.nestedName(p.Nested)
	case analyzer.IsStringKind(p.Type) && c.UsingStringBuilder.On():
		kind, arg = KindStringBuilder, "strings.Builder"
	case p.Shape == analyzer.ShapeList && c.UsingSliceBuilder.On():
		kind, arg = KindSliceBuilder, fmt.Sprintf("%s.SliceBuilder[%s]", RuntimePkg, ctx.typ(p.Elem))
	case p.Shape == analyzer.ShapeSet && c.UsingSetBuilder.On():
		kind, arg = KindSetBuilder, fmt.Sprintf("%s.SetBuilder[%s]", RuntimePkg, ctx.typ(p.Elem))
	case p.Shape == analyzer.ShapeMap && c.UsingMapBuilder.On():
		kind, arg = KindMapBuilder, fmt.Sprintf("%s.MapBuilder[%s, %s]", RuntimePkg, ctx.typ(p.Key), ctx.typ(p.Elem))
	default:
		return nil
	}
	name := ctx.method(ctx.base(p) + "Builder")
	return []Candidate{{
		Kind:     kind,
		Name:     name,
		Params:   []Param{{Name: "fn", Type: "func(*" + arg + ")"}},
		Priority: BuilderConsumer,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s to the result of a %s populated by fn.", name, p.Name, arg),
	}}
}

func (ctx Context) nestedName(nb *analyzer.NestedBuilder) string {
	if nb.PkgPath == ctx.PkgPath || nb.PkgName == "" {
		return nb.Name
	}
	return nb.PkgName + "." + nb.Name
}

func VarArgsGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateVarArgsHelpers.On() {
		return nil
	}
	switch p.Shape {
	case analyzer.ShapeList, analyzer.ShapeSet, analyzer.ShapeArray:
	default:
		return nil
	}
	name := ctx.method(ctx.base(p) + "Of")
	return []Candidate{{
		Kind:     KindVarArgs,
		Name:     name,
		Params:   []Param{{Name: "v", Type: "..." + ctx.typ(p.Elem)}},
		Priority: VarArgs,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s to the given elements.", name, p.Name),
	}}
}

// FormatGen applies to string kinds and optional strings.
func FormatGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateStringFormatHelpers.On() {
		return nil
	}
	if !analyzer.IsStringKind(p.Type) && (p.Optional == nil || !analyzer.IsStringKind(p.Optional.Value)) {
		return nil
	}
	name := ctx.method(ctx.base(p) + "f")
	return []Candidate{{
		Kind:     KindFormat,
		Name:     name,
		Params:   []Param{{Name: "format", Type: "string"}, {Name: "args", Type: "...any"}},
		Priority: StringFormat,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s according to a format specifier.", name, p.Name),
	}}
}

// AddElementGen appends one element to lists and sets or puts one entry
// into maps. The method is named after the singular of the property.
func AddElementGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateAddToCollectionHelpers.On() {
		return nil
	}
	name := ctx.method("Add" + Singular(p.Name) + ctx.Config.SetterSuffix)
	switch p.Shape {
	case analyzer.ShapeList, analyzer.ShapeSet:
		return []Candidate{{
			Kind:     KindAddElement,
			Name:     name,
			Params:   []Param{{Name: "e", Type: ctx.typ(p.Elem)}},
			Priority: AddElement,
			Property: p,
			Doc:      fmt.Sprintf("%s adds one element to %s.", name, p.Name),
		}}
	case analyzer.ShapeMap:
		return []Candidate{{
			Kind:     KindPutEntry,
			Name:     name,
			Params:   []Param{{Name: "k", Type: ctx.typ(p.Key)}, {Name: "v", Type: ctx.typ(p.Elem)}},
			Priority: AddElement,
			Property: p,
			Doc:      fmt.Sprintf("%s puts one entry into %s.", name, p.Name),
		}}
	}
	return nil
}

// Singular returns the singular form of a property name.
func Singular(name string) string {
	s := inflect.Singularize(name)
	if s == "" {
		return name
	}
	return naming.UpperFirst(s)
}

func UnboxedGen(p *analyzer.Property, ctx Context) []Candidate {
	if !ctx.Config.GenerateUnboxingOptional.On() || p.Optional == nil {
		return nil
	}
	name := ctx.method(ctx.base(p) + "Value")
	return []Candidate{{
		Kind:     KindUnboxed,
		Name:     name,
		Params:   []Param{{Name: "v", Type: ctx.typ(p.Optional.Value)}},
		Priority: UnboxedOptional,
		Property: p,
		Doc:      fmt.Sprintf("%s sets %s to a valid value.", name, p.Name),
	}}
}

// ProxyGen forwards a target method through the builder.
func ProxyGen(px *analyzer.Proxy, ctx Context) []Candidate {
	if !ctx.Config.GenerateProxyMethods.On() {
		return nil
	}
	name := ctx.method(px.Name)
	params := make([]Param, len(px.Params))
	for i, v := range px.Params {
		pn := v.Name()
		if pn == "" || pn == "_" {
			pn = fmt.Sprintf("arg%d", i)
		}
		t := ctx.typ(v.Type())
		if px.Variadic && i == len(px.Params)-1 {
			t = "..." + strings.TrimPrefix(t, "[]")
		}
		params[i] = Param{Name: paramName(pn), Type: t}
	}
	return []Candidate{{
		Kind:     KindProxy,
		Name:     name,
		Params:   params,
		Priority: Proxy,
		Proxy:    px,
		Doc:      fmt.Sprintf("%s calls %s.%s on the built value.", name, ctx.Target, px.Name),
	}}
}

// BuilderMethods returns the builder-level candidates.
func BuilderMethods(ctx Context) []Candidate {
	c := ctx.Config
	out := []Candidate{
		{Kind: KindBuild, Name: "Build", Priority: Core,
			Doc: fmt.Sprintf("Build creates a %s from the values set on b.", ctx.Target)},
		{Kind: KindMustBuild, Name: "MustBuild", Priority: Core,
			Doc: "MustBuild is like Build but panics on error."},
	}
	if c.GenerateConditionalHelper.On() {
		out = append(out, Candidate{
			Kind: KindConditional, Name: "Conditional", Priority: Core,
			Params: []Param{{Name: "cond", Type: "bool"}, {Name: "then", Type: "func(*" + ctx.Builder + ")"}, {Name: "otherwise", Type: "func(*" + ctx.Builder + ")"}},
			Doc:    "Conditional applies then when cond holds and otherwise when it does not. Either may be nil.",
		})
	}
	if c.GenerateJSONUnmarshaler.On() {
		out = append(out, Candidate{
			Kind: KindUnmarshalJSON, Name: "UnmarshalJSON", Priority: Core,
			Params: []Param{{Name: "data", Type: "[]byte"}},
			Doc:    fmt.Sprintf("UnmarshalJSON sets every %s property present in data.", ctx.Target),
		})
	}
	return out
}

// Collect registers every candidate of one builder in a fixed order:
// properties in declaration order with their generators in band order,
// then proxies, then builder-level methods.
func Collect(props []analyzer.Property, proxies []analyzer.Proxy, ctx Context) []Candidate {
	ctx.stems = map[*analyzer.Property]string{}
	for i, stem := range Stems(props, ctx) {
		ctx.stems[&props[i]] = stem
	}
	var out []Candidate
	for i := range props {
		for _, gen := range Generators {
			out = append(out, gen(&props[i], ctx)...)
		}
	}
	for i := range proxies {
		out = append(out, ProxyGen(&proxies[i], ctx)...)
	}
	return append(out, BuilderMethods(ctx)...)
}
