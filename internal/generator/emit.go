package generator

import (
	"go/types"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/candidate"
	"github.com/calumari/simplebuilder/internal/diag"
)

// runtimePath is the import path of the runtime support package.
const runtimePath = "github.com/calumari/simplebuilder/builder"

// emitter renders the builder file of one target.
type emitter struct {
	g      *generator
	t      *target
	res    *analyzer.Result
	fields []string
	index  map[*analyzer.Property]int
	f      *jen.File
}

func (e *emitter) file(cands []candidate.Candidate) *jen.File {
	e.f = e.g.newFile(e.t)
	e.index = map[*analyzer.Property]int{}
	for i := range e.res.Properties {
		e.index[&e.res.Properties[i]] = i
	}
	e.builderType()
	e.constructors()
	for _, c := range cands {
		e.method(c)
	}
	e.with()
	return e.f
}

func (e *emitter) target() *jen.Statement  { return jen.Id(e.t.name()) }
func (e *emitter) builder() *jen.Statement { return jen.Id(e.t.builder) }

// field returns b.<tracked field> of property i.
func (e *emitter) field(i int) *jen.Statement { return jen.Id("b").Dot(e.fields[i]) }

func (e *emitter) set(i int, v jen.Code) jen.Code { return e.field(i).Dot("Set").Call(v) }

func (e *emitter) get(i int) *jen.Statement { return e.field(i).Dot("Get").Call() }

func (e *emitter) builderType() {
	e.f.Commentf("%s builds %s values.", e.t.builder, e.t.name())
	e.f.Type().Add(e.builder()).StructFunc(func(g *jen.Group) {
		for i, p := range e.res.Properties {
			g.Id(e.fields[i]).Qual(runtimePath, "Value").Types(typ(p.Type))
		}
		g.Id("calls").Index().Func().Params(jen.Op("*").Add(e.target()))
		g.Id("errs").Index().Error()
	})
}

func (e *emitter) constructors() {
	t := e.t
	e.f.Commentf("%s returns an empty %s.", t.newName, t.builder)
	e.f.Func().Id(t.newName).Params().Op("*").Add(e.builder()).Block(
		jen.Return(jen.Op("&").Add(e.builder()).Values()),
	)

	e.f.Commentf("%s returns a %s seeded with the properties of v.", t.fromName, t.builder)
	e.f.Func().Id(t.fromName).Params(jen.Id("v").Op("*").Add(e.target())).Op("*").Add(e.builder()).BlockFunc(func(g *jen.Group) {
		g.Id("b").Op(":=").Op("&").Add(e.builder()).Values()
		g.If(jen.Id("v").Op("==").Nil()).Block(jen.Return(jen.Id("b")))
		for i, p := range e.res.Properties {
			read := jen.Id("v").Dot(p.Getter.Name)
			if !p.Getter.Field {
				read.Call()
			}
			g.Add(e.field(i).Dot("Init").Call(read))
		}
		g.Return(jen.Id("b"))
	})

	if e.g.declaredByHand(t.pkg, t.create) {
		diag.Warnf(e.g.reporter, t.pos, t.name(), "%s is already declared, skipping the factory function", t.create)
		return
	}
	e.f.Commentf("%s returns a new %s.", t.create, t.builder)
	e.f.Func().Id(t.create).Params().Op("*").Add(e.builder()).Block(
		jen.Return(jen.Id(t.newName).Call()),
	)
}

// doc writes the doc comment of c followed by the annotations it carries.
func (e *emitter) doc(c candidate.Candidate) {
	e.f.Comment(c.Doc)
	var anns []annotation.Annotation
	switch {
	case c.Kind == candidate.KindSetter:
		anns = c.Property.Annotations
	case c.Proxy != nil:
		anns = c.Proxy.Annotations
	}
	if len(anns) == 0 {
		return
	}
	e.f.Comment("//")
	for _, a := range anns {
		for _, line := range strings.Split(a.Text, "\n") {
			e.f.Comment(strings.TrimRight(line, " \t"))
		}
	}
}

// method renders one surviving candidate.
func (e *emitter) method(c candidate.Candidate) {
	switch c.Kind {
	case candidate.KindBuild:
		e.doc(c)
		e.build()
		return
	case candidate.KindMustBuild:
		e.doc(c)
		e.mustBuild()
		return
	case candidate.KindConditional:
		e.doc(c)
		e.conditional()
		return
	case candidate.KindUnmarshalJSON:
		e.doc(c)
		e.unmarshalJSON()
		return
	case candidate.KindProxy:
		e.doc(c)
		e.proxy(c)
		return
	}

	p := c.Property
	i := e.index[p]
	var params, body []jen.Code
	switch c.Kind {
	case candidate.KindSetter:
		name := c.Params[0].Name
		params = []jen.Code{jen.Id(name).Add(typ(p.Type))}
		body = []jen.Code{e.set(i, jen.Id(name))}

	case candidate.KindSupplier:
		params = []jen.Code{jen.Id("fn").Func().Params().Add(typ(p.Type))}
		body = []jen.Code{e.set(i, jen.Id("fn").Call())}

	case candidate.KindConsumer:
		st, ptr, _ := analyzer.StructOf(p.Type)
		params = []jen.Code{jen.Id("fn").Func().Params(jen.Op("*").Add(typ(st)))}
		if ptr {
			body = []jen.Code{
				jen.Id("v").Op(":=").New(typ(st)),
				jen.Id("fn").Call(jen.Id("v")),
				e.set(i, jen.Id("v")),
			}
		} else {
			body = []jen.Code{
				jen.Var().Id("v").Add(typ(st)),
				jen.Id("fn").Call(jen.Op("&").Id("v")),
				e.set(i, jen.Id("v")),
			}
		}

	case candidate.KindNestedBuilder:
		params, body = e.nestedBuilder(p, i)

	case candidate.KindStringBuilder:
		params = []jen.Code{jen.Id("fn").Func().Params(jen.Op("*").Qual("strings", "Builder"))}
		body = []jen.Code{
			jen.Var().Id("sb").Qual("strings", "Builder"),
			jen.Id("sb").Dot("WriteString").Call(jen.String().Call(e.get(i))),
			jen.Id("fn").Call(jen.Op("&").Id("sb")),
			e.set(i, convert(p.Type, jen.Id("sb").Dot("String").Call())),
		}

	case candidate.KindSliceBuilder:
		params, body = e.collectionBuilder(i, "SliceBuilder", "NewSliceBuilder", typ(p.Elem))
	case candidate.KindSetBuilder:
		params, body = e.collectionBuilder(i, "SetBuilder", "NewSetBuilder", typ(p.Elem))
	case candidate.KindMapBuilder:
		params, body = e.collectionBuilder(i, "MapBuilder", "NewMapBuilder", typ(p.Key), typ(p.Elem))

	case candidate.KindVarArgs:
		params = []jen.Code{jen.Id("v").Op("...").Add(typ(p.Elem))}
		body = e.varArgs(p, i)

	case candidate.KindFormat:
		params = []jen.Code{jen.Id("format").String(), jen.Id("args").Op("...").Id("any")}
		s := jen.Qual("fmt", "Sprintf").Call(jen.Id("format"), jen.Id("args").Op("..."))
		if p.Optional != nil {
			body = []jen.Code{e.set(i, e.valid(p, convert(p.Optional.Value, s)))}
		} else {
			body = []jen.Code{e.set(i, convert(p.Type, s))}
		}

	case candidate.KindAddElement:
		params = []jen.Code{jen.Id("e").Add(typ(p.Elem))}
		if p.Shape == analyzer.ShapeList {
			body = []jen.Code{e.set(i, jen.Append(jen.Qual("slices", "Clip").Call(e.get(i)), jen.Id("e")))}
		} else {
			body = e.putEntry(p, i, jen.Id("e"), jen.Struct().Values())
		}

	case candidate.KindPutEntry:
		params = []jen.Code{jen.Id("k").Add(typ(p.Key)), jen.Id("v").Add(typ(p.Elem))}
		body = e.putEntry(p, i, jen.Id("k"), jen.Id("v"))

	case candidate.KindUnboxed:
		params = []jen.Code{jen.Id("v").Add(typ(p.Optional.Value))}
		body = []jen.Code{e.set(i, e.valid(p, jen.Id("v")))}
	}

	e.doc(c)
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id(c.Name).Params(params...).Op("*").Add(e.builder()).Block(
		append(body, jen.Return(jen.Id("b")))...,
	)
}

// valid builds a present database/sql optional holding v.
func (e *emitter) valid(p *analyzer.Property, v jen.Code) jen.Code {
	return typ(p.Type).Values(jen.Dict{
		jen.Id(p.Optional.Field): v,
		jen.Id("Valid"):          jen.True(),
	})
}

// nestedBuilder hands fn the builder of the property type, seeded with the
// current value. A build failure is kept and returned by Build.
func (e *emitter) nestedBuilder(p *analyzer.Property, i int) (params, body []jen.Code) {
	nb := p.Nested
	params = []jen.Code{jen.Id("fn").Func().Params(jen.Op("*").Qual(nb.PkgPath, nb.Name))}
	var seed jen.Code
	if p.NestedPointer {
		seed = jen.Id("nb").Op("=").Qual(nb.PkgPath, nb.NewFrom).Call(e.get(i))
	} else {
		seed = jen.Id("nb").Op("=").Qual(nb.PkgPath, nb.NewFrom).Call(jen.Op("&").Id("cur"))
	}
	seedBlock := []jen.Code{seed}
	if !p.NestedPointer {
		seedBlock = []jen.Code{jen.Id("cur").Op(":=").Add(e.get(i)), seed}
	}
	var value jen.Code = jen.Id("v")
	if !p.NestedPointer {
		value = jen.Op("*").Id("v")
	}
	body = []jen.Code{
		jen.Id("nb").Op(":=").Qual(nb.PkgPath, nb.New).Call(),
		jen.If(e.field(i).Dot("IsSet").Call()).Block(seedBlock...),
		jen.Id("fn").Call(jen.Id("nb")),
		jen.List(jen.Id("v"), jen.Err()).Op(":=").Id("nb").Dot("Build").Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("b").Dot("errs").Op("=").Append(jen.Id("b").Dot("errs"),
				jen.Qual("fmt", "Errorf").Call(jen.Lit(p.Name+": %w"), jen.Err())),
			jen.Return(jen.Id("b")),
		),
		e.set(i, value),
	}
	return params, body
}

// collectionBuilder hands fn a runtime collection builder seeded with the
// current value.
func (e *emitter) collectionBuilder(i int, kind, ctor string, args ...jen.Code) (params, body []jen.Code) {
	params = []jen.Code{jen.Id("fn").Func().Params(jen.Op("*").Qual(runtimePath, kind).Types(args...))}
	body = []jen.Code{
		jen.Id("cb").Op(":=").Qual(runtimePath, ctor).Types(args...).Call(e.get(i)),
		jen.Id("fn").Call(jen.Id("cb")),
		e.set(i, jen.Id("cb").Dot("Build").Call()),
	}
	return params, body
}

func (e *emitter) varArgs(p *analyzer.Property, i int) []jen.Code {
	switch p.Shape {
	case analyzer.ShapeSet:
		return []jen.Code{
			jen.Id("s").Op(":=").Make(typ(p.Type), jen.Len(jen.Id("v"))),
			jen.For(jen.List(jen.Id("_"), jen.Id("e")).Op(":=").Range().Id("v")).Block(
				jen.Id("s").Index(jen.Id("e")).Op("=").Struct().Values(),
			),
			e.set(i, jen.Id("s")),
		}
	case analyzer.ShapeArray:
		return []jen.Code{
			jen.Var().Id("a").Add(typ(p.Type)),
			jen.Copy(jen.Id("a").Index(jen.Op(":")), jen.Id("v")),
			e.set(i, jen.Id("a")),
		}
	}
	return []jen.Code{
		e.set(i, jen.Append(jen.Make(typ(p.Type), jen.Lit(0), jen.Len(jen.Id("v"))), jen.Id("v").Op("..."))),
	}
}

// putEntry copies the current map before writing so a seeding instance is
// never modified.
func (e *emitter) putEntry(p *analyzer.Property, i int, k, v jen.Code) []jen.Code {
	return []jen.Code{
		jen.Id("s").Op(":=").Qual("maps", "Clone").Call(e.get(i)),
		jen.If(jen.Id("s").Op("==").Nil()).Block(
			jen.Id("s").Op("=").Make(typ(p.Type)),
		),
		jen.Id("s").Index(k).Op("=").Add(v),
		e.set(i, jen.Id("s")),
	}
}

func (e *emitter) proxy(c candidate.Candidate) {
	px := c.Proxy
	params := make([]jen.Code, len(px.Params))
	args := make([]jen.Code, len(px.Params))
	for j, v := range px.Params {
		name := c.Params[j].Name
		variadic := px.Variadic && j == len(px.Params)-1
		params[j] = jen.Id(name).Add(param(v.Type(), variadic))
		args[j] = jen.Id(name)
		if variadic {
			args[j] = jen.Id(name).Op("...")
		}
	}
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id(c.Name).Params(params...).Op("*").Add(e.builder()).Block(
		jen.Id("b").Dot("calls").Op("=").Append(jen.Id("b").Dot("calls"),
			jen.Func().Params(jen.Id("v").Op("*").Add(e.target())).Block(
				jen.Id("v").Dot(px.Name).Call(args...),
			),
		),
		jen.Return(jen.Id("b")),
	)
}

// build renders Build: validation, construction, then property and proxy
// application in declaration order.
func (e *emitter) build() {
	name := e.t.name()
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id("Build").Params().Params(jen.Op("*").Add(e.target()), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("errs").Op(":=").Qual("slices", "Clone").Call(jen.Id("b").Dot("errs"))
		for i, p := range e.res.Properties {
			if p.Mandatory() {
				g.If(jen.Op("!").Add(e.field(i)).Dot("IsSet").Call()).Block(
					jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Op("&").Qual(runtimePath, "MandatoryFieldError").Values(jen.Dict{
						jen.Id("Type"):  jen.Lit(name),
						jen.Id("Field"): jen.Lit(p.Name),
					})),
				)
			}
			if p.NotNull && p.Nillable {
				g.If(e.field(i).Dot("IsChanged").Call().Op("&&").Add(e.get(i)).Op("==").Nil()).Block(
					jen.Id("errs").Op("=").Append(jen.Id("errs"), jen.Op("&").Qual(runtimePath, "NotNullError").Values(jen.Dict{
						jen.Id("Type"):  jen.Lit(name),
						jen.Id("Field"): jen.Lit(p.Name),
					})),
				)
			}
		}
		g.If(jen.Len(jen.Id("errs")).Op(">").Lit(0)).Block(
			jen.Return(jen.Nil(), jen.Qual("errors", "Join").Call(jen.Id("errs").Op("..."))),
		)

		e.construct(g)
		for i, p := range e.res.Properties {
			switch p.Path {
			case analyzer.PathField:
				g.If(e.field(i).Dot("IsSet").Call()).Block(
					jen.Id("v").Dot(p.FieldName).Op("=").Add(e.get(i)),
				)
			case analyzer.PathSetter:
				g.If(e.field(i).Dot("IsSet").Call()).Block(
					jen.Id("v").Dot(p.Setter).Call(e.get(i)),
				)
			}
		}
		g.For(jen.List(jen.Id("_"), jen.Id("call")).Op(":=").Range().Id("b").Dot("calls")).Block(
			jen.Id("call").Call(jen.Id("v")),
		)
		g.Return(jen.Id("v"), jen.Nil())
	})
}

// construct declares v, the new instance, through New<Type> when it can be
// called and new otherwise.
func (e *emitter) construct(g *jen.Group) {
	c := e.res.Constructor
	if c == nil {
		g.Id("v").Op(":=").New(e.target())
		return
	}
	args := make([]jen.Code, len(c.Params))
	for j, prm := range c.Params {
		args[j] = e.get(prm.Property)
	}
	call := jen.Id(c.Name).Call(args...)
	out := jen.Id("v")
	if !c.Pointer {
		out = jen.Id("r")
	}
	if c.Error {
		g.List(out, jen.Err()).Op(":=").Add(call)
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err()))
	} else {
		g.Add(out).Op(":=").Add(call)
	}
	if !c.Pointer {
		g.Id("v").Op(":=").Op("&").Id("r")
	}
}

func (e *emitter) mustBuild() {
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id("MustBuild").Params().Op("*").Add(e.target()).Block(
		jen.List(jen.Id("v"), jen.Err()).Op(":=").Id("b").Dot("Build").Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Panic(jen.Err())),
		jen.Return(jen.Id("v")),
	)
}

func (e *emitter) conditional() {
	fn := jen.Func().Params(jen.Op("*").Add(e.builder()))
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id("Conditional").Params(
		jen.Id("cond").Bool(),
		jen.List(jen.Id("then"), jen.Id("otherwise")).Add(fn),
	).Op("*").Add(e.builder()).Block(
		jen.If(jen.Id("cond")).Block(
			jen.If(jen.Id("then").Op("!=").Nil()).Block(jen.Id("then").Call(jen.Id("b"))),
		).Else().If(jen.Id("otherwise").Op("!=").Nil()).Block(
			jen.Id("otherwise").Call(jen.Id("b")),
		),
		jen.Return(jen.Id("b")),
	)
}

// unmarshalJSON renders a decoder that sets every property whose JSON key
// is present. Function and channel properties are not decoded.
func (e *emitter) unmarshalJSON() {
	e.f.Func().Params(jen.Id("b").Op("*").Add(e.builder())).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		g.Var().Id("raw").Map(jen.String()).Qual("encoding/json", "RawMessage")
		g.If(jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("data"), jen.Op("&").Id("raw")), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Err()),
		)
		for i, p := range e.res.Properties {
			if p.JSONName == "" || !decodable(p.Type) {
				continue
			}
			g.If(jen.List(jen.Id("m"), jen.Id("ok")).Op(":=").Id("raw").Index(jen.Lit(p.JSONName)), jen.Id("ok")).Block(
				jen.Var().Id("v").Add(typ(p.Type)),
				jen.If(jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("m"), jen.Op("&").Id("v")), jen.Err().Op("!=").Nil()).Block(
					jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(p.JSONName+": %w"), jen.Err())),
				),
				e.set(i, jen.Id("v")),
			)
		}
		g.Return(jen.Nil())
	})
}

func decodable(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Signature, *types.Chan:
		return false
	}
	return true
}

// with renders the With method on the target, unless the target declares
// its own.
func (e *emitter) with() {
	t := e.t
	if !t.conf.GenerateWithInterface.On() {
		return
	}
	if e.res.HasWith {
		diag.Warnf(e.g.reporter, t.pos, t.name(), "%s already declares With, skipping the generated With method", t.name())
		return
	}
	e.f.Commentf("With returns a copy of v changed by fn through a %s seeded from v.", t.builder)
	e.f.Func().Params(jen.Id("v").Op("*").Add(e.target())).Id("With").Params(
		jen.Id("fn").Func().Params(jen.Op("*").Add(e.builder())),
	).Params(jen.Op("*").Add(e.target()), jen.Error()).Block(
		jen.Id("b").Op(":=").Id(t.fromName).Call(jen.Id("v")),
		jen.Id("fn").Call(jen.Id("b")),
		jen.Return(jen.Id("b").Dot("Build").Call()),
	)
}
