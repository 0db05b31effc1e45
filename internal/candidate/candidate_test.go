package candidate

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/config"
	"github.com/calumari/simplebuilder/internal/option"
)

var (
	stringT = types.Typ[types.String]
	intT    = types.Typ[types.Int]
)

func ctxWith(opts ...config.Option) Context {
	o := config.New(opts...)
	return Context{Config: config.Defaults().Merge(&o), Target: "User", Builder: "UserBuilder", PkgPath: "example.com/app"}
}

func allDisabled() Context {
	var opts []config.Option
	for _, d := range config.Options {
		if d.Kind == config.KindState {
			opts = append(opts, config.WithState(d.Key, option.Disabled))
		}
	}
	return ctxWith(opts...)
}

func names(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func structType() *types.Named {
	pkg := types.NewPackage("example.com/app", "app")
	obj := types.NewTypeName(token.NoPos, pkg, "Address", nil)
	return types.NewNamed(obj, types.NewStruct([]*types.Var{types.NewField(token.NoPos, pkg, "Street", stringT, false)}, nil), nil)
}

func qualifier(p *types.Package) string {
	if p.Path() == "example.com/app" {
		return ""
	}
	return p.Name()
}

func TestBands(t *testing.T) {
	for i := 1; i < len(Bands); i++ {
		assert.Greater(t, Bands[i-1], Bands[i], "%s must outrank %s", Bands[i-1], Bands[i])
	}
	assert.Equal(t, Bands[1], Setter)
	assert.Equal(t, VarArgs, StringFormat)
}

func TestListProperty(t *testing.T) {
	p := &analyzer.Property{Name: "Tags", Type: types.NewSlice(stringT), Shape: analyzer.ShapeList, Elem: stringT, Nillable: true}
	ctx := ctxWith()

	var all []Candidate
	for _, gen := range Generators {
		all = append(all, gen(p, ctx)...)
	}
	assert.Equal(t, []string{"Tags", "TagsFunc", "TagsBuilder", "TagsOf", "AddTag"}, names(all))

	sigs := map[string]bool{}
	for _, c := range all {
		assert.False(t, sigs[c.Key()], "duplicate %s", c.Key())
		sigs[c.Key()] = true
	}
	assert.Equal(t, "Tags(tags []string)", all[0].Signature())
	assert.Equal(t, "TagsFunc(fn func() []string)", all[1].Signature())
	assert.Equal(t, "TagsBuilder(fn func(*builder.SliceBuilder[string]))", all[2].Signature())
	assert.Equal(t, "TagsOf(v ...string)", all[3].Signature())
	assert.Equal(t, "AddTag(e string)", all[4].Signature())
	assert.Equal(t, KindSliceBuilder, all[2].Kind)
}

func TestStringProperty(t *testing.T) {
	p := &analyzer.Property{Name: "Name", Type: stringT}
	got := Collect([]analyzer.Property{*p}, nil, ctxWith())
	assert.Equal(t, []string{"Name", "NameFunc", "NameBuilder", "Namef", "Build", "MustBuild", "Conditional"}, names(got))

	got = Collect([]analyzer.Property{*p}, nil, ctxWith(config.WithState("usingStringBuilder", option.Disabled)))
	assert.NotContains(t, names(got), "NameBuilder")
}

func TestMapAndSetProperties(t *testing.T) {
	empty := types.NewStruct(nil, nil)
	set := &analyzer.Property{Name: "Roles", Type: types.NewMap(stringT, empty), Shape: analyzer.ShapeSet, Elem: stringT}
	m := &analyzer.Property{Name: "Labels", Type: types.NewMap(stringT, intT), Shape: analyzer.ShapeMap, Key: stringT, Elem: intT}
	ctx := ctxWith()

	var got []Candidate
	for _, gen := range Generators {
		got = append(got, gen(set, ctx)...)
		got = append(got, gen(m, ctx)...)
	}
	sigs := map[string]string{}
	for _, c := range got {
		sigs[c.Name] = c.Signature()
	}
	assert.Equal(t, "RolesBuilder(fn func(*builder.SetBuilder[string]))", sigs["RolesBuilder"])
	assert.Equal(t, "RolesOf(v ...string)", sigs["RolesOf"])
	assert.Equal(t, "AddRole(e string)", sigs["AddRole"])
	assert.Equal(t, "LabelsBuilder(fn func(*builder.MapBuilder[string, int]))", sigs["LabelsBuilder"])
	assert.Equal(t, "AddLabel(k string, v int)", sigs["AddLabel"])
	assert.NotContains(t, sigs, "LabelsOf")
}

func TestStructProperties(t *testing.T) {
	addr := structType()
	ctx := ctxWith()
	ctx.Qualifier = qualifier

	value := &analyzer.Property{Name: "Work", Type: addr}
	ptr := &analyzer.Property{Name: "Home", Type: types.NewPointer(addr), Nillable: true,
		Nested: &analyzer.NestedBuilder{PkgPath: "example.com/app", PkgName: "app", Name: "AddressBuilder"}, NestedPointer: true}
	iface := &analyzer.Property{Name: "Any", Type: types.NewInterfaceType(nil, nil), Nillable: true}

	assert.Equal(t, "WorkWith(fn func(*Address))", ConsumerGen(value, ctx)[0].Signature())
	assert.Equal(t, "HomeWith(fn func(*Address))", ConsumerGen(ptr, ctx)[0].Signature())
	assert.Empty(t, ConsumerGen(iface, ctx))

	nested := BuilderConsumerGen(ptr, ctx)
	require.Len(t, nested, 1)
	assert.Equal(t, KindNestedBuilder, nested[0].Kind)
	assert.Equal(t, "HomeBuilder(fn func(*AddressBuilder))", nested[0].Signature())
	assert.Empty(t, BuilderConsumerGen(value, ctx))

	ptr.Nested.PkgPath = "example.com/other"
	assert.Equal(t, "HomeBuilder(fn func(*app.AddressBuilder))", BuilderConsumerGen(ptr, ctx)[0].Signature())
}

func TestOptionalProperty(t *testing.T) {
	p := &analyzer.Property{Name: "Nick", Type: types.NewStruct(nil, nil), Optional: &analyzer.Optional{Value: stringT, Field: "String"}}
	var got []string
	for _, gen := range Generators {
		got = append(got, names(gen(p, ctxWith()))...)
	}
	assert.Equal(t, []string{"Nick", "NickFunc", "Nickf", "NickValue"}, got)
}

func TestAllDisabled(t *testing.T) {
	ctx := allDisabled()
	props := []analyzer.Property{
		{Name: "Name", Type: stringT},
		{Name: "Tags", Type: types.NewSlice(stringT), Shape: analyzer.ShapeList, Elem: stringT},
		{Name: "Nick", Type: types.NewStruct(nil, nil), Optional: &analyzer.Optional{Value: stringT, Field: "String"}},
	}
	proxies := []analyzer.Proxy{{Name: "Touch", Params: []*types.Var{types.NewParam(token.NoPos, nil, "at", intT)}}}
	got := Collect(props, proxies, ctx)
	assert.Equal(t, []string{"Name", "Tags", "Nick", "Build", "MustBuild"}, names(got))
}

func TestEachGeneratorToggle(t *testing.T) {
	p := &analyzer.Property{Name: "Tags", Type: types.NewSlice(stringT), Shape: analyzer.ShapeList, Elem: stringT}
	toggles := map[string]string{
		"generateFieldSupplier":          "TagsFunc",
		"generateBuilderConsumer":        "TagsBuilder",
		"usingSliceBuilder":              "TagsBuilder",
		"generateVarArgsHelpers":         "TagsOf",
		"generateAddToCollectionHelpers": "AddTag",
	}
	full := names(Collect([]analyzer.Property{*p}, nil, ctxWith()))
	for key, method := range toggles {
		t.Run(key, func(t *testing.T) {
			got := names(Collect([]analyzer.Property{*p}, nil, ctxWith(config.WithState(key, option.Disabled))))
			assert.NotContains(t, got, method)
			assert.Len(t, got, len(full)-1)
		})
	}
}

func TestNamingOptions(t *testing.T) {
	p := &analyzer.Property{Name: "ID", Type: intT}
	ctx := ctxWith(config.WithSetterSuffix("Value"), config.WithAccess("methodAccess", option.PackagePrivate))
	got := names(Collect([]analyzer.Property{*p}, nil, ctx))
	assert.Equal(t, []string{"idValue", "idValueFunc", "Build", "MustBuild", "Conditional"}, got)
}

func TestCaseFoldedSetters(t *testing.T) {
	props := []analyzer.Property{{Name: "ID", Type: intT}, {Name: "Id", Type: intT}}

	t.Run("exported methods keep both names", func(t *testing.T) {
		assert.Equal(t, []string{"ID", "Id"}, Stems(props, ctxWith()))
	})

	t.Run("unexported methods get a numbered stem", func(t *testing.T) {
		ctx := ctxWith(config.WithAccess("methodAccess", option.PackagePrivate))
		assert.Equal(t, []string{"ID", "Id2"}, Stems(props, ctx))
		got := names(Collect(props, nil, ctx))
		assert.Equal(t, []string{"id", "idFunc", "id2", "id2Func", "Build", "MustBuild", "Conditional"}, got)
	})
}

func TestProxyGen(t *testing.T) {
	px := &analyzer.Proxy{Name: "Tagged", Variadic: true, Params: []*types.Var{
		types.NewParam(token.NoPos, nil, "", intT),
		types.NewParam(token.NoPos, nil, "type", types.NewSlice(stringT)),
	}}
	got := ProxyGen(px, ctxWith())
	require.Len(t, got, 1)
	assert.Equal(t, "Tagged(arg0 int, type_ ...string)", got[0].Signature())
	assert.Equal(t, Proxy, got[0].Priority)
	assert.Equal(t, "Tagged", got[0].Origin())
}

func TestBuilderMethods(t *testing.T) {
	got := BuilderMethods(ctxWith(config.WithState("generateJSONUnmarshaler", option.Enabled)))
	assert.Equal(t, []string{"Build", "MustBuild", "Conditional", "UnmarshalJSON"}, names(got))
	for _, c := range got {
		assert.Equal(t, Core, c.Priority)
		assert.Equal(t, "builder", c.Origin())
	}
	assert.Equal(t, "Conditional(cond bool, then func(*UserBuilder), otherwise func(*UserBuilder))", got[2].Signature())
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "Tag", Singular("Tags"))
	assert.Equal(t, "Category", Singular("Categories"))
}
