package analyzer

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/diag"
	"github.com/calumari/simplebuilder/internal/testutil"
)

const modelSrc = `package model

import (
	"database/sql"
	"time"
)

type Address struct {
	Street string
}

type Pair[A, B any] []A

type List[T any] []T

type User struct {
	// @NotNull
	// @validate.Size{Max: 64}
	//go:noinline
	Name     string
	Age      int
	Tags     []string
	Roles    map[string]struct{}
	Labels   map[string]int
	Grid     [3]int
	Home     *Address
	Work     Address
	Nick     sql.NullString
	Score    sql.Null[float64]
	Created  time.Time
	Pairs    Pair[int, string]
	Items    List[int]
	Secret   string ` + "`simplebuilder:\"-\"`" + `
	//simplebuilder:ignore
	Skipped  string
	email    string
	active   bool
	hidden   int
	Embedded
}

type Embedded struct{ X int }

func (u *User) Email() string { return u.email }

// SetEmail assigns the address.
//
// @Nonnull
// @Generated
func (u *User) SetEmail(v string) { u.email = v }

func (u User) IsActive() bool { return u.active }

func (u *User) SetActive(v bool) { u.active = v }

func (u *User) GetHidden() int { return u.hidden }

// Touch marks the user.
// @Audit
func (u *User) Touch(at time.Time, reason string) {}

func (u *User) Tagged(tags ...string) {}

func (u *User) Reset() {}

func (u *User) Validate(strict bool) error { return nil }

func (u User) Print(prefix string) {}

func (u *User) With(fn func()) {}

type Point struct {
	x, y int
	Label string
}

func NewPoint(x, y int) *Point { return &Point{x: x, y: y} }

func (p Point) X() int { return p.x }
func (p Point) Y() int { return p.y }

type Broken struct {
	id int
}

func NewBroken(id int, extra string) (Broken, error) { return Broken{id: id}, nil }

func (b Broken) ID() int { return b.id }

type Shape interface{ Area() float64 }

type Box[T any] struct{ V T }
`

func load(t *testing.T) (*Analyzer, func(string) *types.TypeName) {
	t.Helper()
	pkg := testutil.Package(t, map[string]string{"model.go": modelSrc})
	a := New(pkg, annotation.DefaultFilter())
	lookup := func(name string) *types.TypeName {
		obj, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
		require.True(t, ok, name)
		return obj
	}
	return a, lookup
}

func byName(props []Property) map[string]Property {
	out := map[string]Property{}
	for _, p := range props {
		out[p.Name] = p
	}
	return out
}

func TestAnalyzeUser(t *testing.T) {
	a, lookup := load(t)
	a.Nested = func(n *types.Named) (NestedBuilder, bool) {
		if n.Obj().Name() == "Address" {
			return NestedBuilder{Name: "AddressBuilder", New: "NewAddressBuilder", NewFrom: "NewAddressBuilderFrom"}, true
		}
		return NestedBuilder{}, false
	}
	res, err := a.Analyze(lookup("User"))
	require.NoError(t, err)
	props := byName(res.Properties)

	t.Run("ignored embedded and getterless fields are skipped", func(t *testing.T) {
		for _, name := range []string{"Secret", "Skipped", "Embedded", "X", "email", "active"} {
			assert.NotContains(t, props, name)
		}
		assert.Len(t, res.Properties, 15)
	})

	t.Run("exported fields are assigned directly", func(t *testing.T) {
		p := props["Name"]
		assert.Equal(t, PathField, p.Path)
		assert.True(t, p.Getter.Field)
		assert.True(t, p.NotNull)
		assert.False(t, p.Mandatory())
	})

	t.Run("field annotations survive the deny-list", func(t *testing.T) {
		var texts []string
		for _, ann := range props["Name"].Annotations {
			texts = append(texts, ann.Text)
		}
		assert.Equal(t, []string{"@NotNull", "@validate.Size{Max: 64}"}, texts)
	})

	t.Run("setter methods are preferred and their docs are read", func(t *testing.T) {
		p := props["Email"]
		assert.Equal(t, PathSetter, p.Path)
		assert.Equal(t, "SetEmail", p.Setter)
		assert.Equal(t, Getter{Name: "Email"}, p.Getter)
		assert.True(t, p.NotNull)
		require.Len(t, p.Annotations, 1)
		assert.Equal(t, "Nonnull", p.Annotations[0].Name)
	})

	t.Run("boolean getters may use Is", func(t *testing.T) {
		p := props["Active"]
		assert.Equal(t, Getter{Name: "IsActive"}, p.Getter)
		assert.Equal(t, "SetActive", p.Setter)
	})

	t.Run("unexported field without setter or constructor is not settable", func(t *testing.T) {
		assert.NotContains(t, props, "Hidden")
	})

	t.Run("collection shapes", func(t *testing.T) {
		assert.Equal(t, ShapeList, props["Tags"].Shape)
		assert.Equal(t, "string", props["Tags"].Elem.String())
		assert.Equal(t, ShapeSet, props["Roles"].Shape)
		assert.Equal(t, "string", props["Roles"].Elem.String())
		assert.Equal(t, ShapeMap, props["Labels"].Shape)
		assert.Equal(t, "string", props["Labels"].Key.String())
		assert.Equal(t, "int", props["Labels"].Elem.String())
		assert.Equal(t, ShapeArray, props["Grid"].Shape)
		assert.Equal(t, ShapeList, props["Items"].Shape)
		assert.Equal(t, ShapeNone, props["Pairs"].Shape)
		assert.Equal(t, ShapeNone, props["Created"].Shape)
	})

	t.Run("optional wrappers", func(t *testing.T) {
		require.NotNil(t, props["Nick"].Optional)
		assert.Equal(t, "String", props["Nick"].Optional.Field)
		require.NotNil(t, props["Score"].Optional)
		assert.Equal(t, "V", props["Score"].Optional.Field)
		assert.Equal(t, "float64", props["Score"].Optional.Value.String())
		assert.Nil(t, props["Created"].Optional)
	})

	t.Run("nillable kinds", func(t *testing.T) {
		assert.True(t, props["Tags"].Nillable)
		assert.True(t, props["Home"].Nillable)
		assert.False(t, props["Work"].Nillable)
		assert.False(t, props["Age"].Nillable)
	})

	t.Run("nested builders", func(t *testing.T) {
		require.NotNil(t, props["Home"].Nested)
		assert.True(t, props["Home"].NestedPointer)
		require.NotNil(t, props["Work"].Nested)
		assert.False(t, props["Work"].NestedPointer)
		assert.Nil(t, props["Created"].Nested)
	})

	t.Run("proxies", func(t *testing.T) {
		var names []string
		for _, p := range res.Proxies {
			names = append(names, p.Name)
		}
		assert.ElementsMatch(t, []string{"Touch", "Tagged", "With"}, names)
		for _, p := range res.Proxies {
			switch p.Name {
			case "Touch":
				require.Len(t, p.Annotations, 1)
				assert.Equal(t, "Audit", p.Annotations[0].Name)
				assert.Len(t, p.Params, 2)
			case "Tagged":
				assert.True(t, p.Variadic)
			}
		}
	})

	t.Run("own With method is detected", func(t *testing.T) {
		assert.True(t, res.HasWith)
	})

	assert.Nil(t, res.Constructor)
}

func TestAnalyzeConstructor(t *testing.T) {
	a, lookup := load(t)
	res, err := a.Analyze(lookup("Point"))
	require.NoError(t, err)
	props := byName(res.Properties)

	require.NotNil(t, res.Constructor)
	assert.True(t, res.Constructor.Pointer)
	assert.False(t, res.Constructor.Error)
	require.Len(t, res.Constructor.Params, 2)
	for i, name := range []string{"X", "Y"} {
		p := props[name]
		assert.Equal(t, PathConstructor, p.Path, name)
		assert.Equal(t, i, p.Param)
		assert.True(t, p.Mandatory(), name)
		assert.Equal(t, name, res.Properties[res.Constructor.Params[i].Property].Name)
	}
	assert.Equal(t, PathField, props["Label"].Path)
	assert.False(t, props["Label"].Mandatory())
}

func TestAnalyzeUnusableConstructor(t *testing.T) {
	a, lookup := load(t)
	var c diag.Collector
	a.Reporter = &c
	res, err := a.Analyze(lookup("Broken"))
	require.NoError(t, err)
	assert.Nil(t, res.Constructor)
	assert.Empty(t, res.Properties)
	require.Len(t, c.Of(diag.Warning), 1)
	assert.Contains(t, c.Diagnostics[0].Message, `parameter "extra" matches no property`)
}

func TestAnalyzeMalformed(t *testing.T) {
	a, lookup := load(t)
	for _, name := range []string{"Shape", "Box"} {
		_, err := a.Analyze(lookup(name))
		require.ErrorIs(t, err, ErrMalformedTarget, name)
	}
}
