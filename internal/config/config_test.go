package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/compilerargs"
	"github.com/calumari/simplebuilder/internal/diag"
	"github.com/calumari/simplebuilder/internal/option"
)

// sample returns a non-neutral value for d that differs from the defaults
// when variant is 1 and from variant 1 when variant is 2.
func sample(d Descriptor, variant int) string {
	switch d.Kind {
	case KindState:
		if variant == 1 {
			return "disabled"
		}
		return "enabled"
	case KindAccess:
		if variant == 1 {
			return "private"
		}
		return "package-private"
	default:
		return fmt.Sprintf("V%d", variant)
	}
}

func with(d Descriptor, raw string) Configuration {
	var c Configuration
	d.Set(&c, raw)
	return c
}

func TestDescriptorTable(t *testing.T) {
	assert.Len(t, Options, 21)
	seen := map[string]bool{}
	for _, d := range Options {
		assert.False(t, seen[d.Key], "duplicate key %s", d.Key)
		seen[d.Key] = true
		got, ok := Lookup(d.Key)
		require.True(t, ok)
		assert.Equal(t, d.Key, got.Key)
	}
	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	for _, d := range Options {
		if d.Kind == KindState && d.Key != "generateJSONUnmarshaler" {
			assert.Equal(t, option.Enabled, d.Value(c), d.Key)
		}
	}
	assert.Equal(t, option.Disabled, c.GenerateJSONUnmarshaler)
	assert.Equal(t, option.Public, c.BuilderAccess)
	assert.Equal(t, option.Public, c.MethodAccess)
	assert.Equal(t, "Builder", c.Suffix)
	assert.Equal(t, "", c.SetterSuffix)
	assert.Equal(t, Defaults(), Defaults())
}

func TestMerge(t *testing.T) {
	t.Run("merging nil is the identity", func(t *testing.T) {
		for _, base := range []Configuration{{}, Defaults(), New(WithSuffix("X"), WithState("generateFieldSupplier", option.Disabled))} {
			assert.Equal(t, base, base.Merge(nil))
		}
	})

	t.Run("merging the neutral configuration is the identity", func(t *testing.T) {
		empty := Configuration{}
		assert.Equal(t, Defaults(), Defaults().Merge(&empty))
	})

	for _, d := range Options {
		t.Run("right bias for "+d.Key, func(t *testing.T) {
			base := Defaults()
			other := with(d, sample(d, 1))
			merged := base.Merge(&other)
			assert.Equal(t, d.Value(other), d.Value(merged))
			for _, o := range Options {
				if o.Key != d.Key {
					assert.Equal(t, o.Value(base), o.Value(merged), "%s leaked into %s", d.Key, o.Key)
				}
			}
		})
	}

	t.Run("merge does not mutate the receiver", func(t *testing.T) {
		base := Defaults()
		other := New(WithSuffix("Maker"))
		_ = base.Merge(&other)
		assert.Equal(t, "Builder", base.Suffix)
	})
}

func TestNewOptions(t *testing.T) {
	c := New(
		WithState("usingGeneratedHeader", option.Disabled),
		WithState("builderAccess", option.Disabled), // wrong kind, ignored
		WithAccess("methodAccess", option.Private),
		WithAccess("unknown", option.Private),
		WithSuffix("Maker"),
		WithSetterSuffix("Value"),
	)
	assert.Equal(t, option.Disabled, c.UsingGeneratedHeader)
	assert.Equal(t, option.Default, c.BuilderAccess)
	assert.Equal(t, option.Private, c.MethodAccess)
	assert.Equal(t, "Maker", c.Suffix)
	assert.Equal(t, "Value", c.SetterSuffix)
	assert.False(t, c.IsZero())
	assert.True(t, New().IsZero())
}

func TestFromReader(t *testing.T) {
	r := compilerargs.NewReader(map[string]string{
		"simplebuilder.generateFieldSupplier": "false",
		"generateFieldConsumer":               "ENABLED",
		"simplebuilder.methodAccess":          "package_private",
		"simplebuilder.suffix":                "Maker",
		"simplebuilder.usingSetBuilder":       "maybe",
	})
	c := FromReader(r)
	assert.Equal(t, option.Disabled, c.GenerateFieldSupplier)
	assert.Equal(t, option.Enabled, c.GenerateFieldConsumer)
	assert.Equal(t, option.PackagePrivate, c.MethodAccess)
	assert.Equal(t, "Maker", c.Suffix)
	assert.Equal(t, option.Unset, c.UsingSetBuilder)
	assert.Equal(t, option.Default, c.BuilderAccess)
}

func TestFromDirectives(t *testing.T) {
	var warnings []string
	c := FromDirectives([]annotation.Annotation{
		{Directive: true, Qualifier: Namespace, Name: OptionsDirective, Args: `suffix=Maker bogus=1 stray`},
		{Directive: true, Qualifier: Namespace, Name: OptionsDirective, Args: `suffix="Factory" methodAccess=private`},
	}, func(s string) { warnings = append(warnings, s) })
	assert.Equal(t, "Factory", c.Suffix)
	assert.Equal(t, option.Private, c.MethodAccess)
	assert.Equal(t, []string{`ignoring unknown option "bogus"`, `ignoring malformed option "stray"`}, warnings)
}

// fakeSource resolves refs by their printed name.
type fakeSource map[string]annotation.Decl

func (s fakeSource) TypeDoc(ref annotation.Ref) (annotation.Decl, error) {
	d, ok := s[ref.String()]
	if !ok {
		return annotation.Decl{}, annotation.ErrNotFound
	}
	return d, nil
}

func optionsDoc(args string) annotation.Doc {
	return annotation.Doc{{Directive: true, Qualifier: Namespace, Name: OptionsDirective, Args: args}}
}

func TestResolve(t *testing.T) {
	src := fakeSource{
		"presets.Compact": {Doc: optionsDoc("generateFieldSupplier=false suffix=Compact")},
		"Plain":           {},
		"Local":           {Doc: optionsDoc("methodAccess=private")},
	}
	args := FromReader(compilerargs.NewReader(map[string]string{
		"simplebuilder.suffix":                "FromArgs",
		"simplebuilder.generateFieldConsumer": "false",
		"simplebuilder.setterSuffix":          "Arg",
	}))
	r := &Resolver{Defaults: Defaults(), Args: args, Source: src}

	t.Run("defaults and compiler arguments apply without annotations", func(t *testing.T) {
		c := r.Resolve(Target{Name: "User"})
		assert.Equal(t, "FromArgs", c.Suffix)
		assert.Equal(t, option.Disabled, c.GenerateFieldConsumer)
		assert.Equal(t, option.Enabled, c.GenerateFieldSupplier)
	})

	t.Run("template overrides compiler arguments", func(t *testing.T) {
		doc := annotation.Doc{{Name: "NotNull"}, {Name: "Plain"}, {Qualifier: "presets", Name: "Compact"}, {Name: "Local"}}
		c := r.Resolve(Target{Name: "User", Doc: doc})
		assert.Equal(t, "Compact", c.Suffix)
		assert.Equal(t, option.Disabled, c.GenerateFieldSupplier)
		assert.Equal(t, option.Disabled, c.GenerateFieldConsumer)
		assert.Equal(t, "Arg", c.SetterSuffix)
		// only the first template applies
		assert.Equal(t, option.Public, c.MethodAccess)
	})

	t.Run("inline options bypass the template", func(t *testing.T) {
		doc := append(annotation.Doc{{Qualifier: "presets", Name: "Compact"}}, optionsDoc("setterSuffix=Inline")...)
		c := r.Resolve(Target{Name: "User", Doc: doc})
		assert.Equal(t, "FromArgs", c.Suffix)
		assert.Equal(t, option.Enabled, c.GenerateFieldSupplier)
		assert.Equal(t, "Inline", c.SetterSuffix)
	})

	t.Run("every layer wins over the one below it per option", func(t *testing.T) {
		for _, d := range Options {
			argsLayer := with(d, sample(d, 1))
			r := &Resolver{Defaults: Defaults(), Args: argsLayer, Source: fakeSource{
				"T": {Doc: optionsDoc(d.Key + "=" + sample(d, 2))},
			}}
			withTemplate := r.Resolve(Target{Doc: annotation.Doc{{Name: "T"}}})
			assert.Equal(t, d.Value(with(d, sample(d, 2))), d.Value(withTemplate), d.Key)

			onlyArgs := r.Resolve(Target{})
			assert.Equal(t, d.Value(argsLayer), d.Value(onlyArgs), d.Key)

			inline := r.Resolve(Target{Doc: append(annotation.Doc{{Name: "T"}}, optionsDoc(d.Key+"="+sample(d, 1))...)})
			assert.Equal(t, d.Value(argsLayer), d.Value(inline), d.Key)
		}
	})

	t.Run("unknown inline keys are reported as warnings", func(t *testing.T) {
		var c diag.Collector
		r := &Resolver{Defaults: Defaults(), Reporter: &c}
		got := r.Resolve(Target{Name: "User", Doc: optionsDoc("nope=1 suffix=X")})
		assert.Equal(t, "X", got.Suffix)
		require.Len(t, c.Of(diag.Warning), 1)
		assert.Equal(t, "User", c.Diagnostics[0].Target)
	})
}
