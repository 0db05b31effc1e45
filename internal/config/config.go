// Package config defines the per-target builder configuration and the
// layered resolution that produces it.
package config

import (
	"github.com/calumari/simplebuilder/internal/compilerargs"
	"github.com/calumari/simplebuilder/internal/option"
)

// Configuration is an immutable set of generation options. The zero value
// has every option neutral.
type Configuration struct {
	GenerateFieldSupplier          option.State
	GenerateFieldConsumer          option.State
	GenerateBuilderConsumer        option.State
	GenerateVarArgsHelpers         option.State
	GenerateStringFormatHelpers    option.State
	GenerateAddToCollectionHelpers option.State
	GenerateUnboxingOptional       option.State
	GenerateConditionalHelper      option.State
	GenerateWithInterface          option.State
	GenerateProxyMethods           option.State
	GenerateJSONUnmarshaler        option.State
	UsingSliceBuilder              option.State
	UsingSetBuilder                option.State
	UsingMapBuilder                option.State
	UsingStringBuilder             option.State
	UsingGeneratedHeader           option.State

	BuilderAccess            option.Access
	BuilderConstructorAccess option.Access
	MethodAccess             option.Access

	Suffix       string
	SetterSuffix string
}

// Option configures a Configuration under construction.
type Option func(*Configuration)

// New returns a configuration with opts applied over the neutral value.
func New(opts ...Option) Configuration {
	var c Configuration
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithState sets the toggle registered under key. Unknown keys are ignored.
func WithState(key string, s option.State) Option {
	return func(c *Configuration) {
		if d, ok := Lookup(key); ok && d.Kind == KindState {
			d.setState(c, s)
		}
	}
}

// WithAccess sets the access option registered under key.
func WithAccess(key string, a option.Access) Option {
	return func(c *Configuration) {
		if d, ok := Lookup(key); ok && d.Kind == KindAccess {
			d.setAccess(c, a)
		}
	}
}

func WithSuffix(s string) Option       { return func(c *Configuration) { c.Suffix = s } }
func WithSetterSuffix(s string) Option { return func(c *Configuration) { c.SetterSuffix = s } }

// Defaults returns the baseline every target resolves against.
func Defaults() Configuration {
	c := Configuration{
		BuilderAccess:            option.Public,
		BuilderConstructorAccess: option.Public,
		MethodAccess:             option.Public,
		Suffix:                   "Builder",
	}
	for _, d := range Options {
		if d.Kind == KindState {
			d.setState(&c, option.Enabled)
		}
	}
	c.GenerateJSONUnmarshaler = option.Disabled
	return c
}

// Merge returns c overridden by every non-neutral option of other.
// Merge(nil) returns c unchanged.
func (c Configuration) Merge(other *Configuration) Configuration {
	if other == nil {
		return c
	}
	out := c
	for _, d := range Options {
		if !d.neutral(other) {
			d.copy(&out, other)
		}
	}
	return out
}

// IsZero reports whether every option is neutral.
func (c Configuration) IsZero() bool { return c == Configuration{} }

// FromReader builds the compiler-argument layer.
func FromReader(r *compilerargs.Reader) Configuration {
	var c Configuration
	for _, d := range Options {
		switch d.Kind {
		case KindState:
			d.setState(&c, r.ReadOptionState(d.Key))
		case KindAccess:
			d.setAccess(&c, r.ReadAccessModifier(d.Key))
		case KindString:
			d.setString(&c, r.ReadString(d.Key))
		}
	}
	return c
}
