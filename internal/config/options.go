package config

import (
	"github.com/calumari/simplebuilder/internal/option"
)

// Kind is the value kind of a configuration option.
type Kind int

const (
	KindState Kind = iota
	KindAccess
	KindString
)

// Descriptor binds an option's argument key to its Configuration field.
type Descriptor struct {
	Key  string
	Kind Kind

	state  func(*Configuration) *option.State
	access func(*Configuration) *option.Access
	str    func(*Configuration) *string
}

func stateOpt(key string, f func(*Configuration) *option.State) Descriptor {
	return Descriptor{Key: key, Kind: KindState, state: f}
}

func accessOpt(key string, f func(*Configuration) *option.Access) Descriptor {
	return Descriptor{Key: key, Kind: KindAccess, access: f}
}

func stringOpt(key string, f func(*Configuration) *string) Descriptor {
	return Descriptor{Key: key, Kind: KindString, str: f}
}

// Options lists every configuration option in declaration order.
var Options = []Descriptor{
	stateOpt("generateFieldSupplier", func(c *Configuration) *option.State { return &c.GenerateFieldSupplier }),
	stateOpt("generateFieldConsumer", func(c *Configuration) *option.State { return &c.GenerateFieldConsumer }),
	stateOpt("generateBuilderConsumer", func(c *Configuration) *option.State { return &c.GenerateBuilderConsumer }),
	stateOpt("generateVarArgsHelpers", func(c *Configuration) *option.State { return &c.GenerateVarArgsHelpers }),
	stateOpt("generateStringFormatHelpers", func(c *Configuration) *option.State { return &c.GenerateStringFormatHelpers }),
	stateOpt("generateAddToCollectionHelpers", func(c *Configuration) *option.State { return &c.GenerateAddToCollectionHelpers }),
	stateOpt("generateUnboxingOptional", func(c *Configuration) *option.State { return &c.GenerateUnboxingOptional }),
	stateOpt("generateConditionalHelper", func(c *Configuration) *option.State { return &c.GenerateConditionalHelper }),
	stateOpt("generateWithInterface", func(c *Configuration) *option.State { return &c.GenerateWithInterface }),
	stateOpt("generateProxyMethods", func(c *Configuration) *option.State { return &c.GenerateProxyMethods }),
	stateOpt("generateJSONUnmarshaler", func(c *Configuration) *option.State { return &c.GenerateJSONUnmarshaler }),
	stateOpt("usingSliceBuilder", func(c *Configuration) *option.State { return &c.UsingSliceBuilder }),
	stateOpt("usingSetBuilder", func(c *Configuration) *option.State { return &c.UsingSetBuilder }),
	stateOpt("usingMapBuilder", func(c *Configuration) *option.State { return &c.UsingMapBuilder }),
	stateOpt("usingStringBuilder", func(c *Configuration) *option.State { return &c.UsingStringBuilder }),
	stateOpt("usingGeneratedHeader", func(c *Configuration) *option.State { return &c.UsingGeneratedHeader }),
	accessOpt("builderAccess", func(c *Configuration) *option.Access { return &c.BuilderAccess }),
	accessOpt("builderConstructorAccess", func(c *Configuration) *option.Access { return &c.BuilderConstructorAccess }),
	accessOpt("methodAccess", func(c *Configuration) *option.Access { return &c.MethodAccess }),
	stringOpt("suffix", func(c *Configuration) *string { return &c.Suffix }),
	stringOpt("setterSuffix", func(c *Configuration) *string { return &c.SetterSuffix }),
}

var byKey = func() map[string]Descriptor {
	m := make(map[string]Descriptor, len(Options))
	for _, d := range Options {
		m[d.Key] = d
	}
	return m
}()

// Lookup finds the descriptor registered under key.
func Lookup(key string) (Descriptor, bool) {
	d, ok := byKey[key]
	return d, ok
}

func (d Descriptor) setState(c *Configuration, s option.State)   { *d.state(c) = s }
func (d Descriptor) setAccess(c *Configuration, a option.Access) { *d.access(c) = a }
func (d Descriptor) setString(c *Configuration, s string)        { *d.str(c) = s }

// Set parses raw according to the option kind and stores it in c.
func (d Descriptor) Set(c *Configuration, raw string) {
	switch d.Kind {
	case KindState:
		d.setState(c, option.ParseState(raw))
	case KindAccess:
		d.setAccess(c, option.ParseAccess(raw))
	case KindString:
		d.setString(c, raw)
	}
}

// Value returns the option's current value in c.
func (d Descriptor) Value(c Configuration) any {
	switch d.Kind {
	case KindState:
		return *d.state(&c)
	case KindAccess:
		return *d.access(&c)
	default:
		return *d.str(&c)
	}
}

func (d Descriptor) neutral(c *Configuration) bool {
	switch d.Kind {
	case KindState:
		return d.state(c).IsNeutral()
	case KindAccess:
		return d.access(c).IsNeutral()
	default:
		return *d.str(c) == ""
	}
}

func (d Descriptor) copy(dst, src *Configuration) {
	switch d.Kind {
	case KindState:
		*d.state(dst) = *d.state(src)
	case KindAccess:
		*d.access(dst) = *d.access(src)
	default:
		*d.str(dst) = *d.str(src)
	}
}
