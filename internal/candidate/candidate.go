// Package candidate proposes builder methods. Each generator inspects one
// property and returns zero or more candidates; overlapping names are
// settled later by priority.
package candidate

import (
	"fmt"
	"strings"

	"github.com/calumari/simplebuilder/internal/analyzer"
)

// Priority ranks candidates that would produce the same method. Only the
// ordering is meaningful.
type Priority int

const (
	UnboxedOptional Priority = 40
	AddElement      Priority = 50
	VarArgs         Priority = 60
	StringFormat    Priority = VarArgs
	BuilderConsumer Priority = 70
	Consumer        Priority = 80
	Supplier        Priority = 90
	Proxy           Priority = 95
	Setter          Priority = 100
	Core            Priority = 110
)

// Bands lists every distinct priority from highest to lowest.
var Bands = []Priority{Core, Setter, Proxy, Supplier, Consumer, BuilderConsumer, VarArgs, AddElement, UnboxedOptional}

func (p Priority) String() string {
	switch p {
	case Core:
		return "core"
	case Setter:
		return "setter"
	case Proxy:
		return "proxy"
	case Supplier:
		return "supplier"
	case Consumer:
		return "consumer"
	case BuilderConsumer:
		return "builder-consumer"
	case VarArgs:
		return "varargs"
	case AddElement:
		return "add-element"
	case UnboxedOptional:
		return "unboxed-optional"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Kind selects how a candidate body is rendered.
type Kind int

const (
	KindSetter Kind = iota
	KindSupplier
	KindConsumer
	KindNestedBuilder
	KindStringBuilder
	KindSliceBuilder
	KindSetBuilder
	KindMapBuilder
	KindVarArgs
	KindFormat
	KindAddElement
	KindPutEntry
	KindUnboxed
	KindProxy
	KindBuild
	KindMustBuild
	KindConditional
	KindUnmarshalJSON
)

// Param is a parameter name and its rendered type.
type Param struct {
	Name string
	Type string
}

// Candidate is a proposed builder method.
type Candidate struct {
	Kind     Kind
	Name     string
	Params   []Param
	Priority Priority
	// Property is set for per-property candidates, Proxy for forwarded
	// methods. Both are nil for builder-level methods.
	Property *analyzer.Property
	Proxy    *analyzer.Proxy
	Doc      string
}

// Origin names what proposed the candidate.
func (c Candidate) Origin() string {
	switch {
	case c.Property != nil:
		return c.Property.Name
	case c.Proxy != nil:
		return c.Proxy.Name
	}
	return "builder"
}

// Key groups candidates that cannot coexist. A Go method set cannot hold two
// methods of the same name, whatever their parameters.
func (c Candidate) Key() string { return c.Name }

// Signature renders the candidate as Name(p T, ...).
func (c Candidate) Signature() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = p.Name + " " + p.Type
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}
