package analyzer

import (
	"go/token"
	"go/types"

	"github.com/calumari/simplebuilder/internal/annotation"
)

// Path is how a built instance receives a property value.
type Path int

const (
	// PathSetter calls a SetX method after construction.
	PathSetter Path = iota + 1
	// PathConstructor passes the value to the New<Type> constructor.
	PathConstructor
	// PathField assigns an exported field after construction.
	PathField
)

func (p Path) String() string {
	switch p {
	case PathSetter:
		return "setter"
	case PathConstructor:
		return "constructor"
	case PathField:
		return "field"
	default:
		return "none"
	}
}

// Shape is the collection form of a property type.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeList
	ShapeSet
	ShapeMap
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "list"
	case ShapeSet:
		return "set"
	case ShapeMap:
		return "map"
	case ShapeArray:
		return "array"
	default:
		return "none"
	}
}

// Getter reads a property from an existing instance.
type Getter struct {
	// Field is true when the value is read from an exported field.
	Field bool
	Name  string
}

// Optional describes a database/sql nullable wrapper.
type Optional struct {
	// Value is the wrapped type.
	Value types.Type
	// Field holds the wrapped value, Valid is always the presence flag.
	Field string
}

// NestedBuilder names the generated builder of a property type.
type NestedBuilder struct {
	PkgPath string
	PkgName string
	Name    string
	New     string
	NewFrom string
}

// Property is one settable property of a builder target.
type Property struct {
	Name      string
	FieldName string
	Type      types.Type
	Getter    Getter
	Path      Path
	// Setter is the setter method name for PathSetter.
	Setter string
	// Param is the constructor parameter index, or -1.
	Param int

	Nillable bool
	NotNull  bool
	Optional *Optional

	Shape Shape
	// Elem is the element type of lists, sets and arrays and the value type
	// of maps. Key is the map key type.
	Elem types.Type
	Key  types.Type

	// Nested is set when the property type, or its pointee, has a builder.
	Nested        *NestedBuilder
	NestedPointer bool

	// JSONName is the key read by the generated UnmarshalJSON, empty when
	// the field is excluded from JSON.
	JSONName string

	// Annotations survive the deny-list and are echoed on the setter.
	Annotations []annotation.Annotation
	Pos         token.Position
}

// Mandatory reports whether Build must fail when the property is unset:
// the constructor needs it, it is not optional, and it cannot be nil.
func (p Property) Mandatory() bool {
	return p.Path == PathConstructor && p.Optional == nil && (!p.Nillable || p.NotNull)
}

// Param is one constructor parameter.
type Param struct {
	Name string
	Type types.Type
	// Property is the index of the property supplying the value, or -1.
	Property int
}

// Constructor is the package-level New<Type> function.
type Constructor struct {
	Name    string
	Params  []Param
	Pointer bool
	Error   bool
}

// Proxy is a target method forwarded by the builder.
type Proxy struct {
	Name        string
	Params      []*types.Var
	Variadic    bool
	Annotations []annotation.Annotation
	Pos         token.Position
}

// Result is the analysis of one builder target.
type Result struct {
	Target      *types.TypeName
	Named       *types.Named
	Properties  []Property
	Proxies     []Proxy
	Constructor *Constructor
	// HasWith is true when the target declares its own With method.
	HasWith bool
}
