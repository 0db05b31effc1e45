package analyzer

import (
	"go/types"
)

// optionalFields maps database/sql wrapper names to their value field.
var optionalFields = map[string]string{
	"Null":        "V",
	"NullString":  "String",
	"NullInt64":   "Int64",
	"NullInt32":   "Int32",
	"NullInt16":   "Int16",
	"NullByte":    "Byte",
	"NullBool":    "Bool",
	"NullFloat64": "Float64",
	"NullTime":    "Time",
}

// optionalOf reports the wrapped type of a database/sql nullable type.
func optionalOf(t types.Type) *Optional {
	named, ok := t.(*types.Named)
	if !ok {
		return nil
	}
	obj := named.Origin().Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != "database/sql" {
		return nil
	}
	field, ok := optionalFields[obj.Name()]
	if !ok {
		return nil
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil
	}
	for i := 0; i < st.NumFields(); i++ {
		if f := st.Field(i); f.Name() == field {
			return &Optional{Value: f.Type(), Field: field}
		}
	}
	return nil
}

// isNillable reports whether values of t can be nil.
func isNillable(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return true
	case *types.Basic:
		return u.Kind() == types.UnsafePointer || u.Kind() == types.UntypedNil
	}
	return false
}

func isEmptyStruct(t types.Type) bool {
	st, ok := t.Underlying().(*types.Struct)
	return ok && st.NumFields() == 0
}

// shapeOf classifies t as a collection. Instantiated generic types keep
// their shape only with the arity of the standard form: one type argument
// for lists and sets, two for maps. Anything else is opaque.
func shapeOf(t types.Type) (shape Shape, elem, key types.Type) {
	args := 0
	generic := false
	if named, ok := t.(*types.Named); ok && named.TypeArgs().Len() > 0 {
		generic = true
		args = named.TypeArgs().Len()
	}
	switch u := t.Underlying().(type) {
	case *types.Slice:
		shape, elem = ShapeList, u.Elem()
	case *types.Array:
		shape, elem = ShapeArray, u.Elem()
	case *types.Map:
		if isEmptyStruct(u.Elem()) {
			shape, elem = ShapeSet, u.Key()
		} else {
			shape, elem, key = ShapeMap, u.Elem(), u.Key()
		}
	default:
		return ShapeNone, nil, nil
	}
	if generic {
		want := 1
		if shape == ShapeMap {
			want = 2
		}
		if args != want {
			return ShapeNone, nil, nil
		}
	}
	return shape, elem, key
}

// IsStringKind reports whether t has an underlying string type.
func IsStringKind(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

// StructOf returns the struct type of t or *t and whether t is a pointer.
// Interfaces and non-struct types report false.
func StructOf(t types.Type) (named types.Type, pointer, ok bool) {
	if p, isPtr := t.Underlying().(*types.Pointer); isPtr {
		if _, isStruct := p.Elem().Underlying().(*types.Struct); isStruct {
			return p.Elem(), true, true
		}
		return nil, false, false
	}
	if _, isStruct := t.Underlying().(*types.Struct); isStruct {
		return t, false, true
	}
	return nil, false, false
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}
