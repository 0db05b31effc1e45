package generator

import (
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

// typ returns the jennifer code for t. Named types are qualified by import
// path; the file renders types of its own package unqualified.
func typ(t types.Type) *jen.Statement {
	switch t := t.(type) {
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return jen.Qual("unsafe", "Pointer")
		}
		return jen.Id(t.Name())
	case *types.Alias:
		return named(t.Obj(), t.TypeArgs())
	case *types.Named:
		return named(t.Obj(), t.TypeArgs())
	case *types.TypeParam:
		return jen.Id(t.Obj().Name())
	case *types.Pointer:
		return jen.Op("*").Add(typ(t.Elem()))
	case *types.Slice:
		return jen.Index().Add(typ(t.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(t.Len()))).Add(typ(t.Elem()))
	case *types.Map:
		return jen.Map(typ(t.Key())).Add(typ(t.Elem()))
	case *types.Chan:
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(typ(t.Elem()))
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(typ(t.Elem()))
		}
		return jen.Chan().Add(typ(t.Elem()))
	case *types.Signature:
		return jen.Func().Add(signature(t))
	case *types.Struct:
		return jen.StructFunc(func(g *jen.Group) {
			for i := 0; i < t.NumFields(); i++ {
				f := t.Field(i)
				var s *jen.Statement
				if f.Embedded() {
					s = g.Add(typ(f.Type()))
				} else {
					s = g.Id(f.Name()).Add(typ(f.Type()))
				}
				if tag := t.Tag(i); tag != "" {
					s.Lit(tag)
				}
			}
		})
	case *types.Interface:
		return jen.InterfaceFunc(func(g *jen.Group) {
			for i := 0; i < t.NumEmbeddeds(); i++ {
				g.Add(typ(t.EmbeddedType(i)))
			}
			for i := 0; i < t.NumExplicitMethods(); i++ {
				m := t.ExplicitMethod(i)
				g.Id(m.Name()).Add(signature(m.Type().(*types.Signature)))
			}
		})
	}
	panic(fmt.Sprintf("unsupported type %s", t))
}

func named(obj *types.TypeName, args *types.TypeList) *jen.Statement {
	var s *jen.Statement
	if obj.Pkg() == nil {
		s = jen.Id(obj.Name())
	} else {
		s = jen.Qual(obj.Pkg().Path(), obj.Name())
	}
	if args.Len() == 0 {
		return s
	}
	list := make([]jen.Code, args.Len())
	for i := range list {
		list[i] = typ(args.At(i))
	}
	return s.Types(list...)
}

// signature renders the parameter and result lists of sig.
func signature(sig *types.Signature) *jen.Statement {
	s := jen.Params(tuple(sig.Params(), sig.Variadic())...)
	results := sig.Results()
	switch {
	case results.Len() == 1 && results.At(0).Name() == "":
		s.Add(typ(results.At(0).Type()))
	case results.Len() > 0:
		s.Params(tuple(results, false)...)
	}
	return s
}

func tuple(vars *types.Tuple, variadic bool) []jen.Code {
	out := make([]jen.Code, vars.Len())
	for i := range out {
		out[i] = param(vars.At(i).Type(), variadic && i == len(out)-1)
	}
	return out
}

// param renders a parameter type; the variadic last parameter of a
// signature is a slice rendered as ...E.
func param(t types.Type, variadic bool) *jen.Statement {
	if variadic {
		if s, ok := t.(*types.Slice); ok {
			return jen.Op("...").Add(typ(s.Elem()))
		}
	}
	return typ(t)
}

// convert wraps expr in a conversion to t when a plain string result is not
// assignable to t.
func convert(t types.Type, expr jen.Code) jen.Code {
	if _, ok := t.(*types.Basic); ok {
		return expr
	}
	return typ(t).Call(expr)
}
