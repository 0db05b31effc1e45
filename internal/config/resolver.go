package config

import (
	"go/ast"
	"go/token"
	"strconv"

	"golang.org/x/tools/go/packages"

	"github.com/calumari/simplebuilder/internal/annotation"
	"github.com/calumari/simplebuilder/internal/diag"
)

const (
	Namespace        = "simplebuilder"
	OptionsDirective = "options"
)

// Target is the declaration a configuration is resolved for.
type Target struct {
	Name string
	Pkg  *packages.Package
	File *ast.File
	Doc  annotation.Doc
	Pos  token.Position
}

// Resolver folds defaults, compiler arguments, a template and inline
// options into one configuration per target.
type Resolver struct {
	Defaults Configuration
	Args     Configuration
	Source   annotation.Source
	Reporter diag.Reporter
	Logger   diag.Logger
}

// Resolve returns Defaults.Merge(Args).Merge(template).Merge(inline). The
// template layer is skipped when the target carries inline options.
func (r *Resolver) Resolve(t Target) Configuration {
	var tmpl, inline *Configuration
	if dirs := t.Doc.Directives(Namespace, OptionsDirective); len(dirs) > 0 {
		c := r.fromDirectives(t, dirs)
		inline = &c
	} else {
		tmpl = r.template(t)
	}
	return r.Defaults.Merge(&r.Args).Merge(tmpl).Merge(inline)
}

// template returns the options of the first annotation on t whose type
// declaration carries an options directive.
func (r *Resolver) template(t Target) *Configuration {
	if r.Source == nil {
		return nil
	}
	for _, a := range t.Doc.Annotations() {
		decl, err := r.Source.TypeDoc(annotation.Ref{Pkg: t.Pkg, File: t.File, Qualifier: a.Qualifier, Name: a.Name})
		if err != nil {
			r.debug("annotation is not a template", "target", t.Name, "annotation", a.QualifiedName(), "err", err)
			continue
		}
		dirs := decl.Doc.Directives(Namespace, OptionsDirective)
		if len(dirs) == 0 {
			continue
		}
		c := r.fromDirectives(t, dirs)
		r.debug("applying template", "target", t.Name, "template", a.QualifiedName())
		return &c
	}
	return nil
}

func (r *Resolver) fromDirectives(t Target, dirs []annotation.Annotation) Configuration {
	return FromDirectives(dirs, func(msg string) {
		if r.Reporter != nil {
			diag.Warnf(r.Reporter, t.Pos, t.Name, "%s", msg)
		}
	})
}

func (r *Resolver) debug(msg string, attrs ...any) {
	if r.Logger != nil {
		r.Logger.Debug(msg, attrs...)
	}
}

// FromDirectives builds a configuration from options directive arguments.
// Later directives override earlier ones. Unknown keys and malformed
// tokens are passed to warn and ignored.
func FromDirectives(dirs []annotation.Annotation, warn func(string)) Configuration {
	var c Configuration
	for _, dir := range dirs {
		pairs, bad := annotation.ParseArgs(dir.Args)
		for _, tok := range bad {
			warn("ignoring malformed option " + strconv.Quote(tok))
		}
		for _, p := range pairs {
			d, ok := Lookup(p.Key)
			if !ok {
				warn("ignoring unknown option " + strconv.Quote(p.Key))
				continue
			}
			d.Set(&c, p.Value)
		}
	}
	return c
}
