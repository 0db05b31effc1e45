// Package annotation extracts declaration metadata from doc comments.
//
// Two forms are recognized. Directives follow the Go toolchain convention,
// a comment with no space after the slashes:
//
//	//simplebuilder:options suffix=Maker methodAccess=private
//
// Annotations are doc lines starting with @ followed by a Go expression
// naming a type, optionally with call arguments or a composite literal:
//
//	// @NotNull
//	// @validate.Size{Min: 1, Max: 64}
//
// An annotation literal may span several lines until its brackets balance.
package annotation

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// Annotation is one directive or @ annotation found in a doc comment.
type Annotation struct {
	// Qualifier is the package qualifier of an @ annotation or the namespace
	// of a directive.
	Qualifier string
	Name      string
	// Args holds the raw arguments of a directive.
	Args string
	// Text is the verbatim source, including the leading // or @.
	Text      string
	Directive bool
	Pos       token.Pos
}

// QualifiedName returns "pkg.Name" for annotations and "ns:name" for
// directives.
func (a Annotation) QualifiedName() string {
	if a.Directive {
		return a.Qualifier + ":" + a.Name
	}
	if a.Qualifier == "" {
		return a.Name
	}
	return a.Qualifier + "." + a.Name
}

// Key is the name deny-list patterns are matched against.
func (a Annotation) Key() string {
	if a.Directive {
		return a.QualifiedName()
	}
	return "@" + a.QualifiedName()
}

// Doc is the ordered list of annotations of one declaration.
type Doc []Annotation

// Directive returns the first directive ns:name.
func (d Doc) Directive(ns, name string) (Annotation, bool) {
	for _, a := range d {
		if a.Directive && a.Qualifier == ns && a.Name == name {
			return a, true
		}
	}
	return Annotation{}, false
}

// Directives returns every directive ns:name in order.
func (d Doc) Directives(ns, name string) []Annotation {
	var out []Annotation
	for _, a := range d {
		if a.Directive && a.Qualifier == ns && a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

// Annotations returns the @ annotations, skipping directives.
func (d Doc) Annotations() []Annotation {
	var out []Annotation
	for _, a := range d {
		if !a.Directive {
			out = append(out, a)
		}
	}
	return out
}

// Parse extracts annotations from the given comment groups in order. Nil
// groups are skipped.
func Parse(groups ...*ast.CommentGroup) Doc {
	var out Doc
	for _, g := range groups {
		if g == nil {
			continue
		}
		var lines []line
		for _, c := range g.List {
			if a, ok := parseDirective(c); ok {
				out = append(out, a)
				continue
			}
			lines = append(lines, commentLines(c)...)
		}
		out = append(out, parseAnnotations(lines)...)
	}
	return out
}

type line struct {
	text string
	pos  token.Pos
}

func parseDirective(c *ast.Comment) (Annotation, bool) {
	text, ok := strings.CutPrefix(c.Text, "//")
	if !ok {
		return Annotation{}, false
	}
	ns, rest, ok := strings.Cut(text, ":")
	if !ok || !isNamespace(ns) || rest == "" || rest[0] == ' ' || rest[0] == '\t' {
		return Annotation{}, false
	}
	name, args, _ := strings.Cut(rest, " ")
	return Annotation{
		Qualifier: ns,
		Name:      strings.TrimSpace(name),
		Args:      strings.TrimSpace(args),
		Text:      c.Text,
		Directive: true,
		Pos:       c.Slash,
	}, true
}

func isNamespace(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func commentLines(c *ast.Comment) []line {
	if text, ok := strings.CutPrefix(c.Text, "//"); ok {
		return []line{{text: strings.TrimPrefix(text, " "), pos: c.Slash}}
	}
	text := strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
	var out []line
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimLeft(l, " \t")
		l = strings.TrimPrefix(l, "* ")
		out = append(out, line{text: l, pos: c.Slash})
	}
	return out
}

func parseAnnotations(lines []line) []Annotation {
	var out []Annotation
	for i := 0; i < len(lines); i++ {
		start := strings.TrimSpace(lines[i].text)
		if !strings.HasPrefix(start, "@") {
			continue
		}
		text := start
		depth := bracketDepth(start)
		j := i
		for depth > 0 && j+1 < len(lines) {
			j++
			text += "\n" + lines[j].text
			depth = bracketDepth(text)
		}
		a, ok := parseAnnotation(text)
		if !ok {
			continue
		}
		a.Pos = lines[i].pos
		out = append(out, a)
		i = j
	}
	return out
}

// bracketDepth returns the open bracket count of s, ignoring brackets in
// string and rune literals.
func bracketDepth(s string) int {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range s {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote != '`':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'', '`':
			quote = r
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		}
	}
	return depth
}

func parseAnnotation(text string) (Annotation, bool) {
	expr, err := parser.ParseExpr(strings.TrimPrefix(text, "@"))
	if err != nil {
		return Annotation{}, false
	}
	var typ ast.Expr
	switch e := expr.(type) {
	case *ast.CallExpr:
		typ = e.Fun
	case *ast.CompositeLit:
		typ = e.Type
	default:
		typ = e
	}
	switch t := typ.(type) {
	case *ast.Ident:
		return Annotation{Name: t.Name, Text: text}, true
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return Annotation{Qualifier: x.Name, Name: t.Sel.Name, Text: text}, true
		}
	}
	return Annotation{}, false
}
