// Package naming converts identifiers between exported and unexported
// forms, keeping leading initialisms intact.
package naming

import (
	"go/token"
	"strings"
	"unicode"
)

// LowerFirst unexports s: Name -> name, ID -> id, URLPath -> urlPath.
func LowerFirst(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == 1 || n == len(r):
	default:
		// the last upper-case rune starts the next word
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// UpperFirst exports s by upper-casing its first rune.
func UpperFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Ident returns s made safe for use as a local identifier.
func Ident(s string) string {
	if token.IsKeyword(s) {
		return s + "_"
	}
	return s
}

// Access applies the export rule to name.
func Access(name string, exported bool) string {
	if exported {
		return UpperFirst(name)
	}
	return LowerFirst(name)
}

// Key is the case-folded form used to detect colliding names.
func Key(s string) string { return strings.ToLower(s) }
