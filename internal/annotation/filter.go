package annotation

import (
	"slices"
	"strings"
)

// DefaultPatterns deny toolchain directives, this generator's own metadata
// and generated-code markers.
var DefaultPatterns = []string{"go:*", "simplebuilder:*", "@Generated", "@simplebuilder.*"}

// NotNullNames are the simple names treated as a not-null constraint,
// whatever package they come from.
var NotNullNames = []string{"NotNull", "NonNull", "Nonnull", "NotNil", "NonNil", "Nonnil"}

// Filter decides which annotations are echoed into generated code.
//
// A pattern ending in * matches by prefix, any other pattern matches
// exactly. An @ pattern without a qualifier also matches the simple name of
// a qualified annotation, so "@Generated" denies "@gen.Generated".
type Filter struct {
	patterns []string
}

// NewFilter returns a filter denying patterns.
func NewFilter(patterns ...string) Filter {
	return Filter{patterns: slices.Clone(patterns)}
}

// DefaultFilter denies DefaultPatterns.
func DefaultFilter() Filter { return NewFilter(DefaultPatterns...) }

// Patterns returns a copy of the deny-list.
func (f Filter) Patterns() []string { return slices.Clone(f.patterns) }

// Denied reports whether a matches one of the patterns.
func (f Filter) Denied(a Annotation) bool {
	key := a.Key()
	for _, p := range f.patterns {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(key, prefix) {
				return true
			}
			continue
		}
		if p == key {
			return true
		}
		if !a.Directive && strings.HasPrefix(p, "@") && !strings.Contains(p, ".") && p[1:] == a.Name {
			return true
		}
	}
	return false
}

// Retain returns the annotations not denied, preserving order.
func (f Filter) Retain(in []Annotation) []Annotation {
	var out []Annotation
	for _, a := range in {
		if !f.Denied(a) {
			out = append(out, a)
		}
	}
	return out
}

// IsNotNull reports whether a names a not-null constraint.
func IsNotNull(a Annotation) bool {
	return !a.Directive && slices.Contains(NotNullNames, a.Name)
}
