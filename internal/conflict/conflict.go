// Package conflict settles name collisions within one builder: between
// method candidates, and between the internal fields that track property
// values.
package conflict

import (
	"cmp"
	"go/token"
	"strconv"

	"github.com/calumari/simplebuilder/internal/analyzer"
	"github.com/calumari/simplebuilder/internal/candidate"
	"github.com/calumari/simplebuilder/internal/diag"
	"github.com/calumari/simplebuilder/internal/naming"
)

// Resolve keeps the highest-priority candidate of every group sharing a
// Key, the first registered winning ties. Each dropped candidate is
// reported as a warning. Survivors keep their registration order.
func Resolve(builder string, pos token.Position, cands []candidate.Candidate, r diag.Reporter) []candidate.Candidate {
	winner := map[string]int{}
	for i, c := range cands {
		w, ok := winner[c.Key()]
		if !ok || c.Priority > cands[w].Priority {
			winner[c.Key()] = i
		}
	}
	out := make([]candidate.Candidate, 0, len(winner))
	for i, c := range cands {
		w := winner[c.Key()]
		if w == i {
			out = append(out, c)
			continue
		}
		if r != nil {
			kept := cands[w]
			diag.Warnf(r, pos, builder,
				"method %s: dropped %s from %s (priority %d) in favor of %s from %s (priority %d)",
				c.Signature(), c.Priority, c.Origin(), c.Priority, kept.Priority, kept.Origin(), kept.Priority)
		}
	}
	return out
}

// Reserved are builder field names used by generated code.
var Reserved = []string{"calls", "errs"}

// FieldNames assigns every property a distinct builder field name derived
// from the unexported property name. Names equal under case folding to the
// name of an earlier property or a generated field get a numeric suffix and
// a field conflict warning. A name equal to one of the builder methods gets
// a Value suffix without a warning.
func FieldNames(builder string, props []analyzer.Property, r diag.Reporter, methods ...string) []string {
	owner := map[string]string{}
	for _, name := range Reserved {
		owner[naming.Key(name)] = "a generated field"
	}
	isMethod := map[string]bool{}
	for _, m := range methods {
		isMethod[m] = true
	}
	free := func(name string) bool {
		_, ok := owner[naming.Key(name)]
		return !ok && !isMethod[name]
	}

	out := make([]string, len(props))
	for i, p := range props {
		base := naming.Ident(naming.LowerFirst(p.Name))
		name := base
		prev, conflicted := owner[naming.Key(base)]
		for n, clash := 2, conflicted; clash; n++ {
			name = base + strconv.Itoa(n)
			_, clash = owner[naming.Key(name)]
		}
		if isMethod[name] {
			stem := name + "Value"
			name = stem
			for n := 2; !free(name); n++ {
				name = stem + strconv.Itoa(n)
			}
		}
		if conflicted && r != nil {
			diag.Warnf(r, p.Pos, builder,
				"field conflict: %s and %s both map to builder field %q, using %q for %s",
				prev, p.Name, base, name, p.Name)
		}
		owner[naming.Key(base)] = cmp.Or(owner[naming.Key(base)], p.Name)
		owner[naming.Key(name)] = p.Name
		out[i] = name
	}
	return out
}
