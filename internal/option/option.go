// Package option holds the value kinds a builder configuration is made of.
// Parsing is total: unrecognized input resolves to the neutral value.
package option

import (
	"strings"

	"golang.org/x/text/cases"
)

// State is a tri-state toggle. Unset is neutral and never overrides.
type State int

const (
	Unset State = iota
	Enabled
	Disabled
)

func (s State) String() string {
	switch s {
	case Enabled:
		return "enabled"
	case Disabled:
		return "disabled"
	default:
		return "unset"
	}
}

// On reports whether the state resolves to enabled.
func (s State) On() bool { return s == Enabled }

// IsNeutral reports whether s leaves a merged base value untouched.
func (s State) IsNeutral() bool { return s == Unset }

// Access controls the visibility of generated declarations.
type Access int

const (
	Default Access = iota
	Public
	Private
	PackagePrivate
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Private:
		return "private"
	case PackagePrivate:
		return "package-private"
	default:
		return "default"
	}
}

// IsNeutral reports whether a leaves a merged base value untouched.
func (a Access) IsNeutral() bool { return a == Default }

// Exported reports whether identifiers generated under a are exported. Go
// has two visibility levels, so both private variants unexport.
func (a Access) Exported() bool { return a != Private && a != PackagePrivate }

var folder = cases.Fold()

// fold normalizes a raw token for case-insensitive comparison.
func fold(s string) string { return folder.String(strings.TrimSpace(s)) }

// ParseState maps "true"/"enabled" to Enabled and "false"/"disabled" to
// Disabled. Anything else is Unset.
func ParseState(s string) State {
	switch fold(s) {
	case "true", "enabled":
		return Enabled
	case "false", "disabled":
		return Disabled
	}
	return Unset
}

// ParseBool is true only for "true" and "enabled".
func ParseBool(s string) bool { return ParseState(s) == Enabled }

// ParseAccess accepts "public", "private" and both spellings of
// package-private. Anything else is Default.
func ParseAccess(s string) Access {
	switch fold(s) {
	case "public":
		return Public
	case "private":
		return Private
	case "package-private", "package_private":
		return PackagePrivate
	}
	return Default
}
