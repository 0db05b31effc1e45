// Package compilerargs reads raw generator arguments of the form
// simplebuilder.<name>=<value>. Readers never fail; missing or malformed
// values degrade to the neutral value.
package compilerargs

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calumari/simplebuilder/internal/option"
)

// Prefix qualifies every argument key.
const Prefix = "simplebuilder."

// Reader looks up option values in an argument snapshot.
type Reader struct {
	args map[string]string
}

// NewReader captures a copy of args.
func NewReader(args map[string]string) *Reader {
	snapshot := make(map[string]string, len(args))
	for k, v := range args {
		snapshot[k] = v
	}
	return &Reader{args: snapshot}
}

// ReadValue returns the value for the qualified key, falling back to the
// bare key.
func (r *Reader) ReadValue(key string) (string, bool) {
	if r == nil {
		return "", false
	}
	if v, ok := r.args[Prefix+key]; ok {
		return v, true
	}
	v, ok := r.args[key]
	return v, ok
}

// ReadString returns the value or "" when absent.
func (r *Reader) ReadString(key string) string {
	v, _ := r.ReadValue(key)
	return v
}

// ReadBooleanValue reports whether the value parses as true; absent is false.
func (r *Reader) ReadBooleanValue(key string) bool {
	v, _ := r.ReadValue(key)
	return option.ParseBool(v)
}

// ReadOptionState parses the value as an option state, Unset when absent.
func (r *Reader) ReadOptionState(key string) option.State {
	v, _ := r.ReadValue(key)
	return option.ParseState(v)
}

// ReadAccessModifier parses the value as an access level, Default when absent.
func (r *Reader) ReadAccessModifier(key string) option.Access {
	v, _ := r.ReadValue(key)
	return option.ParseAccess(v)
}

// ParsePairs splits key=value pairs into dst. A pair without "=" is stored
// with an empty value.
func ParsePairs(dst map[string]string, pairs []string) {
	for _, p := range pairs {
		k, v, _ := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		dst[k] = strings.TrimSpace(v)
	}
}

// LoadFile reads a YAML mapping of arguments into dst. Nested mappings are
// flattened with "." so both of these forms work:
//
//	simplebuilder.suffix: Maker
//	simplebuilder:
//	  suffix: Maker
func LoadFile(dst map[string]string, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	flatten(dst, "", raw)
	return nil
}

func flatten(dst map[string]string, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]any:
			flatten(dst, key, vv)
		case nil:
			dst[key] = ""
		default:
			dst[key] = fmt.Sprint(vv)
		}
	}
}
