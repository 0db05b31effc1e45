package annotation

import (
	"strconv"
	"strings"
	"unicode"
)

// Pair is one key=value directive argument.
type Pair struct {
	Key   string
	Value string
}

// ParseArgs splits directive arguments into key=value pairs. Values may be
// double-quoted Go strings. Tokens that are not pairs are returned as bad.
func ParseArgs(s string) (pairs []Pair, bad []string) {
	rs := []rune(s)
	i := 0
	for i < len(rs) {
		for i < len(rs) && unicode.IsSpace(rs[i]) {
			i++
		}
		if i >= len(rs) {
			break
		}
		start := i
		for i < len(rs) && rs[i] != '=' && !unicode.IsSpace(rs[i]) {
			i++
		}
		key := string(rs[start:i])
		if i >= len(rs) || rs[i] != '=' || key == "" {
			// consume the rest of the token
			for i < len(rs) && !unicode.IsSpace(rs[i]) {
				i++
			}
			bad = append(bad, string(rs[start:i]))
			continue
		}
		i++ // '='
		if i < len(rs) && rs[i] == '"' {
			vstart := i
			i++
			for i < len(rs) && rs[i] != '"' {
				if rs[i] == '\\' {
					i++
				}
				i++
			}
			if i < len(rs) {
				i++
			}
			raw := string(rs[vstart:min(i, len(rs))])
			v, err := strconv.Unquote(raw)
			if err != nil {
				bad = append(bad, key+"="+raw)
				continue
			}
			pairs = append(pairs, Pair{Key: key, Value: v})
			continue
		}
		vstart := i
		for i < len(rs) && !unicode.IsSpace(rs[i]) {
			i++
		}
		pairs = append(pairs, Pair{Key: key, Value: strings.TrimSpace(string(rs[vstart:i]))})
	}
	return pairs, bad
}
