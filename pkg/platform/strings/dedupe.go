// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// SplitList splits raw on sep, trims each entry, and drops empty entries and
// repeats. Order of first appearance is kept. An input with no entries
// returns nil.
//
// Example:
//
//	SplitList(" https://a.example, ,https://b.example,https://a.example", ",")
//	// Returns: []string{"https://a.example", "https://b.example"}
func SplitList(raw, sep string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, sep) {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
