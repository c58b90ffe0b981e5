package normalize

import "strings"

// DedupeStrings trims values, drops empties and removes case-insensitive
// duplicates. The first spelling seen wins and order is preserved. The result
// is never nil.
func DedupeStrings(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]string, 0, total)
	seen := make(map[string]struct{}, total)
	for _, g := range groups {
		for _, v := range g {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			key := strings.ToLower(v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
