package normalize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxKeywords caps ExtractKeywords output.
const MaxKeywords = 12

const minKeywordLen = 3

var stopWords = toSet(
	"the", "and", "for", "are", "with", "that", "from", "this", "have", "has",
	"about", "your", "their", "into", "what", "when", "where", "will", "would",
	"could", "should", "been", "being", "them", "they", "there", "then", "than",
	"also", "over", "under", "while", "within", "per", "each", "more", "most",
	"such", "some", "like", "just", "onto", "make", "made", "using", "use",
	"used", "via", "tech", "technology", "news",
)

func toSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// ExtractKeywords returns up to max frequent terms of text, most frequent
// first; ties keep first-appearance order.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = MaxKeywords
	}

	type counted struct {
		word  string
		count int
	}
	var ranked []*counted
	index := map[string]*counted{}

	for _, tok := range strings.Fields(sanitize(text)) {
		tok = strings.Trim(tok, "-")
		if utf8.RuneCountInString(tok) < minKeywordLen {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if c, ok := index[tok]; ok {
			c.count++
			continue
		}
		c := &counted{word: tok, count: 1}
		index[tok] = c
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })

	if len(ranked) > max {
		ranked = ranked[:max]
	}
	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.word)
	}
	return out
}

// sanitize lowercases text and keeps only letters, digits, whitespace and hyphens.
func sanitize(text string) string {
	text = norm.NFKC.String(text)

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if hasPrefixFold(f, "www.") {
			continue
		}
		// a URL runs to the end of its field, wherever it starts
		if i := indexURL(f); i >= 0 {
			f = f[:i]
		}
		if f != "" {
			kept = append(kept, f)
		}
	}
	text = stripEntityRefs(strings.Join(kept, " "))

	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			return unicode.ToLower(r)
		case r == '-' || unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, text)
}

func indexURL(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != 'h' && s[i] != 'H' {
			continue
		}
		if hasPrefixFold(s[i:], "http://") || hasPrefixFold(s[i:], "https://") {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// stripEntityRefs blanks out leftover &name; and &#NNN; references.
func stripEntityRefs(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '&' {
			if semi := strings.IndexByte(s[i+1:], ';'); semi > 0 && semi <= 10 && isEntityName(s[i+1:i+1+semi]) {
				b.WriteByte(' ')
				i += semi + 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isEntityName(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c == '#' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}
