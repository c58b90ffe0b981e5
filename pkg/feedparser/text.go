package feedparser

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

var namedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// stripCDATA removes CDATA markers and keeps their content.
func stripCDATA(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	return strings.ReplaceAll(s, "]]>", "")
}

// stripTags replaces every <...> run with a single space.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if gt := strings.IndexByte(s[i+1:], '>'); gt > 0 {
				b.WriteByte(' ')
				i += gt + 2
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// decodeEntities resolves the five XML named entities and numeric references in
// a single pass. Unknown names and invalid code points are left verbatim.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i+1:], ';')
		if semi <= 0 || semi > 10 {
			b.WriteByte('&')
			i++
			continue
		}
		ref := s[i+1 : i+1+semi]
		if rep, ok := resolveEntity(ref); ok {
			b.WriteString(rep)
			i += semi + 2
			continue
		}
		b.WriteByte('&')
		i++
	}
	return b.String()
}

func resolveEntity(ref string) (string, bool) {
	if rep, ok := namedEntities[strings.ToLower(ref)]; ok {
		return rep, true
	}
	if len(ref) < 2 || ref[0] != '#' {
		return "", false
	}
	var (
		n   uint64
		err error
	)
	if ref[1] == 'x' || ref[1] == 'X' {
		n, err = strconv.ParseUint(ref[2:], 16, 32)
	} else {
		n, err = strconv.ParseUint(ref[1:], 10, 32)
	}
	if err != nil || n == 0 || !utf8.ValidRune(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}

// cleanText is the pipeline applied to every extracted text field.
func cleanText(s string) string {
	return strings.TrimSpace(decodeEntities(collapseSpace(stripTags(stripCDATA(s)))))
}

// cleanHTML keeps markup but removes CDATA markers and decodes entities once.
func cleanHTML(s string) string {
	return strings.TrimSpace(decodeEntities(stripCDATA(s)))
}
