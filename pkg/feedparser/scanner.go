package feedparser

import "strings"

// scanner finds tags in loosely formed markup. Searches run against an
// ASCII-lowered copy so byte offsets stay valid in the original text.
type scanner struct {
	src   string
	lower string
}

func newScanner(src string) scanner {
	return scanner{src: src, lower: asciiLower(src)}
}

type tag struct {
	start       int
	end         int // index just past '>'
	attrs       string
	selfClosing bool
}

type element struct {
	tag
	inner string
	next  int
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameEnd(c byte) bool {
	return c == '>' || c == '/' || isSpace(c)
}

// has reports whether an opening tag for name appears anywhere.
func (s scanner) has(name string) bool {
	_, ok := s.openTag(0, name)
	return ok
}

// openTag locates the next <name ...> at or after from.
func (s scanner) openTag(from int, name string) (tag, bool) {
	needle := "<" + name
	for from < len(s.lower) {
		i := strings.Index(s.lower[from:], needle)
		if i < 0 {
			return tag{}, false
		}
		i += from
		after := i + len(needle)
		if after >= len(s.lower) {
			return tag{}, false
		}
		if !isNameEnd(s.lower[after]) {
			from = after
			continue
		}
		gt := indexTagEnd(s.src, after)
		if gt < 0 {
			return tag{}, false
		}
		attrs := strings.TrimSpace(s.src[after:gt])
		self := strings.HasSuffix(attrs, "/")
		if self {
			attrs = strings.TrimSpace(strings.TrimSuffix(attrs, "/"))
		}
		return tag{start: i, end: gt + 1, attrs: attrs, selfClosing: self}, true
	}
	return tag{}, false
}

// closeTag locates the next </name> at or after from and returns its bounds.
func (s scanner) closeTag(from int, name string) (start, end int, ok bool) {
	needle := "</" + name
	for from < len(s.lower) {
		i := strings.Index(s.lower[from:], needle)
		if i < 0 {
			return 0, 0, false
		}
		i += from
		after := i + len(needle)
		if after < len(s.lower) && (s.lower[after] == '>' || isSpace(s.lower[after])) {
			gt := strings.IndexByte(s.src[after:], '>')
			if gt < 0 {
				return 0, 0, false
			}
			return i, after + gt + 1, true
		}
		from = after
	}
	return 0, 0, false
}

// element returns the first complete <name>...</name> (or self-closed tag)
// starting at or after from. An opening tag without a matching close is
// reported as not found.
func (s scanner) element(from int, name string) (element, bool) {
	open, ok := s.openTag(from, name)
	if !ok {
		return element{}, false
	}
	if open.selfClosing {
		return element{tag: open, next: open.end}, true
	}
	cs, ce, ok := s.closeTag(open.end, name)
	if !ok {
		return element{}, false
	}
	return element{tag: open, inner: s.src[open.end:cs], next: ce}, true
}

// elements returns up to max consecutive elements named name (max <= 0 means all).
func (s scanner) elements(name string, max int) []element {
	var out []element
	pos := 0
	for max <= 0 || len(out) < max {
		el, ok := s.element(pos, name)
		if !ok {
			break
		}
		out = append(out, el)
		pos = el.next
	}
	return out
}

// openTags returns every opening tag named name, including ones never closed.
func (s scanner) openTags(name string) []tag {
	var out []tag
	pos := 0
	for {
		t, ok := s.openTag(pos, name)
		if !ok {
			return out
		}
		out = append(out, t)
		pos = t.end
	}
}

// indexTagEnd finds the '>' closing a tag, skipping quoted attribute values.
func indexTagEnd(src string, from int) int {
	var quote byte
	for i := from; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	if quote != 0 {
		// unbalanced quote; settle for the first '>'
		if gt := strings.IndexByte(src[from:], '>'); gt >= 0 {
			return from + gt
		}
	}
	return -1
}

// parseAttrs reads name="value", name='value' and name=value pairs. Keys are lowercased.
func parseAttrs(raw string) map[string]string {
	attrs := map[string]string{}
	i := 0
	for i < len(raw) {
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		start := i
		for i < len(raw) && raw[i] != '=' && !isSpace(raw[i]) {
			i++
		}
		key := asciiLower(raw[start:i])
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) || raw[i] != '=' {
			if key != "" {
				attrs[key] = ""
			}
			continue
		}
		i++ // '='
		for i < len(raw) && isSpace(raw[i]) {
			i++
		}
		if i >= len(raw) {
			attrs[key] = ""
			break
		}
		var val string
		if q := raw[i]; q == '"' || q == '\'' {
			end := strings.IndexByte(raw[i+1:], q)
			if end < 0 {
				val = raw[i+1:]
				i = len(raw)
			} else {
				val = raw[i+1 : i+1+end]
				i += end + 2
			}
		} else {
			vs := i
			for i < len(raw) && !isSpace(raw[i]) {
				i++
			}
			val = raw[vs:i]
		}
		if key != "" {
			attrs[key] = decodeEntities(val)
		}
	}
	return attrs
}
