package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISOLayout is the canonical publishedAt format (UTC, millisecond precision).
const ISOLayout = "2006-01-02T15:04:05.000Z"

// Named zones are rewritten to numeric offsets first, so every zoned layout
// here takes -0700.
var knownLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	"Monday, 02-Jan-06 15:04:05 -0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102T150405Z",
	"2006-01-02",
}

// zoneOffsets covers the RFC 822 zone names plus a few unambiguous ones feeds use.
var zoneOffsets = map[string]string{
	"UT":   "+0000",
	"UTC":  "+0000",
	"GMT":  "+0000",
	"Z":    "+0000",
	"EST":  "-0500",
	"EDT":  "-0400",
	"CST":  "-0600",
	"CDT":  "-0500",
	"MST":  "-0700",
	"MDT":  "-0600",
	"PST":  "-0800",
	"PDT":  "-0700",
	"CET":  "+0100",
	"CEST": "+0200",
	"JST":  "+0900",
	"AEST": "+1000",
	"AEDT": "+1100",
}

// ParseDate parses the date formats feeds and APIs commonly emit. A trailing
// zone name it cannot resolve fails the parse rather than being read as UTC.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	raw, ok := numericZone(raw)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range knownLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// numericZone replaces a trailing zone abbreviation with its offset. It
// reports false for an abbreviation that is not in zoneOffsets.
func numericZone(raw string) (string, bool) {
	i := strings.LastIndexByte(raw, ' ')
	if i < 0 {
		return raw, true
	}
	name := raw[i+1:]
	if off, ok := zoneOffsets[strings.ToUpper(name)]; ok {
		return raw[:i+1] + off, true
	}
	if isZoneName(name) {
		return raw, false
	}
	return raw, true
}

func isZoneName(s string) bool {
	if len(s) < 3 || len(s) > 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	// FEB, MON and the like end some date-only strings
	if _, err := time.Parse("Jan", s); err == nil {
		return false
	}
	if _, err := time.Parse("Mon", s); err == nil {
		return false
	}
	return true
}

// ToISODate renders raw as an ISO-8601 UTC timestamp, or nil when it cannot be parsed.
func ToISODate(raw string) *string {
	t, ok := ParseDate(raw)
	if !ok {
		return nil
	}
	s := t.UTC().Format(ISOLayout)
	return &s
}
