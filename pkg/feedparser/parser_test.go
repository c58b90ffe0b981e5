package feedparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

const rssSample = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example</title>
  <item>
    <title><![CDATA[Go 1.24 &amp; friends]]></title>
    <link>https://example.com/go-124</link>
    <description><![CDATA[<p>Release <b>notes</b> &amp; more</p><img src="https://example.com/a.png">]]></description>
    <pubDate>Tue, 11 Feb 2025 10:00:00 GMT</pubDate>
    <category>Go</category>
    <category>go</category>
    <category><![CDATA[Releases]]></category>
    <dc:creator>Gopher</dc:creator>
  </item>
  <item>
    <title>Second &#8211; post &#x41;</title>
    <guid isPermaLink="true">https://example.com/second</guid>
    <description>&lt;p&gt;Escaped&lt;/p&gt;</description>
  </item>
  <item>
    <description>No title or link here</description>
  </item>
</channel>
</rss>`

func TestParseRSS(t *testing.T) {
	res, err := Parse(rssSample, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Format != FormatRSS {
		t.Fatalf("expected rss format, got %q", res.Format)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(res.Items), res.Items)
	}

	first := res.Items[0]
	if first.Title != "Go 1.24 & friends" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Link != "https://example.com/go-124" {
		t.Fatalf("unexpected link %q", first.Link)
	}
	if first.Summary != "Release notes & more" {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	if !strings.Contains(first.RawSummary, `<img src="https://example.com/a.png">`) {
		t.Fatalf("raw summary lost markup: %q", first.RawSummary)
	}
	if first.PublishedAt != "Tue, 11 Feb 2025 10:00:00 GMT" {
		t.Fatalf("unexpected date %q", first.PublishedAt)
	}
	if got := strings.Join(first.Categories, ","); got != "Go,Releases" {
		t.Fatalf("unexpected categories %q", got)
	}
	if first.Author != "Gopher" {
		t.Fatalf("unexpected author %q", first.Author)
	}

	second := res.Items[1]
	if second.Title != "Second – post A" {
		t.Fatalf("unexpected decoded title %q", second.Title)
	}
	if second.Link != "https://example.com/second" {
		t.Fatalf("expected guid fallback link, got %q", second.Link)
	}
	if second.Summary != "Escaped" {
		t.Fatalf("unexpected summary %q", second.Summary)
	}
}

const atomSample = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Blog</title>
  <entry>
    <title type="html">First</title>
    <link rel="self" href="https://example.com/self/1"/>
    <link rel="alternate" type="text/html" href="https://example.com/posts/1"/>
    <updated>2025-01-02T03:04:05Z</updated>
    <published>2025-01-01T00:00:00Z</published>
    <summary></summary>
    <content type="html">&lt;p&gt;Body text&lt;/p&gt;</content>
    <category term="react" label="React"/>
    <category label="Frontend"></category>
    <author><name>Dan</name><email>dan@example.com</email></author>
  </entry>
  <entry>
    <title>Second</title>
    <link href='https://example.com/posts/2'/>
    <published>2025-01-03T00:00:00Z</published>
  </entry>
  <entry>
    <title>Truncated</title>
    <link href="https://example.com/posts/3"/>
`

func TestParseAtomToleratesTruncatedEntry(t *testing.T) {
	res, err := Parse(atomSample, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Format != FormatAtom {
		t.Fatalf("expected atom, got %q", res.Format)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 complete entries, got %d", len(res.Items))
	}

	first := res.Items[0]
	if first.Link != "https://example.com/posts/1" {
		t.Fatalf("expected alternate link, got %q", first.Link)
	}
	if first.PublishedAt != "2025-01-02T03:04:05Z" {
		t.Fatalf("expected updated date, got %q", first.PublishedAt)
	}
	if first.Summary != "Body text" {
		t.Fatalf("expected content fallback, got %q", first.Summary)
	}
	if got := strings.Join(first.Categories, ","); got != "react,Frontend" {
		t.Fatalf("unexpected categories %q", got)
	}
	if first.Author != "Dan" {
		t.Fatalf("unexpected author %q", first.Author)
	}

	second := res.Items[1]
	if second.Link != "https://example.com/posts/2" {
		t.Fatalf("expected href fallback, got %q", second.Link)
	}
	if second.PublishedAt != "2025-01-03T00:00:00Z" {
		t.Fatalf("expected published fallback, got %q", second.PublishedAt)
	}
}

func TestParseAtomLinkInnerTextFallback(t *testing.T) {
	doc := `<feed><entry><title>x</title><link>https://example.com/inner</link></entry></feed>`
	res, err := Parse(doc, 5)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Link != "https://example.com/inner" {
		t.Fatalf("unexpected items %+v", res.Items)
	}
}

func TestParseHonoursLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("<rss><channel>")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "<item><title>Post %d</title><link>https://example.com/%d</link></item>", i, i)
	}
	b.WriteString("</channel></rss>")

	res, err := Parse(b.String(), 3)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(res.Items))
	}
	if res.Items[2].Title != "Post 2" {
		t.Fatalf("unexpected order %+v", res.Items)
	}
}

func TestParseScansOnlyTwiceLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("<rss><channel>")
	for i := 0; i < 4; i++ {
		b.WriteString("<item><description>empty</description></item>")
	}
	b.WriteString("<item><title>Late</title></item></channel></rss>")

	res, err := Parse(b.String(), 2)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected scan cap to exclude late item, got %+v", res.Items)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("   \n", 10); !errors.Is(err, ErrEmptyFeed) {
		t.Fatalf("expected ErrEmptyFeed, got %v", err)
	}
	if _, err := Parse("<html><body>hello</body></html>", 10); !errors.Is(err, ErrNotAFeed) {
		t.Fatalf("expected ErrNotAFeed, got %v", err)
	}
	res, err := Parse("<rss><channel><title>quiet</title></channel></rss>", 10)
	if err != nil || len(res.Items) != 0 {
		t.Fatalf("expected empty result for feed with no items, got %+v %v", res, err)
	}
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"<item",
		"<item><title>",
		"<entry><link href=\"unterminated",
		"<rss><item><title>x</title><category term='a",
		"&#xZZ; &#99999999; <<<>>>",
		"<feed><entry><author><name></author></entry>",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on %q: %v", in, r)
				}
			}()
			_, _ = Parse(in, 5)
		}()
	}
}

func TestDecodeEntities(t *testing.T) {
	cases := map[string]string{
		"a &amp; b":         "a & b",
		"&lt;tag&gt;":       "<tag>",
		"&quot;q&quot;":     `"q"`,
		"it&apos;s":         "it's",
		"&#65;&#x42;":       "AB",
		"&amp;lt;":          "&lt;",
		"&#1114112; stays":  "&#1114112; stays",
		"&unknown; & alone": "&unknown; & alone",
	}
	for in, want := range cases {
		if got := decodeEntities(in); got != want {
			t.Fatalf("decodeEntities(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseAttrs(t *testing.T) {
	attrs := parseAttrs(`rel="alternate" HREF='https://x.test/?a=1&amp;b=2' hidden data=raw`)
	if attrs["rel"] != "alternate" {
		t.Fatalf("rel = %q", attrs["rel"])
	}
	if attrs["href"] != "https://x.test/?a=1&b=2" {
		t.Fatalf("href = %q", attrs["href"])
	}
	if _, ok := attrs["hidden"]; !ok {
		t.Fatalf("expected bare attribute")
	}
	if attrs["data"] != "raw" {
		t.Fatalf("data = %q", attrs["data"])
	}
}

func TestParseMediaImage(t *testing.T) {
	doc := `<rss><channel>
<item><title>a</title><enclosure url="https://x.test/a.mp3" type="audio/mpeg"/><enclosure url="https://x.test/a.jpg" type="image/jpeg"/></item>
<item><title>b</title><media:content url="https://x.test/b.mp4" type="video/mp4"/><media:thumbnail url="https://x.test/b.png"/></item>
<item><title>c</title></item>
</channel></rss>`
	res, err := Parse(doc, 10)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"https://x.test/a.jpg", "https://x.test/b.png", ""}
	for i, w := range want {
		if res.Items[i].ImageURL != w {
			t.Fatalf("item %d image = %q, want %q", i, res.Items[i].ImageURL, w)
		}
	}
}
