// Package content turns raw extracted HTML into a sanitized, renderable
// document and defines the paragraph index that highlights anchor to.
package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = buildPolicy()

// buildPolicy constructs the bluemonday policy for article content: a
// bounded structural allowlist plus iframe embeds with their harmless
// presentation attributes.
func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	// Structural elements
	p.AllowElements("article", "section", "div", "p", "span", "br", "hr")

	// Headings
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")

	// Lists
	p.AllowElements("ul", "ol", "li")

	// Quotes and code
	p.AllowElements("blockquote", "pre", "code")

	// Tables
	p.AllowElements("table", "thead", "tbody", "tr", "td", "th", "caption")

	// Figures
	p.AllowElements("figure", "figcaption")

	// Text formatting
	p.AllowElements("b", "strong", "i", "em", "u", "s", "del", "ins", "sub", "sup")

	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	p.AllowElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowElements("img")

	// Embeds (video iframes survive sanitization in the original)
	p.AllowAttrs("src", "allow", "allowfullscreen", "frameborder", "scrolling").OnElements("iframe")
	p.AllowElements("iframe")

	return p
}

// Sanitize strips scripts, event handlers and everything outside the tag
// allowlist from raw HTML. The result is the article's content snapshot:
// a pure function of the input, so re-sanitizing identical input always
// yields an identical paragraph index.
func Sanitize(raw string) string {
	return strings.TrimSpace(policy.Sanitize(raw))
}

// StripText removes all tags from an HTML fragment and collapses whitespace
// runs to single spaces. script/style/noscript bodies are dropped.
func StripText(raw string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))

	depthSkip := 0
	for {
		switch tt := z.Next(); tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if skipTag(name) {
				depthSkip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skipTag(name) && depthSkip > 0 {
				depthSkip--
			}
		case html.TextToken:
			if depthSkip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skipTag(name []byte) bool {
	switch string(name) {
	case "script", "style", "noscript":
		return true
	}
	return false
}
