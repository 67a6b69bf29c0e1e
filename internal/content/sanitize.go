package content

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// youtubeEmbedSrc is the only src an iframe may carry after sanitization.
var youtubeEmbedSrc = regexp.MustCompile(`^https://(?:www\.)?youtube(?:-nocookie)?\.com/embed/[A-Za-z0-9_-]+(?:\?[A-Za-z0-9_&=%-]*)?$`)

// newPolicy builds the allowlist sanitizer policy. Everything not named
// here is stripped, which is what removes data-* attributes, on* event
// handlers and javascript: URLs without enumerating them.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "hr",
		"b", "i", "strong", "em", "del", "s", "u", "sub", "sup",
		"blockquote", "pre", "code",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tr", "th", "td",
		"div", "span",
	)
	p.AllowAttrs("class").OnElements("div", "p", "span", "code")

	p.AllowURLSchemes("http", "https", "mailto", "tel", "ftp")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)

	p.AllowAttrs("href", "title", "target").OnElements("a")
	p.AllowAttrs("src", "alt", "title", "width", "height").OnElements("img")

	// An iframe whose src fails the pattern loses the attribute and, having
	// none left, the element itself.
	p.AllowAttrs("src").Matching(youtubeEmbedSrc).OnElements("iframe")
	p.AllowAttrs("title", "width", "height", "allow", "allowfullscreen", "frameborder", "sandbox").OnElements("iframe")

	p.SkipElementsContent("script", "style")

	return p
}
