// Package sanitize turns user authored text into HTML that is safe to render.
package sanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc     = bluemonday.UGCPolicy()
	tagLike = regexp.MustCompile(`<[A-Za-z/!][^>]*>`)
)

// HTML removes scripts, event handlers and other unsafe markup.
func HTML(s string) template.HTML {
	return template.HTML(ugc.Sanitize(s)) //nolint:gosec // sanitized above
}

// NL2BR escapes plain text and turns line breaks into <br>.
func NL2BR(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")

	return template.HTML(strings.ReplaceAll(html.EscapeString(s), "\n", "<br>\n")) //nolint:gosec // escaped above
}

// HasTags reports whether the text contains markup.
func HasTags(s string) bool {
	return tagLike.MatchString(s)
}

// Body renders a FAQ or story body: text starting with "<" is HTML, anything else is plain text.
func Body(s string) template.HTML {
	if strings.HasPrefix(strings.TrimSpace(s), "<") {
		return HTML(s)
	}

	return NL2BR(s)
}

// Text renders a journal body: plain text unless it contains markup.
func Text(s string) template.HTML {
	if HasTags(s) {
		return HTML(s)
	}

	return NL2BR(s)
}
