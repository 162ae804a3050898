package widget

import (
	"html"
	"regexp"
)

var (
	boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emPattern   = regexp.MustCompile(`\*(.*?)\*`)
	// stops at '<' so a link never swallows a closing tag added above
	urlPattern = regexp.MustCompile(`(https?://[^\s<]+)`)
)

// FormatMessage escapes text and then applies the inline markup: **bold**,
// *em* and bare http(s) links, in that order.
func FormatMessage(text string) string {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = emPattern.ReplaceAllString(out, "<em>$1</em>")
	out = urlPattern.ReplaceAllString(out, `<a href="$1" target="_blank" rel="noopener noreferrer">$1</a>`)
	return out
}
