package service

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// Sanitize escapes HTML-significant characters so the value is safe to
// interpolate into markup.
func Sanitize(s string) string {
	return htmlEscaper.Replace(s)
}
