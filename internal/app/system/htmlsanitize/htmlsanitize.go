// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce sync.Once
	ugc     *bluemonday.Policy

	strictOnce sync.Once
	strict     *bluemonday.Policy
)

// ugcPolicy is bluemonday's UGC policy plus table markup and class/style on
// table cells, which the content editors paste in from office documents.
func ugcPolicy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption", "colgroup", "col")
		p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("td", "th")
		p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("table", "tr", "td", "th")
		p.AllowStyles("text-align", "width").OnElements("table", "td", "th")
		p.AllowElements("u", "s", "mark")
		ugc = p
	})
	return ugc
}

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() { strict = bluemonday.StrictPolicy() })
	return strict
}

// Sanitize removes unsafe markup from free text while keeping formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy().Sanitize(s)
}

// CleanText prepares free text for storage. Plain text is stored as typed,
// so "A & B" and "GPA < 2.0" come back unchanged; text carrying markup is
// run through Sanitize.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if IsPlainText(s) {
		return s
	}
	return Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// StripTags removes all markup, returning plain text. Entities produced by
// the policy are decoded so "R&D" stays "R&D" in storage.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

var tagPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !tagPattern.MatchString(s)
}

// PlainTextToHTML escapes s and turns newlines into <br>.
func PlainTextToHTML(s string) template.HTML {
	if s == "" {
		return ""
	}
	esc := template.HTMLEscapeString(s)
	esc = strings.ReplaceAll(esc, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(esc, "\n", "<br>"))
}

// PrepareForDisplay renders stored text: markup is sanitized, plain text has
// its line breaks preserved.
func PrepareForDisplay(s string) template.HTML {
	if IsPlainText(s) {
		return PlainTextToHTML(s)
	}
	return SanitizeToHTML(s)
}
