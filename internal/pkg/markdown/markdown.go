// Package markdown renders post bodies for plain-text excerpt derivation.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	md      = goldmark.New()
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// PlainText renders markdown source and strips the resulting HTML tags,
// collapsing whitespace into single spaces.
func PlainText(source string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return strings.TrimSpace(source)
	}
	text := tagRe.ReplaceAllString(buf.String(), " ")
	text = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'").Replace(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// Excerpt derives a short plain-text excerpt from markdown content,
// truncated to max runes.
func Excerpt(source string, max int) string {
	text := PlainText(source)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
