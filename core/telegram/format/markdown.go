package format

import (
	"regexp"
	"strings"
)

// Specials is the set of characters the Telegram Markdown renderer treats
// as syntax. Every one of them must be escaped to appear literally.
const Specials = "_*[]()~`>#+-=|{}.!"

const (
	// TextLimit is the hard Telegram limit for a single message payload.
	TextLimit = 4096
	// truncateAt leaves room for the ellipsis below TextLimit.
	truncateAt = 4090
	// Ellipsis marks truncated output.
	Ellipsis = "..."
)

// specialsClass escapes the hyphen explicitly: QuoteMeta leaves it alone,
// which would turn the class into a character range.
var specialsClass = strings.ReplaceAll(regexp.QuoteMeta(Specials), "-", `\-`)

var (
	escapeRe = regexp.MustCompile("([" + specialsClass + "])")
	stripRe  = regexp.MustCompile("[" + specialsClass + "]")
)

// EscapeMarkdown prefixes every markdown-significant character with a
// backslash so untrusted text can be interpolated into a template.
// Callers escape each field exactly once, at template-construction time.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	return escapeRe.ReplaceAllString(text, `\$1`)
}

// StripMarkdown removes every markdown-significant character outright.
// Used on the plain-text fallback path when formatted delivery fails.
func StripMarkdown(text string) string {
	if text == "" {
		return ""
	}
	return stripRe.ReplaceAllString(text, "")
}

// Truncate caps text at limit runes, replacing the tail with an ellipsis.
// With the default TextLimit the result is 4090 runes plus "...".
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := limit - (TextLimit - truncateAt)
	if cut < 0 {
		cut = 0
	}
	return string(runes[:cut]) + Ellipsis
}
