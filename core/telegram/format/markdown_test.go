package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownEscapesEverySpecial(t *testing.T) {
	inputs := []string{
		"plain text",
		"AC/DC - Back In Black (Remastered) [2003]!",
		Specials,
		"under_score *bold* `code` #tag +plus-minus= {brace} |pipe| ~tilde~ > quote",
		"повторяй за мной! (live)",
	}
	for _, in := range inputs {
		out := EscapeMarkdown(in)
		runes := []rune(out)
		for i, r := range runes {
			if !strings.ContainsRune(Specials, r) {
				continue
			}
			require.Greater(t, i, 0, "special %q at start of %q is unescaped", r, out)
			assert.Equal(t, '\\', runes[i-1], "special %q in %q not preceded by backslash", r, out)
		}
	}
}

func TestEscapeMarkdownEmpty(t *testing.T) {
	assert.Equal(t, "", EscapeMarkdown(""))
}

// The class is built from QuoteMeta output; an unescaped hyphen there would
// turn +-= into a character range swallowing digits and punctuation.
func TestEscapeMarkdownLeavesNonSpecialsAlone(t *testing.T) {
	for _, in := range []string{
		"Video 1",
		"0123456789",
		"a,b;c:d<e/f?g@h",
		"текст без разметки",
	} {
		assert.Equal(t, in, EscapeMarkdown(in))
		assert.Equal(t, in, StripMarkdown(in))
	}
}

func TestStripMarkdownRemovesSpecials(t *testing.T) {
	out := StripMarkdown("*bold* _it_ [link](url) `code` #1 + 2 - 3 = 6!")
	for _, r := range Specials {
		assert.NotContains(t, out, string(r))
	}
	assert.Equal(t, "", StripMarkdown(Specials))
	assert.Equal(t, "bold it linkurl code 1  2  3  6", out)
}

func TestTruncateOversized(t *testing.T) {
	long := strings.Repeat("я", TextLimit+500)
	out := Truncate(long, TextLimit)
	runes := []rune(out)
	require.LessOrEqual(t, len(runes), TextLimit)
	assert.Equal(t, 4090+len(Ellipsis), len(runes))
	assert.Equal(t, strings.Repeat("я", 4090), string(runes[:4090]))
	assert.Equal(t, Ellipsis, string(runes[4090:]))
}

func TestTruncateShortTextUntouched(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", TextLimit))
	exact := strings.Repeat("a", TextLimit)
	assert.Equal(t, exact, Truncate(exact, TextLimit))
}
