// Package markup renders inline underline and strikethrough spans with
// combining characters, since the chat client shows no rich text.
package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	TagUnderline     = "uline"
	TagStrikethrough = "cross"

	// MarkerUnderline is U+0332 COMBINING LOW LINE.
	MarkerUnderline = "\u0332"

	// MarkerStrikethrough is U+0336 COMBINING LONG STROKE OVERLAY.
	MarkerStrikethrough = "\u0336"
)

// Transformer rewrites `<prefix>TAG body <prefix>TAG` spans. Both tags of a
// span must agree and the body is matched lazily with at least one character.
type Transformer struct {
	re *regexp.Regexp
}

func NewTransformer(prefix string) *Transformer {
	p := regexp.QuoteMeta(prefix)
	expr := p + "(?:" +
		TagUnderline + "(.+?)" + p + TagUnderline + "|" +
		TagStrikethrough + "(.+?)" + p + TagStrikethrough + ")"
	return &Transformer{re: regexp.MustCompile(expr)}
}

// Transform returns the rewritten text and whether any span matched.
func (t *Transformer) Transform(text string) (string, bool) {
	matches := t.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, false
	}

	var b strings.Builder
	b.Grow(len(text) * 2)
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		switch {
		case m[2] >= 0:
			b.WriteString(Merge(text[m[2]:m[3]], MarkerUnderline))
		case m[4] >= 0:
			b.WriteString(Merge(text[m[4]:m[5]], MarkerStrikethrough))
		}
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), true
}

// Merge puts marker before every rune of body and once more at the end.
func Merge(body, marker string) string {
	var b strings.Builder
	b.Grow(len(body) + (len(body)+1)*len(marker))
	for i := 0; i < len(body); {
		_, size := utf8.DecodeRuneInString(body[i:])
		b.WriteString(marker)
		b.WriteString(body[i : i+size])
		i += size
	}
	b.WriteString(marker)
	return b.String()
}
