package pattern

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInconsistentPattern means a match captured a key the lookup no longer knows.
var ErrInconsistentPattern = errors.New("pattern matched a key missing from its mapping")

// Pattern matches a prefix immediately followed by one of a fixed set of
// literal keys. On a shared prefix the key listed first wins, since Go's
// regexp alternation is leftmost-first.
type Pattern struct {
	re *regexp.Regexp
}

// Compile builds the alternation for keys. An empty key set yields a Pattern
// that never matches.
func Compile(prefix string, keys []string) *Pattern {
	p := &Pattern{}
	if len(keys) == 0 {
		return p
	}

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	p.re = regexp.MustCompile(regexp.QuoteMeta(prefix) + "(" + strings.Join(quoted, "|") + ")")
	return p
}

func (p *Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Find returns the captured key of the leftmost match.
func (p *Pattern) Find(text string) (string, bool) {
	if p.re == nil {
		return "", false
	}
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Replace substitutes every non-overlapping match with lookup(key), left to
// right, and reports how many matches were replaced.
func (p *Pattern) Replace(text string, lookup func(key string) (string, bool)) (string, int, error) {
	if p.re == nil {
		return text, 0, nil
	}
	matches := p.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, 0, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		key := text[m[2]:m[3]]
		value, ok := lookup(key)
		if !ok {
			return text, 0, ErrInconsistentPattern
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), len(matches), nil
}
