// Package recipediff compares recipe versions field by field and renders
// word-level differences.
package recipediff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Part is one run of a word diff. Unchanged text has neither flag set.
type Part struct {
	Value   string `json:"value"`
	Added   bool   `json:"added,omitempty"`
	Removed bool   `json:"removed,omitempty"`
}

var dmp = func() *diffmatchpatch.DiffMatchPatch {
	d := diffmatchpatch.New()
	d.DiffTimeout = 0
	return d
}()

// Words diffs two texts at word granularity. Words, whitespace runs and
// single punctuation marks are the units; a change never splits a word.
func Words(oldText, newText string) []Part {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Part{{Value: oldText}}
	}

	var t tokenTable
	a := t.encode(oldText)
	b := t.encode(newText)

	diffs := dmp.DiffMainRunes(a, b, false)

	parts := make([]Part, 0, len(diffs))
	for _, d := range diffs {
		p := Part{Value: t.decode(d.Text)}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			p.Added = true
		case diffmatchpatch.DiffDelete:
			p.Removed = true
		}
		if p.Value == "" {
			continue
		}
		if n := len(parts); n > 0 && parts[n-1].Added == p.Added && parts[n-1].Removed == p.Removed {
			parts[n-1].Value += p.Value
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

// Texts rebuilds the old and new texts from a diff.
func Texts(parts []Part) (oldText, newText string) {
	var o, n strings.Builder
	for _, p := range parts {
		if !p.Added {
			o.WriteString(p.Value)
		}
		if !p.Removed {
			n.WriteString(p.Value)
		}
	}
	return o.String(), n.String()
}

// tokenTable maps each distinct token to a rune so the character differ can
// work on whole words.
type tokenTable struct {
	tokens []string
	index  map[string]rune
}

func (t *tokenTable) encode(text string) []rune {
	if t.index == nil {
		t.index = make(map[string]rune)
	}
	var out []rune
	for _, tok := range tokenize(text) {
		r, ok := t.index[tok]
		if !ok {
			r = indexRune(len(t.tokens))
			t.tokens = append(t.tokens, tok)
			t.index[tok] = r
		}
		out = append(out, r)
	}
	return out
}

func (t *tokenTable) decode(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(t.tokens[runeIndex(r)])
	}
	return b.String()
}

// Surrogates do not survive a round trip through string.
const (
	surrogateMin = 0xD800
	surrogateLen = 0x800
)

func indexRune(i int) rune {
	if i >= surrogateMin {
		i += surrogateLen
	}
	return rune(i)
}

func runeIndex(r rune) int {
	i := int(r)
	if i >= surrogateMin+surrogateLen {
		i -= surrogateLen
	}
	return i
}

func tokenize(text string) []string {
	var tokens []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		j := i + 1
		switch {
		case isWordRune(runes[i]):
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
		case unicode.IsSpace(runes[i]):
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
		}
		tokens = append(tokens, string(runes[i:j]))
		i = j
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '_'
}
