package script

import "strings"

// NoContent is returned by Decode when the input produces no output at all.
const NoContent = "(no content)"

// Result is the decoded text plus counters describing how it was produced.
type Result struct {
	Text            string
	Glyphs          int
	PassedThrough   int
	OrphanModifiers int
}

// Empty reports whether decoding produced nothing and Text holds NoContent.
func (r Result) Empty() bool {
	return r.Text == NoContent
}

// Decode converts Baybayin text to Latin. It never fails: unmapped code points
// are copied through unchanged and a modifier without a preceding syllable is
// rendered as a bracketed label such as "[virama]".
func Decode(text string) string {
	return DecodeDetailed(text).Text
}

// DecodeDetailed is Decode with counters for reporting.
func DecodeDetailed(text string) Result {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	var res Result

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		m, ok := byGlyph[r]
		if !ok {
			b.WriteRune(r)
			res.PassedThrough++
			continue
		}
		switch m.Class {
		case ClassVowel:
			b.WriteString(m.Latin)
			res.Glyphs++
		case ClassConsonantSyllable:
			res.Glyphs++
			if i+1 < len(runes) {
				if mod, ok := byGlyph[runes[i+1]]; ok && mod.Class == ClassModifier {
					b.WriteString(m.Consonant())
					b.WriteString(mod.Latin)
					res.Glyphs++
					i++
					continue
				}
			}
			b.WriteString(m.Latin)
		case ClassModifier:
			b.WriteString("[" + m.Label + "]")
			res.OrphanModifiers++
		}
	}

	res.Text = b.String()
	if res.Text == "" {
		res.Text = NoContent
	}
	return res
}
