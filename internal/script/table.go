// Package script holds the Baybayin glyph table and the Baybayin to Latin decoder.
package script

import (
	"sort"
	"strings"
)

// Class groups glyphs by how the decoder treats them.
type Class int

const (
	ClassVowel Class = iota
	ClassConsonantSyllable
	ClassModifier
)

func (c Class) String() string {
	switch c {
	case ClassVowel:
		return "vowel"
	case ClassConsonantSyllable:
		return "syllable"
	case ClassModifier:
		return "modifier"
	default:
		return "unknown"
	}
}

// Mapping ties one glyph to its canonical Latin fragment.
//
// For consonant syllables Latin carries the inherent "a" (ka, nga). For
// modifiers Latin is the vowel the mark substitutes ("" for the virama) and
// Label names the mark in diagnostics.
type Mapping struct {
	Glyph      rune
	Latin      string
	Alternates []string
	Class      Class
	Label      string
}

// Consonant returns the syllable fragment without its inherent vowel.
func (m Mapping) Consonant() string {
	if m.Class != ClassConsonantSyllable {
		return ""
	}
	return strings.TrimSuffix(m.Latin, "a")
}

const (
	KudlitI rune = 'ᜒ'
	KudlitU rune = 'ᜓ'
	Virama  rune = '᜔'
)

var table = []Mapping{
	{Glyph: 'ᜀ', Latin: "a", Class: ClassVowel},
	{Glyph: 'ᜁ', Latin: "i", Alternates: []string{"e"}, Class: ClassVowel},
	{Glyph: 'ᜂ', Latin: "u", Alternates: []string{"o"}, Class: ClassVowel},

	{Glyph: 'ᜃ', Latin: "ka", Class: ClassConsonantSyllable},
	{Glyph: 'ᜄ', Latin: "ga", Class: ClassConsonantSyllable},
	{Glyph: 'ᜅ', Latin: "nga", Class: ClassConsonantSyllable},
	{Glyph: 'ᜆ', Latin: "ta", Class: ClassConsonantSyllable},
	{Glyph: 'ᜇ', Latin: "da", Class: ClassConsonantSyllable},
	{Glyph: 'ᜈ', Latin: "na", Class: ClassConsonantSyllable},
	{Glyph: 'ᜉ', Latin: "pa", Class: ClassConsonantSyllable},
	{Glyph: 'ᜊ', Latin: "ba", Class: ClassConsonantSyllable},
	{Glyph: 'ᜋ', Latin: "ma", Class: ClassConsonantSyllable},
	{Glyph: 'ᜌ', Latin: "ya", Class: ClassConsonantSyllable},
	{Glyph: 'ᜍ', Latin: "ra", Class: ClassConsonantSyllable},
	{Glyph: 'ᜎ', Latin: "la", Class: ClassConsonantSyllable},
	{Glyph: 'ᜏ', Latin: "wa", Class: ClassConsonantSyllable},
	{Glyph: 'ᜐ', Latin: "sa", Class: ClassConsonantSyllable},
	{Glyph: 'ᜑ', Latin: "ha", Class: ClassConsonantSyllable},

	{Glyph: KudlitI, Latin: "i", Alternates: []string{"e"}, Class: ClassModifier, Label: "kudlit-i"},
	{Glyph: KudlitU, Latin: "u", Alternates: []string{"o"}, Class: ClassModifier, Label: "kudlit-u"},
	{Glyph: Virama, Latin: "", Class: ClassModifier, Label: "virama"},
}

var byGlyph = func() map[rune]Mapping {
	m := make(map[rune]Mapping, len(table))
	for _, entry := range table {
		if _, dup := m[entry.Glyph]; dup {
			panic("script: duplicate glyph in table: " + string(entry.Glyph))
		}
		m[entry.Glyph] = entry
	}
	return m
}()

var byLatin = func() map[string]rune {
	m := map[string]rune{}
	for _, entry := range table {
		if entry.Class == ClassModifier {
			continue
		}
		if _, ok := m[entry.Latin]; !ok {
			m[entry.Latin] = entry.Glyph
		}
		for _, alt := range entry.Alternates {
			if _, ok := m[alt]; !ok {
				m[alt] = entry.Glyph
			}
		}
	}
	return m
}()

// Lookup returns the table entry for a glyph.
func Lookup(r rune) (Mapping, bool) {
	m, ok := byGlyph[r]
	return m, ok
}

// Table returns a copy of the glyph table in code point order.
func Table() []Mapping {
	out := make([]Mapping, len(table))
	copy(out, table)
	sort.Slice(out, func(i, j int) bool { return out[i].Glyph < out[j].Glyph })
	return out
}

// GlyphFor returns the base glyph whose canonical or alternate fragment is latin.
// Modifiers are not returned.
func GlyphFor(latin string) (rune, bool) {
	r, ok := byLatin[strings.ToLower(latin)]
	return r, ok
}

// IsBaybayin reports whether r is in the Unicode Tagalog block.
func IsBaybayin(r rune) bool {
	return r >= '\u1700' && r <= '\u171f'
}

// ContainsBaybayin reports whether s has at least one Tagalog block code point.
func ContainsBaybayin(s string) bool {
	for _, r := range s {
		if IsBaybayin(r) {
			return true
		}
	}
	return false
}
