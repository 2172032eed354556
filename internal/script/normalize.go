package script

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Direction is the transliteration direction requested by a caller.
type Direction string

const (
	ToBaybayin Direction = "to_baybayin"
	ToLatin    Direction = "to_latin"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	return d == ToBaybayin || d == ToLatin
}

type substitution struct {
	from string
	to   string
}

// Letters outside the native alphabet, rewritten before text is sent for
// Latin to Baybayin conversion.
var foreignLetters = []substitution{
	{"ñ", "ny"},
	{"c", "k"},
	{"f", "p"},
	{"j", "dy"},
	{"q", "k"},
	{"v", "b"},
	{"x", "ks"},
	{"z", "s"},
}

var lower = cases.Lower(language.Und)

// Normalize prepares text for transliteration and reports what it changed.
// Text is NFC-normalized and lowercased; digits and characters that are neither
// a-z, Baybayin, nor whitespace are removed. For ToBaybayin, foreign letters
// are first rewritten to native spellings.
func Normalize(text string, dir Direction) (string, []string) {
	var warnings []string
	s := lower.String(norm.NFC.String(text))

	var digits []string
	s = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			digits = append(digits, string(r))
			return -1
		}
		return r
	}, s)
	if len(digits) > 0 {
		warnings = append(warnings, "Removed numbers: "+strings.Join(digits, " "))
	}

	var replaced []string
	if dir == ToBaybayin {
		for _, sub := range foreignLetters {
			if strings.Contains(s, sub.from) {
				replaced = append(replaced, fmt.Sprintf("%s -> %s", sub.from, sub.to))
				s = strings.ReplaceAll(s, sub.from, sub.to)
			}
		}
	}

	var special []string
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || IsBaybayin(r) || unicode.IsSpace(r) {
			return r
		}
		special = append(special, string(r))
		return -1
	}, s)
	if len(special) > 0 {
		warnings = append(warnings, "Removed special characters: "+strings.Join(special, " "))
	}
	if len(replaced) > 0 {
		warnings = append(warnings, "Substituted foreign letters: "+strings.Join(replaced, " "))
	}
	return s, warnings
}
