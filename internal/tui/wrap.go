package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// buildStyledRunes styles decoded Latin text. Bracketed orphan-mark labels
// such as "[kudlit-i]" are rendered as warnings, and the empty-result sentinel
// is rendered muted.
func buildStyledRunes(decoded string, empty bool) []styledRune {
	out := make([]styledRune, 0, len(decoded))
	inLabel := false
	for _, r := range decoded {
		style := latinStyle
		switch {
		case empty:
			style = mutedStyle
		case r == '[':
			inLabel = true
			style = warnStyle
		case r == ']' && inLabel:
			inLabel = false
			style = warnStyle
		case inLabel:
			style = warnStyle
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ' && !inLabel,
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks runes into lines of at most width columns, preferring
// to break at the last space. A word longer than width is split mid-word.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	flush := func(upTo int, skip int) {
		out.WriteString(renderStyledRunes(line[:upTo]))
		out.WriteRune('\n')
		line = append([]styledRune{}, line[skip:]...)
		lineWidth = 0
		lastSpace = -1
		for i, item := range line {
			lineWidth += item.width
			if item.isSpace {
				lastSpace = i
			}
		}
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				flush(lastSpace, lastSpace+1)
			} else {
				flush(len(line), len(line))
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}
