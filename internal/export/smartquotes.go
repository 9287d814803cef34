package export

import (
	"strings"
	"unicode"
)

// Smarten converts typewriter punctuation in HTML prose to typographic
// punctuation: curly quotes, en and em dashes, and ellipses. Characters
// inside tags and attribute values are left alone.
func Smarten(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	runes := []rune(s)
	inTag := false
	var prev rune

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '<':
			inTag = true
			out.WriteRune(r)
		case r == '>':
			inTag = false
			out.WriteRune(r)
		case inTag:
			out.WriteRune(r)
			continue
		case r == '-' && i+2 < len(runes) && runes[i+1] == '-' && runes[i+2] == '-':
			out.WriteRune('—')
			i += 2
			r = '—'
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			out.WriteRune('–')
			i++
			r = '–'
		case r == '.' && i+2 < len(runes) && runes[i+1] == '.' && runes[i+2] == '.':
			out.WriteRune('…')
			i += 2
			r = '…'
		case r == '"':
			if opensQuote(prev) {
				r = '“'
			} else {
				r = '”'
			}
			out.WriteRune(r)
		case r == '\'':
			if opensQuote(prev) && i+1 < len(runes) && unicode.IsLetter(runes[i+1]) && !isContractionStart(runes, i) {
				r = '‘'
			} else {
				r = '’'
			}
			out.WriteRune(r)
		default:
			out.WriteRune(r)
		}
		if !inTag {
			prev = r
		}
	}
	return out.String()
}

// opensQuote reports whether a quote following prev starts quoted text.
func opensQuote(prev rune) bool {
	switch prev {
	case 0, ' ', '\t', '\n', '(', '[', '—', '–', '>':
		return true
	}
	return false
}

// isContractionStart recognizes decade and elision apostrophes like '90s
// and 'twas, which want a closing-quote glyph.
func isContractionStart(runes []rune, i int) bool {
	if i+1 >= len(runes) {
		return false
	}
	rest := string(runes[i+1:])
	for _, word := range []string{"tis", "twas", "em ", "til "} {
		if strings.HasPrefix(rest, word) {
			return true
		}
	}
	return false
}
