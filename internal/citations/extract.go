package citations

import (
	"strings"

	"golang.org/x/net/html"

	"gavel/internal/corpus"
)

// Marker is one citation marker found in an opinion body: the docket the
// span names and the introductory signal inferred from the preceding text.
type Marker struct {
	Docket string
	Signal corpus.Signal
}

// Extract walks opinion HTML and collects every span[data-cite-docket]
// marker. Dockets are deduplicated in first-occurrence order; a docket's
// signal is taken from its first occurrence.
func Extract(opinionHTML string) []Marker {
	tokenizer := html.NewTokenizer(strings.NewReader(opinionHTML))
	var preceding strings.Builder
	var markers []Marker
	seen := make(map[string]bool)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF, or a malformed tail; either way return what parsed.
			return markers
		case html.TextToken:
			preceding.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "span" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "data-cite-docket" {
					continue
				}
				docket := strings.TrimSpace(attr.Val)
				if docket == "" || seen[docket] {
					continue
				}
				seen[docket] = true
				markers = append(markers, Marker{
					Docket: docket,
					Signal: inferSignal(preceding.String()),
				})
			}
		}
	}
}

// signalPhrases is ordered longest-first so "but see" wins over "see".
var signalPhrases = []string{"but see", "but cf", "see also", "see", "cf"}

// inferSignal reads the introductory signal (See, See also, Cf., But see,
// But cf.) off the text immediately preceding a citation marker.
func inferSignal(preceding string) corpus.Signal {
	s := strings.ToLower(strings.TrimSpace(preceding))
	s = strings.TrimRight(s, ".,;:")
	s = strings.TrimSpace(s)
	// "See, e.g.," collapses to a bare signal once the qualifier is dropped.
	if trimmed, ok := strings.CutSuffix(s, "e.g"); ok {
		s = strings.TrimSpace(strings.TrimRight(trimmed, ".,;:"))
	}
	for _, phrase := range signalPhrases {
		if !strings.HasSuffix(s, phrase) {
			continue
		}
		boundary := len(s) - len(phrase)
		if boundary > 0 && isWordByte(s[boundary-1]) {
			continue
		}
		return corpus.ParseSignal(phrase)
	}
	return corpus.SignalNone
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
