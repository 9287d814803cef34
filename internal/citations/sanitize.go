package citations

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Tags allowed to survive sanitization. Spans are handled separately since
// only two attribute shapes are permitted.
var allowedTags = map[string]bool{
	"p":  true,
	"em": true,
	"b":  true,
	"ol": true,
	"li": true,
}

var allowedParagraphClasses = map[string]bool{
	"part-header":   true,
	"section-break": true,
	"disposition":   true,
	"opinion-break": true,
}

// Sanitize reduces opinion HTML to the court's markup allow-list: p (with a
// recognized class only), em, b, ol, li, span.small-caps, and citation spans
// carrying data-cite-docket. Disallowed tags are unwrapped, keeping their
// text. Text nodes are NFC-normalized.
func Sanitize(opinionHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(opinionHTML))
	var out strings.Builder
	// Per-tag stack of keep/unwrap decisions so end tags mirror their
	// start tag's fate under nesting.
	kept := make(map[string][]bool)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return out.String()
		case html.TextToken:
			out.WriteString(escapeText(norm.NFC.String(string(tokenizer.Text()))))
		case html.StartTagToken:
			token := tokenizer.Token()
			keep := writeStartTag(&out, token)
			kept[token.Data] = append(kept[token.Data], keep)
		case html.SelfClosingTagToken:
			// Nothing on the allow-list is self-closing; drop it.
		case html.EndTagToken:
			token := tokenizer.Token()
			stack := kept[token.Data]
			if len(stack) == 0 {
				continue
			}
			keep := stack[len(stack)-1]
			kept[token.Data] = stack[:len(stack)-1]
			if keep {
				out.WriteString("</" + token.Data + ">")
			}
		}
	}
}

// writeStartTag emits the sanitized form of a start tag and reports whether
// the tag was kept (so its end tag should be emitted too).
func writeStartTag(out *strings.Builder, token html.Token) bool {
	switch token.Data {
	case "p":
		if class := attrValue(token, "class"); allowedParagraphClasses[class] {
			out.WriteString(`<p class="` + class + `">`)
		} else {
			out.WriteString("<p>")
		}
		return true
	case "em", "b", "ol", "li":
		out.WriteString("<" + token.Data + ">")
		return true
	case "span":
		if docket := strings.TrimSpace(attrValue(token, "data-cite-docket")); docket != "" {
			out.WriteString(`<span data-cite-docket="` + html.EscapeString(docket) + `">`)
			return true
		}
		if attrValue(token, "class") == "small-caps" {
			out.WriteString(`<span class="small-caps">`)
			return true
		}
		return false
	default:
		return false
	}
}

// escapeText escapes markup-significant characters only, leaving quotes and
// apostrophes as written prose.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(text string) string {
	return textEscaper.Replace(text)
}

func attrValue(token html.Token, key string) string {
	for _, attr := range token.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
