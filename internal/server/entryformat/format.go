// Package entryformat converts letter answers between their stored string
// form and the rich-text body + signature pair shown to partners.
package entryformat

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

// Format tells how a stored answer was interpreted.
type Format string

const (
	FormatStructured Format = "structured"
	FormatLegacyText Format = "legacyPlainText"
)

// Answer is a decoded letter answer.
type Answer struct {
	BodyHTML  string `json:"bodyHtml"`
	Signature string `json:"signature"`
	Format    Format `json:"format"`
}

type stored struct {
	BodyHTML  string `json:"bodyHtml"`
	Signature string `json:"signature"`
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five markup-significant characters.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// PlainTextToHTML escapes s and turns newlines into <br /> tags.
func PlainTextToHTML(s string) string {
	return strings.ReplaceAll(EscapeHTML(s), "\n", "<br />")
}

var (
	breakTag     = regexp.MustCompile(`(?i)<br\s*/?>`)
	paragraphEnd = regexp.MustCompile(`(?i)</p>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
)

// HTMLToPlainText is a best-effort reduction of a rich-text body to plain
// text: line breaks and paragraph ends become newlines, tags are dropped
// and entities decoded.
func HTMLToPlainText(s string) string {
	if s == "" {
		return ""
	}
	s = breakTag.ReplaceAllString(s, "\n")
	s = paragraphEnd.ReplaceAllString(s, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(html.UnescapeString(s))
}

// Serialize encodes body and signature into the stored structured form.
func Serialize(bodyHTML, signature string) string {
	b, err := json.Marshal(stored{BodyHTML: bodyHTML, Signature: signature})
	if err != nil {
		// Marshalling two strings cannot fail.
		panic(err)
	}
	return string(b)
}

// Parse decodes a stored answer. Values that are not a JSON object with a
// string bodyHtml are treated as legacy plain text. Parse never fails.
func Parse(raw string) Answer {
	if raw == "" {
		return Answer{Format: FormatLegacyText}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		if body, ok := jsonString(obj["bodyHtml"]); ok {
			signature, _ := jsonString(obj["signature"])
			return Answer{BodyHTML: body, Signature: signature, Format: FormatStructured}
		}
	}

	return Answer{BodyHTML: PlainTextToHTML(raw), Format: FormatLegacyText}
}

// jsonString decodes raw only when it holds a JSON string; null, numbers
// and objects are rejected.
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
