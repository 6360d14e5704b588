package sink

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"text/template"
	"unicode/utf8"
)

const (
	fontSize      = 12.0
	fontWidth     = 0.59 // average glyph width as a fraction of font size
	labelEllipsis = ".."
)

// FitLabel shortens name so it fits in a frame of the given width, using
// the same rule as the embedded zoom script: nothing below two glyphs of
// room, otherwise as many characters as fit with a ".." suffix.
func FitLabel(name string, width, textOffset float64) string {
	avail := width - textOffset
	charWidth := fontSize * fontWidth
	if avail < 2*charWidth {
		return ""
	}
	maxChars := int(avail / charWidth)
	n := utf8.RuneCountInString(name)
	if n <= maxChars {
		return name
	}
	keep := maxChars - len(labelEllipsis)
	if keep < 1 {
		return ""
	}
	runes := []rune(name)
	return string(runes[:keep]) + labelEllipsis
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeJS(s string) string { return template.JSEscapeString(s) }

// escapeJSAttr escapes s for a single-quoted JavaScript string inside an
// XML attribute.
func escapeJSAttr(s string) string {
	return EscapeXML(escapeJS(s))
}

// num formats a coordinate with the shortest exact representation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
