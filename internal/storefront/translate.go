package storefront

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Ribbon colors fall back to these when the remote record leaves them unset.
const (
	defaultRibbonBgColor   = "#f44336"
	defaultRibbonTextColor = "#fff"
)

var markupTag = regexp.MustCompile(`<[^>]*>`)

// plainText turns a rich-text (HTML) field into plain text: entities are
// decoded first, then markup tags stripped.
func plainText(richText string) string {
	return markupTag.ReplaceAllString(html.UnescapeString(richText), "")
}

// colorToken converts a #RRGGBB hex string into the 0xFFRRGGBB token the UI
// layer consumes directly. Case is preserved. The empty string falls back to
// the given default before conversion, never to an error.
func colorToken(hexColor, fallback string) string {
	if hexColor == "" {
		hexColor = fallback
	}
	return strings.Replace(hexColor, "#", "0xFF", 1)
}

// imageURL builds the public image URL for a record's image field.
func imageURL(base, model string, id int64, size string) string {
	return fmt.Sprintf("%s/web/image/%s/%d/%s", base, model, id, size)
}
