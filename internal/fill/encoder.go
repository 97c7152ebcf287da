package fill

import (
	"fmt"
	"html"
)

// Encoder renders the machine-readable code of a Codebox.
type Encoder interface {
	Encode(text, elementID string) string
}

// NoTextPlaceholder is shown by DatamatrixStub for empty input.
const NoTextPlaceholder = "[Barcode Area - No Text]"

// DatamatrixStub draws a placeholder SVG labelled with the first five
// characters of the text. It does not produce a scannable code.
type DatamatrixStub struct{}

func (DatamatrixStub) Encode(text, elementID string) string {
	if text == "" {
		return NoTextPlaceholder
	}
	r := []rune(text)
	if len(r) > 5 {
		r = r[:5]
	}
	return fmt.Sprintf(`<svg width="50" height="50" data-element-id="%s"><text x="5" y="30" font-size="10">DM:%s</text></svg>`,
		html.EscapeString(elementID), html.EscapeString(string(r)))
}

func sourceNotFound(id string) string {
	return fmt.Sprintf("[Source %s not found]", id)
}
