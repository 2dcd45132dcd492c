package render

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	gridColumns     = 5
	gridRows        = 10
	glyphSize       = 32.0
	placeholderSize = 10.0
)

// RenderCharacters writes chars as a 5×10 grid of bordered cells on a single
// page, one glyph centered in each. Characters past the 50th are not drawn.
func (r *Renderer) RenderCharacters(w io.Writer, chars []string) error {
	pdf := r.characterDocument(chars)
	return output(pdf, w)
}

func (r *Renderer) characterDocument(chars []string) *fpdf.Fpdf {
	pdf := r.newDocument("Character practice")
	family := coreFont
	if r.font != nil {
		family = cjkFont
	}
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	cellW := (pageWidth - 2*margin) / gridColumns
	cellH := (pageHeight - 2*margin) / gridRows
	if cells := gridColumns * gridRows; len(chars) > cells {
		chars = chars[:cells]
	}

	pdf.AddPage()
	pdf.SetFont(family, "", glyphSize)
	for i, ch := range chars {
		x := margin + float64(i%gridColumns)*cellW
		y := margin + float64(i/gridColumns)*cellH
		pdf.Rect(x, y, cellW, cellH, "D")

		if r.font == nil && !latin1(ch) {
			pdf.Rect(x+(cellW-placeholderSize)/2, y+(cellH-placeholderSize)/2, placeholderSize, placeholderSize, "D")
			continue
		}
		text := ch
		if r.font == nil {
			text = translate(ch)
		}
		width := pdf.GetStringWidth(text)
		pdf.Text(x+(cellW-width)/2, y+cellH/2+glyphSize/3, text)
	}
	return pdf
}

func latin1(s string) bool {
	for _, r := range s {
		if r > 0xFF {
			return false
		}
	}
	return true
}
