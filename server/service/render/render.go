// Package render draws study sheets and math worksheets as PDF documents.
package render

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// US Letter in points.
const (
	pageWidth  = 612.0
	pageHeight = 792.0
	margin     = 50.0
)

// Renderer produces PDF documents. It is safe for concurrent use; every call
// builds its own document.
type Renderer struct {
	font *fontFace
}

// NewRenderer resolves the glyph font once: fontPaths in order, then
// well-known system CJK fonts, then the built-in Helvetica.
func NewRenderer(fontPaths []string) *Renderer {
	return &Renderer{font: resolveFont(fontPaths, systemFontPaths)}
}

// FontName reports the font file in use, or Helvetica.
func (r *Renderer) FontName() string {
	if r.font == nil {
		return coreFont
	}
	return r.font.path
}

func (r *Renderer) newDocument(title string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("studysheet", false)
	pdf.SetCreationDate(time.Now())
	if r.font != nil {
		pdf.AddUTF8FontFromBytes(cjkFont, "", r.font.data)
	}
	return pdf
}

func output(pdf *fpdf.Fpdf, w io.Writer) error {
	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "failed to write pdf")
	}
	return nil
}
