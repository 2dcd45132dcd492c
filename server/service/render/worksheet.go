package render

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/server/service/mathgen"
)

const (
	sheetColumns  = 2
	sheetRows     = 3
	titleSize     = 18.0
	titleHeight   = 40.0
	numberSize    = 12.0
	problemSize   = 20.0
	superscript   = 0.6
	cellPadding   = 12.0
	answerKeyNote = "Answer Key"
)

// RenderWorksheet writes problems six to a page in a 2×3 grid, followed by
// answer-key pages using the same numbering.
func (r *Renderer) RenderWorksheet(w io.Writer, title string, problems []mathgen.Problem) error {
	if len(problems) == 0 {
		return apperrors.InvalidArgument("At least one problem is required")
	}
	pdf := r.worksheetDocument(title, problems)
	return output(pdf, w)
}

func (r *Renderer) worksheetDocument(title string, problems []mathgen.Problem) *fpdf.Fpdf {
	pdf := r.newDocument(title)
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	questions := make([]string, len(problems))
	answers := make([]string, len(problems))
	for i, p := range problems {
		questions[i] = p.Text
		answers[i] = p.Answer
	}
	r.drawProblemPages(pdf, translate, title, questions)
	r.drawProblemPages(pdf, translate, fmt.Sprintf("%s (%s)", title, answerKeyNote), answers)
	return pdf
}

// titleFace picks the font for a page title. The loaded font has no bold
// style, and the core font only covers Latin-1.
func (r *Renderer) titleFace(translate func(string) string, title string) (family, style, text string) {
	if r.font != nil {
		return cjkFont, "", title
	}
	return coreFont, "B", translate(title)
}

func (r *Renderer) drawProblemPages(pdf *fpdf.Fpdf, translate func(string) string, title string, items []string) {
	family, style, text := r.titleFace(translate, title)
	cellW := (pageWidth - 2*margin) / sheetColumns
	cellH := (pageHeight - 2*margin - titleHeight) / sheetRows
	perPage := sheetColumns * sheetRows

	for i, item := range items {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
			pdf.SetFont(family, style, titleSize)
			pdf.Text(margin, margin+titleSize, text)
		}
		x := margin + float64(slot%sheetColumns)*cellW
		y := margin + titleHeight + float64(slot/sheetColumns)*cellH
		pdf.Rect(x, y, cellW, cellH, "D")

		pdf.SetFont(coreFont, "", numberSize)
		pdf.Text(x+cellPadding, y+cellPadding+numberSize, fmt.Sprintf("%d.", i+1))

		drawRuns(pdf, translate, latexRuns(item), x+cellPadding, y+cellH/2)
	}
}

func drawRuns(pdf *fpdf.Fpdf, translate func(string) string, runs []run, x, baseline float64) {
	for _, rn := range runs {
		text := translate(rn.text)
		size, y := problemSize, baseline
		if rn.sup {
			size = problemSize * superscript
			y = baseline - problemSize*0.4
		}
		pdf.SetFont(coreFont, "", size)
		pdf.Text(x, y, text)
		x += pdf.GetStringWidth(text)
	}
}
