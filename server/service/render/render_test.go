package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/server/service/mathgen"
)

func hanChars(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune(0x4E00 + i))
	}
	return out
}

func TestRenderCharactersWithCoreFont(t *testing.T) {
	r := &Renderer{}
	assert.Equal(t, "Helvetica", r.FontName())

	var buf bytes.Buffer
	require.NoError(t, r.RenderCharacters(&buf, hanChars(50)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.Equal(t, 1, r.characterDocument(hanChars(50)).PageCount())
	assert.Equal(t, 1, r.characterDocument(hanChars(51)).PageCount())
	assert.Equal(t, 1, r.characterDocument(hanChars(120)).PageCount())
	assert.Equal(t, 1, r.characterDocument(nil).PageCount())
}

func TestRenderCharactersMixedScripts(t *testing.T) {
	r := &Renderer{}
	var buf bytes.Buffer
	require.NoError(t, r.RenderCharacters(&buf, []string{"A", "é", "中", "文"}))
	assert.NotZero(t, buf.Len())
}

func TestRenderWorksheet(t *testing.T) {
	r := &Renderer{}
	problems := make([]mathgen.Problem, 7)
	for i := range problems {
		problems[i] = mathgen.Problem{Text: `x^{3} \cdot x^{4}`, Answer: "x^{7}", Difficulty: mathgen.Easy}
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderWorksheet(&buf, "Exponent Rules", problems))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	// Two question pages and two answer-key pages.
	assert.Equal(t, 4, r.worksheetDocument("Exponent Rules", problems).PageCount())
	assert.Equal(t, 2, r.worksheetDocument("Exponent Rules", problems[:6]).PageCount())

	err := r.RenderWorksheet(&buf, "Empty", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestWorksheetTitleFace(t *testing.T) {
	title := "指数 Rules"
	translate := (&Renderer{}).newDocument("t").UnicodeTranslatorFromDescriptor("")

	family, style, text := (&Renderer{}).titleFace(translate, title)
	assert.Equal(t, coreFont, family)
	assert.Equal(t, "B", style)
	assert.NotEqual(t, title, text)

	family, style, text = (&Renderer{font: &fontFace{path: "cjk.ttf"}}).titleFace(translate, title)
	assert.Equal(t, cjkFont, family)
	assert.Empty(t, style)
	assert.Equal(t, title, text)
}

func TestLatexRuns(t *testing.T) {
	tests := []struct {
		in   string
		want []run
	}{
		{"x^{7}", []run{{text: "x"}, {text: "7", sup: true}}},
		{`x^{3} \cdot x^{4}`, []run{{text: "x"}, {text: "3", sup: true}, {text: " · x"}, {text: "4", sup: true}}},
		{`\frac{3x^{2}}{y^{4}}`, []run{{text: "(3x"}, {text: "2", sup: true}, {text: ")/(y"}, {text: "4", sup: true}, {text: ")"}}},
		{"(x^{-2}y^{3})^{-2}", []run{
			{text: "(x"}, {text: "-2", sup: true}, {text: "y"}, {text: "3", sup: true}, {text: ")"}, {text: "-2", sup: true},
		}},
		{"7", []run{{text: "7"}}},
		{"x^{", []run{{text: "x^{"}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, latexRuns(tt.in), tt.in)
	}
}

func TestExpandFractionsNested(t *testing.T) {
	assert.Equal(t, "((a)/(b))/(c)", expandFractions(`\frac{\frac{a}{b}}{c}`))
	assert.Equal(t, `\frac{a}`, expandFractions(`\frac{a}`))
}

func TestResolveFontFallsBackToCoreFont(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "broken.ttf")
	require.NoError(t, os.WriteFile(garbage, bytes.Repeat([]byte("not a font "), 16), 0o644))

	face := resolveFont(
		[]string{filepath.Join(dir, "missing.ttf"), garbage},
		[]string{filepath.Join(dir, "also-missing.ttf")},
	)
	assert.Nil(t, face)

	r := &Renderer{font: face}
	var buf bytes.Buffer
	require.NoError(t, r.RenderCharacters(&buf, hanChars(3)))
}
