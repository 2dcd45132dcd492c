package v1

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/server/service/mathgen"
	"github.com/hrygo/studysheet/server/service/review"
	"github.com/hrygo/studysheet/store"
)

const defaultProblemCount = 12

// CharacterSheetRequest is accepted as JSON or as a form post.
type CharacterSheetRequest struct {
	NewChars  string `json:"new_chars" form:"new_chars"`
	StartChar string `json:"start_char" form:"start_char"`
	Shuffle   bool   `json:"shuffle" form:"shuffle"`
	// Seed makes the shuffle reproducible; 0 draws a random seed.
	Seed uint64 `json:"seed" form:"seed"`
}

// CharacterSheetPreview describes a sheet without rendering it.
type CharacterSheetPreview struct {
	Characters []string `json:"characters"`
	Filename   string   `json:"filename"`
	// NextStart is the character the backward scan stopped at, empty when no scan ran.
	NextStart string `json:"next_start"`
}

// MathSheetRequest is accepted as JSON or as a form post.
type MathSheetRequest struct {
	Difficulty string `json:"difficulty" form:"difficulty"`
	Count      int    `json:"count" form:"count"`
	Title      string `json:"title" form:"title"`
	Seed       uint64 `json:"seed" form:"seed"`
}

type characterSheet struct {
	characters review.StudySet
	label      string
	nextStart  string
}

// buildCharacterSheet selects, optionally shuffles and names a sheet.
func (s *APIV1Service) buildCharacterSheet(ctx context.Context, req *CharacterSheetRequest) (*characterSheet, error) {
	newChars := store.SplitCharacters(req.NewChars)
	startChar := strings.Join(store.SplitCharacters(req.StartChar), "")

	seq, err := s.Store.ListCharacters(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load character list")
	}
	sel, err := review.SelectDetailed(newChars, startChar, seq)
	if err != nil {
		return nil, err
	}

	sheet := &characterSheet{
		characters: sel.Characters,
		label:      review.Compose(newChars, startChar, seq),
	}
	if sel.NextIndex >= 0 {
		sheet.nextStart = seq.At(sel.NextIndex)
	}
	if req.Shuffle {
		rng, err := s.newRand(req.Seed)
		if err != nil {
			return nil, errors.Wrap(err, "failed to seed shuffle")
		}
		sheet.characters = review.Shuffle(sheet.characters, rng)
	}
	return sheet, nil
}

// renderCharacterSheet renders sheet under the render semaphore.
func (s *APIV1Service) renderCharacterSheet(ctx context.Context, sheet *characterSheet) ([]byte, error) {
	if err := s.renderSemaphore.Acquire(ctx, 1); err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable)
	}
	defer s.renderSemaphore.Release(1)

	var buf bytes.Buffer
	if err := s.Renderer.RenderCharacters(&buf, sheet.characters); err != nil {
		return nil, err
	}
	if s.Stats != nil {
		s.Stats.RecordCharacterSheet()
	}
	return buf.Bytes(), nil
}

// CreateCharacterSheet renders a study sheet PDF.
// POST /api/v1/sheets/characters
func (s *APIV1Service) CreateCharacterSheet(c echo.Context) error {
	req := &CharacterSheetRequest{}
	if err := c.Bind(req); err != nil {
		return s.errorResponse(c, apperrors.InvalidArgument("Malformed request: %v", err))
	}
	ctx := c.Request().Context()
	sheet, err := s.buildCharacterSheet(ctx, req)
	if err != nil {
		return s.errorResponse(c, err)
	}
	pdf, err := s.renderCharacterSheet(ctx, sheet)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return sendPDF(c, sheet.label+".pdf", pdf)
}

// PreviewCharacterSheet returns the selection and filename as JSON.
// POST /api/v1/sheets/characters/preview
func (s *APIV1Service) PreviewCharacterSheet(c echo.Context) error {
	req := &CharacterSheetRequest{}
	if err := c.Bind(req); err != nil {
		return s.errorResponse(c, apperrors.InvalidArgument("Malformed request: %v", err))
	}
	sheet, err := s.buildCharacterSheet(c.Request().Context(), req)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, CharacterSheetPreview{
		Characters: sheet.characters,
		Filename:   sheet.label + ".pdf",
		NextStart:  sheet.nextStart,
	})
}

type mathSheet struct {
	title    string
	filename string
	problems []mathgen.Problem
}

func (s *APIV1Service) buildMathSheet(req *MathSheetRequest) (*mathSheet, error) {
	difficulty, err := mathgen.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	count := req.Count
	if count == 0 {
		count = defaultProblemCount
	}
	rng, err := s.newRand(req.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to seed generator")
	}
	problems, err := mathgen.NewGenerator(rng).GenerateSet(difficulty, count)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = fmt.Sprintf("Exponent Rules (%s)", difficulty)
	}
	return &mathSheet{
		title:    title,
		filename: fmt.Sprintf("worksheet-%s-%s.pdf", difficulty, shortuuid.New()),
		problems: problems,
	}, nil
}

func (s *APIV1Service) renderMathSheet(ctx context.Context, sheet *mathSheet) ([]byte, error) {
	if err := s.renderSemaphore.Acquire(ctx, 1); err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable)
	}
	defer s.renderSemaphore.Release(1)

	var buf bytes.Buffer
	if err := s.Renderer.RenderWorksheet(&buf, sheet.title, sheet.problems); err != nil {
		return nil, err
	}
	if s.Stats != nil {
		s.Stats.RecordMathSheet(len(sheet.problems))
	}
	return buf.Bytes(), nil
}

// CreateMathSheet renders an exponent-rule worksheet with its answer key.
// POST /api/v1/sheets/math
func (s *APIV1Service) CreateMathSheet(c echo.Context) error {
	req := &MathSheetRequest{}
	if err := c.Bind(req); err != nil {
		return s.errorResponse(c, apperrors.InvalidArgument("Malformed request: %v", err))
	}
	sheet, err := s.buildMathSheet(req)
	if err != nil {
		return s.errorResponse(c, err)
	}
	pdf, err := s.renderMathSheet(c.Request().Context(), sheet)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return sendPDF(c, sheet.filename, pdf)
}

func sendPDF(c echo.Context, filename string, pdf []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, contentDisposition(filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

const fallbackFilename = "study-sheet.pdf"

// contentDisposition builds an attachment header carrying name both as an
// ASCII fallback and as an RFC 5987 UTF-8 extended value.
func contentDisposition(name string) string {
	fallback := fallbackFilename
	if isPlainASCII(name) {
		fallback = name
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, encodeExtValue(name))
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < 0x20 || b >= 0x7F || b == '"' || b == '\\' {
			return false
		}
	}
	return true
}

// encodeExtValue percent-encodes every byte outside RFC 5987 attr-char.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isAttrChar(ch) {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[ch>>4])
		b.WriteByte(hex[ch&0x0F])
	}
	return b.String()
}

func isAttrChar(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", ch) >= 0
}
