package v1

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/server/internal/observability"
	"github.com/hrygo/studysheet/server/service/mathgen"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexPage struct {
	NewChars     string
	StartChar    string
	Shuffle      bool
	Difficulty   string
	Difficulties []mathgen.Difficulty
	Count        int
	MaxProblems  int
	Error        string
	Total        int
	Version      string
}

func (s *APIV1Service) newIndexPage(c echo.Context) *indexPage {
	page := &indexPage{
		Difficulty:   string(mathgen.Easy),
		Difficulties: []mathgen.Difficulty{mathgen.Easy, mathgen.Medium, mathgen.Hard},
		Count:        defaultProblemCount,
		MaxProblems:  mathgen.MaxProblems,
		Version:      s.Profile.Version,
	}
	if seq, err := s.Store.ListCharacters(c.Request().Context()); err == nil {
		page.Total = seq.Len()
	}
	return page
}

func (s *APIV1Service) renderIndex(c echo.Context, status int, page *indexPage) error {
	var b strings.Builder
	if err := indexTemplate.Execute(&b, page); err != nil {
		return err
	}
	return c.HTML(status, b.String())
}

// Index serves the sheet forms.
// GET /
func (s *APIV1Service) Index(c echo.Context) error {
	return s.renderIndex(c, http.StatusOK, s.newIndexPage(c))
}

// GenerateFromForm handles both forms. On failure the form is shown again with
// the error message and the submitted values.
// POST /generate
func (s *APIV1Service) GenerateFromForm(c echo.Context) error {
	page := s.newIndexPage(c)
	ctx := c.Request().Context()

	if c.FormValue("kind") == "math" {
		page.Difficulty = strings.ToLower(strings.TrimSpace(c.FormValue("difficulty")))
		req := &MathSheetRequest{Difficulty: page.Difficulty}
		if raw := strings.TrimSpace(c.FormValue("count")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				page.Error = apperrors.InvalidArgument("Problem count must be a number, got '%s'", raw).Message
				return s.renderIndex(c, http.StatusBadRequest, page)
			}
			req.Count = n
			page.Count = n
		}
		sheet, err := s.buildMathSheet(req)
		if err != nil {
			return s.formError(c, page, err)
		}
		pdf, err := s.renderMathSheet(ctx, sheet)
		if err != nil {
			return s.formError(c, page, err)
		}
		return sendPDF(c, sheet.filename, pdf)
	}

	req := &CharacterSheetRequest{
		NewChars:  strings.TrimSpace(c.FormValue("new_chars")),
		StartChar: strings.TrimSpace(c.FormValue("start_char")),
		Shuffle:   c.FormValue("shuffle") != "",
	}
	page.NewChars, page.StartChar, page.Shuffle = req.NewChars, req.StartChar, req.Shuffle
	sheet, err := s.buildCharacterSheet(ctx, req)
	if err != nil {
		return s.formError(c, page, err)
	}
	pdf, err := s.renderCharacterSheet(ctx, sheet)
	if err != nil {
		return s.formError(c, page, err)
	}
	return sendPDF(c, sheet.label+".pdf", pdf)
}

func (s *APIV1Service) formError(c echo.Context, page *indexPage, err error) error {
	status, body := s.describeError(c, err)
	page.Error = body.Message
	observability.LoggerFrom(c.Request().Context()).Debug("Form generation rejected",
		slog.Int(observability.LogFieldStatus, status),
		slog.String(observability.LogFieldErrorCode, string(apperrors.GetCodeFromError(err, errCodeInternal))),
	)
	return s.renderIndex(c, status, page)
}
