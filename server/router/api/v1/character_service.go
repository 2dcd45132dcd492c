package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/server/internal/observability"
)

type ListCharactersResponse struct {
	Count      int      `json:"count"`
	Characters []string `json:"characters"`
}

type AddCharacterRequest struct {
	Character string `json:"character" form:"character"`
}

type AddCharacterResponse struct {
	Index     int    `json:"index"`
	Character string `json:"character"`
}

// ListCharacters returns the master sequence in order.
// GET /api/v1/characters
func (s *APIV1Service) ListCharacters(c echo.Context) error {
	seq, err := s.Store.ListCharacters(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, errors.Wrap(err, "failed to list characters"))
	}
	return c.JSON(http.StatusOK, ListCharactersResponse{
		Count:      seq.Len(),
		Characters: seq.Chars(),
	})
}

// AddCharacter appends one character to the master sequence.
// POST /api/v1/characters
func (s *APIV1Service) AddCharacter(c echo.Context) error {
	req := &AddCharacterRequest{}
	if err := c.Bind(req); err != nil {
		return s.errorResponse(c, apperrors.InvalidArgument("Malformed request: %v", err))
	}
	ctx := c.Request().Context()
	index, err := s.Store.AppendCharacter(ctx, req.Character)
	if err != nil {
		return s.errorResponse(c, err)
	}
	if s.Stats != nil {
		s.Stats.RecordCharacterAdded()
	}

	seq, err := s.Store.ListCharacters(ctx)
	if err != nil {
		return s.errorResponse(c, errors.Wrap(err, "failed to reload characters"))
	}
	added := seq.At(index)
	observability.LoggerFrom(ctx).Info("Character added", slog.String("char", added), slog.Int("index", index))
	return c.JSON(http.StatusCreated, AddCharacterResponse{Index: index, Character: added})
}
