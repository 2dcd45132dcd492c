package v1

import (
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/hrygo/studysheet/internal/errors"
	"github.com/hrygo/studysheet/internal/profile"
	"github.com/hrygo/studysheet/internal/random"
	"github.com/hrygo/studysheet/server/internal/observability"
	"github.com/hrygo/studysheet/server/middleware"
	"github.com/hrygo/studysheet/server/service/render"
	"github.com/hrygo/studysheet/server/stats"
	"github.com/hrygo/studysheet/store"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Renderer *render.Renderer
	Stats    *stats.Collector
	Metrics  *observability.Metrics

	// renderSemaphore bounds concurrent PDF rendering.
	renderSemaphore *semaphore.Weighted
	rateLimiter     *middleware.RateLimiter
	newRand         func(seed uint64) (*rand.Rand, error)
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, renderer *render.Renderer, collector *stats.Collector, metrics *observability.Metrics) *APIV1Service {
	maxRenders := profile.MaxRenders
	if maxRenders <= 0 {
		maxRenders = 1
	}
	return &APIV1Service{
		Profile:         profile,
		Store:           store,
		Renderer:        renderer,
		Stats:           collector,
		Metrics:         metrics,
		renderSemaphore: semaphore.NewWeighted(int64(maxRenders)),
		rateLimiter:     middleware.NewRateLimiter(),
		newRand:         seededRand,
	}
}

// seededRand returns a generator for seed, or a crypto-seeded one when seed is 0.
func seededRand(seed uint64) (*rand.Rand, error) {
	if seed != 0 {
		return random.New(seed), nil
	}
	return random.NewRand()
}

// RegisterRoutes registers the HTML form, the JSON API and health routes.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	limited := s.rateLimiter.Middleware()

	e.GET("/", s.Index)
	e.POST("/generate", s.GenerateFromForm, limited)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	g := e.Group("/api/v1")
	g.POST("/sheets/characters", s.CreateCharacterSheet, limited)
	g.POST("/sheets/characters/preview", s.PreviewCharacterSheet, limited)
	g.POST("/sheets/math", s.CreateMathSheet, limited)
	g.GET("/characters", s.ListCharacters)
	g.POST("/characters", s.AddCharacter)
	g.GET("/stats", s.GetStats)
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

const errCodeInternal apperrors.ErrorCode = "INTERNAL"

// errorResponse writes err as JSON. Coded errors are client errors and their
// message is shown verbatim; anything else is logged and reported as 500.
func (s *APIV1Service) errorResponse(c echo.Context, err error) error {
	status, body := s.describeError(c, err)
	return c.JSON(status, body)
}

func (s *APIV1Service) describeError(c echo.Context, err error) (int, ErrorResponse) {
	if e, ok := apperrors.As(err); ok {
		return statusOf(e.Code), ErrorResponse{Code: string(e.Code), Message: e.Message, Context: e.Context}
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code, ErrorResponse{Code: http.StatusText(he.Code), Message: http.StatusText(he.Code)}
	}
	observability.LoggerFrom(c.Request().Context()).Error("Request failed", slog.String("error", err.Error()))
	return http.StatusInternalServerError, ErrorResponse{Code: string(errCodeInternal), Message: "Internal server error"}
}

// statusOf maps an error code to its HTTP status. Every validation failure is
// the caller's fault, including references to unknown characters.
func statusOf(code apperrors.ErrorCode) int {
	if code == apperrors.ErrCodeDuplicate {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
