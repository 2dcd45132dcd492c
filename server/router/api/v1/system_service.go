package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/studysheet/server/internal/observability"
	"github.com/hrygo/studysheet/server/stats"
)

// StatsResponse combines usage statistics with request metrics.
type StatsResponse struct {
	Version  string                         `json:"version"`
	Font     string                         `json:"font"`
	Usage    *stats.Stats                   `json:"usage,omitempty"`
	Requests *observability.MetricsSnapshot `json:"requests,omitempty"`
}

// GetStats returns the current usage snapshot. Clients accepting text/plain
// but not JSON get the human-readable summary instead.
// GET /api/v1/stats
func (s *APIV1Service) GetStats(c echo.Context) error {
	if wantsPlainText(c.Request().Header.Get(echo.HeaderAccept)) && s.Stats != nil {
		return c.String(http.StatusOK, s.Stats.GetStats().GetSummary()+"\n")
	}

	resp := StatsResponse{
		Version: s.Profile.Version,
		Font:    s.Renderer.FontName(),
	}
	if s.Stats != nil {
		resp.Usage = s.Stats.GetStats()
	}
	if s.Metrics != nil {
		resp.Requests = s.Metrics.Snapshot()
	}
	return c.JSON(http.StatusOK, resp)
}

func wantsPlainText(accept string) bool {
	return strings.Contains(accept, echo.MIMETextPlain) && !strings.Contains(accept, echo.MIMEApplicationJSON)
}
