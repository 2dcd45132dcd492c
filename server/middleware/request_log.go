package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/studysheet/server/internal/observability"
)

// HeaderRequestID is echoed back on every response.
const HeaderRequestID = "X-Request-ID"

// RequestLogger attaches an observability.RequestContext to each request,
// logs its completion and records it in metrics when metrics is not nil.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			var reqCtx *observability.RequestContext
			if id := req.Header.Get(HeaderRequestID); id != "" {
				reqCtx = observability.NewRequestContextWithID(logger, id, route, c.RealIP())
			} else {
				reqCtx = observability.NewRequestContext(logger, route, c.RealIP())
			}
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(HeaderRequestID, reqCtx.RequestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			switch {
			case status >= 500:
				reqCtx.Warn("Request failed", attrs...)
			default:
				reqCtx.Debug("Request completed", attrs...)
			}
			if metrics != nil {
				metrics.Record(route, status, reqCtx.Duration())
			}
			return nil
		}
	}
}
