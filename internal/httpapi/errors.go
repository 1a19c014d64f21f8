package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/metrics"
	"github.com/Spok95/sekretariat/internal/observability"
)

const internalMessage = "terjadi kesalahan pada server"

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler is echo's HTTPErrorHandler. Domain errors keep their message,
// echo errors keep their code, everything else is a logged and reported 500.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			metrics.HandlerErrors.Inc()
			var actorID int64
			if a, ok := ctxutil.ActorFrom(c.Request().Context()); ok {
				actorID = a.ID
			}
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("route", c.Path()),
				zap.Int64("actor_id", actorID),
				zap.Error(err),
			)
			observability.CaptureRequestErr(err, c.Path(), actorID)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func classify(err error) (int, map[string]any) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(map[string]any); ok {
			return he.Code, m
		}
		if s, ok := he.Message.(string); ok {
			return he.Code, map[string]any{"error": s}
		}
		return he.Code, map[string]any{"error": http.StatusText(he.Code)}
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Kind != apperr.KindInternal {
		return statusOf(ae.Kind), map[string]any{"error": ae.Message}
	}
	return http.StatusInternalServerError, map[string]any{"error": internalMessage}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": msg})
}
