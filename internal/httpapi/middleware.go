package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/metrics"
)

// requestLog records one line and the request metrics per call. It sits outside
// the error handler so the final status is known.
func requestLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			metrics.HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPDuration.WithLabelValues(c.Request().Method, route).Observe(elapsed.Seconds())

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", elapsed),
			}
			if a, ok := ctxutil.ActorFrom(c.Request().Context()); ok {
				fields = append(fields, zap.Int64("actor_id", a.ID))
			}
			if status >= 500 {
				log.Warn("http request", fields...)
			} else {
				log.Debug("http request", fields...)
			}
			return nil
		}
	}
}
