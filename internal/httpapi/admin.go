package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/metrics"
)

// Backuper is the pg backup sidecar.
type Backuper interface {
	TriggerBackup(ctx context.Context) (string, error)
}

type AdminHandler struct {
	db     *sql.DB
	backup Backuper
	log    *zap.Logger
}

func NewAdminHandler(database *sql.DB, b Backuper, log *zap.Logger) *AdminHandler {
	return &AdminHandler{db: database, backup: b, log: log}
}

// GET /healthz
func (h *AdminHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "db not ok: "+err.Error())
	}
	metrics.ObserveDBPing(time.Since(t0))
	return c.String(http.StatusOK, "ok")
}

// POST /admin/backup
func (h *AdminHandler) Backup(c echo.Context) error {
	if h.backup == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]any{"error": "layanan backup tidak dikonfigurasi"})
	}
	report, err := h.backup.TriggerBackup(c.Request().Context())
	if err != nil {
		h.log.Error("backup failed", zap.Int64("actor_id", actorOf(c).ID), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, map[string]any{"error": "backup gagal"})
	}
	h.log.Info("backup done", zap.Int64("actor_id", actorOf(c).ID), zap.String("report", report))
	return c.JSON(http.StatusOK, map[string]string{"report": report})
}
