// Package httpapi is the JSON API served by `sekretariat serve`.
package httpapi

import (
	"database/sql"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/attendance"
	"github.com/Spok95/sekretariat/internal/metrics"
	"github.com/Spok95/sekretariat/internal/models"
	"github.com/Spok95/sekretariat/internal/notify"
)

type Deps struct {
	DB        *sql.DB
	Log       *zap.Logger
	LogLevel  *zap.AtomicLevel
	JWTSecret string
	Location  *time.Location
	Policy    attendance.Policy
	Notifier  notify.Notifier
	Backup    Backuper
}

// NewServer wires every route. The caller owns Start/Shutdown.
func NewServer(d Deps) *echo.Echo {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(d.Log)
	e.Use(requestLog(d.Log))
	e.Use(middleware.Recover())

	admin := NewAdminHandler(d.DB, d.Backup, d.Log)
	e.GET("/healthz", admin.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api", RequireAuth(d.JWTSecret))
	mustManage := RequireRole(managers...)

	api.GET("/roles", Roles)
	api.GET("/categories", Categories)

	// ====== participants ======
	ph := NewParticipantHandler(d.DB)
	api.GET("/participants", ph.List)
	api.GET("/participants/:id", ph.Get)
	api.GET("/participants/:id/attendance", ph.History)
	api.POST("/participants", ph.Create, mustManage)
	api.PUT("/participants/:id", ph.Update, mustManage)
	api.DELETE("/participants/:id", ph.Deactivate, mustManage)

	// ====== sessions ======
	sh := NewSessionHandler(d.DB, d.Location)
	api.GET("/sessions", sh.List)
	api.GET("/sessions/:id", sh.Get)
	api.POST("/sessions", sh.Create, mustManage)
	api.PUT("/sessions/:id", sh.Update, mustManage)
	api.PUT("/sessions/:id/participants", sh.ReplaceAssignments, mustManage)

	// ====== attendance ======
	ah := NewAttendanceHandler(d.DB, d.Policy, d.Notifier, d.Log, d.Location)
	api.POST("/sessions/:id/checkin", ah.CheckIn)
	api.GET("/sessions/:id/attendance", ah.View, mustManage)
	api.GET("/sessions/:id/attendance/audit", ah.Audit, mustManage)
	api.GET("/sessions/:id/attendance/export", ah.Export, mustManage)
	api.POST("/sessions/:id/attendance/bulk", ah.BulkOverride, mustManage)
	api.PUT("/sessions/:id/attendance/:participantId", ah.Override, mustManage)

	// ====== minutes ======
	mh := NewMinutesHandler(d.DB)
	api.GET("/sessions/:id/minutes", mh.ListBySession)
	api.POST("/sessions/:id/minutes", mh.Create)
	api.POST("/minutes/preview", mh.Preview)
	api.GET("/minutes/:id", mh.Get)
	api.PUT("/minutes/:id", mh.Update)
	api.POST("/minutes/:id/submit", mh.Submit)
	api.POST("/minutes/:id/review", mh.Review, RequireRole(approvers...))

	// ====== files ======
	fh := NewFileHandler(d.DB)
	mustPengurus := RequireRole(pengurus...)
	api.GET("/files", fh.List)
	api.GET("/files/folders", fh.Folders)
	api.GET("/files/:id", fh.Get)
	api.POST("/files", fh.Create, mustPengurus)
	api.PUT("/files/:id", fh.Update, mustPengurus)
	api.DELETE("/files/:id", fh.Delete, mustPengurus)

	// ====== work programme ======
	wh := NewWorkProgramHandler(d.DB)
	mustBudget := RequireRole(budgetEditors...)
	api.GET("/years", wh.ListYears)
	api.POST("/years", wh.CreateYear, mustBudget)
	api.GET("/years/:id/summary", wh.Summary)
	api.GET("/years/:id/export", wh.Export)
	api.GET("/years/:id/activities", wh.ListActivities)
	api.POST("/years/:id/activities", wh.CreateActivity, mustBudget)
	api.GET("/activities/:id", wh.GetActivity)
	api.PUT("/activities/:id", wh.UpdateActivity, mustBudget)
	api.DELETE("/activities/:id", wh.DeleteActivity, mustBudget)
	api.POST("/activities/:id/items", wh.AddItem, mustBudget)
	api.PUT("/items/:id", wh.UpdateItem, mustBudget)
	api.DELETE("/items/:id", wh.DeleteItem, mustBudget)

	mustAdmin := RequireRole(models.Admin)
	api.POST("/admin/backup", admin.Backup, mustAdmin)
	if d.LogLevel != nil {
		// GET reports, PUT {"level":"debug"} changes
		lv := echo.WrapHandler(d.LogLevel)
		api.GET("/admin/log-level", lv, mustAdmin)
		api.PUT("/admin/log-level", lv, mustAdmin)
	}

	return e
}
