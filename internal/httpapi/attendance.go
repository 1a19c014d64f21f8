package httpapi

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/attendance"
	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/export"
	"github.com/Spok95/sekretariat/internal/metrics"
	"github.com/Spok95/sekretariat/internal/models"
	"github.com/Spok95/sekretariat/internal/notify"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler struct {
	db       *sql.DB
	policy   attendance.Policy
	notifier notify.Notifier
	log      *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewAttendanceHandler(database *sql.DB, policy attendance.Policy, n notify.Notifier, log *zap.Logger, loc *time.Location) *AttendanceHandler {
	return &AttendanceHandler{db: database, policy: policy, notifier: n, log: log, loc: loc, now: time.Now}
}

// GET /sessions/:id/attendance
func (h *AttendanceHandler) View(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := db.LoadSessionAttendance(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// POST /sessions/:id/checkin, the caller's own submission.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Status models.AttendanceStatus `json:"status"`
		Note   *string                 `json:"note"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	actor := actorOf(c)

	s, err := db.GetSession(ctx, h.db, id)
	if err != nil {
		return err
	}
	assigned, err := db.IsAssigned(ctx, h.db, id, actor.ID)
	if err != nil {
		return err
	}
	at := h.now()
	status, err := h.policy.Resolve(attendance.CheckIn{
		Session:  *s,
		Assigned: assigned,
		Status:   req.Status,
		Note:     trimPtr(req.Note),
		At:       at,
	})
	if err != nil {
		return err
	}
	rec, err := db.UpsertAttendance(ctx, h.db, id, actor.ID, status, trimPtr(req.Note), at)
	if err != nil {
		return err
	}
	metrics.AttendanceSubmissions.WithLabelValues(string(status), "self").Inc()
	return c.JSON(http.StatusOK, rec)
}

type overrideRequest struct {
	ParticipantIDs []int64                 `json:"participant_ids"`
	Status         models.AttendanceStatus `json:"status"`
	Reason         string                  `json:"reason"`
}

// PUT /sessions/:id/attendance/:participantId
func (h *AttendanceHandler) Override(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	pid, err := pathID(c, "participantId")
	if err != nil {
		return err
	}
	var req overrideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.ParticipantIDs = []int64{pid}
	return h.applyOverride(c, id, req)
}

// POST /sessions/:id/attendance/bulk
func (h *AttendanceHandler) BulkOverride(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req overrideRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.applyOverride(c, id, req)
}

func (h *AttendanceHandler) applyOverride(c echo.Context, sessionID int64, req overrideRequest) error {
	ctx := c.Request().Context()
	audits, err := db.ApplyOverride(ctx, h.db, attendance.OverrideRequest{
		SessionID:      sessionID,
		ParticipantIDs: req.ParticipantIDs,
		Status:         req.Status,
		ActorID:        actorOf(c).ID,
		Reason:         strings.TrimSpace(req.Reason),
	}, h.now())
	if err != nil {
		return err
	}
	metrics.AttendanceSubmissions.WithLabelValues(string(req.Status), "override").Add(float64(len(audits)))

	if s, err := db.GetSession(ctx, h.db, sessionID); err == nil {
		if err := h.notifier.OverrideNotice(ctx, *s, audits); err != nil {
			h.log.Warn("override notice failed", zap.Int64("session_id", sessionID), zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"batch_id": audits[0].BatchID,
		"audit":    audits,
	})
}

// GET /sessions/:id/attendance/audit
func (h *AttendanceHandler) Audit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if _, err := db.GetSession(c.Request().Context(), h.db, id); err != nil {
		return err
	}
	out, err := db.ListAudit(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GET /sessions/:id/attendance/export
func (h *AttendanceHandler) Export(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	view, err := db.LoadSessionAttendance(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	f, err := export.AttendanceWorkbook(view.Session, view.Rows, view.Tally, h.loc)
	if err != nil {
		return fmt.Errorf("attendance workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return writeWorkbook(c, export.BuildAttendanceFilename(view.Session.Name, view.Session.StartAt.In(h.loc)), f)
}

type workbook interface {
	WriteToBuffer() (*bytes.Buffer, error)
}

func writeWorkbook(c echo.Context, filename string, f workbook) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
