package httpapi

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
)

type ParticipantHandler struct {
	db *sql.DB
}

func NewParticipantHandler(database *sql.DB) *ParticipantHandler {
	return &ParticipantHandler{db: database}
}

type participantRequest struct {
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          *string     `json:"phone"`
	TelegramChatID *int64      `json:"telegram_chat_id"`
	Role           models.Role `json:"role"`
	OrgUnit        string      `json:"org_unit"`
	IsActive       *bool       `json:"is_active"`
}

func (r participantRequest) model() models.Participant {
	p := models.Participant{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          trimPtr(r.Phone),
		TelegramChatID: r.TelegramChatID,
		Role:           r.Role,
		OrgUnit:        strings.TrimSpace(r.OrgUnit),
		IsActive:       true,
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// GET /participants?role=pengurus&active=true&q=
func (h *ParticipantHandler) List(c echo.Context) error {
	out, err := db.ListParticipants(c.Request().Context(), h.db, db.ParticipantFilter{
		RolePrefix: strings.TrimSpace(c.QueryParam("role")),
		ActiveOnly: c.QueryParam("active") == "true",
		Query:      strings.TrimSpace(c.QueryParam("q")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ParticipantHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	p, err := db.GetParticipant(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ParticipantHandler) Create(c echo.Context) error {
	var req participantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateParticipant(c.Request().Context(), h.db, req.model())
	if err != nil {
		return err
	}
	p, err := db.GetParticipant(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ParticipantHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req participantRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p := req.model()
	p.ID = id
	if err := db.UpdateParticipant(c.Request().Context(), h.db, p); err != nil {
		return err
	}
	out, err := db.GetParticipant(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// DELETE /participants/:id deactivates.
func (h *ParticipantHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SetParticipantActive(c.Request().Context(), h.db, id, false); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /participants/:id/attendance; participants see only their own history.
func (h *ParticipantHandler) History(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if a := actorOf(c); a.ID != id && !a.HasRole(managers...) {
		return apperr.Forbidden("hanya dapat melihat riwayat presensi sendiri")
	}
	if _, err := db.GetParticipant(c.Request().Context(), h.db, id); err != nil {
		return err
	}
	recs, err := db.ListParticipantRecords(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []models.AttendanceRecord{}
	}
	return c.JSON(http.StatusOK, recs)
}

// GET /roles
func Roles(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Roles)
}
