package httpapi

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
)

type SessionHandler struct {
	db  *sql.DB
	loc *time.Location
}

func NewSessionHandler(database *sql.DB, loc *time.Location) *SessionHandler {
	return &SessionHandler{db: database, loc: loc}
}

type sessionRequest struct {
	Name           string               `json:"name"`
	StartAt        time.Time            `json:"start_at"`
	EndAt          time.Time            `json:"end_at"`
	Location       string               `json:"location"`
	Capacity       int                  `json:"capacity"`
	Status         models.SessionStatus `json:"status"`
	Description    *string              `json:"description"`
	ParticipantIDs []int64              `json:"participant_ids"`
}

type sessionView struct {
	models.Session
	ParticipantIDs []int64 `json:"participant_ids"`
}

// GET /sessions?from=2025-01-01&to=2025-02-01&status=scheduled
func (h *SessionHandler) List(c echo.Context) error {
	from, err := queryTime(c, "from", h.loc)
	if err != nil {
		return err
	}
	to, err := queryTime(c, "to", h.loc)
	if err != nil {
		return err
	}
	st := models.SessionStatus(c.QueryParam("status"))
	if st != "" && !st.Valid() {
		return badRequest("status sesi tidak dikenal")
	}
	out, err := db.ListSessions(c.Request().Context(), h.db, db.SessionFilter{From: from, To: to, Status: st})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SessionHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

func (h *SessionHandler) respond(c echo.Context, status int, id int64) error {
	s, err := db.GetSession(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	ids, err := db.AssignedParticipantIDs(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []int64{}
	}
	return c.JSON(status, sessionView{Session: *s, ParticipantIDs: ids})
}

func (h *SessionHandler) Create(c echo.Context) error {
	var req sessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateSession(c.Request().Context(), h.db, models.Session{
		Name:        req.Name,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      req.Status,
		Description: trimPtr(req.Description),
		CreatedBy:   actorOf(c).ID,
	}, req.ParticipantIDs)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, id)
}

// PUT /sessions/:id; participant_ids is ignored here, see ReplaceAssignments.
func (h *SessionHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req sessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	err = db.UpdateSession(c.Request().Context(), h.db, models.Session{
		ID:          id,
		Name:        req.Name,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Status:      req.Status,
		Description: trimPtr(req.Description),
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

// PUT /sessions/:id/participants
func (h *SessionHandler) ReplaceAssignments(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		ParticipantIDs []int64 `json:"participant_ids"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.ReplaceAssignments(c.Request().Context(), h.db, id, req.ParticipantIDs); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}
