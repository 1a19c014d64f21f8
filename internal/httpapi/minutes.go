package httpapi

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
)

// markdown renders minutes bodies. Raw HTML in the source is not passed through.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

type MinutesHandler struct {
	db  *sql.DB
	now func() time.Time
}

func NewMinutesHandler(database *sql.DB) *MinutesHandler {
	return &MinutesHandler{db: database, now: time.Now}
}

type minutesRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type minutesView struct {
	models.Minutes
	HTML string `json:"html"`
}

func (h *MinutesHandler) respond(c echo.Context, status int, id int64) error {
	m, err := db.GetMinutes(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	html, err := renderMarkdown(m.Body)
	if err != nil {
		return err
	}
	return c.JSON(status, minutesView{Minutes: *m, HTML: html})
}

// GET /sessions/:id/minutes
func (h *MinutesHandler) ListBySession(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := db.ListMinutesBySession(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// POST /sessions/:id/minutes
func (h *MinutesHandler) Create(c echo.Context) error {
	sid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req minutesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateMinutes(c.Request().Context(), h.db, models.Minutes{
		SessionID: sid,
		Title:     req.Title,
		Body:      req.Body,
		AuthorID:  actorOf(c).ID,
	})
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, id)
}

func (h *MinutesHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

func (h *MinutesHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req minutesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.UpdateMinutesBody(c.Request().Context(), h.db, id, actorOf(c).ID, req.Title, req.Body); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

// POST /minutes/:id/submit
func (h *MinutesHandler) Submit(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.SubmitMinutes(c.Request().Context(), h.db, id, actorOf(c).ID); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

// POST /minutes/:id/review {"approve": false, "note": "..."}
func (h *MinutesHandler) Review(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Approve bool   `json:"approve"`
		Note    string `json:"note"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.ReviewMinutes(c.Request().Context(), h.db, id, actorOf(c).ID, req.Approve, req.Note, h.now()); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, id)
}

// POST /minutes/preview renders markdown without storing it.
func (h *MinutesHandler) Preview(c echo.Context) error {
	var req minutesRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	html, err := renderMarkdown(req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"html": html})
}
