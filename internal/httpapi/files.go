package httpapi

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
)

type FileHandler struct {
	db  *sql.DB
	now func() time.Time
}

func NewFileHandler(database *sql.DB) *FileHandler {
	return &FileHandler{db: database, now: time.Now}
}

type fileRequest struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Folder      string  `json:"folder"`
	Description *string `json:"description"`
}

// GET /files?q=&folder=
func (h *FileHandler) List(c echo.Context) error {
	out, err := db.ListFileLinks(c.Request().Context(), h.db, db.FileLinkFilter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Folder: strings.TrimSpace(c.QueryParam("folder")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GET /files/folders
func (h *FileHandler) Folders(c echo.Context) error {
	out, err := db.ListFolders(c.Request().Context(), h.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FileHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	f, err := db.GetFileLink(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FileHandler) Create(c echo.Context) error {
	var req fileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateFileLink(c.Request().Context(), h.db, models.FileLink{
		Title:       req.Title,
		URL:         req.URL,
		Folder:      req.Folder,
		Description: trimPtr(req.Description),
		CreatedBy:   actorOf(c).ID,
	})
	if err != nil {
		return err
	}
	f, err := db.GetFileLink(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *FileHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req fileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	err = db.UpdateFileLink(c.Request().Context(), h.db, models.FileLink{
		ID:          id,
		Title:       req.Title,
		URL:         req.URL,
		Folder:      req.Folder,
		Description: trimPtr(req.Description),
	})
	if err != nil {
		return err
	}
	f, err := db.GetFileLink(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *FileHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteFileLink(c.Request().Context(), h.db, id, h.now()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
