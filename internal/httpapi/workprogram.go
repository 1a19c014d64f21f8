package httpapi

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/export"
	"github.com/Spok95/sekretariat/internal/models"
)

type WorkProgramHandler struct {
	db  *sql.DB
	now func() time.Time
}

func NewWorkProgramHandler(database *sql.DB) *WorkProgramHandler {
	return &WorkProgramHandler{db: database, now: time.Now}
}

type categoryView struct {
	Code  models.Category `json:"code"`
	Label string          `json:"label"`
}

// GET /categories
func Categories(c echo.Context) error {
	out := make([]categoryView, 0, len(models.Categories))
	for _, cat := range models.Categories {
		out = append(out, categoryView{Code: cat, Label: cat.Label()})
	}
	return c.JSON(http.StatusOK, out)
}

// ====== years ======

func (h *WorkProgramHandler) ListYears(c echo.Context) error {
	out, err := db.ListYears(c.Request().Context(), h.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WorkProgramHandler) CreateYear(c echo.Context) error {
	var req struct {
		Year int `json:"year"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateYear(c.Request().Context(), h.db, req.Year)
	if err != nil {
		return err
	}
	y, err := db.GetYear(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, y)
}

// GET /years/:id/summary
func (h *WorkProgramHandler) Summary(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s, err := db.YearSummary(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// GET /years/:id/export
func (h *WorkProgramHandler) Export(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	s, err := db.YearSummary(ctx, h.db, id)
	if err != nil {
		return err
	}
	acts, err := db.ListActivities(ctx, h.db, id, db.ActivityFilter{})
	if err != nil {
		return err
	}
	f, err := export.BudgetWorkbook(s, acts)
	if err != nil {
		return fmt.Errorf("budget workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return writeWorkbook(c, export.BuildBudgetFilename(s.Year), f)
}

// ====== activities ======

type activityRequest struct {
	Category models.Category `json:"category"`
	Month    int             `json:"month"`
	Name     string          `json:"name"`
	Purpose  string          `json:"purpose"`
	Progress int             `json:"progress"`
}

// GET /years/:id/activities?category=&month=
func (h *WorkProgramHandler) ListActivities(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := db.ListActivities(c.Request().Context(), h.db, id, db.ActivityFilter{
		Category: models.Category(c.QueryParam("category")),
		Month:    atoiOr(c.QueryParam("month"), 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type activityView struct {
	models.CategoryActivity
	Items []models.LineItem `json:"items"`
}

func (h *WorkProgramHandler) respondActivity(c echo.Context, status int, id int64) error {
	a, err := db.GetActivity(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	items, err := db.ListLineItems(c.Request().Context(), h.db, id)
	if err != nil {
		return err
	}
	return c.JSON(status, activityView{CategoryActivity: *a, Items: items})
}

func (h *WorkProgramHandler) GetActivity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	return h.respondActivity(c, http.StatusOK, id)
}

// POST /years/:id/activities
func (h *WorkProgramHandler) CreateActivity(c echo.Context) error {
	yid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req activityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id, err := db.CreateActivity(c.Request().Context(), h.db, models.CategoryActivity{
		YearID:   yid,
		Category: req.Category,
		Month:    req.Month,
		Name:     req.Name,
		Purpose:  req.Purpose,
		Progress: req.Progress,
	})
	if err != nil {
		return err
	}
	return h.respondActivity(c, http.StatusCreated, id)
}

func (h *WorkProgramHandler) UpdateActivity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req activityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	err = db.UpdateActivity(c.Request().Context(), h.db, models.CategoryActivity{
		ID:       id,
		Category: req.Category,
		Month:    req.Month,
		Name:     req.Name,
		Purpose:  req.Purpose,
		Progress: req.Progress,
	})
	if err != nil {
		return err
	}
	return h.respondActivity(c, http.StatusOK, id)
}

func (h *WorkProgramHandler) DeleteActivity(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteActivity(c.Request().Context(), h.db, id, h.now()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ====== line items ======

type lineItemRequest struct {
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Days      int64  `json:"days"`
	Frequency int64  `json:"frequency"`
}

func (r lineItemRequest) model() models.LineItem {
	return models.LineItem{
		Name:      r.Name,
		Unit:      r.Unit,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Days:      r.Days,
		Frequency: r.Frequency,
	}
}

// POST /activities/:id/items
func (h *WorkProgramHandler) AddItem(c echo.Context) error {
	aid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req lineItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	it := req.model()
	it.ActivityID = aid
	if _, _, err := db.AddLineItem(c.Request().Context(), h.db, it); err != nil {
		return err
	}
	return h.respondActivity(c, http.StatusCreated, aid)
}

// PUT /items/:id
func (h *WorkProgramHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req lineItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	it := req.model()
	it.ID = id
	alloc, err := db.UpdateLineItem(c.Request().Context(), h.db, it)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "allocation": alloc})
}

// DELETE /items/:id
func (h *WorkProgramHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	alloc, err := db.DeleteLineItem(c.Request().Context(), h.db, id, h.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"id": id, "allocation": alloc})
}
