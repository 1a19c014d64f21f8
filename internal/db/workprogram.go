package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/budget"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/metrics"
	"github.com/Spok95/sekretariat/internal/models"
)

// ====== years ======

func CreateYear(ctx context.Context, database *sql.DB, year int) (int64, error) {
	if year < 2000 || year > 2100 {
		return 0, apperr.Validation("tahun %d tidak valid", year)
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `INSERT INTO work_program_years (year) VALUES ($1) RETURNING id`, year).Scan(&id)
	if isUniqueViolation(err) {
		return 0, apperr.Conflict("program kerja tahun %d sudah ada", year)
	}
	if err != nil {
		return 0, fmt.Errorf("insert year: %w", err)
	}
	return id, nil
}

func ListYears(ctx context.Context, database *sql.DB) ([]models.WorkProgramYear, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `SELECT id, year, created_at FROM work_program_years ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.WorkProgramYear{}
	for rows.Next() {
		var y models.WorkProgramYear
		if err := rows.Scan(&y.ID, &y.Year, &y.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

func GetYear(ctx context.Context, database *sql.DB, id int64) (*models.WorkProgramYear, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var y models.WorkProgramYear
	err := database.QueryRowContext(ctx, `SELECT id, year, created_at FROM work_program_years WHERE id = $1`, id).
		Scan(&y.ID, &y.Year, &y.CreatedAt)
	if err != nil {
		return nil, notFound(err, "program kerja")
	}
	return &y, nil
}

// ====== activities ======

const activityCols = `id, year_id, category, month, name, purpose, progress, allocation, deleted_at`

func scanActivity(s scanner) (models.CategoryActivity, error) {
	var a models.CategoryActivity
	err := s.Scan(&a.ID, &a.YearID, &a.Category, &a.Month, &a.Name, &a.Purpose, &a.Progress, &a.Allocation, &a.Deleted)
	return a, err
}

type ActivityFilter struct {
	Category models.Category
	Month    int
}

// ListActivities returns the live activities of a year.
func ListActivities(ctx context.Context, database *sql.DB, yearID int64, f ActivityFilter) ([]models.CategoryActivity, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `SELECT ` + activityCols + ` FROM category_activities WHERE year_id = $1 AND deleted_at IS NULL`
	args := []any{yearID}
	if f.Category != "" {
		args = append(args, string(f.Category))
		q += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Month != 0 {
		args = append(args, f.Month)
		q += fmt.Sprintf(" AND month = $%d", len(args))
	}
	q += " ORDER BY month, category, id"

	rows, err := database.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.CategoryActivity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func GetActivity(ctx context.Context, database *sql.DB, id int64) (*models.CategoryActivity, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	a, err := scanActivity(database.QueryRowContext(ctx, `
		SELECT `+activityCols+` FROM category_activities WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, notFound(err, "kegiatan")
	}
	return &a, nil
}

// CreateActivity starts with a zero allocation; line items fill it.
func CreateActivity(ctx context.Context, database *sql.DB, a models.CategoryActivity) (int64, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := budget.ValidateActivity(a); err != nil {
		return 0, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO category_activities (year_id, category, month, name, purpose, progress, allocation)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
		RETURNING id`,
		a.YearID, string(a.Category), a.Month, a.Name, a.Purpose, a.Progress,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return 0, apperr.NotFound("program kerja")
	}
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}
	return id, nil
}

// UpdateActivity changes descriptive fields and progress; allocation is owned by the line items.
func UpdateActivity(ctx context.Context, database *sql.DB, a models.CategoryActivity) error {
	a.Name = strings.TrimSpace(a.Name)
	if err := budget.ValidateActivity(a); err != nil {
		return err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE category_activities
		SET category = $1, month = $2, name = $3, purpose = $4, progress = $5, updated_at = now()
		WHERE id = $6 AND deleted_at IS NULL`,
		string(a.Category), a.Month, a.Name, a.Purpose, a.Progress, a.ID)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("kegiatan")
	}
	return nil
}

func DeleteActivity(ctx context.Context, database *sql.DB, id int64, at time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE category_activities SET deleted_at = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL`, models.DeletedAt(at), id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("kegiatan")
	}
	return nil
}

// ====== line items ======

const lineItemCols = `id, activity_id, name, unit, quantity, unit_price, days, frequency, subtotal, deleted_at`

func scanLineItem(s scanner) (models.LineItem, error) {
	var it models.LineItem
	err := s.Scan(&it.ID, &it.ActivityID, &it.Name, &it.Unit, &it.Quantity, &it.UnitPrice, &it.Days, &it.Frequency, &it.Subtotal, &it.Deleted)
	return it, err
}

func ListLineItems(ctx context.Context, database *sql.DB, activityID int64) ([]models.LineItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+lineItemCols+` FROM line_items WHERE activity_id = $1 AND deleted_at IS NULL ORDER BY id`, activityID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.LineItem{}
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// mutateLineItems is the only write path for line items. It locks the live
// activity, runs fn and stores the recomputed allocation before commit.
func mutateLineItems(ctx context.Context, database *sql.DB, activityID int64, fn func(tx *sql.Tx) error) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM category_activities WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, activityID).Scan(&locked)
	if err != nil {
		return 0, notFound(err, "kegiatan")
	}
	if err := fn(tx); err != nil {
		return 0, err
	}
	alloc, err := recomputeAllocation(ctx, tx, activityID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return alloc, nil
}

func recomputeAllocation(ctx context.Context, tx *sql.Tx, activityID int64) (int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+lineItemCols+` FROM line_items WHERE activity_id = $1`, activityID)
	if err != nil {
		return 0, err
	}
	var items []models.LineItem
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			_ = rows.Close()
			return 0, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	alloc, err := budget.Allocation(items)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE category_activities SET allocation = $1, updated_at = now() WHERE id = $2`, alloc, activityID); err != nil {
		return 0, fmt.Errorf("store allocation: %w", err)
	}
	metrics.AllocationRecomputes.Inc()
	return alloc, nil
}

func normalizeLineItem(it *models.LineItem) error {
	it.Name = strings.TrimSpace(it.Name)
	it.Unit = strings.TrimSpace(it.Unit)
	if err := budget.ValidateLineItem(*it); err != nil {
		return err
	}
	sub, ok := budget.CheckedSubtotal(it.Quantity, it.UnitPrice, it.Days, it.Frequency)
	if !ok {
		return apperr.Validation("subtotal rincian melebihi batas yang dapat disimpan")
	}
	it.Subtotal = sub
	return nil
}

// AddLineItem returns the new item id and the activity's new allocation.
func AddLineItem(ctx context.Context, database *sql.DB, it models.LineItem) (id, allocation int64, err error) {
	if err := normalizeLineItem(&it); err != nil {
		return 0, 0, err
	}
	allocation, err = mutateLineItems(ctx, database, it.ActivityID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO line_items (activity_id, name, unit, quantity, unit_price, days, frequency, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			it.ActivityID, it.Name, it.Unit, it.Quantity, it.UnitPrice, it.Days, it.Frequency, it.Subtotal,
		).Scan(&id)
	})
	return id, allocation, err
}

func UpdateLineItem(ctx context.Context, database *sql.DB, it models.LineItem) (int64, error) {
	if err := normalizeLineItem(&it); err != nil {
		return 0, err
	}
	activityID, err := lineItemActivity(ctx, database, it.ID)
	if err != nil {
		return 0, err
	}
	return mutateLineItems(ctx, database, activityID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE line_items
			SET name = $1, unit = $2, quantity = $3, unit_price = $4, days = $5, frequency = $6,
			    subtotal = $7, updated_at = now()
			WHERE id = $8 AND deleted_at IS NULL`,
			it.Name, it.Unit, it.Quantity, it.UnitPrice, it.Days, it.Frequency, it.Subtotal, it.ID)
		if err != nil {
			return fmt.Errorf("update line item: %w", err)
		}
		if aff, _ := res.RowsAffected(); aff == 0 {
			return apperr.NotFound("rincian anggaran")
		}
		return nil
	})
}

func DeleteLineItem(ctx context.Context, database *sql.DB, id int64, at time.Time) (int64, error) {
	activityID, err := lineItemActivity(ctx, database, id)
	if err != nil {
		return 0, err
	}
	return mutateLineItems(ctx, database, activityID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE line_items SET deleted_at = $1, updated_at = now()
			WHERE id = $2 AND deleted_at IS NULL`, models.DeletedAt(at), id)
		if err != nil {
			return fmt.Errorf("delete line item: %w", err)
		}
		if aff, _ := res.RowsAffected(); aff == 0 {
			return apperr.NotFound("rincian anggaran")
		}
		return nil
	})
}

func lineItemActivity(ctx context.Context, database *sql.DB, itemID int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var activityID int64
	err := database.QueryRowContext(ctx, `
		SELECT activity_id FROM line_items WHERE id = $1 AND deleted_at IS NULL`, itemID).Scan(&activityID)
	if err != nil {
		return 0, notFound(err, "rincian anggaran")
	}
	return activityID, nil
}

// RecomputeAllAllocations repairs every live activity; it returns how many were visited.
func RecomputeAllAllocations(ctx context.Context, database *sql.DB) (int, error) {
	ids, err := liveActivityIDs(ctx, database)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := mutateLineItems(ctx, database, id, func(*sql.Tx) error { return nil }); err != nil {
			return 0, fmt.Errorf("activity %d: %w", id, err)
		}
	}
	return len(ids), nil
}

func liveActivityIDs(ctx context.Context, database *sql.DB) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `SELECT id FROM category_activities WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// YearSummary aggregates a year's live activities per category.
func YearSummary(ctx context.Context, database *sql.DB, yearID int64) (budget.Summary, error) {
	y, err := GetYear(ctx, database, yearID)
	if err != nil {
		return budget.Summary{}, err
	}
	acts, err := ListActivities(ctx, database, yearID, ActivityFilter{})
	if err != nil {
		return budget.Summary{}, err
	}
	return budget.Summarize(y.Year, acts)
}
