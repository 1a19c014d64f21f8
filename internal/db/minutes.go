package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

const minutesCols = `id, session_id, title, body, author_id, status, reviewer_id, review_note, reviewed_at, created_at, updated_at`

func scanMinutes(s scanner) (models.Minutes, error) {
	var m models.Minutes
	err := s.Scan(&m.ID, &m.SessionID, &m.Title, &m.Body, &m.AuthorID, &m.Status, &m.ReviewerID, &m.ReviewNote, &m.ReviewedAt, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func CreateMinutes(ctx context.Context, database *sql.DB, m models.Minutes) (int64, error) {
	if strings.TrimSpace(m.Title) == "" {
		return 0, apperr.Validation("judul notulensi wajib diisi")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO minutes (session_id, title, body, author_id, status)
		VALUES ($1, $2, $3, $4, 'draft')
		RETURNING id`,
		m.SessionID, strings.TrimSpace(m.Title), m.Body, m.AuthorID,
	).Scan(&id)
	if isForeignKeyViolation(err) {
		return 0, apperr.NotFound("sesi")
	}
	if err != nil {
		return 0, fmt.Errorf("insert minutes: %w", err)
	}
	return id, nil
}

func GetMinutes(ctx context.Context, database *sql.DB, id int64) (*models.Minutes, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	m, err := scanMinutes(database.QueryRowContext(ctx, `SELECT `+minutesCols+` FROM minutes WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "notulensi")
	}
	return &m, nil
}

func ListMinutesBySession(ctx context.Context, database *sql.DB, sessionID int64) ([]models.Minutes, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+minutesCols+` FROM minutes WHERE session_id = $1 ORDER BY created_at DESC, id DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Minutes{}
	for rows.Next() {
		m, err := scanMinutes(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMinutesBody lets the author rewrite draft or rejected minutes; a rejected
// document goes back to draft. The guard lives in the WHERE clause.
func UpdateMinutesBody(ctx context.Context, database *sql.DB, id, authorID int64, title, body string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("judul notulensi wajib diisi")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE minutes
		SET title = $1, body = $2, status = 'draft',
		    reviewer_id = NULL, review_note = NULL, reviewed_at = NULL, updated_at = now()
		WHERE id = $3 AND author_id = $4 AND status IN ('draft', 'rejected')`,
		strings.TrimSpace(title), body, id, authorID)
	if err != nil {
		return fmt.Errorf("update minutes: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 1 {
		return nil
	}
	return explainMinutesMiss(ctx, database, id, authorID)
}

func SubmitMinutes(ctx context.Context, database *sql.DB, id, authorID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE minutes SET status = 'submitted', updated_at = now()
		WHERE id = $1 AND author_id = $2 AND status = 'draft'`, id, authorID)
	if err != nil {
		return fmt.Errorf("submit minutes: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 1 {
		return nil
	}
	return explainMinutesMiss(ctx, database, id, authorID)
}

// ReviewMinutes approves or rejects submitted minutes. A rejection needs a note.
func ReviewMinutes(ctx context.Context, database *sql.DB, id, reviewerID int64, approve bool, note string, at time.Time) error {
	status := models.MinutesApproved
	if !approve {
		status = models.MinutesRejected
		if strings.TrimSpace(note) == "" {
			return apperr.Validation("catatan wajib diisi saat menolak notulensi")
		}
	}
	var notePtr *string
	if n := strings.TrimSpace(note); n != "" {
		notePtr = &n
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE minutes
		SET status = $1, reviewer_id = $2, review_note = $3, reviewed_at = $4, updated_at = now()
		WHERE id = $5 AND status = 'submitted'`,
		string(status), reviewerID, notePtr, at, id)
	if err != nil {
		return fmt.Errorf("review minutes: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 1 {
		return nil
	}
	cur, err := GetMinutes(ctx, database, id)
	if err != nil {
		return err
	}
	return apperr.Conflict("notulensi berstatus %s dan tidak dapat ditinjau", cur.Status)
}

// explainMinutesMiss turns a zero-row guarded update into the reason it missed.
func explainMinutesMiss(ctx context.Context, database *sql.DB, id, authorID int64) error {
	cur, err := GetMinutes(ctx, database, id)
	if err != nil {
		return err
	}
	if cur.AuthorID != authorID {
		return apperr.Forbidden("hanya penulis yang dapat mengubah notulensi ini")
	}
	return apperr.Conflict("notulensi berstatus %s dan tidak dapat diubah", cur.Status)
}
