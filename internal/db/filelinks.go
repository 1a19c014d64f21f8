package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

const fileLinkCols = `id, title, url, folder, description, created_by, created_at, deleted_at`

func scanFileLink(s scanner) (models.FileLink, error) {
	var f models.FileLink
	err := s.Scan(&f.ID, &f.Title, &f.URL, &f.Folder, &f.Description, &f.CreatedBy, &f.CreatedAt, &f.Deleted)
	return f, err
}

// ValidateFileURL accepts only https links on mediafire.com.
func ValidateFileURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return apperr.Validation("URL %q tidak valid", raw)
	}
	if u.Scheme != "https" {
		return apperr.Validation("URL harus menggunakan https")
	}
	host := strings.ToLower(u.Hostname())
	if host != "mediafire.com" && host != "www.mediafire.com" {
		return apperr.Validation("URL harus mengarah ke mediafire.com")
	}
	return nil
}

func validateFileLink(f models.FileLink) error {
	if strings.TrimSpace(f.Title) == "" {
		return apperr.Validation("judul berkas wajib diisi")
	}
	return ValidateFileURL(f.URL)
}

type FileLinkFilter struct {
	Query  string
	Folder string
}

// ListFileLinks returns live links only.
func ListFileLinks(ctx context.Context, database *sql.DB, f FileLinkFilter) ([]models.FileLink, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `SELECT ` + fileLinkCols + ` FROM file_links WHERE deleted_at IS NULL`
	var args []any
	idx := 1
	if f.Folder != "" {
		q += fmt.Sprintf(" AND folder = $%d", idx)
		args = append(args, f.Folder)
		idx++
	}
	if f.Query != "" {
		q += fmt.Sprintf(" AND (LOWER(title) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d)", idx, idx)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Query))+"%")
	}
	q += " ORDER BY folder, LOWER(title), id"

	rows, err := database.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.FileLink{}
	for rows.Next() {
		l, err := scanFileLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func GetFileLink(ctx context.Context, database *sql.DB, id int64) (*models.FileLink, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	l, err := scanFileLink(database.QueryRowContext(ctx, `
		SELECT `+fileLinkCols+` FROM file_links WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, notFound(err, "berkas")
	}
	return &l, nil
}

func CreateFileLink(ctx context.Context, database *sql.DB, f models.FileLink) (int64, error) {
	if err := validateFileLink(f); err != nil {
		return 0, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO file_links (title, url, folder, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		strings.TrimSpace(f.Title), strings.TrimSpace(f.URL), strings.TrimSpace(f.Folder), f.Description, f.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert file link: %w", err)
	}
	return id, nil
}

func UpdateFileLink(ctx context.Context, database *sql.DB, f models.FileLink) error {
	if err := validateFileLink(f); err != nil {
		return err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE file_links SET title = $1, url = $2, folder = $3, description = $4
		WHERE id = $5 AND deleted_at IS NULL`,
		strings.TrimSpace(f.Title), strings.TrimSpace(f.URL), strings.TrimSpace(f.Folder), f.Description, f.ID)
	if err != nil {
		return fmt.Errorf("update file link: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("berkas")
	}
	return nil
}

func DeleteFileLink(ctx context.Context, database *sql.DB, id int64, at time.Time) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE file_links SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`, models.DeletedAt(at), id)
	if err != nil {
		return fmt.Errorf("delete file link: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("berkas")
	}
	return nil
}

// ListFolders returns the distinct folders that hold live links.
func ListFolders(ctx context.Context, database *sql.DB) ([]string, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT DISTINCT folder FROM file_links WHERE deleted_at IS NULL AND folder <> '' ORDER BY folder`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
