package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"

	"github.com/lib/pq"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

const participantCols = `id, name, email, phone, telegram_chat_id, role, org_unit, is_active`

func scanParticipant(s scanner) (models.Participant, error) {
	var p models.Participant
	err := s.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.TelegramChatID, &p.Role, &p.OrgUnit, &p.IsActive)
	return p, err
}

func validateParticipant(p models.Participant) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.Validation("nama peserta wajib diisi")
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperr.Validation("email %q tidak valid", p.Email)
	}
	if !p.Role.Valid() {
		return apperr.Validation("peran %q tidak dikenal", p.Role)
	}
	return nil
}

type ParticipantFilter struct {
	RolePrefix string
	ActiveOnly bool
	Query      string
}

func ListParticipants(ctx context.Context, database *sql.DB, f ParticipantFilter) ([]models.Participant, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `SELECT ` + participantCols + ` FROM participants WHERE TRUE`
	var args []any
	idx := 1
	if f.RolePrefix != "" {
		q += fmt.Sprintf(" AND role LIKE $%d", idx)
		args = append(args, escapeLike(f.RolePrefix)+"%")
		idx++
	}
	if f.ActiveOnly {
		q += " AND is_active = TRUE"
	}
	if f.Query != "" {
		q += fmt.Sprintf(" AND (LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", idx, idx)
		args = append(args, "%"+escapeLike(strings.ToLower(f.Query))+"%")
		idx++
	}
	q += " ORDER BY LOWER(name), id"

	rows, err := database.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func GetParticipant(ctx context.Context, database *sql.DB, id int64) (*models.Participant, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	p, err := scanParticipant(database.QueryRowContext(ctx, `SELECT `+participantCols+` FROM participants WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "peserta")
	}
	return &p, nil
}

// GetParticipantsByIDs returns the participants that exist; unknown ids are skipped.
func GetParticipantsByIDs(ctx context.Context, database *sql.DB, ids []int64) ([]models.Participant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `SELECT `+participantCols+` FROM participants WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func CreateParticipant(ctx context.Context, database *sql.DB, p models.Participant) (int64, error) {
	if err := validateParticipant(p); err != nil {
		return 0, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := database.QueryRowContext(ctx, `
		INSERT INTO participants (name, email, phone, telegram_chat_id, role, org_unit, is_active)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, TRUE)
		RETURNING id`,
		strings.TrimSpace(p.Name), strings.TrimSpace(p.Email), p.Phone, p.TelegramChatID, string(p.Role), p.OrgUnit,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, apperr.Conflict("email %s sudah terdaftar", p.Email)
	}
	if err != nil {
		return 0, fmt.Errorf("insert participant: %w", err)
	}
	return id, nil
}

func UpdateParticipant(ctx context.Context, database *sql.DB, p models.Participant) error {
	if err := validateParticipant(p); err != nil {
		return err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE participants
		SET name = $1, email = LOWER($2), phone = $3, telegram_chat_id = $4, role = $5, org_unit = $6,
		    is_active = $7, updated_at = now()
		WHERE id = $8`,
		strings.TrimSpace(p.Name), strings.TrimSpace(p.Email), p.Phone, p.TelegramChatID, string(p.Role), p.OrgUnit, p.IsActive, p.ID,
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("email %s sudah terdaftar", p.Email)
	}
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("peserta")
	}
	return nil
}

// SetParticipantActive deactivates instead of deleting; attendance history keeps its references.
func SetParticipantActive(ctx context.Context, database *sql.DB, id int64, active bool) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `UPDATE participants SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return apperr.NotFound("peserta")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
