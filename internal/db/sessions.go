package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

const sessionCols = `id, name, start_at, end_at, location, capacity, status, description, created_by, created_at, reminded_at`

func scanSession(s scanner) (models.Session, error) {
	var x models.Session
	err := s.Scan(&x.ID, &x.Name, &x.StartAt, &x.EndAt, &x.Location, &x.Capacity, &x.Status, &x.Description, &x.CreatedBy, &x.CreatedAt, &x.RemindedAt)
	return x, err
}

func validateSession(s models.Session) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation("nama sesi wajib diisi")
	}
	if s.StartAt.IsZero() || s.EndAt.IsZero() {
		return apperr.Validation("waktu mulai dan selesai wajib diisi")
	}
	if !s.EndAt.After(s.StartAt) {
		return apperr.Validation("waktu selesai harus setelah waktu mulai")
	}
	if s.Capacity < 0 {
		return apperr.Validation("kapasitas tidak boleh negatif")
	}
	if s.Status != "" && !s.Status.Valid() {
		return apperr.Validation("status sesi %q tidak dikenal", s.Status)
	}
	return nil
}

func checkCapacity(capacity, n int) error {
	if capacity > 0 && n > capacity {
		return apperr.Validation("jumlah peserta (%d) melebihi kapasitas sesi (%d)", n, capacity)
	}
	return nil
}

// CreateSession inserts the session and its assignments in one transaction.
func CreateSession(ctx context.Context, database *sql.DB, s models.Session, participantIDs []int64) (int64, error) {
	if err := validateSession(s); err != nil {
		return 0, err
	}
	participantIDs = uniqueIDs(participantIDs)
	if err := checkCapacity(s.Capacity, len(participantIDs)); err != nil {
		return 0, err
	}
	if s.Status == "" {
		s.Status = models.SessionScheduled
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (name, start_at, end_at, location, capacity, status, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		strings.TrimSpace(s.Name), s.StartAt, s.EndAt, s.Location, s.Capacity, string(s.Status), s.Description, s.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	if err := insertAssignments(ctx, tx, id, participantIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertAssignments(ctx context.Context, tx *sql.Tx, sessionID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO session_assignments (session_id, participant_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT (session_id, participant_id) DO NOTHING`, sessionID, pq.Array(ids))
	if isForeignKeyViolation(err) {
		return apperr.Validation("sebagian peserta tidak ditemukan")
	}
	if err != nil {
		return fmt.Errorf("insert assignments: %w", err)
	}
	return nil
}

func GetSession(ctx context.Context, database *sql.DB, id int64) (*models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	s, err := scanSession(database.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "sesi")
	}
	return &s, nil
}

type SessionFilter struct {
	From   *time.Time
	To     *time.Time
	Status models.SessionStatus
}

func ListSessions(ctx context.Context, database *sql.DB, f SessionFilter) ([]models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	q := `SELECT ` + sessionCols + ` FROM sessions WHERE TRUE`
	var args []any
	idx := 1
	if f.From != nil {
		q += fmt.Sprintf(" AND start_at >= $%d", idx)
		args = append(args, *f.From)
		idx++
	}
	if f.To != nil {
		q += fmt.Sprintf(" AND start_at < $%d", idx)
		args = append(args, *f.To)
		idx++
	}
	if f.Status != "" {
		q += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(f.Status))
		idx++
	}
	q += " ORDER BY start_at DESC, id DESC"

	rows, err := database.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSession changes a session. Once attendance exists the schedule
// (start and end) is frozen; name, location, capacity, status and description stay editable.
func UpdateSession(ctx context.Context, database *sql.DB, s models.Session) error {
	if err := validateSession(s); err != nil {
		return err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cur, err := scanSession(tx.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1 FOR UPDATE`, s.ID))
	if err != nil {
		return notFound(err, "sesi")
	}
	if !cur.StartAt.Equal(s.StartAt) || !cur.EndAt.Equal(s.EndAt) {
		n, err := countRecords(ctx, tx, s.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("jadwal sesi tidak dapat diubah karena presensi sudah tercatat")
		}
	}
	var assigned int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_assignments WHERE session_id = $1`, s.ID).Scan(&assigned); err != nil {
		return err
	}
	if err := checkCapacity(s.Capacity, assigned); err != nil {
		return err
	}
	if s.Status == "" {
		s.Status = cur.Status
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET name = $1, start_at = $2, end_at = $3, location = $4, capacity = $5, status = $6,
		    description = $7, updated_at = now()
		WHERE id = $8`,
		strings.TrimSpace(s.Name), s.StartAt, s.EndAt, s.Location, s.Capacity, string(s.Status), s.Description, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return tx.Commit()
}

// ReplaceAssignments makes the session roster exactly ids.
func ReplaceAssignments(ctx context.Context, database *sql.DB, sessionID int64, ids []int64) error {
	ids = uniqueIDs(ids)
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var capacity int
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM sessions WHERE id = $1 FOR UPDATE`, sessionID).Scan(&capacity)
	if err != nil {
		return notFound(err, "sesi")
	}
	if err := checkCapacity(capacity, len(ids)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM session_assignments
		WHERE session_id = $1 AND NOT (participant_id = ANY($2))`, sessionID, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	if err := insertAssignments(ctx, tx, sessionID, ids); err != nil {
		return err
	}
	return tx.Commit()
}

func AssignedParticipantIDs(ctx context.Context, database *sql.DB, sessionID int64) ([]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT participant_id FROM session_assignments WHERE session_id = $1 ORDER BY participant_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func IsAssigned(ctx context.Context, database *sql.DB, sessionID, participantID int64) (bool, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var ok bool
	err := database.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM session_assignments WHERE session_id = $1 AND participant_id = $2)`,
		sessionID, participantID).Scan(&ok)
	return ok, err
}

// AdvanceSessionStatuses moves sessions along scheduled → active → completed by the clock.
func AdvanceSessionStatuses(ctx context.Context, database *sql.DB, now time.Time) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := database.ExecContext(ctx, `
		UPDATE sessions
		SET status = CASE WHEN end_at <= $1 THEN 'completed' ELSE 'active' END,
		    updated_at = now()
		WHERE (status = 'scheduled' AND start_at <= $1)
		   OR (status = 'active' AND end_at <= $1)`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DueForReminder returns scheduled sessions starting within the window that were not reminded yet.
func DueForReminder(ctx context.Context, database *sql.DB, now time.Time, within time.Duration, batch int) ([]models.Session, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+sessionCols+`
		FROM sessions
		WHERE status = 'scheduled' AND reminded_at IS NULL
		  AND start_at > $1 AND start_at <= $2
		ORDER BY start_at
		LIMIT $3`, now, now.Add(within), batch)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func MarkReminded(ctx context.Context, database *sql.DB, ids []int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := database.ExecContext(ctx, `
		UPDATE sessions SET reminded_at = now(), updated_at = now() WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

// ReminderRecipients are active assigned participants reachable on telegram.
func ReminderRecipients(ctx context.Context, database *sql.DB, sessionID int64) ([]models.Participant, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT p.id, p.name, p.email, p.phone, p.telegram_chat_id, p.role, p.org_unit, p.is_active
		FROM session_assignments a
		JOIN participants p ON p.id = a.participant_id
		WHERE a.session_id = $1 AND p.is_active = TRUE AND p.telegram_chat_id IS NOT NULL
		ORDER BY p.id`, sessionID)
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

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
