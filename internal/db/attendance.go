package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/attendance"
	"github.com/Spok95/sekretariat/internal/ctxutil"
	"github.com/Spok95/sekretariat/internal/models"
)

const recordCols = `id, session_id, participant_id, status, recorded_at, note, is_override, modified_by, modification_reason, updated_at`

func scanRecord(s scanner) (models.AttendanceRecord, error) {
	var (
		r          models.AttendanceRecord
		isOverride bool
		by         sql.NullInt64
		reason     sql.NullString
	)
	err := s.Scan(&r.ID, &r.SessionID, &r.ParticipantID, &r.Status, &r.RecordedAt, &r.Note, &isOverride, &by, &reason, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if isOverride {
		r.Override = &models.Override{By: by.Int64, Reason: reason.String}
	}
	return r, nil
}

func ListRecords(ctx context.Context, database *sql.DB, sessionID int64) ([]models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT `+recordCols+` FROM attendance_records WHERE session_id = $1 ORDER BY participant_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AttendanceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListParticipantRecords is the attendance history of one participant, newest session first.
func ListParticipantRecords(ctx context.Context, database *sql.DB, participantID int64) ([]models.AttendanceRecord, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT r.id, r.session_id, r.participant_id, r.status, r.recorded_at, r.note,
		       r.is_override, r.modified_by, r.modification_reason, r.updated_at
		FROM attendance_records r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.participant_id = $1
		ORDER BY s.start_at DESC`, participantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.AttendanceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func countRecords(ctx context.Context, tx *sql.Tx, sessionID int64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

// UpsertAttendance stores a participant's own submission. The single
// INSERT ... ON CONFLICT statement leaves no window between the existence
// check and the write; concurrent submissions resolve to the last writer.
func UpsertAttendance(ctx context.Context, database *sql.DB, sessionID, participantID int64, status models.AttendanceStatus, note *string, at time.Time) (models.AttendanceRecord, error) {
	if !status.Valid() {
		return models.AttendanceRecord{}, apperr.Validation("status kehadiran %q tidak dikenal", status)
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	r, err := scanRecord(database.QueryRowContext(ctx, `
		INSERT INTO attendance_records (session_id, participant_id, status, recorded_at, note)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, participant_id) DO UPDATE
		SET status = EXCLUDED.status,
		    recorded_at = EXCLUDED.recorded_at,
		    note = EXCLUDED.note,
		    is_override = FALSE,
		    modified_by = NULL,
		    modification_reason = NULL,
		    updated_at = now()
		RETURNING `+recordCols,
		sessionID, participantID, string(status), at, note,
	))
	if isForeignKeyViolation(err) {
		return r, apperr.NotFound("sesi atau peserta")
	}
	if err != nil {
		return r, fmt.Errorf("upsert attendance: %w", err)
	}
	return r, nil
}

// ApplyOverride writes an administrator's correction for every listed participant
// and one audit entry per participant, all in one transaction.
func ApplyOverride(ctx context.Context, database *sql.DB, req attendance.OverrideRequest, at time.Time) ([]models.AttendanceAudit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, req.SessionID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("sesi")
	}

	ids := uniqueIDs(req.ParticipantIDs)
	var known int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE id = ANY($1)`, pq.Array(ids)).Scan(&known); err != nil {
		return nil, err
	}
	if known != len(ids) {
		return nil, apperr.NotFound("sebagian peserta")
	}

	current, err := lockStatuses(ctx, tx, req.SessionID, ids)
	if err != nil {
		return nil, err
	}
	plan := attendance.PlanOverride(current, req, uuid.NewString(), at)

	upsert, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_records (session_id, participant_id, status, recorded_at, is_override, modified_by, modification_reason)
		VALUES ($1, $2, $3, $4, TRUE, $5, $6)
		ON CONFLICT (session_id, participant_id) DO UPDATE
		SET status = EXCLUDED.status,
		    is_override = TRUE,
		    modified_by = EXCLUDED.modified_by,
		    modification_reason = EXCLUDED.modification_reason,
		    updated_at = now()`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = upsert.Close() }()

	audit, err := tx.PrepareContext(ctx, `
		INSERT INTO attendance_audit (batch_id, session_id, participant_id, prior_status, new_status, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = audit.Close() }()

	for i, e := range plan {
		if _, err := upsert.ExecContext(ctx, e.SessionID, e.ParticipantID, string(e.NewStatus), at, e.ActorID, e.Reason); err != nil {
			return nil, fmt.Errorf("override participant %d: %w", e.ParticipantID, err)
		}
		if err := audit.QueryRowContext(ctx, e.BatchID, e.SessionID, e.ParticipantID, string(e.PriorStatus),
			string(e.NewStatus), e.ActorID, e.Reason, e.CreatedAt).Scan(&plan[i].ID); err != nil {
			return nil, fmt.Errorf("audit participant %d: %w", e.ParticipantID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return plan, nil
}

// lockStatuses reads and row-locks the existing records of the listed participants.
func lockStatuses(ctx context.Context, tx *sql.Tx, sessionID int64, ids []int64) (map[int64]models.AttendanceStatus, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT participant_id, status
		FROM attendance_records
		WHERE session_id = $1 AND participant_id = ANY($2)
		FOR UPDATE`, sessionID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]models.AttendanceStatus, len(ids))
	for rows.Next() {
		var (
			pid int64
			st  models.AttendanceStatus
		)
		if err := rows.Scan(&pid, &st); err != nil {
			return nil, err
		}
		out[pid] = st
	}
	return out, rows.Err()
}

func ListAudit(ctx context.Context, database *sql.DB, sessionID int64) ([]models.AttendanceAudit, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := database.QueryContext(ctx, `
		SELECT id, batch_id, session_id, participant_id, prior_status, new_status, actor_id, reason, created_at
		FROM attendance_audit
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.AttendanceAudit{}
	for rows.Next() {
		var a models.AttendanceAudit
		if err := rows.Scan(&a.ID, &a.BatchID, &a.SessionID, &a.ParticipantID, &a.PriorStatus, &a.NewStatus, &a.ActorID, &a.Reason, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SessionAttendance is the reconciled attendance view of one session.
type SessionAttendance struct {
	Session models.Session   `json:"session"`
	Rows    []attendance.Row `json:"rows"`
	Tally   attendance.Tally `json:"tally"`
}

func LoadSessionAttendance(ctx context.Context, database *sql.DB, sessionID int64) (*SessionAttendance, error) {
	s, err := GetSession(ctx, database, sessionID)
	if err != nil {
		return nil, err
	}
	assigned, err := AssignedParticipantIDs(ctx, database, sessionID)
	if err != nil {
		return nil, fmt.Errorf("assigned participants: %w", err)
	}
	records, err := ListRecords(ctx, database, sessionID)
	if err != nil {
		return nil, fmt.Errorf("attendance records: %w", err)
	}

	ids := make([]int64, 0, len(assigned)+len(records))
	ids = append(ids, assigned...)
	for _, r := range records {
		ids = append(ids, r.ParticipantID)
	}
	people, err := GetParticipantsByIDs(ctx, database, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("participant details: %w", err)
	}
	details := make(map[int64]attendance.ParticipantDetail, len(people))
	for _, p := range people {
		details[p.ID] = attendance.ParticipantDetail{ID: p.ID, Name: p.Name, Email: p.Email, Role: p.Role, OrgUnit: p.OrgUnit}
	}

	rows := attendance.Reconcile(assigned, records, details)
	return &SessionAttendance{Session: *s, Rows: rows, Tally: attendance.TallyRows(rows)}, nil
}
