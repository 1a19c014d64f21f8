// Package attendance merges expected participants with submitted check-ins.
package attendance

import (
	"sort"
	"time"

	"github.com/Spok95/sekretariat/internal/models"
)

// MissingParticipantName is shown for ids whose participant row is gone.
const MissingParticipantName = "(peserta tidak ditemukan)"

type ParticipantDetail struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
	OrgUnit string      `json:"org_unit"`
}

type Row struct {
	ParticipantID int64                   `json:"participant_id"`
	Participant   ParticipantDetail       `json:"participant"`
	Found         bool                    `json:"found"`
	Assigned      bool                    `json:"assigned"`
	Status        models.AttendanceStatus `json:"status"`
	RecordedAt    *time.Time              `json:"recorded_at,omitempty"`
	Note          *string                 `json:"note,omitempty"`
	Override      *models.Override        `json:"override,omitempty"`
}

// Tally always has all five statuses as keys.
type Tally map[models.AttendanceStatus]int

func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Reconcile produces one row per participant in assigned ∪ participants of records.
// Assigned ids come first in the given order, then unassigned check-ins by id.
// Without a record the status is ghoib.
func Reconcile(assigned []int64, records []models.AttendanceRecord, details map[int64]ParticipantDetail) []Row {
	byParticipant := make(map[int64]models.AttendanceRecord, len(records))
	for _, r := range records {
		byParticipant[r.ParticipantID] = r
	}

	seen := make(map[int64]bool, len(assigned)+len(records))
	ids := make([]int64, 0, len(assigned)+len(records))
	for _, id := range assigned {
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	nAssigned := len(ids)

	var extra []int64
	for id := range byParticipant {
		if !seen[id] {
			seen[id] = true
			extra = append(extra, id)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	ids = append(ids, extra...)

	rows := make([]Row, 0, len(ids))
	for i, id := range ids {
		row := Row{ParticipantID: id, Assigned: i < nAssigned, Status: models.StatusAbsent}
		if d, ok := details[id]; ok {
			row.Participant = d
			row.Found = true
		} else {
			row.Participant = ParticipantDetail{ID: id, Name: MissingParticipantName}
		}
		if rec, ok := byParticipant[id]; ok {
			row.Status = rec.Status
			at := rec.RecordedAt
			row.RecordedAt = &at
			row.Note = rec.Note
			row.Override = rec.Override
		}
		rows = append(rows, row)
	}
	return rows
}

func TallyRows(rows []Row) Tally {
	t := make(Tally, len(models.AttendanceStatuses))
	for _, s := range models.AttendanceStatuses {
		t[s] = 0
	}
	for _, r := range rows {
		t[r.Status]++
	}
	return t
}
