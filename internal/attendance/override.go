package attendance

import (
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/models"
)

// OverrideRequest is an administrator's correction of one or many participants.
type OverrideRequest struct {
	SessionID      int64
	ParticipantIDs []int64
	Status         models.AttendanceStatus
	ActorID        int64
	Reason         string
}

func (r OverrideRequest) Validate() error {
	if !r.Status.Valid() {
		return apperr.Validation("status kehadiran %q tidak dikenal", r.Status)
	}
	if len(r.ParticipantIDs) == 0 {
		return apperr.Validation("daftar peserta kosong")
	}
	if r.Reason == "" {
		return apperr.Validation("alasan perubahan wajib diisi")
	}
	return nil
}

// PlanOverride pairs every listed participant with its current effective status.
// Participants without a record are treated as ghoib. Duplicated ids produce one entry.
func PlanOverride(current map[int64]models.AttendanceStatus, req OverrideRequest, batchID string, at time.Time) []models.AttendanceAudit {
	seen := make(map[int64]bool, len(req.ParticipantIDs))
	out := make([]models.AttendanceAudit, 0, len(req.ParticipantIDs))
	for _, pid := range req.ParticipantIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		prior, ok := current[pid]
		if !ok {
			prior = models.StatusAbsent
		}
		out = append(out, models.AttendanceAudit{
			BatchID:       batchID,
			SessionID:     req.SessionID,
			ParticipantID: pid,
			PriorStatus:   prior,
			NewStatus:     req.Status,
			ActorID:       req.ActorID,
			Reason:        req.Reason,
			CreatedAt:     at,
		})
	}
	return out
}
