package attendance

import (
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/models"
)

func TestPlanOverride_PairsPriorAndNew(t *testing.T) {
	current := map[int64]models.AttendanceStatus{
		1: models.StatusPresent,
		2: models.StatusSick,
	}
	req := OverrideRequest{
		SessionID:      10,
		ParticipantIDs: []int64{1, 2, 3, 2},
		Status:         models.StatusExcused,
		ActorID:        99,
		Reason:         "surat izin menyusul",
	}
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := PlanOverride(current, req, "batch-1", at)

	if len(plan) != 3 {
		t.Fatalf("want 3 audit entries, got %d", len(plan))
	}
	wantPrior := map[int64]models.AttendanceStatus{
		1: models.StatusPresent,
		2: models.StatusSick,
		3: models.StatusAbsent,
	}
	for _, e := range plan {
		if e.PriorStatus != wantPrior[e.ParticipantID] {
			t.Fatalf("participant %d: prior %s, want %s", e.ParticipantID, e.PriorStatus, wantPrior[e.ParticipantID])
		}
		if e.NewStatus != models.StatusExcused || e.ActorID != 99 || e.Reason != req.Reason || e.BatchID != "batch-1" || !e.CreatedAt.Equal(at) {
			t.Fatalf("bad entry %+v", e)
		}
	}
}

func TestOverrideRequest_Validate(t *testing.T) {
	ok := OverrideRequest{ParticipantIDs: []int64{1}, Status: models.StatusLate, Reason: "salah input"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}

	t.Run("unknown_status", func(t *testing.T) {
		r := ok
		r.Status = "alpha"
		if apperr.KindOf(r.Validate()) != apperr.KindValidation {
			t.Fatal("want validation error")
		}
	})
	t.Run("missing_reason", func(t *testing.T) {
		r := ok
		r.Reason = ""
		if apperr.KindOf(r.Validate()) != apperr.KindValidation {
			t.Fatal("want validation error")
		}
	})
	t.Run("no_participants", func(t *testing.T) {
		r := ok
		r.ParticipantIDs = nil
		if apperr.KindOf(r.Validate()) != apperr.KindValidation {
			t.Fatal("want validation error")
		}
	})
}
