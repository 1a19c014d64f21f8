package attendance

import (
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/models"
)

func rec(pid int64, st models.AttendanceStatus) models.AttendanceRecord {
	return models.AttendanceRecord{ParticipantID: pid, Status: st, RecordedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestReconcile_DefaultsToGhoib(t *testing.T) {
	details := map[int64]ParticipantDetail{
		1: {ID: 1, Name: "Andi"},
		2: {ID: 2, Name: "Budi"},
	}
	rows := Reconcile([]int64{1, 2}, []models.AttendanceRecord{rec(1, models.StatusPresent)}, details)
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].Status != models.StatusPresent || rows[0].RecordedAt == nil {
		t.Fatalf("row 1: %+v", rows[0])
	}
	if rows[1].Status != models.StatusAbsent || rows[1].RecordedAt != nil {
		t.Fatalf("participant without record must be ghoib, got %+v", rows[1])
	}
}

func TestReconcile_UnassignedCheckinIncluded(t *testing.T) {
	rows := Reconcile([]int64{5}, []models.AttendanceRecord{
		rec(9, models.StatusSick),
		rec(7, models.StatusPresent),
	}, nil)
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	got := []int64{rows[0].ParticipantID, rows[1].ParticipantID, rows[2].ParticipantID}
	want := []int64{5, 7, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: want %v, got %v", want, got)
		}
	}
	if !rows[0].Assigned || rows[1].Assigned || rows[2].Assigned {
		t.Fatalf("assigned flags wrong: %+v", rows)
	}
}

func TestReconcile_MissingDetailPlaceholder(t *testing.T) {
	rows := Reconcile([]int64{42}, nil, map[int64]ParticipantDetail{})
	if len(rows) != 1 {
		t.Fatalf("row dropped")
	}
	if rows[0].Found || rows[0].Participant.Name != MissingParticipantName || rows[0].Participant.ID != 42 {
		t.Fatalf("placeholder expected, got %+v", rows[0])
	}
}

func TestReconcile_Empty(t *testing.T) {
	rows := Reconcile(nil, nil, nil)
	if len(rows) != 0 {
		t.Fatalf("want no rows, got %d", len(rows))
	}
	tally := TallyRows(rows)
	if len(tally) != 5 {
		t.Fatalf("all five buckets must be present, got %v", tally)
	}
	for st, n := range tally {
		if n != 0 {
			t.Fatalf("%s: want 0, got %d", st, n)
		}
	}
}

func TestTally_SumsToUnion(t *testing.T) {
	assigned := []int64{1, 2, 3, 3, 4}
	records := []models.AttendanceRecord{
		rec(1, models.StatusPresent),
		rec(2, models.StatusLate),
		rec(6, models.StatusExcused),
		rec(7, models.StatusSick),
	}
	union := map[int64]bool{}
	for _, id := range assigned {
		union[id] = true
	}
	for _, r := range records {
		union[r.ParticipantID] = true
	}

	tally := TallyRows(Reconcile(assigned, records, nil))
	if tally.Total() != len(union) {
		t.Fatalf("tally total %d, union %d", tally.Total(), len(union))
	}
	if tally[models.StatusAbsent] != 2 {
		t.Fatalf("ghoib: want 2 (ids 3 and 4), got %d", tally[models.StatusAbsent])
	}
	if tally[models.StatusPresent] != 1 || tally[models.StatusLate] != 1 || tally[models.StatusExcused] != 1 || tally[models.StatusSick] != 1 {
		t.Fatalf("unexpected tally %v", tally)
	}
}
