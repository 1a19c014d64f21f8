//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
	"github.com/Spok95/sekretariat/internal/testutil/testdb"
)

func TestUpdateSession_ScheduleFrozenOnceAttendanceExists(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admin := mustSeedParticipant(t, h.DB, "Admin", models.Admin)
	p := mustSeedParticipant(t, h.DB, "Dewi", models.SekbidAnggota)
	start := time.Now().Add(time.Hour).Truncate(time.Second)
	sid := mustSeedSession(t, h.DB, start, admin, p)

	s, err := db.GetSession(ctx, h.DB, sid)
	if err != nil {
		t.Fatal(err)
	}

	s.StartAt = start.Add(30 * time.Minute)
	s.EndAt = s.StartAt.Add(2 * time.Hour)
	if err := db.UpdateSession(ctx, h.DB, *s); err != nil {
		t.Fatalf("reschedule without attendance: %v", err)
	}

	if _, err := db.UpsertAttendance(ctx, h.DB, sid, p, models.StatusPresent, nil, time.Now()); err != nil {
		t.Fatal(err)
	}

	s.StartAt = s.StartAt.Add(time.Hour)
	s.EndAt = s.EndAt.Add(time.Hour)
	if err := db.UpdateSession(ctx, h.DB, *s); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("reschedule with attendance: want conflict, got %v", err)
	}

	cur, _ := db.GetSession(ctx, h.DB, sid)
	cur.Location = "Aula"
	if err := db.UpdateSession(ctx, h.DB, *cur); err != nil {
		t.Fatalf("descriptive edit must stay allowed: %v", err)
	}
}

func TestSessions_CapacityAndAssignments(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admin := mustSeedParticipant(t, h.DB, "Admin", models.Admin)
	a := mustSeedParticipant(t, h.DB, "A", models.Anggota)
	b := mustSeedParticipant(t, h.DB, "B", models.Anggota)
	c := mustSeedParticipant(t, h.DB, "C", models.Anggota)

	_, err = db.CreateSession(ctx, h.DB, models.Session{
		Name: "Kecil", StartAt: time.Now(), EndAt: time.Now().Add(time.Hour), Capacity: 2, CreatedBy: admin,
	}, []int64{a, b, c})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("over capacity: want validation, got %v", err)
	}

	sid, err := db.CreateSession(ctx, h.DB, models.Session{
		Name: "Kecil", StartAt: time.Now(), EndAt: time.Now().Add(time.Hour), Capacity: 2, CreatedBy: admin,
	}, []int64{a, a, b})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ReplaceAssignments(ctx, h.DB, sid, []int64{b, c}); err != nil {
		t.Fatal(err)
	}
	ids, err := db.AssignedParticipantIDs(ctx, h.DB, sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != b || ids[1] != c {
		t.Fatalf("unexpected roster %v", ids)
	}
	ok, _ := db.IsAssigned(ctx, h.DB, sid, a)
	if ok {
		t.Fatal("a should no longer be assigned")
	}
}

func TestAdvanceSessionStatuses(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admin := mustSeedParticipant(t, h.DB, "Admin", models.Admin)
	now := time.Now()
	running := mustSeedSession(t, h.DB, now.Add(-time.Hour), admin)
	finished := mustSeedSession(t, h.DB, now.Add(-3*time.Hour), admin)
	future := mustSeedSession(t, h.DB, now.Add(time.Hour), admin)

	n, err := db.AdvanceSessionStatuses(ctx, h.DB, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("want 2 sessions advanced, got %d", n)
	}
	want := map[int64]models.SessionStatus{
		running:  models.SessionActive,
		finished: models.SessionCompleted,
		future:   models.SessionScheduled,
	}
	for id, st := range want {
		s, _ := db.GetSession(ctx, h.DB, id)
		if s.Status != st {
			t.Fatalf("session %d: want %s, got %s", id, st, s.Status)
		}
	}
}

func TestMinutesWorkflow(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admin := mustSeedParticipant(t, h.DB, "Admin", models.Admin)
	author := mustSeedParticipant(t, h.DB, "Sekretaris", models.PengurusSekretaris)
	other := mustSeedParticipant(t, h.DB, "Lain", models.Anggota)
	sid := mustSeedSession(t, h.DB, time.Now(), admin)

	mid, err := db.CreateMinutes(ctx, h.DB, models.Minutes{SessionID: sid, Title: "Notulen rapat", Body: "# Agenda", AuthorID: author})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateMinutesBody(ctx, h.DB, mid, other, "x", "y"); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("non-author edit: want forbidden, got %v", err)
	}
	if err := db.SubmitMinutes(ctx, h.DB, mid, author); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateMinutesBody(ctx, h.DB, mid, author, "x", "y"); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("edit while submitted: want conflict, got %v", err)
	}
	if err := db.ReviewMinutes(ctx, h.DB, mid, admin, false, "", time.Now()); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("reject without note: want validation, got %v", err)
	}
	if err := db.ReviewMinutes(ctx, h.DB, mid, admin, false, "lengkapi daftar hadir", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateMinutesBody(ctx, h.DB, mid, author, "Notulen rapat (revisi)", "# Agenda\n- hadir"); err != nil {
		t.Fatal(err)
	}
	m, _ := db.GetMinutes(ctx, h.DB, mid)
	if m.Status != models.MinutesDraft || m.ReviewNote != nil {
		t.Fatalf("rejected minutes should return to a clean draft: %+v", m)
	}
}

func TestFileLinks_SoftDelete(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	admin := mustSeedParticipant(t, h.DB, "Admin", models.Admin)
	_, err = db.CreateFileLink(ctx, h.DB, models.FileLink{Title: "LPJ", URL: "http://www.mediafire.com/file/abc", CreatedBy: admin})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("http url: want validation, got %v", err)
	}
	id, err := db.CreateFileLink(ctx, h.DB, models.FileLink{Title: "LPJ 2025", URL: "https://www.mediafire.com/file/abc/lpj.pdf", Folder: "LPJ", CreatedBy: admin})
	if err != nil {
		t.Fatal(err)
	}
	list, _ := db.ListFileLinks(ctx, h.DB, db.FileLinkFilter{Query: "lpj"})
	if len(list) != 1 {
		t.Fatalf("want 1 link, got %d", len(list))
	}
	if err := db.DeleteFileLink(ctx, h.DB, id, time.Now()); err != nil {
		t.Fatal(err)
	}
	list, _ = db.ListFileLinks(ctx, h.DB, db.FileLinkFilter{})
	if len(list) != 0 {
		t.Fatalf("deleted link still listed")
	}
	var deletedAt *time.Time
	if err := h.DB.QueryRow(`SELECT deleted_at FROM file_links WHERE id = $1`, id).Scan(&deletedAt); err != nil || deletedAt == nil {
		t.Fatalf("row must stay with deleted_at set: %v", err)
	}
}
