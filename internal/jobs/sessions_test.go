//go:build testutil
// +build testutil

package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
	"github.com/Spok95/sekretariat/internal/testutil/testdb"
)

type countingNotifier struct {
	calls int
	got   []int64
}

func (c *countingNotifier) SessionReminder(_ context.Context, s models.Session, rs []models.Participant) (int, error) {
	c.calls++
	for _, p := range rs {
		c.got = append(c.got, p.ID)
	}
	return len(rs), nil
}

func (c *countingNotifier) OverrideNotice(context.Context, models.Session, []models.AttendanceAudit) error {
	return nil
}

func TestReminders_OncePerSession(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	mk := func(name string, chatID *int64) int64 {
		id, err := db.CreateParticipant(ctx, h.DB, models.Participant{
			Name: name, Email: fmt.Sprintf("%s@osis.sch.id", name), Role: models.Anggota, TelegramChatID: chatID,
		})
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	chat := int64(555)
	withChat := mk("eka", &chat)
	noChat := mk("fajar", nil)

	now := time.Now()
	Clock = func() time.Time { return now }
	defer func() { Clock = time.Now }()

	soon, err := db.CreateSession(ctx, h.DB, models.Session{
		Name: "Rapat", StartAt: now.Add(30 * time.Minute), EndAt: now.Add(90 * time.Minute), CreatedBy: withChat,
	}, []int64{withChat, noChat})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateSession(ctx, h.DB, models.Session{
		Name: "Nanti", StartAt: now.Add(5 * time.Hour), EndAt: now.Add(6 * time.Hour), CreatedBy: withChat,
	}, []int64{withChat}); err != nil {
		t.Fatal(err)
	}

	n := &countingNotifier{}
	job := Reminders(h.DB, n, zap.NewNop(), time.Hour)
	if err := job(ctx); err != nil {
		t.Fatal(err)
	}
	if err := job(ctx); err != nil {
		t.Fatal(err)
	}
	if n.calls != 1 || len(n.got) != 1 || n.got[0] != withChat {
		t.Fatalf("want one reminder to %d, got calls=%d recipients=%v", withChat, n.calls, n.got)
	}
	s, _ := db.GetSession(ctx, h.DB, soon)
	if s.RemindedAt == nil {
		t.Fatal("session must be marked reminded")
	}
}
