package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/notify"
)

// Clock is swapped in tests.
var Clock = time.Now

// AdvanceStatuses moves sessions to active at their start and completed at their end.
func AdvanceStatuses(database *sql.DB, log *zap.Logger) Job {
	return func(ctx context.Context) error {
		n, err := db.AdvanceSessionStatuses(ctx, database, Clock())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info("session statuses advanced", zap.Int64("count", n))
		}
		return nil
	}
}

// Reminders notifies assigned participants of sessions starting within the window,
// once per session.
func Reminders(database *sql.DB, n notify.Notifier, log *zap.Logger, within time.Duration) Job {
	return func(ctx context.Context) error {
		sessions, err := db.DueForReminder(ctx, database, Clock(), within, 100)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return nil
		}

		done := make([]int64, 0, len(sessions))
		var firstErr error
		for _, s := range sessions {
			recipients, err := db.ReminderRecipients(ctx, database, s.ID)
			if err != nil {
				return fmt.Errorf("recipients of session %d: %w", s.ID, err)
			}
			sent, err := n.SessionReminder(ctx, s, recipients)
			if err != nil {
				log.Warn("session reminder failed", zap.Int64("session_id", s.ID), zap.Error(err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			remindersSent.Add(float64(sent))
			done = append(done, s.ID)
		}

		if len(done) > 0 {
			if err := db.MarkReminded(ctx, database, done); err != nil {
				return err
			}
		}
		return firstErr
	}
}
