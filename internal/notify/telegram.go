// Package notify delivers session reminders and audit notices over Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/models"
	"github.com/Spok95/sekretariat/internal/observability"
)

// Sender is the part of *tgbotapi.BotAPI we use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier is what the jobs and handlers depend on.
type Notifier interface {
	SessionReminder(ctx context.Context, s models.Session, recipients []models.Participant) (int, error)
	OverrideNotice(ctx context.Context, s models.Session, audits []models.AttendanceAudit) error
}

type Telegram struct {
	bot    Sender
	log    *zap.Logger
	admins []int64
	loc    *time.Location
}

func NewTelegram(bot Sender, log *zap.Logger, admins []int64, loc *time.Location) *Telegram {
	if loc == nil {
		loc = time.UTC
	}
	return &Telegram{bot: bot, log: log, admins: admins, loc: loc}
}

// Connect builds a bot client; an empty token yields the no-op notifier.
func Connect(token string, log *zap.Logger, admins []int64, loc *time.Location) (Notifier, error) {
	if token == "" {
		log.Info("BOT_TOKEN empty, telegram notifications disabled")
		return Nop{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	log.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))
	return NewTelegram(bot, log, admins, loc), nil
}

// SessionReminder messages every recipient with a chat id and reports how many got it.
// The error is set only when nobody could be reached.
func (t *Telegram) SessionReminder(ctx context.Context, s models.Session, recipients []models.Participant) (int, error) {
	text := fmt.Sprintf("Pengingat: %s\nWaktu: %s - %s\nTempat: %s",
		s.Name,
		s.StartAt.In(t.loc).Format("02.01.2006 15:04"),
		s.EndAt.In(t.loc).Format("15:04"),
		orDash(s.Location),
	)
	sent, reachable := 0, 0
	var lastErr error
	for _, p := range recipients {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if p.TelegramChatID == nil {
			continue
		}
		reachable++
		if _, err := t.send(tgbotapi.NewMessage(*p.TelegramChatID, text)); err != nil {
			t.log.Warn("reminder not delivered", zap.Int64("session_id", s.ID), zap.Int64("participant_id", p.ID), zap.Error(err))
			lastErr = err
			continue
		}
		sent++
	}
	if sent == 0 && reachable > 0 {
		return 0, lastErr
	}
	return sent, nil
}

// OverrideNotice tells the configured admin chats about an attendance correction.
func (t *Telegram) OverrideNotice(ctx context.Context, s models.Session, audits []models.AttendanceAudit) error {
	if len(t.admins) == 0 || len(audits) == 0 {
		return nil
	}
	text := overrideText(s, audits)
	for _, chatID := range t.admins {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := t.send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.log.Warn("override notice not delivered", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
	return nil
}

func overrideText(s models.Session, audits []models.AttendanceAudit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Koreksi presensi: %s\n", s.Name)
	fmt.Fprintf(&b, "Peserta: %d, status baru: %s\n", len(audits), audits[0].NewStatus.Label())
	fmt.Fprintf(&b, "Oleh: #%d\nAlasan: %s", audits[0].ActorID, audits[0].Reason)
	return b.String()
}

func (t *Telegram) send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := t.bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}

// isSystemErr: 5xx, 429 and timeouts go to Sentry; telegram validation errors do not.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Nop drops every notification.
type Nop struct{}

func (Nop) SessionReminder(context.Context, models.Session, []models.Participant) (int, error) {
	return 0, nil
}

func (Nop) OverrideNotice(context.Context, models.Session, []models.AttendanceAudit) error {
	return nil
}
