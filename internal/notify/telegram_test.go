package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/sekretariat/internal/models"
)

type fakeBot struct {
	sent   []tgbotapi.MessageConfig
	failOn map[int64]bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m := c.(tgbotapi.MessageConfig)
	if f.failOn[m.ChatID] {
		return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
	}
	f.sent = append(f.sent, m)
	return tgbotapi.Message{}, nil
}

func chat(id int64) *int64 { return &id }

func TestSessionReminder(t *testing.T) {
	bot := &fakeBot{failOn: map[int64]bool{300: true}}
	n := NewTelegram(bot, zap.NewNop(), nil, time.UTC)
	s := models.Session{
		ID: 1, Name: "Rapat pleno", Location: "Aula",
		StartAt: time.Date(2025, 5, 2, 13, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 5, 2, 15, 0, 0, 0, time.UTC),
	}
	recipients := []models.Participant{
		{ID: 1, TelegramChatID: chat(100)},
		{ID: 2},
		{ID: 3, TelegramChatID: chat(300)},
		{ID: 4, TelegramChatID: chat(400)},
	}

	sent, err := n.SessionReminder(context.Background(), s, recipients)
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 || len(bot.sent) != 2 {
		t.Fatalf("want 2 delivered, got %d", sent)
	}
	if !strings.Contains(bot.sent[0].Text, "02.05.2025 13:00 - 15:00") || !strings.Contains(bot.sent[0].Text, "Aula") {
		t.Fatalf("unexpected text %q", bot.sent[0].Text)
	}
}

func TestSessionReminder_AllFail(t *testing.T) {
	bot := &fakeBot{failOn: map[int64]bool{1: true}}
	n := NewTelegram(bot, zap.NewNop(), nil, time.UTC)
	_, err := n.SessionReminder(context.Background(), models.Session{}, []models.Participant{{ID: 1, TelegramChatID: chat(1)}})
	if err == nil {
		t.Fatal("want error when nobody was reached")
	}
}

func TestOverrideNotice(t *testing.T) {
	bot := &fakeBot{}
	n := NewTelegram(bot, zap.NewNop(), []int64{11, 12}, time.UTC)
	audits := []models.AttendanceAudit{
		{ParticipantID: 1, NewStatus: models.StatusPresent, ActorID: 7, Reason: "daftar hadir kertas"},
		{ParticipantID: 2, NewStatus: models.StatusPresent, ActorID: 7, Reason: "daftar hadir kertas"},
	}
	if err := n.OverrideNotice(context.Background(), models.Session{Name: "Rapat"}, audits); err != nil {
		t.Fatal(err)
	}
	if len(bot.sent) != 2 {
		t.Fatalf("want a notice per admin chat, got %d", len(bot.sent))
	}
	if !strings.Contains(bot.sent[0].Text, "Peserta: 2, status baru: Hadir") {
		t.Fatalf("unexpected text %q", bot.sent[0].Text)
	}
}

func TestIsSystemErr(t *testing.T) {
	if isSystemErr(nil) || isSystemErr(errors.New("Bad Request: message is not modified")) {
		t.Fatal("validation errors are not system errors")
	}
	if !isSystemErr(errors.New("Too Many Requests: 429")) {
		t.Fatal("429 is a system error")
	}
}
