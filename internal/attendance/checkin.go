package attendance

import (
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/models"
)

// Policy holds the self check-in rules.
type Policy struct {
	OpenBefore time.Duration
	LateGrace  time.Duration
}

// CheckIn is a participant's own submission.
type CheckIn struct {
	Session  models.Session
	Assigned bool
	Status   models.AttendanceStatus
	Note     *string
	At       time.Time
}

// Resolve validates a self check-in and returns the status to store.
// Late "hadir" submissions are stored as "terlambat".
func (p Policy) Resolve(c CheckIn) (models.AttendanceStatus, error) {
	if !c.Status.Valid() {
		return "", apperr.Validation("status kehadiran %q tidak dikenal", c.Status)
	}
	switch c.Status {
	case models.StatusPresent, models.StatusExcused, models.StatusSick:
	default:
		return "", apperr.Validation("status %q hanya dapat diisi oleh admin", c.Status)
	}
	if !c.Assigned {
		return "", apperr.Forbidden("anda tidak terdaftar sebagai peserta sesi ini")
	}
	if c.Session.Status == models.SessionCompleted {
		return "", apperr.Validation("sesi sudah selesai")
	}
	from, to := c.Session.CheckinWindow(p.OpenBefore)
	if c.At.Before(from) {
		return "", apperr.Validation("presensi dibuka mulai %s", from.Format("02.01.2006 15:04"))
	}
	if c.At.After(to) {
		return "", apperr.Validation("waktu presensi sudah berakhir")
	}
	if c.Status == models.StatusPresent && c.At.After(c.Session.StartAt.Add(p.LateGrace)) {
		return models.StatusLate, nil
	}
	return c.Status, nil
}
