package models

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionActive, SessionCompleted:
		return true
	default:
		return false
	}
}

// Session is a scheduled meeting. StartAt/EndAt are absolute instants; the
// session date is StartAt in the organisation's time zone.
type Session struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	StartAt     time.Time     `db:"start_at" json:"start_at"`
	EndAt       time.Time     `db:"end_at" json:"end_at"`
	Location    string        `db:"location" json:"location"`
	Capacity    int           `db:"capacity" json:"capacity"`
	Status      SessionStatus `db:"status" json:"status"`
	Description *string       `db:"description" json:"description,omitempty"`
	CreatedBy   int64         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	RemindedAt  *time.Time    `db:"reminded_at" json:"-"`
}

// CheckinWindow returns the interval in which participants may check in themselves.
func (s Session) CheckinWindow(openBefore time.Duration) (from, to time.Time) {
	return s.StartAt.Add(-openBefore), s.EndAt
}
