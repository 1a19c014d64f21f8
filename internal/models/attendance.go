package models

import "time"

// AttendanceStatus is persisted as-is; the string values are part of the storage contract.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "hadir"
	StatusLate    AttendanceStatus = "terlambat"
	StatusExcused AttendanceStatus = "izin"
	StatusSick    AttendanceStatus = "sakit"
	StatusAbsent  AttendanceStatus = "ghoib"
)

// AttendanceStatuses lists every status in display order.
var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusLate, StatusExcused, StatusSick, StatusAbsent}

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusExcused, StatusSick, StatusAbsent:
		return true
	default:
		return false
	}
}

// Label returns the Indonesian display name used in exports.
func (s AttendanceStatus) Label() string {
	switch s {
	case StatusPresent:
		return "Hadir"
	case StatusLate:
		return "Terlambat"
	case StatusExcused:
		return "Izin"
	case StatusSick:
		return "Sakit"
	case StatusAbsent:
		return "Ghoib"
	default:
		return string(s)
	}
}

// Override marks a record written by an administrator instead of the participant.
type Override struct {
	By     int64  `json:"by"`
	Reason string `json:"reason"`
}

type AttendanceRecord struct {
	ID            int64            `db:"id" json:"id"`
	SessionID     int64            `db:"session_id" json:"session_id"`
	ParticipantID int64            `db:"participant_id" json:"participant_id"`
	Status        AttendanceStatus `db:"status" json:"status"`
	RecordedAt    time.Time        `db:"recorded_at" json:"recorded_at"`
	Note          *string          `db:"note" json:"note,omitempty"`
	Override      *Override        `json:"override,omitempty"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceAudit is one entry of the administrative correction log.
type AttendanceAudit struct {
	ID            int64            `db:"id" json:"id"`
	BatchID       string           `db:"batch_id" json:"batch_id"`
	SessionID     int64            `db:"session_id" json:"session_id"`
	ParticipantID int64            `db:"participant_id" json:"participant_id"`
	PriorStatus   AttendanceStatus `db:"prior_status" json:"prior_status"`
	NewStatus     AttendanceStatus `db:"new_status" json:"new_status"`
	ActorID       int64            `db:"actor_id" json:"actor_id"`
	Reason        string           `db:"reason" json:"reason"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
