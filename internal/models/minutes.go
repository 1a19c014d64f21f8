package models

import "time"

type MinutesStatus string

const (
	MinutesDraft     MinutesStatus = "draft"
	MinutesSubmitted MinutesStatus = "submitted"
	MinutesApproved  MinutesStatus = "approved"
	MinutesRejected  MinutesStatus = "rejected"
)

// Minutes is the notulensi of a session.
type Minutes struct {
	ID         int64         `db:"id" json:"id"`
	SessionID  int64         `db:"session_id" json:"session_id"`
	Title      string        `db:"title" json:"title"`
	Body       string        `db:"body" json:"body"`
	AuthorID   int64         `db:"author_id" json:"author_id"`
	Status     MinutesStatus `db:"status" json:"status"`
	ReviewerID *int64        `db:"reviewer_id" json:"reviewer_id,omitempty"`
	ReviewNote *string       `db:"review_note" json:"review_note,omitempty"`
	ReviewedAt *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}
