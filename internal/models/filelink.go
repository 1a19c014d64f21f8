package models

import "time"

// FileLink is a catalogue entry pointing at a file hosted on MediaFire.
type FileLink struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	Folder      string    `db:"folder" json:"folder"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Deleted     Lifecycle `db:"deleted_at" json:"deleted_at"`
}
