package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Lifecycle is the soft-delete state of a row: either active or deleted at a moment.
// It maps onto a nullable deleted_at column.
type Lifecycle struct {
	deleted bool
	at      time.Time
}

func Active() Lifecycle { return Lifecycle{} }

func DeletedAt(at time.Time) Lifecycle { return Lifecycle{deleted: true, at: at} }

func (l Lifecycle) IsDeleted() bool { return l.deleted }

// DeletedAt reports when the row was deleted; ok is false for active rows.
func (l Lifecycle) DeletedAt() (at time.Time, ok bool) { return l.at, l.deleted }

// Scan implements sql.Scanner for a nullable timestamp column.
func (l *Lifecycle) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = Active()
	case time.Time:
		*l = DeletedAt(v)
	default:
		return fmt.Errorf("lifecycle: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (l Lifecycle) Value() (driver.Value, error) {
	if !l.deleted {
		return nil, nil
	}
	return l.at, nil
}

func (l Lifecycle) MarshalJSON() ([]byte, error) {
	if !l.deleted {
		return []byte("null"), nil
	}
	return json.Marshal(l.at)
}
