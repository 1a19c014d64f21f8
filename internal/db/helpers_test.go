//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/db"
	"github.com/Spok95/sekretariat/internal/models"
)

var seq atomic.Int64

func mustSeedParticipant(tb testing.TB, dbx *sql.DB, name string, role models.Role) int64 {
	tb.Helper()
	n := seq.Add(1)
	id, err := db.CreateParticipant(context.Background(), dbx, models.Participant{
		Name:  name,
		Email: fmt.Sprintf("peserta%d@osis.sch.id", n),
		Role:  role,
	})
	if err != nil {
		tb.Fatal(err)
	}
	return id
}

func mustSeedSession(tb testing.TB, dbx *sql.DB, start time.Time, createdBy int64, participants ...int64) int64 {
	tb.Helper()
	id, err := db.CreateSession(context.Background(), dbx, models.Session{
		Name:      "Rapat pleno",
		StartAt:   start,
		EndAt:     start.Add(2 * time.Hour),
		Location:  "Ruang OSIS",
		CreatedBy: createdBy,
	}, participants)
	if err != nil {
		tb.Fatal(err)
	}
	return id
}

func ptrString(v string) *string { return &v }
