package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/sekretariat")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_IDS", "101, 202;303")
	t.Setenv("LATE_GRACE", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.CheckinOpenBefore != 30*time.Minute || cfg.LateGrace != 10*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.AdminIDs) != 3 || cfg.AdminIDs[2] != 303 {
		t.Fatalf("admin ids: %v", cfg.AdminIDs)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty DATABASE_URL")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/x")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("CHECKIN_OPEN_BEFORE", "half an hour")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for bad duration")
	}
}
