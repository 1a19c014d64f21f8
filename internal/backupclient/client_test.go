package backupclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTriggerBackup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cgi-bin/backup":
			_, _ = w.Write([]byte("OK sekretariat_2025-05-01.sql.gz\n"))
		default:
			http.Error(w, "restore disabled", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	out, err := c.TriggerBackup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out != "OK sekretariat_2025-05-01.sql.gz" {
		t.Fatalf("got %q", out)
	}

	_, err = c.RestoreLatest(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http 403") {
		t.Fatalf("want http 403 error, got %v", err)
	}
}
