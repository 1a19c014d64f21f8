package apperr

import (
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("status %q tidak dikenal", "x"), KindValidation},
		{"wrapped_not_found", fmt.Errorf("get session: %w", NotFound("sesi")), KindNotFound},
		{"plain", fmt.Errorf("connection refused"), KindInternal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := KindOf(c.err); got != c.want {
				t.Fatalf("want %v, got %v", c.want, got)
			}
		})
	}
}

func TestMessage_HidesInternal(t *testing.T) {
	if m := Message(fmt.Errorf("pq: relation does not exist")); m != "" {
		t.Fatalf("internal error leaked: %q", m)
	}
	if m := Message(NotFound("sesi")); m != "sesi tidak ditemukan" {
		t.Fatalf("unexpected message %q", m)
	}
}
