package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/models"
)

func TestActorRoundTrip(t *testing.T) {
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatal("empty context must not carry an actor")
	}
	ctx := WithActor(context.Background(), Actor{ID: 7, Name: "Sari", Role: models.PengurusSekretaris})
	a, ok := ActorFrom(ctx)
	if !ok || a.ID != 7 || !a.HasRole(models.Admin, models.PengurusSekretaris) {
		t.Fatalf("unexpected actor %+v", a)
	}
	if a.HasRole(models.Admin) {
		t.Fatal("sekretaris is not admin")
	}
}

func TestWithDBTimeout_RespectsParent(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	ctx, c2 := WithDBTimeout(parent)
	defer c2()
	dl, ok := ctx.Deadline()
	if !ok || time.Until(dl) > time.Second {
		t.Fatalf("deadline should follow the shorter parent, got %v", dl)
	}
}
