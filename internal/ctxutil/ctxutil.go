package ctxutil

import (
	"context"
	"time"

	"github.com/Spok95/sekretariat/internal/models"
)

// private keys to avoid collisions
type key int

const keyActor key = 0

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   int64
	Name string
	Role models.Role
}

// HasRole reports whether the actor holds one of roles.
func (a Actor) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)
	return a, ok
}

var DefaultDBTimeout = 5 * time.Second

// WithTimeout wraps context.WithTimeout; d<=0 means no timeout.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}

// WithDBTimeout is the standard database timeout, shortened to the parent's deadline.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		remain := time.Until(dl)
		if remain < DefaultDBTimeout {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, DefaultDBTimeout)
}
