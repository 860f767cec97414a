// Package narrativelimit caps how often one user's insights requests
// may reach the external narrative service. Over budget is not an
// error: the caller silently takes the deterministic fallback path.
package narrativelimit

import (
	"context"
	"time"
)

// Budget answers whether one more external narrative call may be spent
// for a user, consuming the call when it may.
type Budget interface {
	Take(ctx context.Context, userID string, now time.Time) (bool, error)
}

type unlimited struct{}

// NewUnlimited grants every call; used when no redis is configured.
func NewUnlimited() Budget {
	return unlimited{}
}

func (unlimited) Take(_ context.Context, _ string, _ time.Time) (bool, error) {
	return true, nil
}
