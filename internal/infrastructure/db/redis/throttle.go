package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRecoveryWindow = time.Minute

// RecoveryThrottle allows at most one password recovery email per address
// within a window.
// Key format: recovery:<email>
type RecoveryThrottle struct {
	client *redis.Client
	window time.Duration
}

// NewRecoveryThrottle wraps the given Redis client. A non-positive window
// uses one minute.
func NewRecoveryThrottle(client *redis.Client, window time.Duration) *RecoveryThrottle {
	if window <= 0 {
		window = defaultRecoveryWindow
	}
	return &RecoveryThrottle{client: client, window: window}
}

// Allow claims the window for email. It reports false when a recovery email
// was already sent inside the current window.
func (t *RecoveryThrottle) Allow(ctx context.Context, email string) (bool, error) {
	ok, err := t.client.SetNX(ctx, t.key(email), "1", t.window).Result()
	if err != nil {
		return false, fmt.Errorf("recovery throttle: %w", err)
	}
	return ok, nil
}

func (t *RecoveryThrottle) key(email string) string {
	return "recovery:" + email
}
