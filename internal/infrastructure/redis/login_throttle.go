package redis

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const loginKeyPrefix = "tweeter:login:"

// LoginThrottle allows at most Max login attempts per key within Window.
// The window starts at the first attempt and a successful login resets it.
type LoginThrottle struct {
	client *Client
	max    int64
	window time.Duration
}

func NewLoginThrottle(client *Client, max int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, max: int64(max), window: window}
}

func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	k := loginKey(key)

	pipe := t.client.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, errors.Wrap(err, "counting login attempt")
	}

	attempts := incr.Val()
	if attempts > t.max {
		t.client.logger.WithField("attempts", attempts).Warn("login throttled")
		return false, nil
	}
	return true, nil
}

func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	return errors.Wrap(t.client.rdb.Del(ctx, loginKey(key)).Err(), "resetting login attempts")
}

func loginKey(key string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(key))
}
