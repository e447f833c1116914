package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sentinelKey = "healthcheck:sentinel"
	sentinelTTL = 10 * time.Second
)

// Healthcheck returns a closure that validates both the write and read
// paths of the cache store: it writes a short-lived sentinel key, reads it
// back and compares. A fresh uuid value per invocation guarantees a stale
// key from an earlier check can never satisfy the comparison.
// Compatible with health check interfaces expecting
// func(context.Context) error.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}

		want := uuid.NewString()
		if err := client.Set(ctx, sentinelKey, want, sentinelTTL).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}

		got, err := client.Get(ctx, sentinelKey).Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if got != want {
			return errors.Join(ErrHealthcheckFailed, ErrSentinelMismatch)
		}
		return nil
	}
}
