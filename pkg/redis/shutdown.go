package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook that closes the Redis client.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return nil
		}
		return client.Close()
	}
}
