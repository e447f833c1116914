package redis

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Info holds the counters the metrics endpoint extracts from the server's
// INFO output. Memory values are in bytes.
type Info struct {
	ConnectedClients int64
	UsedMemory       int64
	UsedMemoryPeak   int64
}

// FetchInfo returns a closure that fetches client and memory counters via
// the INFO command. Fields missing from the server's reply default to
// zero; the whole fetch fails only when the command itself fails.
func FetchInfo(client redis.UniversalClient) func(context.Context) (Info, error) {
	return func(ctx context.Context) (Info, error) {
		if client == nil {
			return Info{}, ErrInfoUnavailable
		}

		raw, err := client.Info(ctx, "clients", "memory").Result()
		if err != nil {
			return Info{}, errors.Join(ErrInfoUnavailable, err)
		}

		fields := parseInfo(raw)
		return Info{
			ConnectedClients: fields["connected_clients"],
			UsedMemory:       fields["used_memory"],
			UsedMemoryPeak:   fields["used_memory_peak"],
		}, nil
	}
}

// parseInfo reads the INFO wire format ("key:value" lines, CRLF
// separated, "#" section headers) into a map of the numeric fields.
// Non-numeric values are skipped; callers treat missing keys as zero.
func parseInfo(raw string) map[string]int64 {
	fields := make(map[string]int64)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		fields[key] = n
	}
	return fields
}
