package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL returns ErrEmptyConnectionURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "")
		require.Error(t, err)
		require.Nil(t, client)
		require.True(t, errors.Is(err, ErrEmptyConnectionURL))
	})

	t.Run("unsupported scheme returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		for _, url := range []string{
			"http://localhost:6379",
			"localhost:6379",
			"postgres://localhost:6379",
		} {
			client, err := Open(ctx, url)
			require.Error(t, err)
			require.Nil(t, client)
			require.True(t, errors.Is(err, ErrFailedToParseURL))
		}
	})

	t.Run("malformed URL returns ErrFailedToParseURL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "redis://localhost:6379/notanumber")
		require.Error(t, err)
		require.Nil(t, client)
		require.True(t, errors.Is(err, ErrFailedToParseURL))
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	check := Healthcheck(nil)
	err := check(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrHealthcheckFailed))
}

func TestFetchInfo_NilClient(t *testing.T) {
	t.Parallel()

	fetch := FetchInfo(nil)
	_, err := fetch(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInfoUnavailable))
}

func TestParseInfo(t *testing.T) {
	t.Parallel()

	t.Run("parses numeric fields across sections", func(t *testing.T) {
		t.Parallel()

		raw := "# Clients\r\nconnected_clients:7\r\ncluster_connections:0\r\n\r\n" +
			"# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\nused_memory_peak:2097152\r\n"

		fields := parseInfo(raw)
		require.Equal(t, int64(7), fields["connected_clients"])
		require.Equal(t, int64(1048576), fields["used_memory"])
		require.Equal(t, int64(2097152), fields["used_memory_peak"])
	})

	t.Run("skips section headers and non-numeric values", func(t *testing.T) {
		t.Parallel()

		fields := parseInfo("# Server\r\nredis_version:7.2.4\r\nos:Linux\r\n")
		require.NotContains(t, fields, "redis_version")
		require.NotContains(t, fields, "os")
		require.NotContains(t, fields, "# Server")
	})

	t.Run("missing keys read as zero", func(t *testing.T) {
		t.Parallel()

		fields := parseInfo("")
		require.Zero(t, fields["connected_clients"])
		require.Zero(t, fields["used_memory"])
	})
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("closes the client", func(t *testing.T) {
		t.Parallel()

		closer := &mockCloser{}
		require.NoError(t, Shutdown(closer)(context.Background()))
		require.True(t, closer.closed)
	})

	t.Run("nil client is a no-op", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Shutdown(nil)(context.Background()))
	})
}

type mockCloser struct {
	closed bool
}

func (m *mockCloser) Close() error {
	m.closed = true
	return nil
}
