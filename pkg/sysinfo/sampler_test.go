package sysinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUnavailableSampler(t *testing.T) {
	t.Parallel()

	s := Unavailable()

	t.Run("reports not available", func(t *testing.T) {
		t.Parallel()

		require.False(t, s.Available())
	})

	t.Run("sample fails with ErrUnavailable", func(t *testing.T) {
		t.Parallel()

		snap, err := s.Sample(context.Background())
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrUnavailable))
		require.Zero(t, snap)
	})
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	t.Run("defaults applied", func(t *testing.T) {
		t.Parallel()

		s, ok := New().(*hostSampler)
		require.True(t, ok)
		require.Equal(t, defaultCPUSampleWindow, s.cpuWindow)
		require.Equal(t, defaultDiskPath, s.diskPath)
	})

	t.Run("options override defaults", func(t *testing.T) {
		t.Parallel()

		s, ok := New(
			WithCPUSampleWindow(100*time.Millisecond),
			WithDiskPath("/var"),
		).(*hostSampler)
		require.True(t, ok)
		require.Equal(t, 100*time.Millisecond, s.cpuWindow)
		require.Equal(t, "/var", s.diskPath)
	})

	t.Run("invalid option values ignored", func(t *testing.T) {
		t.Parallel()

		s, ok := New(
			WithCPUSampleWindow(-time.Second),
			WithDiskPath(""),
		).(*hostSampler)
		require.True(t, ok)
		require.Equal(t, defaultCPUSampleWindow, s.cpuWindow)
		require.Equal(t, defaultDiskPath, s.diskPath)
	})

	t.Run("host sampler reports available", func(t *testing.T) {
		t.Parallel()

		require.True(t, New().Available())
	})
}
