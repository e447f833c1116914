package sysinfo

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	defaultCPUSampleWindow = 500 * time.Millisecond
	defaultDiskPath        = "/"
)

// Snapshot holds one point-in-time measurement of host resources.
// Percentages are in the 0-100 range, sizes in bytes.
type Snapshot struct {
	CPUPercent      float64
	MemoryPercent   float64
	MemoryAvailable uint64
	DiskPercent     float64
	DiskFree        uint64
}

// Sampler reports host resource utilization. Implementations must be safe
// for concurrent use.
type Sampler interface {
	// Available reports whether the host exposes resource metrics at all.
	// It is fixed at construction time and never flips mid-process.
	Available() bool

	// Sample takes a fresh measurement. It blocks for the CPU sample
	// window. Returns an error when the sampler is unavailable or a
	// measurement fails.
	Sample(ctx context.Context) (Snapshot, error)
}

// Option configures the host sampler.
type Option func(*hostSampler)

// WithCPUSampleWindow sets the blocking CPU measurement window.
// Default: 500ms.
func WithCPUSampleWindow(d time.Duration) Option {
	return func(s *hostSampler) {
		if d > 0 {
			s.cpuWindow = d
		}
	}
}

// WithDiskPath sets the mount point measured for disk utilization.
// Default: "/".
func WithDiskPath(path string) Option {
	return func(s *hostSampler) {
		if path != "" {
			s.diskPath = path
		}
	}
}

// New creates a gopsutil-backed host sampler.
func New(opts ...Option) Sampler {
	s := &hostSampler{
		cpuWindow: defaultCPUSampleWindow,
		diskPath:  defaultDiskPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Detect probes the host once and returns a working sampler, or the
// unavailable variant when resource metrics cannot be read. Call at process
// start so request handlers can branch on a stable Available flag.
func Detect(ctx context.Context, opts ...Option) Sampler {
	if _, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		return Unavailable()
	}
	return New(opts...)
}

// Unavailable returns the no-op sampler for deployments without OS metrics
// access. Available reports false and Sample always fails with
// [ErrUnavailable].
func Unavailable() Sampler {
	return unavailableSampler{}
}

type hostSampler struct {
	cpuWindow time.Duration
	diskPath  string
}

func (s *hostSampler) Available() bool { return true }

func (s *hostSampler) Sample(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	percents, err := cpu.PercentWithContext(ctx, s.cpuWindow, false)
	if err != nil {
		return Snapshot{}, errors.Join(ErrSampleFailed, err)
	}
	if len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Snapshot{}, errors.Join(ErrSampleFailed, err)
	}
	snap.MemoryPercent = vm.UsedPercent
	snap.MemoryAvailable = vm.Available

	du, err := disk.UsageWithContext(ctx, s.diskPath)
	if err != nil {
		return Snapshot{}, errors.Join(ErrSampleFailed, err)
	}
	snap.DiskPercent = du.UsedPercent
	snap.DiskFree = du.Free

	return snap, nil
}

type unavailableSampler struct{}

func (unavailableSampler) Available() bool { return false }

func (unavailableSampler) Sample(context.Context) (Snapshot, error) {
	return Snapshot{}, ErrUnavailable
}
