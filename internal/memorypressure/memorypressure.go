// Package memorypressure samples process RSS against total system
// memory and, above a configured fraction, signals FileIndexer to halve
// its concurrency and RAM buffer at the next batch boundary, per spec
// §4.11.
package memorypressure

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Limits is the indexing budget FileIndexer reads at each batch
// boundary; Monitor atomically swaps it under pressure and restores it
// once pressure subsides.
type Limits struct {
	MaxConcurrency int
	RAMBufferBytes int64
}

// Sampler abstracts the gopsutil calls so tests don't need a real
// process/VM.
type Sampler interface {
	RSSBytes() (uint64, error)
	TotalSystemBytes() (uint64, error)
}

type gopsutilSampler struct {
	proc *process.Process
}

func newGopsutilSampler() (*gopsutilSampler, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &gopsutilSampler{proc: p}, nil
}

func (s *gopsutilSampler) RSSBytes() (uint64, error) {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

func (s *gopsutilSampler) TotalSystemBytes() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Total, nil
}

// Monitor periodically samples memory and exposes the current Limits
// for FileIndexer to read at each batch boundary.
type Monitor struct {
	sampler       Sampler
	normal        Limits
	throttled     Limits
	pressureFrac  float64
	interval      time.Duration
	current       atomic.Pointer[Limits]
	underPressure atomic.Bool
}

// New constructs a Monitor sampling real process/system memory via
// gopsutil. normal is the baseline budget; pressureFraction is the
// fraction of total system memory (0-1) above which the budget is
// halved.
func New(normal Limits, pressureFraction float64, interval time.Duration) (*Monitor, error) {
	sampler, err := newGopsutilSampler()
	if err != nil {
		return nil, err
	}
	return newWithSampler(sampler, normal, pressureFraction, interval), nil
}

func newWithSampler(sampler Sampler, normal Limits, pressureFraction float64, interval time.Duration) *Monitor {
	m := &Monitor{
		sampler:      sampler,
		normal:       normal,
		throttled:    Limits{MaxConcurrency: maxInt(1, normal.MaxConcurrency/2), RAMBufferBytes: normal.RAMBufferBytes / 2},
		pressureFrac: pressureFraction,
		interval:     interval,
	}
	m.current.Store(&normal)
	return m
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Current returns the Limits FileIndexer should use for its next batch.
func (m *Monitor) Current() Limits {
	return *m.current.Load()
}

// UnderPressure reports whether the last sample exceeded the configured
// fraction.
func (m *Monitor) UnderPressure() bool {
	return m.underPressure.Load()
}

// SampleOnce takes one reading and updates Current/UnderPressure. Run
// exposes this on a ticker; SampleOnce is exported directly for tests
// and for callers that want to drive their own schedule.
func (m *Monitor) SampleOnce() error {
	rss, err := m.sampler.RSSBytes()
	if err != nil {
		return err
	}
	total, err := m.sampler.TotalSystemBytes()
	if err != nil {
		return err
	}

	pressured := total > 0 && float64(rss)/float64(total) > m.pressureFrac
	m.underPressure.Store(pressured)
	if pressured {
		m.current.Store(&m.throttled)
	} else {
		m.current.Store(&m.normal)
	}
	return nil
}

// Run samples on m.interval until ctx is cancelled. Sampling errors are
// swallowed (a transient gopsutil failure shouldn't halt indexing); the
// caller can still read Current/UnderPressure between samples.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.SampleOnce()
		}
	}
}
