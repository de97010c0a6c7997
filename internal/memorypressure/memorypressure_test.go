package memorypressure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSampler struct {
	rss   uint64
	total uint64
	err   error
}

func (f *fakeSampler) RSSBytes() (uint64, error)         { return f.rss, f.err }
func (f *fakeSampler) TotalSystemBytes() (uint64, error) { return f.total, f.err }

func TestSampleOnceStaysNormalBelowThreshold(t *testing.T) {
	sampler := &fakeSampler{rss: 100, total: 1000}
	m := newWithSampler(sampler, Limits{MaxConcurrency: 8, RAMBufferBytes: 64 << 20}, 0.5, time.Second)

	require.NoError(t, m.SampleOnce())
	assert.False(t, m.UnderPressure())
	assert.Equal(t, 8, m.Current().MaxConcurrency)
}

func TestSampleOnceThrottlesAboveThreshold(t *testing.T) {
	sampler := &fakeSampler{rss: 600, total: 1000}
	m := newWithSampler(sampler, Limits{MaxConcurrency: 8, RAMBufferBytes: 64 << 20}, 0.5, time.Second)

	require.NoError(t, m.SampleOnce())
	assert.True(t, m.UnderPressure())
	assert.Equal(t, 4, m.Current().MaxConcurrency)
	assert.Equal(t, int64(32<<20), m.Current().RAMBufferBytes)
}

func TestSampleOnceRecoversAfterPressureSubsides(t *testing.T) {
	sampler := &fakeSampler{rss: 600, total: 1000}
	m := newWithSampler(sampler, Limits{MaxConcurrency: 8, RAMBufferBytes: 64 << 20}, 0.5, time.Second)
	require.NoError(t, m.SampleOnce())
	require.True(t, m.UnderPressure())

	sampler.rss = 100
	require.NoError(t, m.SampleOnce())
	assert.False(t, m.UnderPressure())
	assert.Equal(t, 8, m.Current().MaxConcurrency)
}

func TestThrottledConcurrencyNeverDropsBelowOne(t *testing.T) {
	sampler := &fakeSampler{rss: 600, total: 1000}
	m := newWithSampler(sampler, Limits{MaxConcurrency: 1, RAMBufferBytes: 1024}, 0.5, time.Second)
	require.NoError(t, m.SampleOnce())
	assert.Equal(t, 1, m.Current().MaxConcurrency)
}
