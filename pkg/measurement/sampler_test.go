package measurement

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedSource struct {
	raw RawSample
}

func (f fixedSource) SampleRaw() RawSample { return f.raw }

func TestFromRaw(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	const gib = 1 << 30

	tests := []struct {
		name       string
		raw        RawSample
		wantCPU    float64
		wantMem    float64
		wantMaxMem float64
	}{
		{
			name:       "host memory, mean of cores",
			raw:        RawSample{CPUPercentPerCore: []float64{10, 30, 50, 70}, UsedMemoryBytes: 2 * gib, TotalMemoryBytes: 8 * gib},
			wantCPU:    0.4,
			wantMem:    0.25,
			wantMaxMem: 0.25,
		},
		{
			name: "cgroup preferred with peak",
			raw: RawSample{
				CPUPercentPerCore: []float64{100},
				UsedMemoryBytes:   7 * gib, TotalMemoryBytes: 8 * gib,
				Cgroup: &CgroupMemory{UsageBytes: gib, LimitBytes: 4 * gib, PeakBytes: 2 * gib},
			},
			wantCPU:    1,
			wantMem:    0.25,
			wantMaxMem: 0.5,
		},
		{
			name: "cgroup without peak",
			raw: RawSample{
				Cgroup: &CgroupMemory{UsageBytes: gib, LimitBytes: 2 * gib},
			},
			wantMem:    0.5,
			wantMaxMem: 0.5,
		},
		{
			name: "cgroup zero limit falls back to host",
			raw: RawSample{
				UsedMemoryBytes: gib, TotalMemoryBytes: 4 * gib,
				Cgroup: &CgroupMemory{UsageBytes: gib},
			},
			wantMem:    0.25,
			wantMaxMem: 0.25,
		},
		{
			name:       "nothing available",
			raw:        RawSample{},
			wantCPU:    0,
			wantMem:    0,
			wantMaxMem: 0,
		},
		{
			name:       "out of range values are clamped",
			raw:        RawSample{CPUPercentPerCore: []float64{150, 130}, UsedMemoryBytes: 9, TotalMemoryBytes: 4},
			wantCPU:    1,
			wantMem:    1,
			wantMaxMem: 1,
		},
		{
			name:    "NaN core reading coerced to zero",
			raw:     RawSample{CPUPercentPerCore: []float64{math.NaN(), 20}},
			wantCPU: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRaw(tt.raw, ts)
			assert.Equal(t, ts, got.Timestamp)
			assert.Equal(t, uint32(1), got.SampleCount)
			assert.InDelta(t, tt.wantCPU, got.CPUUtilization, 1e-9)
			assert.InDelta(t, tt.wantMem, got.MemUtilization, 1e-9)
			assert.InDelta(t, tt.wantMaxMem, got.MaxMemUtilization, 1e-9)
			assert.GreaterOrEqual(t, got.MaxMemUtilization, got.MemUtilization)
		})
	}
}

func TestSamplerUsesSourceAndClock(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	s := NewSampler(fixedSource{raw: RawSample{CPUPercentPerCore: []float64{20}}})
	s.now = func() time.Time { return ts }

	m := s.Sample()
	assert.Equal(t, ts, m.Timestamp)
	assert.InDelta(t, 0.2, m.CPUUtilization, 1e-9)
}
