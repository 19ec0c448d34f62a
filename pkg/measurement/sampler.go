package measurement

import (
	"math"
	"time"
)

// CgroupMemory 容器 cgroup 内存计数（字节）
type CgroupMemory struct {
	UsageBytes uint64
	LimitBytes uint64
	PeakBytes  uint64 // 0 表示不可用
	Version    int    // 1 或 2
}

// RawSample 操作系统原始读数，只包含数值字段
type RawSample struct {
	CPUPercentPerCore []float64
	UsedMemoryBytes   uint64
	TotalMemoryBytes  uint64
	Cgroup            *CgroupMemory // nil 表示没有可用的 cgroup 内存限制
}

// RawSource 原始采样来源（宿主机实现见 HostSource）
type RawSource interface {
	SampleRaw() RawSample
}

// Sampler 将原始读数转换为 Measurement，本身不会失败
type Sampler struct {
	source RawSource
	now    func() time.Time
}

// NewSampler 创建采样器。source 归调用方（采样任务）独占。
func NewSampler(source RawSource) *Sampler {
	return &Sampler{source: source, now: time.Now}
}

// Sample 采样一次
func (s *Sampler) Sample() Measurement {
	return FromRaw(s.source.SampleRaw(), s.now())
}

// FromRaw 由原始读数计算利用率：
// CPU 为各逻辑核使用率的算术平均 / 100；
// 内存优先使用 cgroup usage/limit，否则使用宿主机 used/total；
// 峰值内存为 cgroup peak/limit，不可用时等于当前内存利用率。
// 所有结果截断到 [0,1]，NaN 记为 0。
func FromRaw(raw RawSample, ts time.Time) Measurement {
	var cpu float64
	if n := len(raw.CPUPercentPerCore); n > 0 {
		var sum float64
		for _, p := range raw.CPUPercentPerCore {
			sum += p
		}
		cpu = sum / float64(n) / 100
	}

	var mem, maxMem float64
	if cg := raw.Cgroup; cg != nil && cg.LimitBytes > 0 {
		mem = ratio(cg.UsageBytes, cg.LimitBytes)
		maxMem = mem
		if cg.PeakBytes > 0 {
			maxMem = max(mem, ratio(cg.PeakBytes, cg.LimitBytes))
		}
	} else {
		mem = ratio(raw.UsedMemoryBytes, raw.TotalMemoryBytes)
		maxMem = mem
	}

	return Measurement{
		Timestamp:         ts,
		CPUUtilization:    clampUnit(cpu),
		MemUtilization:    mem,
		MaxMemUtilization: maxMem,
		SampleCount:       1,
	}
}

func ratio(num, den uint64) float64 {
	if den == 0 {
		return 0
	}
	return clampUnit(float64(num) / float64(den))
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
