package measurement

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// HostSource 宿主机原始读数：gopsutil 每核 CPU 时间差 + 内存，叠加 cgroup 内存计数。
// 保存上一次的 CPU 时间，只能由一个采样任务独占使用。
type HostSource struct {
	cgroup CgroupReader
	log    *zap.Logger

	lastTimes []cpu.TimesStat // 上一次的每核CPU时间，用于计算使用率

	cpuTimes      func(percpu bool) ([]cpu.TimesStat, error)
	cpuPercent    func(percpu bool) ([]float64, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
}

// NewHostSource 创建宿主机采样源，cgroupRoot 为空时使用 DefaultCgroupRoot
func NewHostSource(cgroupRoot string, log *zap.Logger) *HostSource {
	if cgroupRoot == "" {
		cgroupRoot = DefaultCgroupRoot
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HostSource{
		cgroup:   CgroupReader{Root: cgroupRoot},
		log:      log,
		cpuTimes: cpu.Times,
		cpuPercent: func(percpu bool) ([]float64, error) {
			return cpu.Percent(0, percpu)
		},
		virtualMemory: mem.VirtualMemory,
	}
}

// SampleRaw 读取失败时退化到次级来源，最终返回零值，不返回错误
func (h *HostSource) SampleRaw() RawSample {
	raw := RawSample{
		CPUPercentPerCore: h.perCorePercent(),
		Cgroup:            h.cgroup.Read(),
	}
	if vm, err := h.virtualMemory(); err != nil {
		h.log.Debug("read virtual memory failed", zap.Error(err))
	} else if vm != nil {
		raw.UsedMemoryBytes = vm.Used
		raw.TotalMemoryBytes = vm.Total
	}
	return raw
}

// Describe 描述当前生效的内存计量来源（启动日志使用）
func (h *HostSource) Describe() string {
	vm, err := h.virtualMemory()
	host := "host: unavailable"
	if err == nil && vm != nil {
		host = fmt.Sprintf("host: used %d, total %d", vm.Used, vm.Total)
	}
	if cg := h.cgroup.Read(); cg != nil {
		return fmt.Sprintf("cgroup v%d: usage %d, peak %d, limit %d (%s)", cg.Version, cg.UsageBytes, cg.PeakBytes, cg.LimitBytes, host)
	}
	return host
}

// perCorePercent 计算各逻辑核自上次采样以来的使用率（0-100）
func (h *HostSource) perCorePercent() []float64 {
	times, err := h.cpuTimes(true)
	if err != nil || len(times) == 0 {
		h.log.Debug("read cpu times failed, falling back to cpu percent", zap.Error(err))
		percent, err := h.cpuPercent(true)
		if err != nil {
			h.log.Debug("read cpu percent failed", zap.Error(err))
			return nil
		}
		return percent
	}

	// 核数变化（热插拔）时丢弃历史
	if len(h.lastTimes) != len(times) {
		h.lastTimes = make([]cpu.TimesStat, len(times))
	}

	percent := make([]float64, len(times))
	for i, cur := range times {
		prev := h.lastTimes[i]
		deltaTotal := totalTime(cur) - totalTime(prev)
		deltaIdle := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
		if deltaTotal > 0 {
			percent[i] = (deltaTotal - deltaIdle) / deltaTotal * 100
		}
	}
	h.lastTimes = times
	return percent
}

func totalTime(t cpu.TimesStat) float64 {
	return t.User + t.Nice + t.System + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal
}
