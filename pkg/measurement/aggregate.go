package measurement

import "slices"

// Aggregate 将一个窗口内的有序采样序列归约为一条汇总数据。
// 序列为空时返回 false（聚合触发早于第一次采样属于正常情况）。
// CPU 与内存取中位数，峰值内存取最大值，时间戳取最后一个采样。
func Aggregate(series []Measurement) (Measurement, bool) {
	if len(series) == 0 {
		return Measurement{}, false
	}

	cpu := make([]float64, len(series))
	mem := make([]float64, len(series))
	maxMem := series[0].MaxMemUtilization
	for i, m := range series {
		cpu[i] = m.CPUUtilization
		mem[i] = m.MemUtilization
		maxMem = max(maxMem, m.MaxMemUtilization)
	}

	return Measurement{
		Timestamp:         series[len(series)-1].Timestamp,
		CPUUtilization:    Median(cpu),
		MemUtilization:    Median(mem),
		MaxMemUtilization: maxMem,
		SampleCount:       uint32(len(series)),
	}, true
}

// Median 统计中位数，偶数个元素取中间两个的平均值。values 会被原地排序。
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	slices.Sort(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
