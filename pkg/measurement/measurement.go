// Package measurement 定义 CPU/内存利用率数据点，以及采样与聚合逻辑。
package measurement

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"
)

// Measurement 单次采样或一个聚合窗口的汇总结果，创建后不再修改
type Measurement struct {
	Timestamp         time.Time
	CPUUtilization    float64 // [0,1]
	MemUtilization    float64 // [0,1]
	MaxMemUtilization float64 // [0,1]
	SampleCount       uint32
}

// String 对应日志/控制台输出格式
func (m Measurement) String() string {
	return fmt.Sprintf("Measurement{ts %s, cpu %.3f, mem %.3f, max_mem %.3f, samples %d}",
		m.Timestamp.UTC().Format(time.RFC3339), m.CPUUtilization, m.MemUtilization, m.MaxMemUtilization, m.SampleCount)
}

// MarshalLogObject 实现 zapcore.ObjectMarshaler，便于 zap.Object 结构化输出
func (m Measurement) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddTime("timestamp", m.Timestamp)
	enc.AddFloat64("cpu", m.CPUUtilization)
	enc.AddFloat64("mem", m.MemUtilization)
	enc.AddFloat64("max_mem", m.MaxMemUtilization)
	enc.AddUint32("samples", m.SampleCount)
	return nil
}
