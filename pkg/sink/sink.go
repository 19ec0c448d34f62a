package sink

import (
	"context"

	"github.com/metrics-agent/pkg/measurement"
)

// Sink 聚合结果的发布目标。
// Send 对每个聚合值最多调用一次，允许重复调用且不跨调用泄漏资源。
type Sink interface {
	Send(ctx context.Context, m measurement.Measurement) error
	Name() string
}
