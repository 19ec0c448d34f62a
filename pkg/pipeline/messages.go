package pipeline

import "github.com/metrics-agent/pkg/measurement"

// CollectorMessage 发给采集任务的控制消息
type CollectorMessage int

const (
	TriggerAggregation CollectorMessage = iota
	CollectorQuit
)

func (m CollectorMessage) String() string {
	switch m {
	case TriggerAggregation:
		return "TriggerAggregation"
	case CollectorQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// PublisherKind 发布任务消息类型
type PublisherKind int

const (
	Deliver PublisherKind = iota
	PublisherQuit
)

func (k PublisherKind) String() string {
	switch k {
	case Deliver:
		return "Deliver"
	case PublisherQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// PublisherMessage Deliver 时携带聚合结果
type PublisherMessage struct {
	Kind        PublisherKind
	Measurement measurement.Measurement
}

func DeliverMessage(m measurement.Measurement) PublisherMessage {
	return PublisherMessage{Kind: Deliver, Measurement: m}
}

func QuitMessage() PublisherMessage {
	return PublisherMessage{Kind: PublisherQuit}
}

// 任务名，用于 logger 名称与 task_running 指标标签
const (
	TaskCollector = "collector"
	TaskHeartbeat = "heartbeat"
	TaskPublisher = "publisher"
	TaskShutdown  = "shutdown"
)
