package agent

import (
	"github.com/spf13/cobra"
)

func initMonitorFlags(root *cobra.Command) {
	f := root.Flags()

	f.UintP("period", "p", defaultCfg.Monitor.Period, "-> Publish period in seconds (发布周期，秒)")
	f.Duration("monitor.tick", defaultCfg.Monitor.Tick, "-> Sampling tick (采样间隔)")
	f.Int("monitor.queue-size", defaultCfg.Monitor.QueueSize, "-> Capacity of the hand-off queues (队列容量)")
}
