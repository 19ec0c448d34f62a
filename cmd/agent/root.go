package agent

import (
	"github.com/spf13/cobra"

	"github.com/metrics-agent/pkg/config"
)

var defaultCfg = config.NewDefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "metrics-agent",
	Short: "Samples container CPU/memory utilization and publishes per-period aggregates to CloudWatch",
	Long: `metrics-agent samples CPU and memory utilization on a short tick, aggregates each
publish period (median CPU/memory, peak memory) and sends the result to CloudWatch,
or to the console with --dryrun.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithCli(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

// Execute 失败时以非 0 退出
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.Flags().StringP("config", "c", "", "-> Config file path (配置文件路径)")
	// 注册分组 flag
	initSinkFlags(rootCmd)
	initMonitorFlags(rootCmd)
	initServerFlags(rootCmd)
	initLogFlags(rootCmd)
}
