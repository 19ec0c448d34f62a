package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var valid = validator.New()

// EnvPrefix 环境变量前缀（AGENT_SINK_NAMESPACE -> sink.namespace）
const EnvPrefix = "AGENT"

// Config 全局配置结构体（聚合所有核心模块）
type Config struct {
	Sink    SinkConfig    `yaml:"sink" mapstructure:"sink" comment:"指标发布配置"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor" comment:"采样与聚合配置"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server" comment:"自监控HTTP服务配置"`
	Log     ZapLogConfig  `yaml:"log" mapstructure:"log" comment:"日志配置"`
}

// SinkConfig 发布目标配置，DryRun 时使用控制台输出替代 CloudWatch
type SinkConfig struct {
	Namespace   string        `yaml:"namespace" mapstructure:"namespace" env:"AGENT_SINK_NAMESPACE" validate:"required" comment:"CloudWatch 指标命名空间"`
	ServiceName string        `yaml:"service_name" mapstructure:"service_name" env:"AGENT_SINK_SERVICE_NAME" validate:"required" comment:"ServiceName 维度值"`
	Region      string        `yaml:"region" mapstructure:"region" env:"AGENT_SINK_REGION" comment:"AWS region，为空时使用默认链解析"`
	DryRun      bool          `yaml:"dryrun" mapstructure:"dryrun" env:"AGENT_SINK_DRYRUN" comment:"只输出到控制台" default:"false"`
	SendTimeout time.Duration `yaml:"send_timeout" mapstructure:"send_timeout" env:"AGENT_SINK_SEND_TIMEOUT" validate:"required,gt=0" comment:"单次发送超时" default:"30s"`
}

// MonitorConfig 采样与聚合配置
type MonitorConfig struct {
	Period    uint          `yaml:"period" mapstructure:"period" env:"AGENT_MONITOR_PERIOD" validate:"required,gt=0" comment:"发布周期（秒）" default:"60"`
	Tick      time.Duration `yaml:"tick" mapstructure:"tick" env:"AGENT_MONITOR_TICK" validate:"required,gt=0" comment:"采样间隔（如900ms）" default:"900ms"`
	QueueSize int           `yaml:"queue_size" mapstructure:"queue_size" env:"AGENT_MONITOR_QUEUE_SIZE" validate:"required,gt=0" comment:"阶段间队列容量" default:"4"`
}

// PublishPeriod 发布周期转换为 time.Duration
func (m MonitorConfig) PublishPeriod() time.Duration {
	return time.Duration(m.Period) * time.Second
}

// ServerConfig HTTP服务配置（超时统一为time.Duration，支持"30s"解析）
type ServerConfig struct {
	Enable       bool          `yaml:"enable" mapstructure:"enable" env:"AGENT_SERVER_ENABLE" comment:"是否暴露 /metrics 与 /health" default:"true"`
	Addr         string        `yaml:"addr" mapstructure:"addr" env:"AGENT_SERVER_ADDR" validate:"required,hostname_port" comment:"HTTP监听地址（格式：ip:port）"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" env:"AGENT_SERVER_READ_TIMEOUT" validate:"required,gt=0" comment:"读取超时时间（如30s）"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" env:"AGENT_SERVER_WRITE_TIMEOUT" validate:"required,gt=0" comment:"写入超时时间（如30s）"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout" env:"AGENT_SERVER_IDLE_TIMEOUT" validate:"required,gt=0" comment:"空闲连接超时时间（如60s）"`
}

// ZapLogConfig 日志配置
type ZapLogConfig struct {
	Level     string `yaml:"level" mapstructure:"level" env:"AGENT_LOG_LEVEL" validate:"required,oneof=debug info warn error" comment:"日志级别" default:"info"`
	Format    string `yaml:"format" mapstructure:"format" env:"AGENT_LOG_FORMAT" validate:"required,oneof=json console" comment:"控制台日志格式（json/console）" default:"console"`
	Path      string `yaml:"path" mapstructure:"path" env:"AGENT_LOG_PATH" validate:"required" comment:"日志存储路径" default:"./logs"`
	MaxSize   int    `yaml:"max_size" mapstructure:"max_size" env:"AGENT_LOG_MAX_SIZE" validate:"gt=0" comment:"单个日志文件最大大小（MB）" default:"100"`
	MaxBackup int    `yaml:"max_backup" mapstructure:"max_backup" env:"AGENT_LOG_MAX_BACKUP" validate:"gte=0" comment:"日志文件最大备份数，0 表示按天数保留" default:"0"`
	MaxAge    int    `yaml:"max_age" mapstructure:"max_age" env:"AGENT_LOG_MAX_AGE" validate:"gte=0" comment:"日志文件最大保存天数" default:"7"`
}

// NewDefaultConfig 创建默认配置（所有字段兜底，避免空指针/非法值）
func NewDefaultConfig() *Config {
	return &Config{
		Sink: SinkConfig{
			DryRun:      false,
			SendTimeout: 30 * time.Second,
		},
		Monitor: MonitorConfig{
			Period:    60,
			Tick:      900 * time.Millisecond,
			QueueSize: 4,
		},
		Server: ServerConfig{
			Enable:       true,
			Addr:         "0.0.0.0:9091",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
		Log: ZapLogConfig{
			Level:     "info",
			Format:    "console",
			Path:      "./logs",
			MaxSize:   100,
			MaxBackup: 0,
			MaxAge:    7,
		},
	}
}

// flagAliases 短 flag 与配置键的映射（--namespace -> sink.namespace）
var flagAliases = map[string]string{
	"namespace":    "sink.namespace",
	"service-name": "sink.service_name",
	"period":       "monitor.period",
	"dryrun":       "sink.dryrun",
}

// LoadConfigWithCli 支持 time.Duration，(Flags + YAML + ENV)
func LoadConfigWithCli(cmd *cobra.Command) (*Config, error) {
	v := viper.New()

	// 1. 绑定 Cobra Flags → Viper，带连字符的 flag 统一映射为下划线键
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key, ok := flagAliases[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, fmt.Errorf("bind flags: %w", bindErr)
	}

	// 2. 解析配置文件 (--config)
	configFile, _ := cmd.Flags().GetString("config")

	return load(v, configFile)
}

// Load 直接从配置文件与环境变量加载（无命令行）
func Load(configFile string) (*Config, error) {
	return load(viper.New(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// 3. 绑定环境变量 ENV -> Viper （AGENT_SINK_NAMESPACE -> sink.namespace）
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	// 4. 解码反序列化到结构体（支持 time.Duration）
	decoderConfig := &mapstructure.DecoderConfig{
		Metadata:         nil,
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 5. 校验配置
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeys 无 flag 时也需要从环境变量读取的键
var envKeys = []string{
	"sink.namespace", "sink.service_name", "sink.region", "sink.dryrun", "sink.send_timeout",
	"monitor.period", "monitor.tick", "monitor.queue_size",
	"server.enable", "server.addr",
	"log.level", "log.format", "log.path",
}

// Validate 配置校验
func (c *Config) Validate() error {
	if err := valid.Struct(c); err != nil {
		return err
	}
	// 	1，校验采集配置
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	// 	2,校验Server服务配置
	if c.Server.Enable {
		if err := c.Server.Validate(); err != nil {
			return err
		}
	}
	// 	3，校验日志配置
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
