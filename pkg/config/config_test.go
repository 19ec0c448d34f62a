package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	logDir := t.TempDir()
	path := writeConfig(t, `
sink:
  namespace: Fargate/Agent
  service_name: checkout
  send_timeout: 5s
monitor:
  period: 30
  tick: 500ms
  queue_size: 8
server:
  enable: false
log:
  level: debug
  path: `+logDir+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Fargate/Agent", cfg.Sink.Namespace)
	assert.Equal(t, "checkout", cfg.Sink.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.Sink.SendTimeout)
	assert.False(t, cfg.Sink.DryRun)
	assert.Equal(t, 30*time.Second, cfg.Monitor.PublishPeriod())
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.Tick)
	assert.Equal(t, 8, cfg.Monitor.QueueSize)
	assert.False(t, cfg.Server.Enable)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 7, cfg.Log.MaxAge)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
sink:
  namespace: from-file
  service_name: svc
log:
  path: `+t.TempDir()+`
`)
	t.Setenv("AGENT_SINK_NAMESPACE", "from-env")
	t.Setenv("AGENT_MONITOR_PERIOD", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Sink.Namespace)
	assert.Equal(t, uint(120), cfg.Monitor.Period)
}

func TestLoadRequiresNamespaceAndServiceName(t *testing.T) {
	path := writeConfig(t, `
log:
  path: `+t.TempDir()+`
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Namespace")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadConfigWithCli(t *testing.T) {
	def := NewDefaultConfig()
	cmd := &cobra.Command{Use: "test"}
	f := cmd.Flags()
	f.StringP("config", "c", "", "")
	f.StringP("namespace", "n", "", "")
	f.StringP("service-name", "s", "", "")
	f.UintP("period", "p", def.Monitor.Period, "")
	f.BoolP("dryrun", "d", false, "")
	f.Duration("monitor.tick", def.Monitor.Tick, "")
	f.String("log.path", def.Log.Path, "")
	f.Int("log.max-size", def.Log.MaxSize, "")

	logDir := t.TempDir()
	require.NoError(t, f.Parse([]string{
		"-n", "Custom/NS",
		"--service-name", "api",
		"-p", "15",
		"--dryrun",
		"--monitor.tick", "250ms",
		"--log.path", logDir,
		"--log.max-size", "10",
	}))

	cfg, err := LoadConfigWithCli(cmd)
	require.NoError(t, err)
	assert.Equal(t, "Custom/NS", cfg.Sink.Namespace)
	assert.Equal(t, "api", cfg.Sink.ServiceName)
	assert.True(t, cfg.Sink.DryRun)
	assert.Equal(t, 15*time.Second, cfg.Monitor.PublishPeriod())
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.Tick)
	assert.Equal(t, logDir, cfg.Log.Path)
	assert.Equal(t, 10, cfg.Log.MaxSize)
}

func TestMonitorValidate(t *testing.T) {
	tests := []struct {
		name    string
		monitor MonitorConfig
		wantErr string
	}{
		{name: "defaults", monitor: NewDefaultConfig().Monitor},
		{name: "tick longer than period", monitor: MonitorConfig{Period: 1, Tick: 2 * time.Second, QueueSize: 1}, wantErr: "shorter than"},
		{name: "tick too small", monitor: MonitorConfig{Period: 1, Tick: time.Millisecond, QueueSize: 1}, wantErr: "at least"},
		{name: "period too long", monitor: MonitorConfig{Period: maxPeriod + 1, Tick: time.Second, QueueSize: 1}, wantErr: "between"},
		{name: "zero queue", monitor: MonitorConfig{Period: 60, Tick: time.Second}, wantErr: "QueueSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.monitor.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServerValidate(t *testing.T) {
	s := NewDefaultConfig().Server
	assert.NoError(t, s.Validate())

	s.Addr = "not-an-addr"
	assert.Error(t, s.Validate())
}

func TestLogValidateCreatesDirectory(t *testing.T) {
	l := NewDefaultConfig().Log
	l.Path = filepath.Join(t.TempDir(), "nested", "logs")
	require.NoError(t, l.Validate())

	stat, err := os.Stat(l.Path)
	require.NoError(t, err)
	assert.True(t, stat.IsDir())

	l.MaxAge, l.MaxBackup = 0, 0
	assert.Error(t, l.Validate())
}
