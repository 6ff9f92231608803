// Package app 负责配置模型与组件装配
package app

import (
	"time"

	"github.com/paneq/awesome-openclaw-slack/pkg/history"
	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
	"github.com/paneq/awesome-openclaw-slack/pkg/slack"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	History  HistoryConfig  `mapstructure:"history"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Function FunctionConfig `mapstructure:"function"`
	Slack    slack.Config   `mapstructure:"slack"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// Host 监听地址
	Host string `mapstructure:"host"`

	// Port 监听端口
	Port int `mapstructure:"port"`

	// Mode 运行模式：debug, release, test
	Mode string `mapstructure:"mode"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`     // debug, info, warn, error
	Format   string `mapstructure:"format"`    // text, json
	Output   string `mapstructure:"output"`    // stdout, stderr, file
	FilePath string `mapstructure:"file_path"` // Output 为 file 时生效
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// HistoryConfig 历史记录配置
type HistoryConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Retention time.Duration `mapstructure:"retention"`
	PruneCron string        `mapstructure:"prune_cron"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// FunctionConfig 工具执行配置
type FunctionConfig struct {
	// Timeout 单次工具执行超时，为 0 时按 Slack HTTP 超时推导
	// 必须大于两次串行 Slack 调用（conversations.open + chat.scheduleMessage）的总超时
	Timeout time.Duration `mapstructure:"timeout"`
}

// functionTimeoutMargin 工具超时在 Slack 调用总超时之外的余量
const functionTimeoutMargin = 5 * time.Second

// minFunctionTimeout 返回工具执行超时的下限
func minFunctionTimeout(slackTimeout time.Duration) time.Duration {
	if slackTimeout <= 0 {
		slackTimeout = slack.DefaultTimeout
	}
	return 2*slackTimeout + functionTimeoutMargin
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Database: DatabaseConfig{
			Path: "~/.openclaw-slack/data.db",
		},
		History: HistoryConfig{
			Enabled:   false,
			Retention: history.DefaultRetention,
			PruneCron: history.DefaultPruneSpec,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Function: FunctionConfig{},
		Slack: slack.DefaultConfig(),
	}
}

// Option 应用选项
type Option func(*App)

// WithConfig 替换整份配置
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		if cfg != nil {
			a.config = cfg
		}
	}
}

// WithServerPort 设置服务器端口
func WithServerPort(port int) Option {
	return func(a *App) {
		a.config.Server.Port = port
	}
}

// WithServerHost 设置监听地址
func WithServerHost(host string) Option {
	return func(a *App) {
		a.config.Server.Host = host
	}
}

// WithLogLevel 设置日志级别
func WithLogLevel(level string) Option {
	return func(a *App) {
		a.config.Log.Level = level
	}
}

// WithLogOutput 设置日志输出目标
func WithLogOutput(output string) Option {
	return func(a *App) {
		a.config.Log.Output = output
	}
}

// WithDatabasePath 设置数据库路径
func WithDatabasePath(path string) Option {
	return func(a *App) {
		a.config.Database.Path = path
	}
}

// WithHistory 启用或关闭历史记录
func WithHistory(enabled bool) Option {
	return func(a *App) {
		a.config.History.Enabled = enabled
	}
}

// WithSlack 设置 Slack 配置
func WithSlack(cfg slack.Config) Option {
	return func(a *App) {
		a.config.Slack = cfg
	}
}

// WithSlackClient 注入固定的 Slack 客户端，忽略账号 Token 构造客户端
func WithSlackClient(api scheduler.API) Option {
	return func(a *App) {
		a.slackClient = api
	}
}
