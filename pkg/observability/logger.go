// Package observability 提供可观测性功能：日志、指标、链路追踪
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Logger 全局日志实例
var Logger *slog.Logger

// LogConfig 日志配置
type LogConfig struct {
	Level    string // debug, info, warn, error
	Format   string // text, json
	Output   string // stdout, stderr, file
	FilePath string // 日志文件路径
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger 初始化日志系统
func InitLogger(cfg LogConfig) error {
	var writer io.Writer

	level := ParseLevel(cfg.Level)

	// 设置输出目标
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "openclaw-slack.log"
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		writer = file
	case "stderr":
		writer = os.Stderr
	default:
		writer = os.Stdout
	}

	Logger = slog.New(NewHandler(writer, cfg.Format, level))
	slog.SetDefault(Logger)

	return nil
}

// NewHandler 根据格式创建 slog.Handler
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Debug 模式下添加源码位置
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// DefaultLogger 返回默认日志实例
func DefaultLogger() *slog.Logger {
	if Logger == nil {
		return slog.Default()
	}
	return Logger
}

// WithContext 创建带有链路信息的日志器
func WithContext(ctx context.Context) *slog.Logger {
	logger := DefaultLogger()

	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		logger = logger.With("trace_id", sc.TraceID().String())
	}
	if sc.HasSpanID() {
		logger = logger.With("span_id", sc.SpanID().String())
	}

	return logger
}

// Debug 记录 Debug 级别日志
func Debug(msg string, args ...any) {
	DefaultLogger().Debug(msg, args...)
}

// Info 记录 Info 级别日志
func Info(msg string, args ...any) {
	DefaultLogger().Info(msg, args...)
}

// Warn 记录 Warn 级别日志
func Warn(msg string, args ...any) {
	DefaultLogger().Warn(msg, args...)
}

// Error 记录 Error 级别日志
func Error(msg string, args ...any) {
	DefaultLogger().Error(msg, args...)
}

// InfoContext 记录带上下文的 Info 日志
func InfoContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Info(msg, args...)
}

// ErrorContext 记录带上下文的 Error 日志
func ErrorContext(ctx context.Context, msg string, args ...any) {
	WithContext(ctx).Error(msg, args...)
}

// ScheduleLog 记录定时消息创建成功
func ScheduleLog(ctx context.Context, channelID, scheduledMessageID string, postAt, durationMs int64) {
	WithContext(ctx).Info("Slack message scheduled",
		"channel", channelID,
		"scheduled_message_id", scheduledMessageID,
		"post_at", postAt,
		"duration_ms", durationMs,
	)
}

// FunctionCallLog 记录 Function 调用日志
func FunctionCallLog(ctx context.Context, funcName string, status string, durationMs int64) {
	WithContext(ctx).Info("Function call",
		"function", funcName,
		"status", status,
		"duration_ms", durationMs,
	)
}
