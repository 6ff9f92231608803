package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/paneq/awesome-openclaw-slack/pkg/function"
	"github.com/paneq/awesome-openclaw-slack/pkg/function/builtin"
	"github.com/paneq/awesome-openclaw-slack/pkg/history"
	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
	"github.com/paneq/awesome-openclaw-slack/pkg/slack"
	"github.com/paneq/awesome-openclaw-slack/pkg/storage"
)

// App 应用实例，持有所有装配好的组件
type App struct {
	config      *Config
	slackClient scheduler.API

	registry   *function.Registry
	executor   *function.Executor
	scheduler  *scheduler.Scheduler
	scheduleFn *builtin.ScheduleMessageFunction

	metricsRegistry *prometheus.Registry
	db              *gorm.DB
	history         *history.Repository
	pruner          *history.Pruner
}

// New 创建 App，选项按顺序应用（WithConfig 应放在最前）
func New(opts ...Option) *App {
	a := &App{
		config:   DefaultConfig(),
		registry: function.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize 初始化应用
// 包括：日志、指标、Slack 编排器、历史记录、内置工具
func (a *App) Initialize() error {
	// 1. 初始化日志
	if err := observability.InitLogger(observability.LogConfig{
		Level:    a.config.Log.Level,
		Format:   a.config.Log.Format,
		Output:   a.config.Log.Output,
		FilePath: a.config.Log.FilePath,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := slog.Default()

	// 2. 初始化指标
	var metrics *observability.Metrics
	if a.config.Metrics.Enabled {
		a.metricsRegistry = prometheus.NewRegistry()
		a.metricsRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m, err := observability.NewMetrics(a.metricsRegistry)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		metrics = m
	}

	// 3. 初始化 Slack 编排器
	if err := a.config.Slack.Validate(); err != nil {
		return err
	}
	resolver := slack.NewAccountResolver(a.config.Slack)
	schedOpts := []scheduler.Option{
		scheduler.WithLogger(logger),
		scheduler.WithMetrics(metrics),
		scheduler.WithClientFactory(slack.NewClientFactory(a.config.Slack)),
	}
	if a.slackClient != nil {
		schedOpts = append(schedOpts, scheduler.WithClient(a.slackClient))
	}
	a.scheduler = scheduler.NewScheduler(resolver, schedOpts...)

	observability.Info("Slack scheduler initialized",
		"default_account", a.config.Slack.DefaultAccount,
		"accounts", resolver.AccountIDs(),
		"api_url", a.config.Slack.APIURL,
	)

	// 4. 初始化历史记录（可选）
	if a.config.History.Enabled {
		if err := a.initHistory(logger); err != nil {
			return err
		}
	}

	// 5. 注册内置工具
	if err := a.registerBuiltinFunctions(); err != nil {
		return err
	}
	a.executor = function.NewExecutor(a.registry, a.functionTimeout())

	observability.Info("Application initialized",
		"registered_functions", a.registry.List(),
		"history_enabled", a.config.History.Enabled,
		"metrics_enabled", a.config.Metrics.Enabled,
	)
	return nil
}

// functionTimeout 工具执行超时，保证 Slack HTTP 超时先于执行器超时触发
func (a *App) functionTimeout() time.Duration {
	floor := minFunctionTimeout(a.config.Slack.Timeout)
	configured := a.config.Function.Timeout
	if configured <= 0 {
		return floor
	}
	if configured < floor {
		observability.Warn("function timeout raised above slack timeout",
			"configured", configured.String(),
			"effective", floor.String(),
		)
		return floor
	}
	return configured
}

// initHistory 打开数据库、迁移表并启动清理任务
func (a *App) initHistory(logger *slog.Logger) error {
	db, err := storage.Open(storage.Config{Path: a.config.Database.Path})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db

	a.history = history.NewRepository(db)
	if err := a.history.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate history table: %w", err)
	}

	pruner, err := history.NewPruner(a.history, a.config.History.PruneCron, a.config.History.Retention, logger)
	if err != nil {
		return err
	}
	if err := pruner.Start(); err != nil {
		return err
	}
	a.pruner = pruner
	return nil
}

// registerBuiltinFunctions 注册内置工具
func (a *App) registerBuiltinFunctions() error {
	var recorder builtin.Recorder
	if a.history != nil {
		recorder = a.history
	}
	a.scheduleFn = builtin.NewScheduleMessageFunction(a.scheduler, recorder)

	fns := []function.Function{a.scheduleFn}
	if a.history != nil {
		fns = append(fns, builtin.NewScheduleHistoryFunction(a.history))
	}
	return a.registry.RegisterAll(fns...)
}

// Register 注册自定义工具
func (a *App) Register(fn function.Function) error {
	return a.registry.Register(fn)
}

// Config 获取配置
func (a *App) Config() *Config {
	return a.config
}

// Registry 获取工具注册表
func (a *App) Registry() *function.Registry {
	return a.registry
}

// Executor 获取工具执行器
func (a *App) Executor() *function.Executor {
	return a.executor
}

// ScheduleFunction 获取定时消息工具
func (a *App) ScheduleFunction() *builtin.ScheduleMessageFunction {
	return a.scheduleFn
}

// History 获取历史记录仓库，未启用时为 nil
func (a *App) History() *history.Repository {
	return a.history
}

// MetricsGatherer 获取指标注册表，未启用时为 nil
func (a *App) MetricsGatherer() prometheus.Gatherer {
	if a.metricsRegistry == nil {
		return nil
	}
	return a.metricsRegistry
}

// Shutdown 关闭应用
func (a *App) Shutdown() error {
	observability.Info("Shutting down")

	if a.pruner != nil {
		a.pruner.Stop()
	}

	if err := storage.Close(a.db); err != nil {
		observability.Error("Failed to close database", "error", err)
		return err
	}

	observability.Info("Shutdown complete")
	return nil
}
