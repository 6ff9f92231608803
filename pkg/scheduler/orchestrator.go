package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
)

// Scheduler 定时消息编排器
// 流程：校验 -> 解析凭证 -> 构造客户端 -> 解析目标 -> 解析频道 -> chat.scheduleMessage
// 不持有跨调用的状态，可并发使用
type Scheduler struct {
	credentials CredentialResolver
	client      API
	newClient   ClientFactory
	now         func() time.Time
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// Option Scheduler 配置选项
type Option func(*Scheduler)

// WithClient 注入固定的 API 客户端（优先于 ClientFactory）
func WithClient(api API) Option {
	return func(s *Scheduler) {
		s.client = api
	}
}

// WithClientFactory 设置按凭证构造客户端的工厂
func WithClientFactory(factory ClientFactory) Option {
	return func(s *Scheduler) {
		s.newClient = factory
	}
}

// WithClock 设置时钟，测试时使用
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLogger 设置日志器
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// NewScheduler 创建编排器
func NewScheduler(credentials CredentialResolver, opts ...Option) *Scheduler {
	s := &Scheduler{
		credentials: credentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = observability.DefaultLogger()
	}
	return s
}

// Schedule 创建一条定时消息
// 要么返回完整的 Result，要么返回错误，不会返回部分结果
func (s *Scheduler) Schedule(ctx context.Context, req Request) (Result, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanScheduleMessage,
		attribute.String(observability.AttrAccountID, req.AccountID),
		attribute.Int64(observability.AttrPostAt, req.PostAt),
	)

	start := time.Now()
	result, err := s.schedule(ctx, req)

	observability.EndSpan(span, err)
	if err != nil {
		kind := ErrorKind(err)
		s.metrics.ObserveSchedule(kind)
		s.logger.Warn("slack schedule failed",
			"to", req.To,
			"account", req.AccountID,
			"post_at", req.PostAt,
			"kind", kind,
			"error", err,
		)
		return Result{}, err
	}

	s.metrics.ObserveSchedule(observability.OutcomeScheduled)
	observability.ScheduleLog(ctx, result.ChannelID, result.ScheduledMessageID, result.PostAt, time.Since(start).Milliseconds())
	return result, nil
}

func (s *Scheduler) schedule(ctx context.Context, req Request) (Result, error) {
	if err := Validate(req.Message, req.PostAt, s.now().Unix()); err != nil {
		return Result{}, err
	}

	account, err := s.resolveAccount(req.AccountID)
	if err != nil {
		return Result{}, err
	}

	api, err := s.clientFor(account)
	if err != nil {
		return Result{}, err
	}

	recipient, ok := ParseTarget(req.To)
	if !ok {
		return Result{}, ErrMissingRecipient
	}

	channelID, err := ResolveChannel(ctx, api, recipient)
	if err != nil {
		return Result{}, err
	}

	params := ScheduleMessageParams{
		Channel: channelID,
		Text:    strings.TrimSpace(req.Message),
		PostAt:  req.PostAt,
	}
	if threadID := strings.TrimSpace(req.ThreadID); threadID != "" {
		params.ThreadTS = threadID
	}

	scheduled, err := api.ScheduleMessage(ctx, params)
	if err != nil {
		var remote *RemoteError
		if !errors.As(err, &remote) {
			err = &RemoteError{Op: "chat.scheduleMessage", Err: err}
		}
		return Result{}, err
	}
	if strings.TrimSpace(scheduled.ScheduledMessageID) == "" {
		return Result{}, ErrSchedulingFailed
	}

	postAt := req.PostAt
	if scheduled.PostAt != 0 {
		postAt = scheduled.PostAt
	}

	return Result{
		ScheduledMessageID: scheduled.ScheduledMessageID,
		PostAt:             postAt,
		ChannelID:          channelID,
	}, nil
}

// resolveAccount 解析凭证，Token 为空视为未配置
func (s *Scheduler) resolveAccount(accountID string) (Account, error) {
	if s.credentials == nil {
		return Account{}, fmt.Errorf("%w: no credential resolver configured", ErrCredentialMissing)
	}
	account, err := s.credentials.ResolveAccount(strings.TrimSpace(accountID))
	if err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(account.BotToken) == "" {
		return Account{}, fmt.Errorf("%w for account %q", ErrCredentialMissing, account.AccountID)
	}
	return account, nil
}

// clientFor 返回绑定到账号凭证的客户端
func (s *Scheduler) clientFor(account Account) (API, error) {
	var api API
	switch {
	case s.client != nil:
		api = s.client
	case s.newClient != nil:
		api = s.newClient(account.BotToken)
	default:
		return nil, ErrNoClient
	}
	if s.metrics == nil {
		return api, nil
	}
	return &instrumentedAPI{api: api, metrics: s.metrics}, nil
}

// instrumentedAPI 为远程调用记录耗时
type instrumentedAPI struct {
	api     API
	metrics *observability.Metrics
}

func (i *instrumentedAPI) OpenConversation(ctx context.Context, userID string) (string, error) {
	start := time.Now()
	channelID, err := i.api.OpenConversation(ctx, userID)
	i.metrics.ObserveRemoteCall("conversations.open", err, time.Since(start))
	return channelID, err
}

func (i *instrumentedAPI) ScheduleMessage(ctx context.Context, params ScheduleMessageParams) (ScheduledMessage, error) {
	start := time.Now()
	msg, err := i.api.ScheduleMessage(ctx, params)
	i.metrics.ObserveRemoteCall("chat.scheduleMessage", err, time.Since(start))
	return msg, err
}
