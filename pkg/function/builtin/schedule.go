// Package builtin 提供内置的 Function 实现
package builtin

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/paneq/awesome-openclaw-slack/pkg/function"
	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

// ScheduleMessageName 工具名称
const ScheduleMessageName = "slack_schedule_message"

// ScheduleMessageParams 定时消息工具的参数
type ScheduleMessageParams struct {
	To        string  `json:"to" desc:"Recipient: channel:<id>, user:<id>, <@U123>, @user, #channel, or a bare channel id" required:"true"`
	Message   string  `json:"message" desc:"Message text" required:"true"`
	PostAt    float64 `json:"postAt" desc:"Delivery time as Unix epoch seconds (more than 15s and at most 120 days ahead)" required:"true"`
	ThreadID  string  `json:"threadId" desc:"Parent message ts to reply in a thread"`
	AccountID string  `json:"accountId" desc:"Slack account id; defaults to the configured default account"`
}

// Request 转换为编排请求，小数秒向下取整
func (p ScheduleMessageParams) Request() scheduler.Request {
	return scheduler.Request{
		To:        p.To,
		Message:   p.Message,
		PostAt:    epochSeconds(p.PostAt),
		ThreadID:  p.ThreadID,
		AccountID: p.AccountID,
	}
}

// epochSeconds 向下取整并截断到 int64 范围，NaN 视为 0
func epochSeconds(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Floor(f))
}

// ScheduleResponse 返回给宿主的结构
// 成功：ok=true, scheduled=true 及结果字段；失败：ok=false, scheduled=false, error
type ScheduleResponse struct {
	OK                 bool   `json:"ok"`
	Scheduled          bool   `json:"scheduled"`
	ScheduledMessageID string `json:"scheduledMessageId,omitempty"`
	PostAt             int64  `json:"postAt,omitempty"`
	ChannelID          string `json:"channelId,omitempty"`
	Error              string `json:"error,omitempty"`
}

// MessageScheduler 编排器能力
type MessageScheduler interface {
	Schedule(ctx context.Context, req scheduler.Request) (scheduler.Result, error)
}

// Recorder 记录编排结果（可选）
type Recorder interface {
	Record(ctx context.Context, req scheduler.Request, result scheduler.Result, err error) error
}

// ScheduleMessageFunction 通过 chat.scheduleMessage 预约发送 Slack 消息
type ScheduleMessageFunction struct {
	scheduler MessageScheduler
	recorder  Recorder
}

// NewScheduleMessageFunction 创建 ScheduleMessageFunction，recorder 可以为 nil
func NewScheduleMessageFunction(s MessageScheduler, recorder Recorder) *ScheduleMessageFunction {
	return &ScheduleMessageFunction{scheduler: s, recorder: recorder}
}

func (f *ScheduleMessageFunction) Name() string {
	return ScheduleMessageName
}

func (f *ScheduleMessageFunction) Description() string {
	return "Schedule a Slack message for future delivery. Slack owns the timer: the message is posted at postAt " +
		"(Unix seconds, more than 15 seconds and at most 120 days from now). Users get a direct message; " +
		"unrecognized targets are treated as channel ids."
}

func (f *ScheduleMessageFunction) ParamsType() reflect.Type {
	return reflect.TypeOf(ScheduleMessageParams{})
}

// Execute 不返回错误，失败以 ok=false 的结构返回
func (f *ScheduleMessageFunction) Execute(ctx context.Context, params any) (function.Result, error) {
	var p ScheduleMessageParams
	switch v := params.(type) {
	case ScheduleMessageParams:
		p = v
	case *ScheduleMessageParams:
		p = *v
	}

	return toResult(f.Handle(ctx, p.Request())), nil
}

// RenderFailure 实现 function.FailureRenderer
// 参数无法绑定或执行超时时同样返回失败结构
func (f *ScheduleMessageFunction) RenderFailure(err error) function.Result {
	return toResult(failure(err))
}

func toResult(resp ScheduleResponse) function.Result {
	if !resp.OK {
		return function.Result{
			Message: "Failed to schedule Slack message: " + resp.Error,
			Data:    resp,
		}
	}
	return function.Result{
		Message: fmt.Sprintf("Scheduled Slack message %s in %s for %d", resp.ScheduledMessageID, resp.ChannelID, resp.PostAt),
		Data:    resp,
	}
}

// Handle 调用编排器并把所有失败（包括 panic）转换为失败结构
func (f *ScheduleMessageFunction) Handle(ctx context.Context, req scheduler.Request) (resp ScheduleResponse) {
	defer func() {
		if r := recover(); r != nil {
			observability.Error("slack schedule panicked", "panic", r)
			resp = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err := f.scheduler.Schedule(ctx, req)
	f.record(ctx, req, result, err)
	if err != nil {
		return failure(err)
	}

	return ScheduleResponse{
		OK:                 true,
		Scheduled:          true,
		ScheduledMessageID: result.ScheduledMessageID,
		PostAt:             result.PostAt,
		ChannelID:          result.ChannelID,
	}
}

func (f *ScheduleMessageFunction) record(ctx context.Context, req scheduler.Request, result scheduler.Result, err error) {
	if f.recorder == nil {
		return
	}
	// 调用方超时取消后仍要落库
	if recErr := f.recorder.Record(context.WithoutCancel(ctx), req, result, err); recErr != nil {
		observability.Warn("failed to record schedule history", "error", recErr)
	}
}

func failure(err error) ScheduleResponse {
	return ScheduleResponse{OK: false, Scheduled: false, Error: err.Error()}
}
