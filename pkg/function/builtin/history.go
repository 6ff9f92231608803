package builtin

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/paneq/awesome-openclaw-slack/pkg/function"
	"github.com/paneq/awesome-openclaw-slack/pkg/history"
)

// ScheduleHistoryName 工具名称
const ScheduleHistoryName = "slack_schedule_history"

// HistoryLister 历史记录查询能力
type HistoryLister interface {
	List(ctx context.Context, status *history.Status, limit, offset int) ([]history.Record, error)
	Count(ctx context.Context, status *history.Status) (int64, error)
}

// ScheduleHistoryParams 查询历史的参数
type ScheduleHistoryParams struct {
	Status string `json:"status" desc:"Filter by status: scheduled or failed; empty returns all"`
	Limit  int    `json:"limit" desc:"Maximum number of records, default 20" default:"20"`
	Offset int    `json:"offset" desc:"Offset for pagination" default:"0"`
}

// ScheduleHistoryFunction 列出本服务提交过的定时消息
type ScheduleHistoryFunction struct {
	lister HistoryLister
}

// NewScheduleHistoryFunction 创建 ScheduleHistoryFunction
func NewScheduleHistoryFunction(lister HistoryLister) *ScheduleHistoryFunction {
	return &ScheduleHistoryFunction{lister: lister}
}

func (f *ScheduleHistoryFunction) Name() string {
	return ScheduleHistoryName
}

func (f *ScheduleHistoryFunction) Description() string {
	return "List Slack messages previously scheduled through this service, newest first, optionally filtered by status (scheduled/failed)."
}

func (f *ScheduleHistoryFunction) ParamsType() reflect.Type {
	return reflect.TypeOf(ScheduleHistoryParams{})
}

func (f *ScheduleHistoryFunction) Execute(ctx context.Context, params any) (function.Result, error) {
	p, _ := params.(ScheduleHistoryParams)

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	status, err := history.ParseStatus(p.Status)
	if err != nil {
		return function.Result{}, err
	}

	records, err := f.lister.List(ctx, status, limit, p.Offset)
	if err != nil {
		return function.Result{}, err
	}
	total, err := f.lister.Count(ctx, status)
	if err != nil {
		return function.Result{}, err
	}

	items := make([]map[string]any, len(records))
	for i, rec := range records {
		item := map[string]any{
			"id":         rec.ID,
			"target":     rec.Target,
			"post_at":    rec.PostAt,
			"status":     rec.Status,
			"preview":    rec.Preview,
			"created_at": rec.CreatedAt.Format(time.RFC3339),
		}
		if rec.AccountID != "" {
			item["account_id"] = rec.AccountID
		}
		if rec.ChannelID != "" {
			item["channel_id"] = rec.ChannelID
		}
		if rec.ThreadID != "" {
			item["thread_id"] = rec.ThreadID
		}
		if rec.ScheduledMessageID != "" {
			item["scheduled_message_id"] = rec.ScheduledMessageID
		}
		if rec.Error != "" {
			item["error_kind"] = rec.ErrorKind
			item["error"] = rec.Error
		}
		items[i] = item
	}

	message := fmt.Sprintf("Found %d scheduled message records (%d total)", len(records), total)
	if status != nil {
		message = fmt.Sprintf("Found %d %s records (%d total)", len(records), *status, total)
	}

	return function.Result{
		Message: message,
		Data: map[string]any{
			"total":   total,
			"limit":   limit,
			"offset":  p.Offset,
			"records": items,
		},
	}, nil
}
