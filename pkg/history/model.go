// Package history 记录每次定时消息请求的结果，供宿主查询
package history

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

// Status 记录状态
type Status string

const (
	StatusScheduled Status = "scheduled" // Slack 已接受
	StatusFailed    Status = "failed"    // 请求失败
)

// ErrInvalidStatus 未知的状态过滤值
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus 解析状态过滤值，空字符串返回 nil 表示不过滤
func ParseStatus(raw string) (*Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "":
		return nil, nil
	case StatusScheduled, StatusFailed:
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: %s (want scheduled or failed)", ErrInvalidStatus, raw)
	}
}

// previewLength 消息预览的最大字符数
const previewLength = 80

// Record 一次定时消息请求的记录
type Record struct {
	gorm.Model
	AccountID          string `gorm:"index" json:"account_id,omitempty"`
	Target             string `json:"target"`
	ChannelID          string `gorm:"index" json:"channel_id,omitempty"`
	ThreadID           string `json:"thread_id,omitempty"`
	PostAt             int64  `gorm:"index" json:"post_at"`
	ScheduledMessageID string `gorm:"index" json:"scheduled_message_id,omitempty"`
	Status             Status `gorm:"index;not null" json:"status"`
	ErrorKind          string `json:"error_kind,omitempty"`
	Error              string `gorm:"type:text" json:"error,omitempty"`
	Preview            string `json:"preview"`
}

// TableName 指定表名
func (Record) TableName() string {
	return "scheduled_messages"
}

// NewRecord 根据请求和编排结果构造记录
func NewRecord(req scheduler.Request, result scheduler.Result, err error) *Record {
	rec := &Record{
		AccountID: req.AccountID,
		Target:    strings.TrimSpace(req.To),
		ThreadID:  req.ThreadID,
		PostAt:    req.PostAt,
		Preview:   preview(req.Message),
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.ErrorKind = scheduler.ErrorKind(err)
		rec.Error = err.Error()
		return rec
	}
	rec.Status = StatusScheduled
	rec.ChannelID = result.ChannelID
	rec.PostAt = result.PostAt
	rec.ScheduledMessageID = result.ScheduledMessageID
	return rec
}

func preview(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= previewLength {
		return string(runes)
	}
	return string(runes[:previewLength-3]) + "..."
}
