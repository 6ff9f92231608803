package scheduler

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	ErrEmptyMessage      = errors.New("message is required")
	ErrTooSoon           = errors.New("postAt must be at least 15 seconds in the future")
	ErrTooFar            = errors.New("postAt must be within 120 days")
	ErrMissingRecipient  = errors.New("recipient is required")
	ErrCredentialMissing = errors.New("slack bot token missing")
	ErrChannelResolution = errors.New("failed to resolve slack channel")
	ErrSchedulingFailed  = errors.New("slack did not return a scheduled_message_id")
	ErrNoClient          = errors.New("slack client is not configured")
)

// RemoteError 远程 API 调用失败（网络错误或 Slack 返回 ok=false）
// 错误信息保持原样，不做改写
type RemoteError struct {
	Op  string // API 方法名，如 chat.scheduleMessage
	Err error
}

func (e *RemoteError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// channelResolutionError 打开私聊失败，同时保留底层错误
type channelResolutionError struct {
	userID string
	err    error
}

func (e *channelResolutionError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: conversations.open returned no channel for user %s", ErrChannelResolution, e.userID)
	}
	return fmt.Sprintf("%s: conversations.open for user %s: %v", ErrChannelResolution, e.userID, e.err)
}

func (e *channelResolutionError) Is(target error) bool {
	return target == ErrChannelResolution
}

func (e *channelResolutionError) Unwrap() error {
	return e.err
}

// ErrorKind 返回错误的稳定分类名，用于指标标签和历史记录
func ErrorKind(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, ErrTooSoon):
		return "too_soon"
	case errors.Is(err, ErrTooFar):
		return "too_far"
	case errors.Is(err, ErrMissingRecipient):
		return "missing_recipient"
	case errors.Is(err, ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, ErrChannelResolution):
		return "channel_resolution"
	case errors.Is(err, ErrSchedulingFailed):
		return "scheduling_failed"
	case errors.Is(err, ErrNoClient):
		return "client_missing"
	case errors.As(err, &remote):
		return "remote_transport"
	default:
		return "unknown"
	}
}
