package scheduler

import "strings"

const (
	// MinLeadSeconds post_at 必须严格晚于 now+MinLeadSeconds
	MinLeadSeconds int64 = 15

	// MaxHorizonSeconds post_at 最多为 now+MaxHorizonSeconds（含）
	MaxHorizonSeconds int64 = 120 * 86400
)

// Validate 校验消息内容与投递时间
// nowSeconds 必须是调用时刻的墙钟秒数，不能缓存
func Validate(message string, postAt, nowSeconds int64) error {
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	if postAt <= nowSeconds+MinLeadSeconds {
		return ErrTooSoon
	}
	if postAt > nowSeconds+MaxHorizonSeconds {
		return ErrTooFar
	}
	return nil
}
