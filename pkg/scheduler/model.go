package scheduler

import "context"

// Request 一次定时消息请求
type Request struct {
	To        string `json:"to"`
	Message   string `json:"message"`
	PostAt    int64  `json:"postAt"` // Unix 秒
	ThreadID  string `json:"threadId,omitempty"`
	AccountID string `json:"accountId,omitempty"`
}

// Result 定时消息创建成功后的结果
type Result struct {
	ScheduledMessageID string `json:"scheduledMessageId"`
	PostAt             int64  `json:"postAt"`
	ChannelID          string `json:"channelId"`
}

// Account 解析后的账号凭证
type Account struct {
	AccountID string
	BotToken  string
}

// CredentialResolver 根据账号 ID 解析 Bot Token
// accountID 为空时使用默认账号
type CredentialResolver interface {
	ResolveAccount(accountID string) (Account, error)
}

// CredentialResolverFunc 函数适配器
type CredentialResolverFunc func(accountID string) (Account, error)

func (f CredentialResolverFunc) ResolveAccount(accountID string) (Account, error) {
	return f(accountID)
}

// ScheduleMessageParams chat.scheduleMessage 的入参
type ScheduleMessageParams struct {
	Channel  string
	Text     string
	PostAt   int64
	ThreadTS string // 为空时不发送 thread_ts 字段
}

// ScheduledMessage chat.scheduleMessage 的返回
type ScheduledMessage struct {
	ScheduledMessageID string
	PostAt             int64 // 0 表示响应中没有 post_at
}

// API Slack 远程能力，仅包含本模块用到的两个操作
type API interface {
	// OpenConversation 打开（或复用）与用户的私聊，返回频道 ID
	OpenConversation(ctx context.Context, userID string) (string, error)

	// ScheduleMessage 注册一条定时消息
	ScheduleMessage(ctx context.Context, params ScheduleMessageParams) (ScheduledMessage, error)
}

// ClientFactory 根据 Bot Token 构造绑定该凭证的 API 客户端
type ClientFactory func(token string) API
