// Package scheduler 提供 Slack 定时消息的核心逻辑：目标解析、时间校验与调用编排
package scheduler

import (
	"regexp"
	"strings"
)

// RecipientKind 接收者类型
type RecipientKind string

const (
	RecipientUser    RecipientKind = "user"    // 用户，需要先打开私聊会话
	RecipientChannel RecipientKind = "channel" // 频道，ID 可直接使用
)

// Recipient 解析后的接收者
type Recipient struct {
	Kind RecipientKind `json:"kind"`
	ID   string        `json:"id"`
}

// mentionPattern 匹配 <@U123ABC> 形式的提及
var mentionPattern = regexp.MustCompile(`(?i)^<@([a-z0-9]+)>$`)

// prefixRule 前缀规则，按顺序匹配
type prefixRule struct {
	prefix string
	kind   RecipientKind
}

// 顺序有意义：先匹配的规则生效
var prefixRules = []prefixRule{
	{prefix: "user:", kind: RecipientUser},
	{prefix: "channel:", kind: RecipientChannel},
	{prefix: "slack:", kind: RecipientUser}, // 旧版别名
	{prefix: "@", kind: RecipientUser},
	{prefix: "#", kind: RecipientChannel},
}

// ParseTarget 将自由格式的目标字符串解析为 Recipient
// 支持 <@ID>、user:ID、channel:ID、slack:ID、@ID、#ID，
// 其余非空字符串一律视为频道 ID。空白输入返回 false。
func ParseTarget(raw string) (Recipient, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Recipient{}, false
	}

	if m := mentionPattern.FindStringSubmatch(trimmed); m != nil {
		return Recipient{Kind: RecipientUser, ID: m[1]}, true
	}

	for _, rule := range prefixRules {
		if !strings.HasPrefix(trimmed, rule.prefix) {
			continue
		}
		id := strings.TrimSpace(trimmed[len(rule.prefix):])
		if id == "" {
			return Recipient{}, false
		}
		return Recipient{Kind: rule.kind, ID: id}, true
	}

	return Recipient{Kind: RecipientChannel, ID: trimmed}, true
}
