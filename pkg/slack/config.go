// Package slack 提供 Slack Web API 适配与账号凭证解析
package slack

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"
)

const (
	// DefaultAccountID 未指定账号时使用的账号 ID
	DefaultAccountID = "default"

	// EnvBotToken 默认账号的环境变量兜底
	EnvBotToken = "SLACK_BOT_TOKEN"

	// DefaultTimeout 单次 HTTP 请求超时
	DefaultTimeout = 30 * time.Second
)

// Config Slack 配置
type Config struct {
	DefaultAccount string                   `mapstructure:"default_account"` // 默认账号 ID
	APIURL         string                   `mapstructure:"api_url"`         // Web API 地址
	Timeout        time.Duration            `mapstructure:"timeout"`         // HTTP 超时
	Accounts       map[string]AccountConfig `mapstructure:"accounts"`        // 账号 ID -> 账号配置
}

// AccountConfig 单个账号配置
type AccountConfig struct {
	// BotToken xoxb- 开头的 Bot Token，支持 ${ENV} 引用
	BotToken string `mapstructure:"bot_token"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		DefaultAccount: DefaultAccountID,
		APIURL:         slackapi.APIURL,
		Timeout:        DefaultTimeout,
		Accounts:       map[string]AccountConfig{},
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("slack timeout must not be negative")
	}
	if c.APIURL == "" {
		return nil
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid slack api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid slack api_url scheme: %q", u.Scheme)
	}
	return nil
}

// normalizeAPIURL slack-go 要求 API 地址以 / 结尾
func normalizeAPIURL(u string) string {
	if u == "" {
		return slackapi.APIURL
	}
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}
