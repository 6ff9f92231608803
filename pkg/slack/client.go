package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

const (
	methodConversationsOpen   = "conversations.open"
	methodChatScheduleMessage = "chat.scheduleMessage"
)

// Client 绑定单个 Bot Token 的 Slack Web API 客户端
// 实现 scheduler.API
type Client struct {
	api        *slackapi.Client
	token      string
	apiURL     string
	httpClient *http.Client
}

// ClientOption 客户端选项
type ClientOption func(*Client)

// WithAPIURL 设置 Web API 地址（测试时指向 httptest）
func WithAPIURL(u string) ClientOption {
	return func(c *Client) {
		c.apiURL = normalizeAPIURL(u)
	}
}

// WithHTTPClient 设置 HTTP 客户端
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient 创建客户端
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:      token,
		apiURL:     slackapi.APIURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.api = slackapi.New(token,
		slackapi.OptionAPIURL(c.apiURL),
		slackapi.OptionHTTPClient(c.httpClient),
	)
	return c
}

// NewClientFactory 根据配置返回 scheduler.ClientFactory
// 所有客户端共享同一个 http.Client
func NewClientFactory(cfg Config) scheduler.ClientFactory {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: timeout}
	apiURL := normalizeAPIURL(cfg.APIURL)

	return func(token string) scheduler.API {
		return NewClient(token, WithAPIURL(apiURL), WithHTTPClient(hc))
	}
}

// OpenConversation 调用 conversations.open 打开与用户的私聊
func (c *Client) OpenConversation(ctx context.Context, userID string) (string, error) {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slackapi.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return "", &scheduler.RemoteError{Op: methodConversationsOpen, Err: err}
	}
	if channel == nil {
		return "", nil
	}
	return channel.ID, nil
}

// scheduleMessageResponse chat.scheduleMessage 响应
type scheduleMessageResponse struct {
	slackapi.SlackResponse
	Channel            string   `json:"channel"`
	ScheduledMessageID string   `json:"scheduled_message_id"`
	PostAt             unixTime `json:"post_at"`
}

// ScheduleMessage 调用 chat.scheduleMessage
// slack-go 的 ScheduleMessage 不返回 post_at，这里直接解析响应
func (c *Client) ScheduleMessage(ctx context.Context, params scheduler.ScheduleMessageParams) (scheduler.ScheduledMessage, error) {
	form := url.Values{}
	form.Set("channel", params.Channel)
	form.Set("text", params.Text)
	form.Set("post_at", strconv.FormatInt(params.PostAt, 10))
	if params.ThreadTS != "" {
		form.Set("thread_ts", params.ThreadTS)
	}

	var resp scheduleMessageResponse
	if err := c.postForm(ctx, methodChatScheduleMessage, form, &resp); err != nil {
		return scheduler.ScheduledMessage{}, &scheduler.RemoteError{Op: methodChatScheduleMessage, Err: err}
	}
	if !resp.Ok {
		return scheduler.ScheduledMessage{}, &scheduler.RemoteError{Op: methodChatScheduleMessage, Err: resp.Err()}
	}

	return scheduler.ScheduledMessage{
		ScheduledMessageID: resp.ScheduledMessageID,
		PostAt:             int64(resp.PostAt),
	}, nil
}

// postForm 以表单方式调用 Web API 方法并解码 JSON 响应
func (c *Client) postForm(ctx context.Context, method string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &slackapi.RateLimitedError{RetryAfter: time.Duration(retryAfter) * time.Second}
	}
	if resp.StatusCode != http.StatusOK {
		return slackapi.StatusCodeError{Code: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// unixTime 兼容数字和数字字符串两种 post_at 表示
type unixTime int64

func (t *unixTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid post_at %q: %w", s, err)
	}
	*t = unixTime(f)
	return nil
}
