package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneq/awesome-openclaw-slack/pkg/scheduler"
)

// fakeSlack 模拟 Slack Web API
type fakeSlack struct {
	mu       sync.Mutex
	forms    map[string][]url.Values
	headers  map[string][]http.Header
	handlers map[string]func(w http.ResponseWriter, form url.Values)
}

func newFakeSlack(t *testing.T) (*fakeSlack, *httptest.Server) {
	f := &fakeSlack{
		forms:    map[string][]url.Values{},
		headers:  map[string][]http.Header{},
		handlers: map[string]func(http.ResponseWriter, url.Values){},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := r.URL.Path[1:]

		f.mu.Lock()
		f.forms[method] = append(f.forms[method], r.PostForm)
		f.headers[method] = append(f.headers[method], r.Header.Clone())
		h := f.handlers[method]
		f.mu.Unlock()

		if h == nil {
			writeJSON(w, map[string]any{"ok": false, "error": "unknown_method"})
			return
		}
		h(w, r.PostForm)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeSlack) on(method string, h func(http.ResponseWriter, url.Values)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

func (f *fakeSlack) formsFor(method string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[method]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_OpenConversation(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("conversations.open", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{"ok": true, "channel": map[string]any{"id": "D123"}})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	channelID, err := c.OpenConversation(context.Background(), "U456")
	require.NoError(t, err)
	assert.Equal(t, "D123", channelID)

	forms := fake.formsFor("conversations.open")
	require.Len(t, forms, 1)
	assert.Equal(t, "U456", forms[0].Get("users"))
}

func TestClient_OpenConversationError(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("conversations.open", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{"ok": false, "error": "user_not_found"})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	_, err := c.OpenConversation(context.Background(), "U404")
	require.Error(t, err)

	var remote *scheduler.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "conversations.open", remote.Op)
	assert.Contains(t, err.Error(), "user_not_found")
}

func TestClient_ScheduleMessage(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{
			"ok":                   true,
			"channel":              form.Get("channel"),
			"scheduled_message_id": "Q1298393284",
			"post_at":              1700003600,
		})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL+"/"))
	msg, err := c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{
		Channel: "C123",
		Text:    "Hello future!",
		PostAt:  1700003600,
	})
	require.NoError(t, err)
	assert.Equal(t, scheduler.ScheduledMessage{ScheduledMessageID: "Q1298393284", PostAt: 1700003600}, msg)

	forms := fake.formsFor("chat.scheduleMessage")
	require.Len(t, forms, 1)
	assert.Equal(t, "C123", forms[0].Get("channel"))
	assert.Equal(t, "Hello future!", forms[0].Get("text"))
	assert.Equal(t, "1700003600", forms[0].Get("post_at"))
	_, hasThread := forms[0]["thread_ts"]
	assert.False(t, hasThread, "thread_ts must be omitted when empty")

	fake.mu.Lock()
	auth := fake.headers["chat.scheduleMessage"][0].Get("Authorization")
	fake.mu.Unlock()
	assert.Equal(t, "Bearer xoxb-test", auth)
}

func TestClient_ScheduleMessageThreadAndStringPostAt(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{
			"ok":                   true,
			"scheduled_message_id": "Q2",
			"post_at":              "1700000100",
		})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	msg, err := c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{
		Channel:  "C1",
		Text:     "reply",
		PostAt:   1700000100,
		ThreadTS: "167.1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1700000100), msg.PostAt)

	forms := fake.formsFor("chat.scheduleMessage")
	require.Len(t, forms, 1)
	assert.Equal(t, "167.1", forms[0].Get("thread_ts"))
}

func TestClient_ScheduleMessageWithoutPostAt(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{"ok": true, "scheduled_message_id": "Q3"})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	msg, err := c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{Channel: "C1", Text: "x", PostAt: 1})
	require.NoError(t, err)
	assert.Equal(t, scheduler.ScheduledMessage{ScheduledMessageID: "Q3"}, msg)
}

func TestClient_ScheduleMessageAPIError(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{"ok": false, "error": "time_in_past"})
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	_, err := c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{Channel: "C1", Text: "x", PostAt: 1})
	require.Error(t, err)

	var remote *scheduler.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "chat.scheduleMessage", remote.Op)
	assert.Equal(t, "time_in_past", err.Error())
	assert.Equal(t, "remote_transport", scheduler.ErrorKind(err))
}

func TestClient_ScheduleMessageHTTPStatus(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := NewClient("xoxb-test", WithAPIURL(srv.URL))
	_, err := c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{Channel: "C1", Text: "x", PostAt: 1})
	require.Error(t, err)
	var remote *scheduler.RemoteError
	require.ErrorAs(t, err, &remote)

	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err = c.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{Channel: "C1", Text: "x", PostAt: 1})
	require.Error(t, err)
	require.ErrorAs(t, err, &remote)
}

func TestNewClientFactory(t *testing.T) {
	fake, srv := newFakeSlack(t)
	fake.on("chat.scheduleMessage", func(w http.ResponseWriter, form url.Values) {
		writeJSON(w, map[string]any{"ok": true, "scheduled_message_id": "Q9"})
	})

	factory := NewClientFactory(Config{APIURL: srv.URL})
	api := factory("xoxb-factory")
	msg, err := api.ScheduleMessage(context.Background(), scheduler.ScheduleMessageParams{Channel: "C1", Text: "x", PostAt: 1})
	require.NoError(t, err)
	assert.Equal(t, "Q9", msg.ScheduledMessageID)
}
