package scheduler

import (
	"context"
	"strings"
)

// ResolveChannel 将接收者转换为可投递的频道 ID
// 频道直接返回；用户会调用一次 conversations.open
func ResolveChannel(ctx context.Context, api API, recipient Recipient) (string, error) {
	if recipient.Kind == RecipientChannel {
		return recipient.ID, nil
	}

	channelID, err := api.OpenConversation(ctx, recipient.ID)
	if err != nil {
		return "", &channelResolutionError{userID: recipient.ID, err: err}
	}
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return "", &channelResolutionError{userID: recipient.ID}
	}
	return channelID, nil
}
