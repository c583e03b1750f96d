package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// RequestInterval spaces consecutive API calls to stay under the per-user quota
const RequestInterval = 100 * time.Millisecond

func (c *Client) throttle() {
	c.requestMutex.Lock()
	defer c.requestMutex.Unlock()

	if !c.lastRequestTime.IsZero() {
		if elapsed := time.Since(c.lastRequestTime); elapsed < RequestInterval {
			time.Sleep(RequestInterval - elapsed)
		}
	}
	c.lastRequestTime = time.Now()
}

// ListMessageIDs returns up to maxResults message IDs carrying label, newest first
func (c *Client) ListMessageIDs(ctx context.Context, userID, label string, maxResults int64) ([]string, error) {
	c.throttle()

	resp, err := c.service.Users.Messages.List(userID).
		LabelIds(label).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// GetRaw fetches a message in RFC 2822 form
func (c *Client) GetRaw(ctx context.Context, userID, id string) ([]byte, error) {
	c.throttle()

	msg, err := c.service.Users.Messages.Get(userID, id).
		Format("raw").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	raw, err := DecodeRaw(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", id, err)
	}
	return raw, nil
}

// DecodeRaw decodes Gmail's base64url "raw" field, with or without padding
func DecodeRaw(raw string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
}
