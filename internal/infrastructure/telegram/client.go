// Package telegram is a minimal Bot API client: long-polling updates plus the
// two send methods the bot needs. Delivery limits and retries on the send
// path belong to the platform, not to this client.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.telegram.org"

// Client wraps interactions with the Telegram Bot API.
type Client struct {
	httpClient *resty.Client
	token      string
}

// NewClient constructs a Bot API client. baseURL is overridable for tests;
// pass "" for the production endpoint.
func NewClient(token, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "ReadWiser/1.0")

	return &Client{httpClient: httpClient, token: token}
}

// GetUpdates long-polls for updates after offset. timeoutSeconds is the
// server-side hold; the client timeout must exceed it.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	var envelope apiResponse[[]Update]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("offset", strconv.FormatInt(offset, 10)).
		SetQueryParam("timeout", strconv.Itoa(timeoutSeconds)).
		SetResult(&envelope).
		Get(c.methodPath("getUpdates"))
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	if err := envelopeError("getUpdates", resp, envelope.OK, envelope.Description, envelope.ErrorCode); err != nil {
		return nil, err
	}
	return envelope.Result, nil
}

// SendMessage delivers plain text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	var envelope apiResponse[json.RawMessage]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": chatID,
			"text":    text,
		}).
		SetResult(&envelope).
		Post(c.methodPath("sendMessage"))
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	return envelopeError("sendMessage", resp, envelope.OK, envelope.Description, envelope.ErrorCode)
}

// SendDocument uploads a file to a chat with an optional caption.
func (c *Client) SendDocument(ctx context.Context, chatID, filename, caption string, data []byte) error {
	var envelope apiResponse[json.RawMessage]
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("document", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"chat_id": chatID,
			"caption": caption,
		}).
		SetResult(&envelope).
		Post(c.methodPath("sendDocument"))
	if err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	return envelopeError("sendDocument", resp, envelope.OK, envelope.Description, envelope.ErrorCode)
}

func (c *Client) methodPath(method string) string {
	return fmt.Sprintf("/bot%s/%s", c.token, method)
}

func envelopeError(method string, resp *resty.Response, ok bool, description string, code int) error {
	if ok {
		return nil
	}
	if description == "" {
		description = resp.Status()
	}
	return fmt.Errorf("%s: bot API error %d: %s", method, code, description)
}
