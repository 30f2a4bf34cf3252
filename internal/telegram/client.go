// Package telegram is a thin client for the three Bot API calls the bot
// needs: getUpdates, sendMessage and answerCallbackQuery.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	retryDelay     = 2 * time.Second
	pollTimeout    = 10 // long-poll seconds passed to getUpdates
)

// GatewayError covers any failed outbound call. Callers degrade on it;
// nothing aborts the run.
type GatewayError struct {
	Op     string
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("telegram %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("telegram %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Update is the slice of a Telegram update the bot consumes: either a
// callback tap or a plain text message.
type Update struct {
	ID           int64
	Text         string
	CallbackID   string
	CallbackData string
}

// IsCallback reports whether the update is a button tap.
func (u *Update) IsCallback() bool { return u.CallbackID != "" }

// Inline keyboard payload for sendMessage, shaped per the Bot API.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type ReplyMarkup struct {
	InlineKeyboard [][]Button `json:"inline_keyboard"`
}

type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// GetUpdates fetches updates with ids strictly greater than offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	q := url.Values{}
	q.Set("offset", strconv.FormatInt(offset+1, 10))
	q.Set("timeout", strconv.Itoa(pollTimeout))

	body, err := c.call(ctx, http.MethodGet, "getUpdates?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var updates []Update
	for _, raw := range gjson.GetBytes(body, "result").Array() {
		u := Update{ID: raw.Get("update_id").Int()}
		if cb := raw.Get("callback_query"); cb.Exists() {
			u.CallbackID = cb.Get("id").String()
			u.CallbackData = cb.Get("data").String()
		} else {
			u.Text = raw.Get("message.text").String()
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// SendMessage posts a Markdown message, optionally with an inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID, text string, markup *ReplyMarkup) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call(ctx, http.MethodPost, "sendMessage", payload)
	return err
}

// AnswerCallback acknowledges a button tap with a short notification.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := c.call(ctx, http.MethodPost, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	})
	return err
}

// call runs one API method with a bounded retry on rate limits and server
// errors. A response with ok=false is an error even on HTTP 200.
func (c *Client) call(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	u := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, endpoint)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &GatewayError{Op: endpoint, Err: ctx.Err()}
			case <-time.After(retryDelay):
			}
		}

		var reqBody io.Reader = http.NoBody
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				return nil, &GatewayError{Op: endpoint, Err: err}
			}
			reqBody = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
		if err != nil {
			return nil, &GatewayError{Op: endpoint, Err: err}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = &GatewayError{Op: endpoint, Err: err}
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &GatewayError{Op: endpoint, Err: err}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &GatewayError{Op: endpoint, Status: resp.StatusCode}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &GatewayError{Op: endpoint, Status: resp.StatusCode}
		}
		if !gjson.GetBytes(body, "ok").Bool() {
			desc := gjson.GetBytes(body, "description").String()
			return nil, &GatewayError{Op: endpoint, Err: fmt.Errorf("api error: %s", desc)}
		}
		return body, nil
	}
	return nil, lastErr
}
