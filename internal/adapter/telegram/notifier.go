package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Notifier delivers user-facing messages. Implementations map the
// domain user id (Telegram chat id) to the messaging platform.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// BotClient implements Notifier via the Telegram Bot API.
type BotClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewBotClient creates a Bot API client with default timeout.
func NewBotClient(apiBase, token string, logger *slog.Logger) (*BotClient, error) {
	parsed, err := url.Parse(apiBase)
	if err != nil {
		return nil, fmt.Errorf("parse telegram api url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram api url must be absolute")
	}
	return &BotClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// SendMessage posts a plain-text message to the chat.
func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = fmt.Sprintf("/bot%s/sendMessage", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data apiResponse
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !data.OK {
		c.logger.Error("telegram send failed", slog.Int("status", resp.StatusCode), slog.String("description", data.Description))
		return fmt.Errorf("telegram api error: %s", data.Description)
	}
	return nil
}
