package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/agent"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// Backend — то, с чем разговаривает TUI. *Client реализует этот интерфейс.
type Backend interface {
	Chat(ctx context.Context, message string) (agent.ChatResult, error)
	Liked(ctx context.Context) ([]youtube.Video, error)
	History(ctx context.Context) ([]youtube.Video, error)
	Like(ctx context.Context, videoID string) (string, error)
	Unlike(ctx context.Context, videoID string) (string, error)
}

// APIError — ответ сервера со статусом не 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Client — HTTP клиент API агента.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для сервера по адресу baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ Backend = (*Client)(nil)

// Chat отправляет сообщение в /api/chat.
func (c *Client) Chat(ctx context.Context, message string) (agent.ChatResult, error) {
	var out agent.ChatResult
	if err := c.do(ctx, http.MethodPost, "/api/chat", map[string]string{"message": message}, &out); err != nil {
		return agent.ChatResult{}, err
	}
	if out.Videos == nil {
		out.Videos = []youtube.Video{}
	}
	return out, nil
}

// Liked возвращает понравившиеся видео.
func (c *Client) Liked(ctx context.Context) ([]youtube.Video, error) {
	var out struct {
		Liked []youtube.Video `json:"liked"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/liked", nil, &out); err != nil {
		return nil, err
	}
	return out.Liked, nil
}

// History возвращает историю просмотров.
func (c *Client) History(ctx context.Context) ([]youtube.Video, error) {
	var out struct {
		History []youtube.Video `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Like ставит лайк. Возвращает сообщение сервера.
func (c *Client) Like(ctx context.Context, videoID string) (string, error) {
	return c.rate(ctx, "/api/like", videoID)
}

// Unlike снимает лайк. Возвращает сообщение сервера.
func (c *Client) Unlike(ctx context.Context, videoID string) (string, error) {
	return c.rate(ctx, "/api/unlike", videoID)
}

func (c *Client) rate(ctx context.Context, path, videoID string) (string, error) {
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"videoId": videoID}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
