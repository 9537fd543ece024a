// Package youtube — SDK для YouTube Data API v3.
//
// Покрывает то, что нужно агенту и HTTP API:
//   - поиск видео (search.list)
//   - системные плейлисты LL/HL (playlistItems.list)
//   - лайк/снятие лайка (videos.rate)
//
// Поиск работает с API ключом, всё остальное требует OAuth refresh token.
// Запросы идут через сгенерированный клиент google.golang.org/api/youtube/v3.
// Клиент "тупой" в смысле политики: один вызов — один HTTP запрос, без
// ретраев и кэша. Ошибки сети и non-2xx ответы — *ProviderError.
//
// Usage pattern:
//   - pkg/youtube - SDK
//   - pkg/tools/std - тонкая обёртка youtube_search для function calling
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

var (
	// ErrInvalidArgument — некорректные входные данные, запрос не отправлялся.
	ErrInvalidArgument = errors.New("youtube: invalid argument")

	// ErrProvider — сбой на стороне YouTube API или сети.
	ErrProvider = errors.New("youtube: provider error")

	// ErrNoCredentials — для операции не настроены ни API ключ, ни OAuth.
	ErrNoCredentials = errors.New("youtube: credentials are not configured")
)

// ProviderError описывает неудачный вызов YouTube API.
type ProviderError struct {
	Op         string // "search", "playlistItems", "rate"
	StatusCode int    // 0 если ответа не было
	Reason     string // errors[0].reason из тела ответа, если есть
	Message    string
	Err        error // Сетевая ошибка, если ответа не было
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("youtube %s: %v", e.Op, e.Err)
	}
	msg := fmt.Sprintf("youtube %s: status %d", e.Op, e.StatusCode)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is позволяет errors.Is(err, ErrProvider).
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrorType представляет тип ошибки при работе с YouTube API.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeAuthFailed
	ErrTypeQuotaExceeded
	ErrTypeTimeout
	ErrTypeNetwork
	ErrTypeNotFound
)

// String возвращает строковое представление типа ошибки.
func (e ErrorType) String() string {
	switch e {
	case ErrTypeAuthFailed:
		return "authentication_failed"
	case ErrTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeNetwork:
		return "network_error"
	case ErrTypeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// HumanMessage возвращает человекочитаемое сообщение для типа ошибки.
func (e ErrorType) HumanMessage() string {
	switch e {
	case ErrTypeAuthFailed:
		return "API ключ или OAuth токен недействителен. Проверьте youtube секцию config.yaml (или запустите yt-token)."
	case ErrTypeQuotaExceeded:
		return "Исчерпана дневная квота YouTube Data API."
	case ErrTypeTimeout:
		return "Превышено время ожидания ответа YouTube API."
	case ErrTypeNetwork:
		return "YouTube API недоступен. Проверьте подключение к интернету."
	case ErrTypeNotFound:
		return "Видео или плейлист не найдены."
	default:
		return "Неизвестная ошибка при обращении к YouTube API."
	}
}

// ClassifyError классифицирует ошибку по типу для диагностики в логах.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrTypeUnknown
	}

	var pe *ProviderError
	if errors.As(err, &pe) && pe.StatusCode != 0 {
		switch {
		case pe.Reason == "quotaExceeded" || pe.Reason == "rateLimitExceeded" || pe.StatusCode == http.StatusTooManyRequests:
			return ErrTypeQuotaExceeded
		case pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden:
			return ErrTypeAuthFailed
		case pe.StatusCode == http.StatusNotFound:
			return ErrTypeNotFound
		}
		return ErrTypeUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}

	errMsgLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsgLower, "timeout"), strings.Contains(errMsgLower, "deadline exceeded"):
		return ErrTypeTimeout
	case strings.Contains(errMsgLower, "oauth2"), strings.Contains(errMsgLower, "invalid_grant"):
		return ErrTypeAuthFailed
	case strings.Contains(errMsgLower, "connection refused"), strings.Contains(errMsgLower, "no such host"):
		return ErrTypeNetwork
	}

	return ErrTypeUnknown
}

// Client — клиент YouTube Data API.
//
// Безопасен для конкурентного использования.
type Client struct {
	apiKey        string
	playlistLimit int

	keyed   *ytapi.Service // Запросы с API ключом
	account *ytapi.Service // Запросы с OAuth токеном, nil если OAuth не настроен

	limiter *rate.Limiter
}

// clientOptions — транспорт до создания сервисов.
type clientOptions struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option настраивает Client.
type Option func(*clientOptions)

// WithHTTPClient подменяет транспорт для всех запросов (ключ и OAuth).
func WithHTTPClient(h *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = h
	}
}

// WithLimiter задаёт client-side лимитер запросов.
func WithLimiter(l *rate.Limiter) Option {
	return func(o *clientOptions) {
		o.limiter = l
	}
}

// NewFromConfig создает клиент из youtube секции config.yaml.
//
// При заданных client_id/client_secret/refresh_token создаётся OAuth
// транспорт, обновляющий access token автоматически.
// rate_limit задаётся в запросах в минуту; 0 отключает лимитер.
func NewFromConfig(ctx context.Context, cfg config.YouTubeConfig, opts ...Option) (*Client, error) {
	cfg = cfg.GetDefaults()

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid youtube.timeout format: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(float64(cfg.RateLimit) / 60.0)
	}

	o := clientOptions{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, max(cfg.BurstLimit, 1)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	keyed, err := newService(ctx, o.httpClient, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		apiKey:        cfg.APIKey,
		playlistLimit: cfg.PlaylistLimit,
		keyed:         keyed,
		limiter:       o.limiter,
	}

	if cfg.HasOAuth() {
		authClient := newOAuthHTTPClient(ctx, OAuthConfig(cfg), cfg.RefreshToken, o.httpClient)
		if c.account, err = newService(ctx, authClient, cfg.BaseURL); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// newService создаёт сервис YouTube поверх готового HTTP клиента.
//
// Авторизацию делает сам клиент (OAuth транспорт) или параметр key,
// поэтому ADC не ищутся.
func newService(ctx context.Context, hc *http.Client, baseURL string) (*ytapi.Service, error) {
	svc, err := ytapi.NewService(ctx,
		option.WithHTTPClient(hc),
		option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return svc, nil
}

// IsDemoKey проверяет что используется demo ключ (для mock режима).
func (c *Client) IsDemoKey() bool {
	return c.apiKey == config.DemoKey
}

// PlaylistLimit — сколько видео отдавать из LL/HL.
func (c *Client) PlaylistLimit() int {
	return c.playlistLimit
}

// Search ищет видео по запросу.
//
// Пустой запрос или maxResults <= 0 — ErrInvalidArgument без сетевого
// вызова. maxResults больше MaxResultsLimit урезается до лимита.
// Порядок результатов совпадает с порядком провайдера.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidArgument, maxResults)
	}
	maxResults = min(maxResults, MaxResultsLimit)

	svc, callOpts, err := c.searchService()
	if err != nil {
		return nil, err
	}

	var resp *ytapi.SearchListResponse
	err = c.call(ctx, "search", func() error {
		var err error
		resp, err = svc.Search.List([]string{"snippet"}).
			Type("video").
			Q(query).
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do(callOpts...)
		return err
	})
	if err != nil {
		return nil, err
	}

	videos := searchVideos(resp.Items, maxResults)
	utils.Debug("YouTube search completed", "query", query, "requested", maxResults, "returned", len(videos))
	return videos, nil
}

// PlaylistVideos возвращает первые maxResults видео плейлиста.
//
// Для LL (понравившиеся) и HL (история) нужен OAuth.
func (c *Client) PlaylistVideos(ctx context.Context, playlistID string, maxResults int) ([]Video, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, fmt.Errorf("%w: playlist id must not be empty", ErrInvalidArgument)
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidArgument, maxResults)
	}
	maxResults = min(maxResults, MaxResultsLimit)

	if c.account == nil {
		return nil, ErrNoCredentials
	}

	var resp *ytapi.PlaylistItemListResponse
	err := c.call(ctx, "playlistItems", func() error {
		var err error
		resp, err = c.account.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(int64(maxResults)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return playlistVideos(resp.Items, maxResults), nil
}

// Liked — понравившиеся видео аккаунта (плейлист LL).
func (c *Client) Liked(ctx context.Context) ([]Video, error) {
	return c.PlaylistVideos(ctx, PlaylistLiked, c.playlistLimit)
}

// History — история просмотров аккаунта (плейлист HL).
func (c *Client) History(ctx context.Context) ([]Video, error) {
	return c.PlaylistVideos(ctx, PlaylistHistory, c.playlistLimit)
}

// Rate ставит видео оценку: RatingLike или RatingNone (снять лайк).
func (c *Client) Rate(ctx context.Context, videoID, rating string) error {
	if strings.TrimSpace(videoID) == "" {
		return fmt.Errorf("%w: video id must not be empty", ErrInvalidArgument)
	}
	switch rating {
	case RatingLike, RatingNone, "dislike":
	default:
		return fmt.Errorf("%w: unsupported rating %q", ErrInvalidArgument, rating)
	}

	if c.account == nil {
		return ErrNoCredentials
	}

	return c.call(ctx, "rate", func() error {
		return c.account.Videos.Rate(videoID, rating).Context(ctx).Do()
	})
}

// searchService выбирает способ авторизации поиска.
// API ключ приоритетнее OAuth.
func (c *Client) searchService() (*ytapi.Service, []googleapi.CallOption, error) {
	if c.apiKey != "" {
		return c.keyed, []googleapi.CallOption{googleapi.QueryParameter("key", c.apiKey)}, nil
	}
	if c.account != nil {
		return c.account, nil, nil
	}
	return nil, nil, ErrNoCredentials
}

// call выполняет ровно один запрос к API и приводит ошибку к *ProviderError.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	start := time.Now()
	err := fn()
	if err == nil {
		return nil
	}

	pe := toProviderError(op, err)
	errType := ClassifyError(pe)
	utils.Error("YouTube request failed",
		"op", op,
		"status", pe.StatusCode,
		"error_type", errType.String(),
		"hint", errType.HumanMessage(),
		"error", err,
		"duration_ms", time.Since(start).Milliseconds())
	return pe
}

func toProviderError(op string, err error) *ProviderError {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &ProviderError{Op: op, Err: err}
	}

	pe := &ProviderError{Op: op, StatusCode: gerr.Code, Message: gerr.Message}
	if len(gerr.Errors) > 0 {
		pe.Reason = gerr.Errors[0].Reason
	}
	if pe.Message == "" {
		pe.Message = utils.Truncate(strings.TrimSpace(gerr.Body), 200)
	}
	return pe
}
