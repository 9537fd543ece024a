// Package std содержит стандартные инструменты агента.
//
// YouTubeSearchTool — тонкая обёртка над pkg/youtube для function calling.
package std

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// YouTubeSearchToolName — имя инструмента в каталоге.
const YouTubeSearchToolName = "youtube_search"

// DefaultMaxResults — сколько видео возвращать, если модель не указала maxResults.
const DefaultMaxResults = 5

const defaultSearchDescription = "Search YouTube for videos matching a query. " +
	"Use it whenever the user asks for video recommendations, tutorials, music or talks."

// Searcher — то, что умеет искать видео. *youtube.Client реализует этот интерфейс.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]youtube.Video, error)
}

// SearchArgs — типизированные аргументы youtube_search.
type SearchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults"`
}

// YouTubeSearchTool — инструмент поиска видео.
type YouTubeSearchTool struct {
	searcher    Searcher
	description string
	defaultMax  int
	demo        bool // Mock режим для demo ключа
}

// NewYouTubeSearchTool создает инструмент поиска.
//
// Параметры:
//   - s: клиент YouTube (или любой Searcher)
//   - cfg: конфигурация tool из YAML
//   - yt: youtube секция config.yaml (для demo режима)
func NewYouTubeSearchTool(s Searcher, cfg config.ToolConfig, yt config.YouTubeConfig) *YouTubeSearchTool {
	description := cfg.Description
	if description == "" {
		description = defaultSearchDescription
	}
	defaultMax := cfg.DefaultMaxResults
	if defaultMax <= 0 {
		defaultMax = DefaultMaxResults
	}

	return &YouTubeSearchTool{
		searcher:    s,
		description: description,
		defaultMax:  defaultMax,
		demo:        yt.IsDemoKey(),
	}
}

// Definition возвращает определение инструмента для function calling.
func (t *YouTubeSearchTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        YouTubeSearchToolName,
		Description: t.description,
		Params: []tools.Param{
			{
				Name:        "query",
				Type:        tools.TypeString,
				Description: "What to search for, e.g. 'golang concurrency talk'",
				Required:    true,
			},
			{
				Name:        "maxResults",
				Type:        tools.TypeInteger,
				Description: fmt.Sprintf("How many videos to return (1-%d)", youtube.MaxResultsLimit),
				Default:     t.defaultMax,
			},
		},
	}
}

// Execute ищет видео. Возвращает []youtube.Video.
//
// Отказ клиента по аргументам превращается в tools.ErrInvalidArgument,
// ошибки провайдера пробрасываются как есть и прерывают запрос.
func (t *YouTubeSearchTool) Execute(ctx context.Context, args tools.Args) (any, error) {
	var in SearchArgs
	if err := args.Decode(&in); err != nil {
		return nil, err
	}

	if t.demo {
		if strings.TrimSpace(in.Query) == "" || in.MaxResults <= 0 {
			return nil, fmt.Errorf("%w: query must not be empty and maxResults must be positive", tools.ErrInvalidArgument)
		}
		return mockVideos(in.Query, in.MaxResults), nil
	}

	videos, err := t.searcher.Search(ctx, in.Query, in.MaxResults)
	if err != nil {
		if errors.Is(err, youtube.ErrInvalidArgument) {
			return nil, fmt.Errorf("%w: %v", tools.ErrInvalidArgument, err)
		}
		return nil, err
	}
	return videos, nil
}

// mockVideos возвращает детерминированные данные с реальной структурой ответа.
func mockVideos(query string, maxResults int) []youtube.Video {
	query = strings.TrimSpace(query)
	n := min(maxResults, 3)

	out := make([]youtube.Video, 0, n)
	published := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("demo%02d", i)
		out = append(out, youtube.Video{
			VideoID:      id,
			Title:        fmt.Sprintf("%s #%d (demo)", query, i),
			ThumbnailURL: "https://i.ytimg.com/vi/" + id + "/mqdefault.jpg",
			ChannelTitle: "Demo Channel",
			PublishedAt:  published.AddDate(0, 0, i),
		})
	}
	return out
}
