package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools/std"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMProvider — мок LLM провайдера для тестирования.
// Реализует интерфейс llm.Provider для детерминированного тестирования.
type MockLLMProvider struct {
	// Responses — последовательность ответов для возврата
	Responses []llm.Message
	// Errors — ошибка для i-го вызова (nil — вернуть Responses[i])
	Errors []error
	// CallCount — количество вызовов Generate
	CallCount int
	// Calls — сообщения и каталог каждого вызова
	Calls []MockCall

	mu sync.Mutex
}

// MockCall — что получил Generate.
type MockCall struct {
	Messages []llm.Message
	Tools    []tools.ToolDefinition
}

// Generate реализует llm.Provider интерфейс.
func (m *MockLLMProvider) Generate(ctx context.Context, messages []llm.Message, defs []tools.ToolDefinition) (llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.CallCount
	m.CallCount++
	m.Calls = append(m.Calls, MockCall{Messages: messages, Tools: defs})

	if idx < len(m.Errors) && m.Errors[idx] != nil {
		return llm.Message{}, m.Errors[idx]
	}
	if idx >= len(m.Responses) {
		return llm.Message{}, errors.New("unexpected call: no more responses")
	}
	return m.Responses[idx], nil
}

// LastMessages — сообщения последнего вызова.
func (m *MockLLMProvider) LastMessages() []llm.Message {
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1].Messages
}

// stubSearcher возвращает заранее заданные наборы по очереди.
type stubSearcher struct {
	results [][]youtube.Video
	err     error

	mu      sync.Mutex
	calls   int
	queries []string
	maxes   []int
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]youtube.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.calls
	s.calls++
	s.queries = append(s.queries, query)
	s.maxes = append(s.maxes, maxResults)

	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return []youtube.Video{}, nil
	}
	return s.results[min(idx, len(s.results)-1)], nil
}

func videos(ids ...string) []youtube.Video {
	out := make([]youtube.Video, 0, len(ids))
	for _, id := range ids {
		out = append(out, youtube.Video{VideoID: id, Title: "Video " + id, ChannelTitle: "Channel"})
	}
	return out
}

func toolCallMsg(calls ...llm.ToolCall) llm.Message {
	return llm.Message{Role: llm.RoleAssistant, ToolCalls: calls}
}

func searchCall(id, args string) llm.ToolCall {
	return llm.ToolCall{ID: id, Name: std.YouTubeSearchToolName, Args: args}
}

// newTestOrchestrator собирает Orchestrator с реальным реестром и исполнителем.
func newTestOrchestrator(t *testing.T, provider llm.Provider, searcher std.Searcher) *Orchestrator {
	t.Helper()

	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(std.NewYouTubeSearchTool(searcher, config.ToolConfig{}, config.YouTubeConfig{})))

	o, err := New(Config{LLM: provider, Executor: tools.NewExecutor(registry)})
	require.NoError(t, err)
	return o
}

func TestNewOrchestrator(t *testing.T) {
	executor := tools.NewExecutor(tools.NewRegistry())

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid config", cfg: Config{LLM: &MockLLMProvider{}, Executor: executor}},
		{name: "missing LLM", cfg: Config{Executor: executor}, wantErr: "cfg.LLM is required"},
		{name: "missing executor", cfg: Config{LLM: &MockLLMProvider{}}, wantErr: "cfg.Executor is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.cfg)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, config.DefaultSystemPrompt, o.systemPrompt)
			assert.Equal(t, std.YouTubeSearchToolName, o.searchTool)
		})
	}
}

func TestChatEmptyMessage(t *testing.T) {
	provider := &MockLLMProvider{}
	o := newTestOrchestrator(t, provider, &stubSearcher{})

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := o.Chat(context.Background(), msg)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyMessage)

		var chatErr *ChatError
		require.ErrorAs(t, err, &chatErr)
		assert.Equal(t, StateIdle, chatErr.State)
	}
	assert.Zero(t, provider.CallCount)
}

func TestChatNoToolCall(t *testing.T) {
	provider := &MockLLMProvider{Responses: []llm.Message{
		{Role: llm.RoleAssistant, Content: "**Hello!** How can I help?"},
	}}
	searcher := &stubSearcher{}
	o := newTestOrchestrator(t, provider, searcher)

	result, err := o.Chat(context.Background(), "hi")
	require.NoError(t, err)

	assert.Equal(t, "**Hello!** How can I help?", result.Reply)
	assert.NotNil(t, result.Videos)
	assert.Empty(t, result.Videos)
	assert.Equal(t, 1, provider.CallCount)
	assert.Zero(t, searcher.calls, "executor must not run without tool calls")

	// Первый раунд: [system, user] и полный каталог
	first := provider.Calls[0]
	require.Len(t, first.Messages, 2)
	assert.Equal(t, llm.RoleSystem, first.Messages[0].Role)
	assert.Equal(t, config.DefaultSystemPrompt, first.Messages[0].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hi"}, first.Messages[1])
	require.Len(t, first.Tools, 1)
	assert.Equal(t, std.YouTubeSearchToolName, first.Tools[0].Name)
}

func TestChatSingleSearch(t *testing.T) {
	found := videos("v1", "v2")
	provider := &MockLLMProvider{Responses: []llm.Message{
		toolCallMsg(searchCall("call_1", `{"query":"golang","maxResults":2}`)),
		{Role: llm.RoleAssistant, Content: "Here you go"},
	}}
	searcher := &stubSearcher{results: [][]youtube.Video{found}}
	o := newTestOrchestrator(t, provider, searcher)

	result, err := o.Chat(context.Background(), "golang videos")
	require.NoError(t, err)

	assert.Equal(t, "Here you go", result.Reply)
	assert.Equal(t, found, result.Videos)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, []string{"golang"}, searcher.queries)
	assert.Equal(t, []int{2}, searcher.maxes)

	// Второй раунд идёт без каталога
	require.Equal(t, 2, provider.CallCount)
	assert.Nil(t, provider.Calls[1].Tools)

	msgs := provider.LastMessages()
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "call_1", msgs[2].ToolCalls[0].ID)
	assert.Equal(t, llm.RoleTool, msgs[3].Role)
	assert.Equal(t, "call_1", msgs[3].ToolCallID)
	assert.Equal(t, std.YouTubeSearchToolName, msgs[3].Name)
	assert.Contains(t, msgs[3].Content, `"videoId":"v1"`)
}

func TestChatLastSearchWins(t *testing.T) {
	a, b := videos("a1", "a2"), videos("b1")
	provider := &MockLLMProvider{Responses: []llm.Message{
		toolCallMsg(
			searchCall("call_a", `{"query":"first"}`),
			searchCall("call_b", `{"query":"second"}`),
		),
		{Role: llm.RoleAssistant, Content: "done"},
	}}
	searcher := &stubSearcher{results: [][]youtube.Video{a, b}}
	o := newTestOrchestrator(t, provider, searcher)

	result, err := o.Chat(context.Background(), "two searches")
	require.NoError(t, err)

	assert.Equal(t, b, result.Videos)
	assert.Equal(t, []string{"first", "second"}, searcher.queries, "tools run in emission order")

	msgs := provider.LastMessages()
	require.Len(t, msgs, 5)
	assert.Equal(t, "call_a", msgs[3].ToolCallID)
	assert.Contains(t, msgs[3].Content, `"videoId":"a1"`)
	assert.Equal(t, "call_b", msgs[4].ToolCallID)
	assert.Contains(t, msgs[4].Content, `"videoId":"b1"`)
}

func TestChatDegradedToolCalls(t *testing.T) {
	tests := []struct {
		name string
		call llm.ToolCall
	}{
		{name: "unknown tool", call: llm.ToolCall{ID: "call_x", Name: "not_a_real_tool", Args: "{}"}},
		{name: "missing query", call: searchCall("call_x", `{"maxResults":3}`)},
		{name: "malformed args", call: searchCall("call_x", `{"query":`)},
		{name: "blank query rejected by client", call: searchCall("call_x", `{"query":"   "}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockLLMProvider{Responses: []llm.Message{
				toolCallMsg(tt.call),
				{Role: llm.RoleAssistant, Content: "Sorry, the search failed"},
			}}
			searcher := &stubSearcher{}
			if tt.name == "blank query rejected by client" {
				searcher.err = youtube.ErrInvalidArgument
			}
			o := newTestOrchestrator(t, provider, searcher)

			result, err := o.Chat(context.Background(), "find something")
			require.NoError(t, err)

			assert.Equal(t, "Sorry, the search failed", result.Reply)
			assert.Empty(t, result.Videos)
			require.Equal(t, 2, provider.CallCount)

			msgs := provider.LastMessages()
			require.Len(t, msgs, 4)
			assert.Equal(t, "call_x", msgs[3].ToolCallID)
			assert.Contains(t, msgs[3].Content, `"error"`)
		})
	}
}

func TestChatDegradedSearchKeepsEarlierVideos(t *testing.T) {
	found := videos("ok1")
	provider := &MockLLMProvider{Responses: []llm.Message{
		toolCallMsg(
			searchCall("call_1", `{"query":"cats"}`),
			searchCall("call_2", `{"maxResults":"many"}`),
		),
		{Role: llm.RoleAssistant, Content: "cats"},
	}}
	o := newTestOrchestrator(t, provider, &stubSearcher{results: [][]youtube.Video{found}})

	result, err := o.Chat(context.Background(), "cats")
	require.NoError(t, err)
	assert.Equal(t, found, result.Videos)
}

func TestChatFailures(t *testing.T) {
	upstream := &llm.UpstreamError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")}

	t.Run("first completion fails", func(t *testing.T) {
		provider := &MockLLMProvider{Errors: []error{upstream}}
		o := newTestOrchestrator(t, provider, &stubSearcher{})

		_, err := o.Chat(context.Background(), "hi")
		var chatErr *ChatError
		require.ErrorAs(t, err, &chatErr)
		assert.Equal(t, StateAwaitingFirstCompletion, chatErr.State)
		assert.ErrorIs(t, err, llm.ErrUpstream)
	})

	t.Run("search provider fails", func(t *testing.T) {
		provider := &MockLLMProvider{Responses: []llm.Message{
			toolCallMsg(searchCall("call_1", `{"query":"go"}`)),
			{Role: llm.RoleAssistant, Content: "never"},
		}}
		searcher := &stubSearcher{err: &youtube.ProviderError{Op: "search", StatusCode: 403, Reason: "quotaExceeded"}}
		o := newTestOrchestrator(t, provider, searcher)

		_, err := o.Chat(context.Background(), "go")
		var chatErr *ChatError
		require.ErrorAs(t, err, &chatErr)
		assert.Equal(t, StateToolCallsPending, chatErr.State)
		assert.ErrorIs(t, err, youtube.ErrProvider)
		assert.Equal(t, 1, provider.CallCount, "no second round after tool failure")
	})

	t.Run("second completion fails", func(t *testing.T) {
		provider := &MockLLMProvider{
			Responses: []llm.Message{toolCallMsg(searchCall("call_1", `{"query":"go"}`))},
			Errors:    []error{nil, upstream},
		}
		o := newTestOrchestrator(t, provider, &stubSearcher{results: [][]youtube.Video{videos("v")}})

		result, err := o.Chat(context.Background(), "go")
		var chatErr *ChatError
		require.ErrorAs(t, err, &chatErr)
		assert.Equal(t, StateAwaitingSecondCompletion, chatErr.State)
		assert.Empty(t, result.Videos, "partial progress is discarded")
	})
}

func TestChatSecondRoundToolCallsIgnored(t *testing.T) {
	provider := &MockLLMProvider{Responses: []llm.Message{
		toolCallMsg(searchCall("call_1", `{"query":"go"}`)),
		{Role: llm.RoleAssistant, Content: "final", ToolCalls: []llm.ToolCall{searchCall("call_2", `{"query":"more"}`)}},
	}}
	searcher := &stubSearcher{results: [][]youtube.Video{videos("v")}}
	o := newTestOrchestrator(t, provider, searcher)

	result, err := o.Chat(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "final", result.Reply)
	assert.Equal(t, 2, provider.CallCount)
	assert.Equal(t, 1, searcher.calls)
}

// TestChatKubernetesScenario — сквозной сценарий с тремя видео.
func TestChatKubernetesScenario(t *testing.T) {
	stub := videos("k1", "k2", "k3")
	provider := &MockLLMProvider{Responses: []llm.Message{
		toolCallMsg(searchCall("call_k8s", `{"query":"Kubernetes","maxResults":3}`)),
		{Role: llm.RoleAssistant, Content: "Here are some picks"},
	}}
	searcher := &stubSearcher{results: [][]youtube.Video{stub}}
	o := newTestOrchestrator(t, provider, searcher)

	result, err := o.Chat(context.Background(), "recommend videos about Kubernetes")
	require.NoError(t, err)

	assert.Equal(t, ChatResult{Reply: "Here are some picks", Videos: stub}, result)
	assert.Equal(t, []string{"Kubernetes"}, searcher.queries)
	assert.Equal(t, []int{3}, searcher.maxes)
}

func TestChatIdempotent(t *testing.T) {
	stub := videos("x1", "x2")
	responses := []llm.Message{
		toolCallMsg(searchCall("call_1", `{"query":"jazz"}`)),
		{Role: llm.RoleAssistant, Content: "Jazz picks"},
	}
	// Ответы повторяются для второго запроса
	provider := &MockLLMProvider{Responses: append(append([]llm.Message{}, responses...), responses...)}
	o := newTestOrchestrator(t, provider, &stubSearcher{results: [][]youtube.Video{stub}})

	first, err := o.Chat(context.Background(), "jazz")
	require.NoError(t, err)
	second, err := o.Chat(context.Background(), "jazz")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// Во втором запросе история первого не накапливается
	assert.Len(t, provider.Calls[2].Messages, 2)
	assert.Equal(t, provider.Calls[1].Messages, provider.Calls[3].Messages)
}

func TestChatConcurrent(t *testing.T) {
	provider := &sequenceFreeProvider{}
	o := newTestOrchestrator(t, provider, &stubSearcher{results: [][]youtube.Video{videos("c1")}})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := o.Chat(context.Background(), "concurrent")
			if err != nil {
				errs <- err
				return
			}
			if len(result.Videos) != 1 || result.Reply != "ok" {
				errs <- errors.New("unexpected result")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// sequenceFreeProvider отвечает по содержимому разговора, а не по счётчику,
// поэтому годится для параллельных запросов.
type sequenceFreeProvider struct{}

func (sequenceFreeProvider) Generate(ctx context.Context, messages []llm.Message, defs []tools.ToolDefinition) (llm.Message, error) {
	if len(defs) > 0 {
		return toolCallMsg(searchCall("call_1", `{"query":"q"}`)), nil
	}
	return llm.Message{Role: llm.RoleAssistant, Content: "ok"}, nil
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_first_completion", StateAwaitingFirstCompletion.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(42)", State(42).String())

	err := &ChatError{State: StateToolCallsPending, Err: errors.New("boom")}
	assert.Equal(t, "chat failed in tool_calls_pending: boom", err.Error())
}
