// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Поддерживает Function Calling (tools). Тот же клиент обслуживает
// совместимые эндпоинты (Z.ai, DeepSeek, OpenRouter) через base_url.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Проверка что Client реализует интерфейс llm.Provider
var _ llm.Provider = (*Client)(nil)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api      *openai.Client
	model    string
	provider string
	opts     llm.GenerateOptions
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// Принимает ModelDef напрямую для упрощения создания клиентов через factory.
func NewClient(modelDef config.ModelDef, opts ...llm.GenerateOption) *Client {
	// Поддержка custom BaseURL для non-OpenAI провайдеров (Zai, DeepSeek и т.д.)
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}
	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	provider := modelDef.Provider
	if provider == "" {
		provider = "openai"
	}

	return &Client{
		api:      openai.NewClientWithConfig(cfg),
		model:    modelDef.ModelName,
		provider: provider,
		opts:     llm.Apply(opts...),
	}
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// Алгоритм:
//  1. Конвертирует внутренние сообщения в формат OpenAI SDK
//  2. Если переданы defs — добавляет их в запрос с tool_choice "auto"
//  3. Вызывает API (один запрос, без ретраев)
//  4. Конвертирует ответ обратно, сохраняя порядок ToolCalls
func (c *Client) Generate(ctx context.Context, messages []llm.Message, defs []tools.ToolDefinition) (llm.Message, error) {
	startTime := time.Now()

	utils.Debug("LLM request started",
		"provider", c.provider,
		"model", c.model,
		"messages_count", len(messages),
		"tools_count", len(defs))

	// 1. Конвертируем наши сообщения в формат OpenAI SDK
	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	// 2. Создаём базовый запрос
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: openaiMsgs,
	}
	if c.opts.Temperature != 0 {
		req.Temperature = float32(c.opts.Temperature)
	}
	if c.opts.MaxTokens > 0 {
		req.MaxTokens = c.opts.MaxTokens
	}

	// 3. Добавляем tools если переданы
	if len(defs) > 0 {
		req.Tools = convertToolsToOpenAI(defs)
		// LLM сама решает когда вызывать tools
		req.ToolChoice = "auto"
	}

	// 4. Вызываем API
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"provider", c.provider,
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, c.upstreamError(err)
	}

	// Проверяем что есть хотя бы один выбор
	if len(resp.Choices) == 0 {
		return llm.Message{}, &llm.UpstreamError{Provider: c.provider, Err: errors.New("no choices in response")}
	}

	// 5. Маппим ответ обратно в наш формат
	result := mapFromOpenAI(resp.Choices[0].Message)

	utils.Info("LLM response received",
		"provider", c.provider,
		"model", c.model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// upstreamError оборачивает ошибку SDK, сохраняя HTTP статус если он есть.
func (c *Client) upstreamError(err error) error {
	ue := &llm.UpstreamError{Provider: c.provider, Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		ue.StatusCode = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		ue.StatusCode = reqErr.HTTPStatusCode
	}
	return ue
}

// mapToOpenAI конвертирует наше внутреннее сообщение в формат SDK.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
	}

	if m.Role == llm.RoleTool {
		msg.Name = m.Name
	}

	if len(m.ToolCalls) > 0 {
		msg.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			msg.ToolCalls[i] = openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			}
		}
	}

	return msg
}

// mapFromOpenAI конвертирует ответ SDK в наш формат.
func mapFromOpenAI(choice openai.ChatCompletionMessage) llm.Message {
	result := llm.Message{
		Role:    llm.RoleAssistant,
		Content: choice.Content,
	}

	// Извлекаем ToolCalls если модель решила вызвать функции
	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}

	return result
}

// convertToolsToOpenAI конвертирует определения инструментов
// в формат OpenAI Function Calling.
//
// Соответствие структур:
//
//	tools.ToolDefinition → openai.Tool (type=function)
//	ToolDefinition.Schema() → openai.FunctionDefinition.Parameters
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))

	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Schema(),
			},
		}
	}

	return result
}

// String для логов и диагностики.
func (c *Client) String() string {
	return fmt.Sprintf("%s/%s", c.provider, c.model)
}
