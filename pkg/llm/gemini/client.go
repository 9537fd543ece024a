// Package gemini реализует llm.Provider поверх Google Gen AI SDK.
//
// Разговор каждый раз передаётся целиком через Models.GenerateContent:
// Chats API не используется, так как агент не хранит историю между
// запросами.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const providerName = "gemini"

// Проверка что Client реализует интерфейс llm.Provider
var _ llm.Provider = (*Client)(nil)

// generateFunc — сигнатура genai.Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client реализует llm.Provider для Gemini API.
type Client struct {
	generate generateFunc
	model    string
	opts     llm.GenerateOptions
}

// NewClient создаёт клиент Gemini из определения модели.
//
// api_key обязателен; base_url (если задан) переопределяет эндпоинт.
func NewClient(ctx context.Context, modelDef config.ModelDef, opts ...llm.GenerateOption) (*Client, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("gemini: api_key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  modelDef.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if modelDef.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}
	if modelDef.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: modelDef.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		generate: client.Models.GenerateContent,
		model:    modelDef.ModelName,
		opts:     llm.Apply(opts...),
	}, nil
}

// Generate выполняет один запрос GenerateContent.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, defs []tools.ToolDefinition) (llm.Message, error) {
	startTime := time.Now()

	system, contents := toContents(messages)

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if c.opts.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(c.opts.Temperature))
	}
	if c.opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.opts.MaxTokens)
	}
	if len(defs) > 0 {
		cfg.Tools = toTools(defs)
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingConfigModeAuto},
		}
	}

	utils.Debug("LLM request started",
		"provider", providerName,
		"model", c.model,
		"messages_count", len(messages),
		"tools_count", len(defs))

	resp, err := c.generate(ctx, c.model, contents, cfg)
	if err != nil {
		utils.Error("LLM API request failed",
			"provider", providerName,
			"model", c.model,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, upstreamError(err)
	}

	result, err := fromResponse(resp)
	if err != nil {
		return llm.Message{}, &llm.UpstreamError{Provider: providerName, Err: err}
	}

	utils.Info("LLM response received",
		"provider", providerName,
		"model", c.model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

func upstreamError(err error) error {
	ue := &llm.UpstreamError{Provider: providerName, Err: err}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		ue.StatusCode = apiErr.Code
	case errors.As(err, &apiErrPtr):
		ue.StatusCode = apiErrPtr.Code
	}
	return ue
}

// toContents раскладывает разговор на system instruction и contents.
//
// Роли маппятся так:
//
//	system    → SystemInstruction
//	user      → user
//	assistant → model (текст + FunctionCall parts)
//	tool      → user с FunctionResponse; подряд идущие ответы склеиваются
//	            в один Content, как того требует Gemini
func toContents(messages []llm.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)

		case llm.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))

		case llm.RoleAssistant:
			parts := []*genai.Part{}
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: decodeObject(tc.Name, tc.Args),
				}})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})

		case llm.RoleTool:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.Name,
				Response: toolResponse(m.Content),
			}}
			if n := len(contents); n > 0 && isFunctionResponseContent(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{part}})
		}
	}

	return strings.Join(system, "\n\n"), contents
}

func isFunctionResponseContent(c *genai.Content) bool {
	if c.Role != string(genai.RoleUser) || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// toolResponse превращает JSON tool-сообщения в Response.
// Объект передаётся как есть ({"error": ...} в том числе), остальное
// кладётся под ключ "output".
func toolResponse(content string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return map[string]any{"output": content}
	}
	if obj, ok := v.(map[string]any); ok {
		return obj
	}
	return map[string]any{"output": v}
}

// decodeObject разбирает аргументы вызова, снимая markdown обёртку.
// Мусор превращается в пустой объект с предупреждением в логе.
func decodeObject(tool, args string) map[string]any {
	out := map[string]any{}
	if args == "" {
		return out
	}
	if err := json.Unmarshal([]byte(utils.CleanJsonBlock(args)), &out); err != nil {
		utils.Warn("Malformed tool arguments replaced with empty object",
			"tool", tool,
			"args", utils.Truncate(args, 200),
			"error", err)
		return map[string]any{}
	}
	return out
}

// toTools конвертирует каталог в FunctionDeclarations.
func toTools(defs []tools.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 def.Name,
			Description:          def.Description,
			ParametersJsonSchema: def.Schema(),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// fromResponse берёт первый кандидат. Вызов без ID получает сгенерированный,
// чтобы tool-сообщение могло на него сослаться.
func fromResponse(resp *genai.GenerateContentResponse) (llm.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return llm.Message{}, errors.New("no candidates in response")
	}

	result := llm.Message{Role: llm.RoleAssistant}
	content := resp.Candidates[0].Content
	if content == nil {
		return result, nil
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return llm.Message{}, fmt.Errorf("encode function call args: %w", err)
			}
			if part.FunctionCall.Args == nil {
				args = []byte("{}")
			}
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: string(args),
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	result.Content = text.String()

	return result, nil
}
