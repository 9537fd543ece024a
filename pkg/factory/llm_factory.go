package factory

import (
	"context"
	"fmt"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm/gemini"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm/openai"
)

// NewLLMProvider создает провайдера на основе конфигурации модели.
//
// Temperature и max_tokens из определения модели передаются как опции.
func NewLLMProvider(ctx context.Context, modelDef config.ModelDef) (llm.Provider, error) {
	opts := llm.OptionsFromModel(modelDef)

	switch modelDef.Provider {
	case "zai", "openai", "deepseek", "openrouter":
		return openai.NewClient(modelDef, opts...), nil

	case "gemini":
		return gemini.NewClient(ctx, modelDef, opts...)

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}
