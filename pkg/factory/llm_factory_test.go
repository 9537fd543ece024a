package factory

import (
	"context"
	"testing"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm/gemini"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	for _, provider := range []string{"openai", "zai", "deepseek", "openrouter"} {
		t.Run(provider, func(t *testing.T) {
			p, err := NewLLMProvider(context.Background(), config.ModelDef{
				Provider:    provider,
				ModelName:   "m",
				APIKey:      "k",
				Temperature: 0.3,
			})
			require.NoError(t, err)
			assert.IsType(t, &openai.Client{}, p)
		})
	}

	t.Run("gemini", func(t *testing.T) {
		p, err := NewLLMProvider(context.Background(), config.ModelDef{Provider: "gemini", ModelName: "gemini-2.5-flash", APIKey: "k"})
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, p)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewLLMProvider(context.Background(), config.ModelDef{Provider: "anthropic"})
		assert.ErrorContains(t, err, "unknown provider type")
	})
}
