package app

import (
	"fmt"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools/std"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
)

// SetupTools регистрирует инструменты на основе секции tools в YAML.
//
// Инструмент без секции в конфиге считается включённым.
// Возвращает ошибку если валидация определения какого-либо инструмента не прошла.
func SetupTools(registry *tools.Registry, searcher std.Searcher, cfg *config.AppConfig) error {
	var registered []string

	register := func(name string, tool tools.Tool) error {
		toolCfg := cfg.Tool(name)
		if !toolCfg.Enabled {
			utils.Debug("Tool disabled, skipping", "tool", name)
			return nil
		}
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("failed to register tool '%s': %w", name, err)
		}
		registered = append(registered, name)
		return nil
	}

	searchCfg := cfg.Tool(std.YouTubeSearchToolName)
	if err := register(std.YouTubeSearchToolName, std.NewYouTubeSearchTool(searcher, searchCfg, cfg.YouTube)); err != nil {
		return err
	}

	utils.Info("Tools registered", "count", len(registered), "tools", registered)
	return nil
}
