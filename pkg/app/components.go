// Package app собирает компоненты агента для разных точек входа
// (HTTP сервер, MCP сервер).
//
// Вся инициализация здесь: точки входа только разбирают флаги,
// вызывают Initialize и запускают свой транспорт.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/agent"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/factory"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// Components содержит все компоненты приложения.
type Components struct {
	Config       *config.AppConfig
	LLM          llm.Provider
	YouTube      *youtube.Client
	Registry     *tools.Registry
	Executor     *tools.Executor
	Orchestrator *agent.Orchestrator
}

// ConfigPathFinder определяет стратегию поиска пути к config.yaml.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
//  1. Флаг -config (если указан)
//  2. Текущая директория (./config.yaml)
//  3. Директория бинарника
//  4. Две директории вверх (запуск из cmd/<name>/)
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага -config, если указан
	ConfigFlag string
}

// FindConfigPath находит путь к config.yaml.
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	candidates := []string{"config.yaml"}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	candidates = append(candidates, filepath.Join("..", "..", "config.yaml"))

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return resolveAbsPath(p)
		}
	}

	// Возвращаем дефолтный путь (даже если не существует)
	return resolveAbsPath("config.yaml")
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// InitializeConfig подхватывает .env рядом с конфигом и загружает config.yaml.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()

	if err := config.LoadDotEnv(filepath.Join(filepath.Dir(cfgPath), ".env"), ".env"); err != nil {
		return nil, cfgPath, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// Initialize создаёт и связывает все компоненты.
//
// Порядок: клиент YouTube → реестр инструментов → LLM провайдер → Orchestrator.
func Initialize(ctx context.Context, cfg *config.AppConfig, opts ...youtube.Option) (*Components, error) {
	utils.Info("Initializing components", "default_model", cfg.Models.DefaultChat)

	// 1. Клиент YouTube
	ytClient, err := youtube.NewFromConfig(ctx, cfg.YouTube, opts...)
	if err != nil {
		utils.Error("YouTube client creation failed", "error", err)
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	utils.Info("YouTube client initialized",
		"demo", ytClient.IsDemoKey(),
		"oauth", cfg.YouTube.HasOAuth(),
		"rate_limit", cfg.YouTube.RateLimit)

	// 2. Инструменты
	registry := tools.NewRegistry()
	if err := SetupTools(registry, ytClient, cfg); err != nil {
		utils.Error("Tools registration failed", "error", err)
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	executor := tools.NewExecutor(registry)

	// 3. LLM провайдер
	modelDef, ok := cfg.GetChatModel(cfg.Models.DefaultChat)
	if !ok {
		utils.Error("Default chat model not found", "model", cfg.Models.DefaultChat)
		return nil, fmt.Errorf("default_chat model '%s' not found in definitions", cfg.Models.DefaultChat)
	}

	provider, err := factory.NewLLMProvider(ctx, modelDef)
	if err != nil {
		utils.Error("LLM provider creation failed", "error", err)
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	utils.Info("LLM provider created", "provider", modelDef.Provider, "model", modelDef.ModelName)

	// 4. Orchestrator
	orchestrator, err := agent.New(agent.Config{
		LLM:          provider,
		Executor:     executor,
		SystemPrompt: cfg.App.SystemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	return &Components{
		Config:       cfg,
		LLM:          provider,
		YouTube:      ytClient,
		Registry:     registry,
		Executor:     executor,
		Orchestrator: orchestrator,
	}, nil
}
