// Package config загружает config.yaml один раз при старте процесса.
//
// ${VAR} подставляются из окружения (опционально предварительно
// загруженного из .env). Ядро агента получает уже готовые структуры и
// само окружение не читает.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DemoKey — значение youtube.api_key, включающее mock режим поиска.
const DemoKey = "demo_key"

// DefaultSystemPrompt — системный промпт агента, если app.system_prompt не задан.
const DefaultSystemPrompt = "You are an AI YouTube agent connected to an MCP server. " +
	"Provide clean answers. Use markdown (bold, headings, lists) where it helps. " +
	"Trigger the YouTube search tool when helpful."

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Server  ServerConfig          `yaml:"server"`
	Models  ModelsConfig          `yaml:"models"`
	YouTube YouTubeConfig         `yaml:"youtube"`
	Tools   map[string]ToolConfig `yaml:"tools"`
	App     AppSpecific           `yaml:"app"`
}

// ServerConfig — настройки HTTP API.
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`     // ":3001"
	AllowedOrigin  string        `yaml:"allowed_origin"`  // CORS, "*" по умолчанию
	RequestTimeout time.Duration `yaml:"request_timeout"` // Общий лимит на один /api/chat
}

// GetDefaults возвращает копию с дефолтами для незаполненных полей.
func (c *ServerConfig) GetDefaults() ServerConfig {
	result := *c

	if result.ListenAddr == "" {
		result.ListenAddr = ":3001"
	}
	if result.AllowedOrigin == "" {
		result.AllowedOrigin = "*"
	}
	if result.RequestTimeout == 0 {
		result.RequestTimeout = 90 * time.Second
	}

	return result
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас модели для чата (например, "gpt-4o-mini")
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai", "deepseek", "openrouter", "gemini"
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Go умеет парсить строки вида "60s", "1m"
}

// YouTubeConfig — настройки YouTube Data API.
//
// api_key используется для поиска. OAuth поля (client_id, client_secret,
// refresh_token) нужны для лайков и плейлистов LL/HL; без них поиск
// тоже идёт через OAuth, если ключ не задан.
type YouTubeConfig struct {
	APIKey        string `yaml:"api_key"`
	ClientID      string `yaml:"client_id"`
	ClientSecret  string `yaml:"client_secret"`
	RefreshToken  string `yaml:"refresh_token"`
	RedirectURL   string `yaml:"redirect_url"`   // Для yt-token, "http://localhost"
	BaseURL       string `yaml:"base_url"`       // "https://www.googleapis.com"
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту, 0 — без ограничения
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "15s")
	PlaylistLimit int    `yaml:"playlist_limit"` // Сколько видео отдавать из LL/HL
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *YouTubeConfig) GetDefaults() YouTubeConfig {
	result := *c // Копируем текущие значения

	if result.BaseURL == "" {
		result.BaseURL = "https://www.googleapis.com"
	}
	if result.RedirectURL == "" {
		result.RedirectURL = "http://localhost"
	}
	if result.RateLimit > 0 && result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.Timeout == "" {
		result.Timeout = "15s"
	}
	if result.PlaylistLimit == 0 {
		result.PlaylistLimit = 20
	}

	return result
}

// HasOAuth сообщает, заданы ли все поля для OAuth refresh token flow.
func (c *YouTubeConfig) HasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// IsDemoKey проверяет что используется demo ключ (для mock режима).
func (c *YouTubeConfig) IsDemoKey() bool {
	return c.APIKey == DemoKey
}

// ToolConfig — настройки инструментов.
type ToolConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Description       string `yaml:"description"`         // Описание для LLM, дефолт задаёт сам tool
	DefaultMaxResults int    `yaml:"default_max_results"` // Для youtube_search
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug        bool   `yaml:"debug"`
	LogFile      string `yaml:"log_file"`      // Пусто — лог в stderr
	SystemPrompt string `yaml:"system_prompt"` // Пусто — DefaultSystemPrompt
}

// LoadDotEnv подгружает переменные из .env файлов, если они есть.
//
// Уже заданные переменные окружения не перезаписываются.
// Отсутствующий файл ошибкой не считается.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает содержимое config.yaml (с подстановкой ${VAR}),
// валидирует его и применяет дефолты.
func Parse(raw []byte) (*AppConfig, error) {
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Server = cfg.Server.GetDefaults()
	cfg.YouTube = cfg.YouTube.GetDefaults()
	if cfg.App.SystemPrompt == "" {
		cfg.App.SystemPrompt = DefaultSystemPrompt
	}

	return &cfg, nil
}

// validate проверяет обязательные поля и собирает все проблемы сразу.
func (c *AppConfig) validate() error {
	var missing []string

	if c.Models.DefaultChat == "" {
		missing = append(missing, "models.default_chat")
	} else if def, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
		return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
	} else {
		if def.Provider == "" {
			missing = append(missing, "models.definitions."+c.Models.DefaultChat+".provider")
		}
		if def.ModelName == "" {
			missing = append(missing, "models.definitions."+c.Models.DefaultChat+".model_name")
		}
	}

	if c.YouTube.APIKey == "" && !c.YouTube.HasOAuth() {
		missing = append(missing, "youtube.api_key (or youtube.client_id/client_secret/refresh_token)")
	}

	if c.YouTube.Timeout != "" {
		if _, err := time.ParseDuration(c.YouTube.Timeout); err != nil {
			return fmt.Errorf("invalid youtube.timeout format: %w", err)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetChatModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// Tool возвращает настройки инструмента. Отсутствующая секция — включённый
// tool с дефолтами.
func (c *AppConfig) Tool(name string) ToolConfig {
	if tc, ok := c.Tools[name]; ok {
		return tc
	}
	return ToolConfig{Enabled: true}
}
