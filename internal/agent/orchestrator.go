// Package agent реализует двухраундовый цикл чата с инструментами.
//
// Один запрос пользователя проходит через конечный автомат:
//
//	Idle → AwaitingFirstCompletion → NoToolCall → Done
//	Idle → AwaitingFirstCompletion → ToolCallsPending → AwaitingSecondCompletion → Done
//
// Разговор собирается заново на каждый запрос, поэтому Orchestrator
// не хранит изменяемого состояния и безопасен для конкурентных вызовов.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/config"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/llm"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools/std"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// State — состояние цикла обработки одного сообщения.
type State int

const (
	StateIdle State = iota
	StateAwaitingFirstCompletion
	StateNoToolCall
	StateToolCallsPending
	StateAwaitingSecondCompletion
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstCompletion:
		return "awaiting_first_completion"
	case StateNoToolCall:
		return "no_tool_call"
	case StateToolCallsPending:
		return "tool_calls_pending"
	case StateAwaitingSecondCompletion:
		return "awaiting_second_completion"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrEmptyMessage — пустое или пробельное сообщение пользователя.
var ErrEmptyMessage = errors.New("message is required")

// ChatError — единственная ошибка, которую Chat отдаёт наружу.
// State показывает, на каком шаге цикл был прерван.
type ChatError struct {
	State State
	Err   error
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("chat failed in %s: %v", e.State, e.Err)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// ChatResult — ответ на одно сообщение.
//
// Videos никогда не nil: без поиска это пустой срез, и в JSON он
// сериализуется как [].
type ChatResult struct {
	Reply  string          `json:"reply"`
	Videos []youtube.Video `json:"videos"`
}

// Config конфигурация для создания Orchestrator.
type Config struct {
	// LLM — провайдер языковой модели (обязательный)
	LLM llm.Provider

	// Executor — исполнитель инструментов поверх реестра (обязательный)
	Executor *tools.Executor

	// SystemPrompt — системный промпт; пусто — config.DefaultSystemPrompt
	SystemPrompt string

	// SearchTool — инструмент, чей результат попадает в ChatResult.Videos
	SearchTool string
}

// Orchestrator выполняет цикл чата.
type Orchestrator struct {
	llm          llm.Provider
	executor     *tools.Executor
	systemPrompt string
	searchTool   string
}

// New создаёт новый Orchestrator с заданной конфигурацией.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.LLM == nil {
		return nil, fmt.Errorf("cfg.LLM is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("cfg.Executor is required")
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = config.DefaultSystemPrompt
	}
	if cfg.SearchTool == "" {
		cfg.SearchTool = std.YouTubeSearchToolName
	}

	return &Orchestrator{
		llm:          cfg.LLM,
		executor:     cfg.Executor,
		systemPrompt: cfg.SystemPrompt,
		searchTool:   cfg.SearchTool,
	}, nil
}

// Chat обрабатывает одно сообщение пользователя.
//
// Первый раунд идёт с полным каталогом инструментов. Если модель вызвала
// инструменты, они выполняются последовательно в порядке выдачи, после чего
// второй раунд идёт без каталога и его текст считается окончательным,
// даже если модель снова попросила инструменты.
//
// Любой сбой провайдера или инструмента возвращается как *ChatError,
// промежуточный результат отбрасывается.
func (o *Orchestrator) Chat(ctx context.Context, message string) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return ChatResult{}, &ChatError{State: StateIdle, Err: ErrEmptyMessage}
	}

	start := time.Now()
	utils.Info("Chat started", "message", utils.Truncate(message, 80))

	conversation := []llm.Message{
		{Role: llm.RoleSystem, Content: o.systemPrompt},
		{Role: llm.RoleUser, Content: message},
	}

	// AwaitingFirstCompletion
	first, err := o.llm.Generate(ctx, conversation, o.executor.Registry().Definitions())
	if err != nil {
		return ChatResult{}, o.fail(StateAwaitingFirstCompletion, err)
	}

	videos := []youtube.Video{}

	if !first.HasToolCalls() {
		utils.Info("Chat completed",
			"state", StateNoToolCall,
			"duration_ms", time.Since(start).Milliseconds())
		return ChatResult{Reply: first.Content, Videos: videos}, nil
	}

	// ToolCallsPending
	turns := make([]llm.Message, 0, len(first.ToolCalls)+1)
	turns = append(turns, assistantTurn(first))
	for _, tc := range first.ToolCalls {
		res, err := o.executor.Execute(ctx, tools.Call{ID: tc.ID, Name: tc.Name, Args: tc.Args})
		if err != nil {
			return ChatResult{}, o.fail(StateToolCallsPending, err)
		}

		if !res.Degraded() && res.Name == o.searchTool {
			if found, ok := res.Payload.([]youtube.Video); ok {
				videos = append([]youtube.Video{}, found...)
			}
		}

		turns = append(turns, llm.Message{
			Role:       llm.RoleTool,
			Content:    res.Content(),
			ToolCallID: tc.ID,
			Name:       tc.Name,
		})
	}

	second := appendTurns(conversation, turns...)

	// AwaitingSecondCompletion
	final, err := o.llm.Generate(ctx, second, nil)
	if err != nil {
		return ChatResult{}, o.fail(StateAwaitingSecondCompletion, err)
	}
	if final.HasToolCalls() {
		utils.Warn("Second round requested tools, ignoring", "tool_calls_count", len(final.ToolCalls))
	}

	utils.Info("Chat completed",
		"state", StateDone,
		"tool_calls_count", len(first.ToolCalls),
		"videos_count", len(videos),
		"duration_ms", time.Since(start).Milliseconds())

	return ChatResult{Reply: final.Content, Videos: videos}, nil
}

func (o *Orchestrator) fail(state State, err error) error {
	utils.Error("Chat aborted", "state", state, "error", err)
	return &ChatError{State: state, Err: err}
}

// assistantTurn копирует ответ модели первого раунда для второго.
func assistantTurn(m llm.Message) llm.Message {
	return llm.Message{
		Role:      llm.RoleAssistant,
		Content:   m.Content,
		ToolCalls: append([]llm.ToolCall(nil), m.ToolCalls...),
	}
}

// appendTurns возвращает новый срез: исходный разговор не меняется.
func appendTurns(conversation []llm.Message, turns ...llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(conversation)+len(turns))
	out = append(out, conversation...)
	return append(out, turns...)
}
