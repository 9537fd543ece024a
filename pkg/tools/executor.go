package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
)

// Call — один запрос модели на вызов инструмента.
type Call struct {
	ID   string // Идентификатор, которым tool-сообщение ссылается на вызов
	Name string
	Args string // Сырой JSON аргументов
}

// Result — результат одного вызова.
//
// Err != nil означает деградированный результат: модель получит
// {"error": "..."} вместо данных и сможет ответить пользователю сама.
type Result struct {
	CallID  string
	Name    string
	Payload any
	Err     error
}

// Degraded сообщает, что вместо данных в результате маркер ошибки.
func (r Result) Degraded() bool {
	return r.Err != nil
}

// Content сериализует результат в JSON для tool-сообщения.
func (r Result) Content() string {
	var v any = r.Payload
	if r.Err != nil {
		v = map[string]string{"error": r.Err.Error()}
	}

	data, err := json.Marshal(v)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": "result is not serializable: " + err.Error()})
		return string(fallback)
	}
	return string(data)
}

// Executor проверяет аргументы и вызывает инструменты из реестра.
type Executor struct {
	registry *Registry
}

// NewExecutor создаёт исполнителя поверх реестра.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Registry возвращает реестр, с которым работает исполнитель.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute выполняет один вызов.
//
// Неизвестный инструмент и невалидные аргументы дают деградированный
// Result с nil ошибкой: обработчик при этом не вызывается. Ошибка
// обработчика, оборачивающая ErrInvalidArgument, тоже деградирует.
// Любая другая ошибка обработчика (провайдер, внутренний сбой)
// возвращается вторым значением, и запрос должен быть прерван.
func (e *Executor) Execute(ctx context.Context, call Call) (Result, error) {
	res := Result{CallID: call.ID, Name: call.Name}

	tool, err := e.registry.Get(call.Name)
	if err != nil {
		utils.Warn("Tool call degraded", "tool", call.Name, "call_id", call.ID, "error", err)
		res.Err = err
		return res, nil
	}

	raw, err := ParseArgs(call.Args)
	if err != nil {
		utils.Warn("Tool call degraded", "tool", call.Name, "call_id", call.ID, "error", err)
		res.Err = err
		return res, nil
	}

	args, err := ValidateArgs(tool.Definition(), raw)
	if err != nil {
		utils.Warn("Tool call degraded", "tool", call.Name, "call_id", call.ID, "error", err)
		res.Err = err
		return res, nil
	}

	start := time.Now()
	payload, err := safeExecute(ctx, tool, args)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			utils.Warn("Tool rejected arguments", "tool", call.Name, "call_id", call.ID, "error", err)
			res.Err = err
			return res, nil
		}
		utils.Error("Tool execution failed",
			"tool", call.Name,
			"call_id", call.ID,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return Result{}, fmt.Errorf("tool '%s': %w", call.Name, err)
	}

	utils.Debug("Tool executed",
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds())

	res.Payload = payload
	return res, nil
}

// safeExecute не даёт панике обработчика выйти за пределы исполнителя.
func safeExecute(ctx context.Context, tool Tool, args Args) (payload any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Execute(ctx, args)
}
