// Интерфейс Провайдера через который работает всё приложение.

package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
)

// ErrUpstream — сбой провайдера модели: сеть, non-2xx, пустой ответ.
var ErrUpstream = errors.New("llm upstream error")

// UpstreamError описывает неудачный вызов провайдера модели.
type UpstreamError struct {
	Provider   string // "openai", "gemini", ...
	StatusCode int    // 0 если HTTP статуса нет
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Is позволяет errors.Is(err, ErrUpstream).
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Provider — контракт для любого AI-сервиса.
type Provider interface {
	// Generate выполняет ровно один запрос к модели.
	//
	// Непустой defs прикладывает каталог инструментов с tool choice "auto".
	// Ошибки транспорта, non-2xx и ответы без вариантов — *UpstreamError.
	// Ретраев внутри нет.
	Generate(ctx context.Context, messages []Message, defs []tools.ToolDefinition) (Message, error)
}
