// Интерфейс Tool и структуры определений.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Поддерживаемые типы параметров (подмножество JSON Schema).
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// Param описывает один аргумент инструмента.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"` // Подставляется если аргумент не передан
}

// ToolDefinition описывает инструмент для LLM (Function Calling API format).
//
// Неизменяем после регистрации в Registry.
type ToolDefinition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

// Param ищет параметр по имени.
func (d ToolDefinition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Schema возвращает JSON Schema объекта аргументов.
//
// Порядок properties совпадает с порядком Params, поэтому схема
// стабильна между запросами.
func (d ToolDefinition) Schema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	required := []string{}

	for _, p := range d.Params {
		props.Set(p.Name, &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
			Default:     p.Default,
		})
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return &jsonschema.Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
	}
}

// SchemaMap возвращает схему как map для SDK, которые ждут произвольный JSON.
func (d ToolDefinition) SchemaMap() (map[string]any, error) {
	raw, err := json.Marshal(d.Schema())
	if err != nil {
		return nil, fmt.Errorf("tool '%s': marshal schema: %w", d.Name, err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tool '%s': unmarshal schema: %w", d.Name, err)
	}
	return out, nil
}

// Args — провалидированные аргументы tool call (дефолты уже подставлены).
type Args map[string]any

// Decode раскладывает аргументы в типизированную структуру.
func (a Args) Decode(dst any) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// Tool — контракт, который должен реализовать любой инструмент.
type Tool interface {
	// Definition возвращает описание инструмента для LLM.
	Definition() ToolDefinition

	// Execute выполняет логику инструмента.
	// args уже проверены по Definition: обязательные есть, типы совпадают.
	// Возвращает структурированный результат, который Executor сериализует
	// в JSON для tool-сообщения.
	Execute(ctx context.Context, args Args) (any, error)
}
