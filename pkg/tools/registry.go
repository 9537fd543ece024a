// Реестр для хранения и поиска инструментов.
package tools

import (
	"fmt"
	"sync"
)

// Registry — потокобезопасное хранилище инструментов.
//
// Definitions отдаёт инструменты в порядке регистрации: каталог,
// отправляемый модели, одинаков от запроса к запросу.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

var supportedTypes = map[string]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeObject:  true,
	TypeArray:   true,
}

// validateToolDefinition проверяет определение инструмента.
//
// Валидирует:
//   - Name не пустой
//   - имена параметров не пустые и уникальные
//   - тип параметра из поддерживаемого набора
//   - Default (если задан) совместим с типом
func validateToolDefinition(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	seen := make(map[string]bool, len(def.Params))
	for i, p := range def.Params {
		if p.Name == "" {
			return fmt.Errorf("tool '%s': params[%d] has empty name", def.Name, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool '%s': duplicate param '%s'", def.Name, p.Name)
		}
		seen[p.Name] = true

		if !supportedTypes[p.Type] {
			return fmt.Errorf("tool '%s': param '%s' has unsupported type '%s'", def.Name, p.Name, p.Type)
		}
		if p.Default != nil {
			if _, err := coerce(p.Type, p.Default); err != nil {
				return fmt.Errorf("tool '%s': param '%s' default: %v", def.Name, p.Name, err)
			}
		}
	}

	return nil
}

// Register добавляет инструмент в реестр с валидацией схемы.
//
// Возвращает ошибку если определение не валидно или имя уже занято.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	if err := validateToolDefinition(def); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateTool, def.Name)
	}
	r.tools[def.Name] = tool
	r.order = append(r.order, def.Name)
	return nil
}

// Get ищет инструмент по имени.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownTool, name)
	}
	return tool, nil
}

// Definitions возвращает определения всех инструментов в порядке регистрации.
func (r *Registry) Definitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Len возвращает число зарегистрированных инструментов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
