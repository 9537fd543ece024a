package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
)

// ParseArgs разбирает сырой JSON аргументов, пришедший от модели.
//
// Пустая строка трактуется как "{}". Markdown-обёртка снимается.
// Всё, что не является JSON объектом, — ErrInvalidArgument.
func ParseArgs(argsJSON string) (map[string]any, error) {
	cleaned := utils.CleanJsonBlock(argsJSON)
	if cleaned == "" {
		return map[string]any{}, nil
	}

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidArgument, err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: arguments must be a JSON object, got %s", ErrInvalidArgument, jsonKind(raw))
	}
	return obj, nil
}

// ValidateArgs проверяет аргументы по определению инструмента.
//
// Правила:
//   - неизвестный аргумент — ошибка
//   - отсутствующий обязательный аргумент — ошибка
//   - null для обязательного аргумента считается отсутствием
//   - тип должен совпадать с объявленным (integer без дробной части)
//   - отсутствующий необязательный аргумент получает Default, если он задан
//
// Все ошибки оборачивают ErrInvalidArgument.
func ValidateArgs(def ToolDefinition, raw map[string]any) (Args, error) {
	for name := range raw {
		if _, ok := def.Param(name); !ok {
			return nil, fmt.Errorf("%w: unknown argument '%s'", ErrInvalidArgument, name)
		}
	}

	out := make(Args, len(def.Params))
	for _, p := range def.Params {
		v, present := raw[p.Name]
		if present && v == nil {
			present = false
		}

		if !present {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required argument '%s'", ErrInvalidArgument, p.Name)
			}
			if p.Default != nil {
				dv, err := coerce(p.Type, p.Default)
				if err != nil {
					return nil, fmt.Errorf("%w: default for '%s': %v", ErrInvalidArgument, p.Name, err)
				}
				out[p.Name] = dv
			}
			continue
		}

		cv, err := coerce(p.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%w: argument '%s': %v", ErrInvalidArgument, p.Name, err)
		}
		out[p.Name] = cv
	}

	return out, nil
}

// coerce проверяет значение на соответствие типу и нормализует его.
//
// integer приводится к int64, number к float64.
func coerce(typ string, v any) (any, error) {
	switch typ {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInteger:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) || math.IsInf(n, 0) {
				return nil, fmt.Errorf("expected integer, got %v", n)
			}
			// 2^63 уже не помещается в int64, а конвертация вне диапазона не определена.
			if n < -(1<<63) || n >= 1<<63 {
				return nil, fmt.Errorf("integer %v is out of range", n)
			}
			return int64(n), nil
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			return nil, fmt.Errorf("expected integer, got %s", n)
		}
	case TypeNumber:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		}
	case TypeObject:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
	case TypeArray:
		if a, ok := v.([]any); ok {
			return a, nil
		}
	default:
		return nil, fmt.Errorf("unsupported type '%s'", typ)
	}

	return nil, fmt.Errorf("expected %s, got %s", typ, jsonKind(v))
}

// jsonKind называет JSON тип значения для сообщений об ошибках.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
	}
}
