// Базовые типы - определяем универсальный язык общения с моделями
package llm

// Role — роль автора сообщения в разговоре.
type Role string

// Константы для удобства
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall — запрос модели на вызов инструмента.
//
// Порядок ToolCalls в сообщении совпадает с порядком, в котором их
// выдала модель.
type ToolCall struct {
	ID   string
	Name string
	Args string // Сырой JSON аргументов, как его прислала модель
}

// Message — один ход разговора.
type Message struct {
	Role    Role
	Content string

	// ToolCalls заполнен у assistant сообщения, если модель решила вызвать функции.
	ToolCalls []ToolCall

	// ToolCallID и Name заполнены у tool сообщения: на какой вызов это ответ.
	ToolCallID string
	Name       string
}

// HasToolCalls сообщает, просит ли сообщение вызвать инструменты.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}
