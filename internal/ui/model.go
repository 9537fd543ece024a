// Package ui реализует терминальный чат с YouTube агентом на Bubble Tea.
//
// Содержит модель, обработку событий и рендер. С сервером TUI общается
// через Backend (HTTP API из internal/server).
package ui

import (
	"github.com/DeMiGoD013/mcp-youtube-agent/internal/agent"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Greeting — первое сообщение в логе.
const Greeting = "Hi! I am your YouTube MCP agent. Ask me for video recommendations, or type /help."

// replyMsg — ответ /api/chat.
type replyMsg struct {
	result agent.ChatResult
}

// videosMsg — результат /liked или /history.
type videosMsg struct {
	title  string
	videos []youtube.Video
}

// infoMsg — текстовое сообщение системы (подтверждение лайка, /help).
type infoMsg struct {
	text string
}

// errMsg — любая ошибка запроса. Показывается строкой в логе.
type errMsg struct {
	err error
}

// MainModel представляет главную модель UI (Bubble Tea Model).
//
// Содержит все компоненты TUI:
//   - viewport: область лога чата (только для чтения)
//   - textarea: поле ввода пользователя
//   - spinner: индикатор ожидания ответа
//   - logLines: исходные строки лога без переноса (перенос при каждом resize)
type MainModel struct {
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	backend   Backend
	commands  *CommandRegistry
	serverURL string

	logLines []string
	loading  bool

	// ready флаг для первой инициализации размеров
	ready bool
}

// InitialModel создает начальное состояние TUI.
func InitialModel(backend Backend, serverURL string) MainModel {
	ta := textarea.New()
	ta.Placeholder = "Ask for videos, or /help..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(3)
	ta.CharLimit = 1000
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter отправляет, не переносит строку

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := MainModel{
		viewport:  viewport.New(0, 0),
		textarea:  ta,
		spinner:   sp,
		backend:   backend,
		commands:  DefaultCommands(),
		serverURL: serverURL,
	}
	m.appendLog(systemMsgStyle("AI: ") + Greeting)
	return m
}

// Init инициализирует TUI.
func (m MainModel) Init() tea.Cmd {
	return textarea.Blink
}
