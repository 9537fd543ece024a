// Логика - Обрабатывает нажатия клавиш и ответы сервера.

package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/muesli/reflow/wrap"
)

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)

	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := m.textarea.Height() + 3 // граница + строка статуса

		vpHeight := msg.Height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}

		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
		m.textarea.SetWidth(msg.Width)
		m.ready = true
		m.reflow()

	// 2. Клавиши
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.loading {
				return m, nil
			}
			m.textarea.Reset()

			var cmd tea.Cmd
			m, cmd = m.submit(input)
			return m, tea.Batch(m.spinner.Tick, cmd)
		}

	// 3. Ответы сервера (прилетают асинхронно)
	case replyMsg:
		m.loading = false
		m.appendLog(systemMsgStyle("AI: ") + msg.result.Reply)
		if len(msg.result.Videos) > 0 {
			m.appendLog(RenderVideos("Videos", msg.result.Videos))
		}

	case videosMsg:
		m.loading = false
		m.appendLog(RenderVideos(msg.title, msg.videos))

	case infoMsg:
		m.loading = false
		m.appendLog(systemMsgStyle("SYSTEM: ") + msg.text)

	case errMsg:
		m.loading = false
		m.appendLog(errorMsgStyle("ERROR: ") + msg.err.Error())

	case spinner.TickMsg:
		if m.loading {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, tea.Batch(tiCmd, vpCmd, spCmd)
		}
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

// submit пишет ввод пользователя в лог и возвращает команду запроса.
// Slash-команды идут в реестр, остальное — в /api/chat.
func (m MainModel) submit(input string) (MainModel, tea.Cmd) {
	m.appendLog(userMsgStyle("USER > ") + input)
	m.loading = true

	if IsCommand(input) {
		cmd := m.commands.Execute(input, m.backend)
		if cmd == nil {
			m.loading = false
		}
		return m, cmd
	}
	return m, chatCmd(m.backend, input)
}

// chatCmd отправляет сообщение агенту.
func chatCmd(b Backend, message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		result, err := b.Chat(ctx, message)
		if err != nil {
			return errMsg{err: err}
		}
		return replyMsg{result: result}
	}
}

// appendLog добавляет строку в лог и прокручивает вниз.
func (m *MainModel) appendLog(str string) {
	m.logLines = append(m.logLines, str)
	m.reflow()
	m.viewport.GotoBottom()
}

// reflow переносит исходные строки под текущую ширину.
func (m *MainModel) reflow() {
	width := m.viewport.Width
	if width <= 0 {
		m.viewport.SetContent(strings.Join(m.logLines, "\n"))
		return
	}

	wrapped := make([]string, 0, len(m.logLines))
	for _, line := range m.logLines {
		wrapped = append(wrapped, wrap.String(line, width))
	}
	m.viewport.SetContent(strings.Join(wrapped, "\n"))
}
