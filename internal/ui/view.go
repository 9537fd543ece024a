// Рендер
package ui

import (
	"fmt"
	"strings"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	// Формируем строку статуса (Header)
	status := fmt.Sprintf(" YOUTUBE AGENT | SERVER: %s ", m.serverURL)

	// Растягиваем хедер на всю ширину
	header := headerStyle.
		Width(m.viewport.Width).
		Render(status)

	// Разделительная линия
	border := lipgloss.NewStyle().
		Foreground(grayColor).
		Width(m.viewport.Width).
		Render(strings.Repeat("─", max(m.viewport.Width, 1)))

	footer := dimStyle("Enter: send · Esc: quit")
	if m.loading {
		footer = m.spinner.View() + " Thinking..."
	}

	// Собираем всё вместе: Header + Viewport + Border + Input + Status
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		header,
		m.viewport.View(),
		border,
		m.textarea.View(),
		footer,
	)
}

// RenderVideos рендерит список видео: номер, название, канал, дата и ссылка.
// Пустой список тоже рендерится, чтобы пользователь видел ответ.
func RenderVideos(title string, videos []youtube.Video) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d)", systemMsgStyle(title), len(videos))

	if len(videos) == 0 {
		sb.WriteString("\n  " + dimStyle("no videos"))
		return sb.String()
	}

	for i, v := range videos {
		meta := v.ChannelTitle
		if !v.PublishedAt.IsZero() {
			if meta != "" {
				meta += " · "
			}
			meta += v.PublishedAt.Format("2006-01-02")
		}

		fmt.Fprintf(&sb, "\n  %d. %s", i+1, videoTitleStyle(v.Title))
		if meta != "" {
			sb.WriteString("\n     " + dimStyle(meta))
		}
		sb.WriteString("\n     " + v.URL())
	}
	return sb.String()
}
