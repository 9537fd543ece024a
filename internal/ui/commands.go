package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/youtube"
)

// requestTimeout ограничивает один запрос к серверу из TUI.
const requestTimeout = 2 * time.Minute

// CommandHandler — обработчик slash-команды.
//
// Возвращает tea.Cmd для асинхронного выполнения в Bubble Tea.
type CommandHandler func(b Backend, args []string) tea.Cmd

// CommandRegistry — реестр команд TUI (/liked, /history, ...).
//
// Thread-safe: одновременные вызовы безопасны.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandHandler
	usage    map[string]string
}

// NewCommandRegistry создает новый пустой реестр команд.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandHandler),
		usage:    make(map[string]string),
	}
}

// Register регистрирует команду. name без ведущего "/".
//
// Если команда с таким именем уже существует, она будет перезаписана.
func (r *CommandRegistry) Register(name, usage string, handler CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = handler
	r.usage[name] = usage
}

// IsCommand сообщает, что ввод — slash-команда, а не сообщение в чат.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Execute разбирает "/name args..." и возвращает tea.Cmd обработчика.
// Пустая или неизвестная команда превращается в errMsg.
func (r *CommandRegistry) Execute(input string, b Backend) tea.Cmd {
	parts := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(parts) == 0 {
		return func() tea.Msg {
			return errMsg{err: errors.New("empty command, try /help")}
		}
	}
	name, args := parts[0], parts[1:]

	r.mu.RLock()
	handler, exists := r.commands[name]
	r.mu.RUnlock()

	if !exists {
		return func() tea.Msg {
			return errMsg{err: fmt.Errorf("unknown command: /%s (try /help)", name)}
		}
	}
	return handler(b, args)
}

// Help возвращает список команд с подсказками, отсортированный по имени.
func (r *CommandRegistry) Help() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.usage))
	for name := range r.usage {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Commands:")
	for _, name := range names {
		fmt.Fprintf(&sb, "\n  %s", r.usage[name])
	}
	return sb.String()
}

// DefaultCommands регистрирует команды аккаунта YouTube.
func DefaultCommands() *CommandRegistry {
	r := NewCommandRegistry()

	r.Register("liked", "/liked              your liked videos", playlistCommand("Liked videos", Backend.Liked))
	r.Register("history", "/history            your watch history", playlistCommand("Watch history", Backend.History))
	r.Register("like", "/like <videoId>     like a video", rateCommand("like", Backend.Like))
	r.Register("unlike", "/unlike <videoId>   remove a like", rateCommand("unlike", Backend.Unlike))
	r.Register("help", "/help               this list", func(b Backend, args []string) tea.Cmd {
		return func() tea.Msg { return infoMsg{text: r.Help()} }
	})

	return r
}

func playlistCommand(title string, list func(Backend, context.Context) ([]youtube.Video, error)) CommandHandler {
	return func(b Backend, args []string) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			videos, err := list(b, ctx)
			if err != nil {
				return errMsg{err: err}
			}
			return videosMsg{title: title, videos: videos}
		}
	}
}

func rateCommand(name string, rate func(Backend, context.Context, string) (string, error)) CommandHandler {
	return func(b Backend, args []string) tea.Cmd {
		if len(args) != 1 {
			return func() tea.Msg {
				return errMsg{err: fmt.Errorf("usage: /%s <videoId>", name)}
			}
		}
		videoID := args[0]
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			message, err := rate(b, ctx, videoID)
			if err != nil {
				return errMsg{err: err}
			}
			return infoMsg{text: message}
		}
	}
}
