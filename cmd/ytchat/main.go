// ytchat — терминальный чат с YouTube агентом.
//
// Работает поверх HTTP API (cmd/server): сообщения идут в /api/chat,
// команды /liked, /history, /like, /unlike в API аккаунта.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/ui"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
)

var (
	serverFlag  = flag.String("server", "http://localhost:3001", "Agent server base URL")
	timeoutFlag = flag.Duration("timeout", 2*time.Minute, "HTTP timeout for one request")
	logFlag     = flag.String("log", "ytchat.log", "Log file (stdout is taken by the TUI)")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := utils.InitLogger(*logFlag, false); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("ytchat started", "server", *serverFlag)

	client := ui.NewClient(*serverFlag, *timeoutFlag)

	p := tea.NewProgram(
		ui.InitialModel(client, *serverFlag),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		utils.Error("TUI failed", "error", err)
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
