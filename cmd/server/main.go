// HTTP сервер YouTube агента: /api/chat, лайки и плейлисты аккаунта.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/server"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/app"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

var configFlag = flag.String("config", "", "Path to config.yaml (default: auto-detect)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Конфигурация (+ .env)
	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	// 2. Логгер
	if err := utils.InitLogger(cfg.App.LogFile, cfg.App.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	utils.Info("Server starting", "config", cfgPath, "listen_addr", cfg.Server.ListenAddr)

	// 3. Компоненты
	components, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}

	// 4. HTTP
	srv := server.New(components.Orchestrator, components.YouTube, cfg.Server).NewHTTPServer()

	errCh := make(chan error, 1)
	go func() {
		utils.Info("Listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			utils.Error("HTTP server failed", "error", err)
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	utils.Info("Shutting down HTTP server", "timeout", shutdownTimeout)
	if err := utils.ShutdownWithTimeout(srv, shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	utils.Info("Server stopped")
	return nil
}
