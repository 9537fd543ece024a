// ytmcp — MCP сервер (stdio) с инструментом youtube_search.
//
// Логи пишутся в app.log_file или stderr: stdout занят протоколом.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/DeMiGoD013/mcp-youtube-agent/internal/mcpserver"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/app"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var configFlag = flag.String("config", "", "Path to config.yaml (default: auto-detect)")

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, err := app.InitializeConfig(&app.DefaultConfigPathFinder{ConfigFlag: *configFlag})
	if err != nil {
		return err
	}

	if err := utils.InitLogger(cfg.App.LogFile, cfg.App.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}

	ctx, shutdown := utils.SetupGracefulShutdownWithContext()
	defer shutdown()

	utils.Info("MCP server starting", "config", cfgPath)

	components, err := app.Initialize(ctx, cfg)
	if err != nil {
		return err
	}

	srv, err := mcpserver.NewServer(mcpserver.NewBridge(ctx, components.Executor), stdio.NewStdioServerTransport())
	if err != nil {
		return err
	}

	if err := srv.Serve(); err != nil {
		return fmt.Errorf("mcp serve: %w", err)
	}

	<-ctx.Done()
	utils.Info("MCP server stopped")
	return nil
}
