// Package mcpserver публикует инструменты агента по Model Context Protocol.
//
// Вызовы идут через тот же tools.Executor, что и в чате: аргументы
// проходят ту же валидацию, ошибки аргументов возвращаются клиенту
// как ошибка инструмента.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/tools/std"
	"github.com/DeMiGoD013/mcp-youtube-agent/pkg/utils"
	"github.com/google/uuid"
	mcp_golang "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
)

// SearchArguments — аргументы youtube_search в MCP схеме.
type SearchArguments struct {
	Query      string `json:"query" jsonschema:"required,description=What to search for"`
	MaxResults *int   `json:"maxResults,omitempty" jsonschema:"description=How many videos to return (1-50)"`
}

// Bridge вызывает инструменты реестра от имени MCP клиента.
type Bridge struct {
	ctx      context.Context
	executor *tools.Executor
}

// NewBridge создаёт мост. ctx ограничивает время жизни всех вызовов.
func NewBridge(ctx context.Context, executor *tools.Executor) *Bridge {
	return &Bridge{ctx: ctx, executor: executor}
}

// Call выполняет инструмент и возвращает JSON результата.
// Деградированный результат возвращается ошибкой.
func (b *Bridge) Call(ctx context.Context, name string, args any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments: %w", err)
	}

	call := tools.Call{ID: "mcp_" + uuid.NewString(), Name: name, Args: string(raw)}
	utils.Debug("MCP tool call", "tool", name, "call_id", call.ID)

	res, err := b.executor.Execute(ctx, call)
	if err != nil {
		return "", err
	}
	if res.Degraded() {
		return "", res.Err
	}
	return res.Content(), nil
}

// Search — обработчик youtube_search для mcp-golang.
func (b *Bridge) Search(args SearchArguments) (*mcp_golang.ToolResponse, error) {
	out, err := b.Call(b.ctx, std.YouTubeSearchToolName, args)
	if err != nil {
		return nil, err
	}
	return mcp_golang.NewToolResponse(mcp_golang.NewTextContent(out)), nil
}

// NewServer регистрирует инструменты реестра на MCP сервере поверх transport.
func NewServer(b *Bridge, t transport.Transport) (*mcp_golang.Server, error) {
	srv := mcp_golang.NewServer(t)

	def, err := b.executor.Registry().Get(std.YouTubeSearchToolName)
	if err != nil {
		return nil, fmt.Errorf("mcp: %w", err)
	}
	if err := srv.RegisterTool(std.YouTubeSearchToolName, def.Definition().Description, b.Search); err != nil {
		return nil, fmt.Errorf("mcp: register %s: %w", std.YouTubeSearchToolName, err)
	}

	utils.Info("MCP tools registered", "tools", []string{std.YouTubeSearchToolName})
	return srv, nil
}
