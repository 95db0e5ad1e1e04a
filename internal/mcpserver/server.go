// Package mcpserver exposes discovery, analysis, reading and search as MCP
// tools over stdio.
//
// Each tool is a struct holding the shared Deps with two methods:
// Definition returns the mcp.Tool schema and Handle serves a call.
// Failures are reported as tool errors whose text is a JSON object with
// "kind" and "message" so hosts can branch on the kind.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Zuo-Peng/chatstat/internal/config"
	"github.com/Zuo-Peng/chatstat/internal/errs"
)

// Deps is shared by every tool.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger
}

type tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// New builds the server with all tools registered.
func New(version string, deps Deps) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := server.NewMCPServer("chatstat", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, t := range tools(deps) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

func tools(deps Deps) []tool {
	return []tool{
		&findChats{deps},
		&analyzeChat{deps},
		&readChat{deps},
		&searchChats{deps},
	}
}

// Serve blocks serving MCP over stdin/stdout.
func Serve(version string, deps Deps) error {
	return server.ServeStdio(New(version, deps))
}

// jsonResult marshals v as the text content of a successful result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(errs.New(errs.Internal, "", "encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

type errorBody struct {
	Kind    errs.Kind `json:"kind"`
	Message string    `json:"message"`
}

func errorResult(err error) *mcp.CallToolResult {
	data, _ := json.Marshal(errorBody{Kind: errs.KindOf(err), Message: err.Error()})
	return mcp.NewToolResultError(string(data))
}

// stringArg extracts a string argument, returning "" when missing.
func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
