package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/toolgate/internal/registry"
)

// registerTools mounts every registry tool as an MCP tool whose handler
// runs through the request wrapper — the sole path by which a plugin's
// Execute is reachable.
func (s *Server) registerTools() {
	for _, tool := range s.registry.Tools() {
		s.mcpServer.AddTools(s.buildServerTool(tool))
	}
}

func (s *Server) buildServerTool(tool registry.ToolPlugin) mcpserver.ServerTool {
	manifest := tool.Manifest()

	var schemaJSON json.RawMessage
	if schema := tool.InputSchema(); schema != nil {
		raw, err := json.Marshal(schema.Raw())
		if err == nil {
			schemaJSON = raw
		}
	}

	var mcpTool mcplib.Tool
	if schemaJSON != nil {
		mcpTool = mcplib.NewToolWithRawSchema(manifest.Name, manifest.Description, schemaJSON)
	} else {
		mcpTool = mcplib.NewTool(manifest.Name, mcplib.WithDescription(manifest.Description))
	}

	return mcpserver.ServerTool{
		Tool: mcpTool,
		Handler: func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
			rawArgs, err := json.Marshal(req.GetArguments())
			if err != nil {
				return mcplib.NewToolResultErrorFromErr("failed to marshal arguments", err), nil
			}
			result := s.wrapper.Call(ctx, tool, rawArgs)
			return toolResultJSON(result), nil
		},
	}
}
