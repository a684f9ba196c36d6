package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/Strob0t/toolgate/internal/registry"
)

// registerPrompts mounts every registry prompt.
func (s *Server) registerPrompts() {
	for _, p := range s.registry.Prompts() {
		manifest := p.Manifest()
		var opts []mcplib.PromptOption
		opts = append(opts, mcplib.WithPromptDescription(manifest.Description))
		for _, arg := range p.Arguments() {
			argOpts := []mcplib.ArgumentOption{mcplib.ArgumentDescription(arg.Description)}
			if arg.Required {
				argOpts = append(argOpts, mcplib.RequiredArgument())
			}
			opts = append(opts, mcplib.WithArgument(arg.Name, argOpts...))
		}
		s.mcpServer.AddPrompt(mcplib.NewPrompt(p.PromptName(), opts...), s.buildPromptHandler(p))
	}
}

func (s *Server) buildPromptHandler(p registry.PromptPlugin) func(context.Context, mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
	return func(_ context.Context, req mcplib.GetPromptRequest) (*mcplib.GetPromptResult, error) {
		rendered, err := p.Render(req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return &mcplib.GetPromptResult{
			Description: p.Manifest().Description,
			Messages: []mcplib.PromptMessage{
				{
					Role:    mcplib.RoleUser,
					Content: mcplib.TextContent{Type: "text", Text: rendered},
				},
			},
		}, nil
	}
}
