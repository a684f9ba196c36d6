package mcp

import (
	"context"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/registry"
	"github.com/Strob0t/toolgate/internal/wrapper"
)

// agentInvariantURIs holds resources whose body never depends on the
// requesting identity, so a single cache entry can serve every agent.
var agentInvariantURIs = map[string]struct{}{
	"about://server": {},
}

// cacheKey scopes a cached resource body to the URI and, for resources whose
// content varies per caller (about.policies, instructions.agent), the
// requesting agent.
func cacheKey(uri string, identity *gateway.AgentIdentity) string {
	if identity == nil {
		return uri
	}
	if _, invariant := agentInvariantURIs[uri]; invariant {
		return uri
	}
	return uri + "|" + identity.AgentID
}

// registerResources mounts every registry resource. Reads are identity-aware
// but unlike tools are not routed through the policy engine — resource
// reads are deterministic, side-effect-free lookups exempt from rate and
// budget accounting.
func (s *Server) registerResources() {
	for _, res := range s.registry.Resources() {
		manifest := res.Manifest()
		s.mcpServer.AddResource(
			mcplib.NewResource(res.URI(), manifest.Title,
				mcplib.WithResourceDescription(manifest.Description),
				mcplib.WithMIMEType("application/json"),
			),
			s.buildResourceHandler(res),
		)
	}
}

func (s *Server) buildResourceHandler(res registry.ResourcePlugin) func(context.Context, mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return func(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		var identity *gateway.AgentIdentity
		if id, ok := wrapper.Identity(ctx); ok {
			identity = &id
		}

		key := cacheKey(res.URI(), identity)
		var text string
		if s.cache != nil {
			if cached, ok := s.cache.Get(ctx, key); ok {
				text = string(cached)
			}
		}
		if text == "" {
			var err error
			text, err = res.Read(identity)
			if err != nil {
				return nil, err
			}
			if s.cache != nil {
				s.cache.Set(ctx, key, []byte(text), s.cfg.ResourceTTL)
			}
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     text,
			},
		}, nil
	}
}
