// Package mcp mounts the gateway's registry of tools, resources, and
// prompts onto an MCP JSON-RPC transport, with bearer-token auth and the
// request wrapper sitting in front of every tools/call dispatch.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/toolgate/internal/cache"
	"github.com/Strob0t/toolgate/internal/middleware"
	"github.com/Strob0t/toolgate/internal/policy"
	"github.com/Strob0t/toolgate/internal/registry"
	"github.com/Strob0t/toolgate/internal/wrapper"
)

// ServerConfig configures listener, self-description, and resource-cache
// fields.
type ServerConfig struct {
	Addr        string
	Name        string
	Version     string
	ResourceTTL time.Duration
}

// Server wires a Registry and policy Engine onto an MCP streamable-HTTP
// transport, guarded by bearer-token auth.
type Server struct {
	cfg       ServerConfig
	mcpServer *mcpserver.MCPServer
	httpSrv   *mcpserver.StreamableHTTPServer
	registry  *registry.Registry
	auth      *policy.AuthResolver
	wrapper   *wrapper.Wrapper
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewServer constructs a Server and registers every tool, resource, and
// prompt currently held by reg. resourceCache may be nil, in which case
// resource reads bypass caching entirely.
func NewServer(cfg ServerConfig, reg *registry.Registry, auth *policy.AuthResolver, wrap *wrapper.Wrapper, resourceCache *cache.Cache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ResourceTTL <= 0 {
		cfg.ResourceTTL = 30 * time.Second
	}
	mcpSrv := mcpserver.NewMCPServer(cfg.Name, cfg.Version)

	s := &Server{
		cfg:       cfg,
		mcpServer: mcpSrv,
		registry:  reg,
		auth:      auth,
		wrapper:   wrap,
		cache:     resourceCache,
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv)
	return s
}

// MCPServer exposes the underlying mcp-go server, chiefly for tests.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the complete HTTP handler: unauthenticated /health plus
// the bearer-auth-guarded /mcp JSON-RPC endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/mcp", s.authMiddleware(s.httpSrv))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Start begins serving on cfg.Addr. It blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func toolResultJSON(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}
