// Command toolgated runs the gateway: it loads configuration, wires the
// policy engine, plugin registry, and resource cache, and serves the MCP
// transport until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfmcp "github.com/Strob0t/toolgate/internal/adapter/mcp"
	toolgateotel "github.com/Strob0t/toolgate/internal/adapter/otel"
	"github.com/Strob0t/toolgate/internal/cache"
	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/llmrouter"
	"github.com/Strob0t/toolgate/internal/logger"
	"github.com/Strob0t/toolgate/internal/policy"
	"github.com/Strob0t/toolgate/internal/registry"
	"github.com/Strob0t/toolgate/internal/wrapper"

	_ "github.com/Strob0t/toolgate/internal/registry/plugins"
)

func main() {
	// Temporary bootstrap logger until config is loaded.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging, cfg.RedactPatterns)
	defer closeLog.Close()
	slog.SetDefault(log)

	log.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"agents", len(cfg.Agents),
		"enabled_plugins", cfg.EnabledPlugins,
	)

	shutdownOTEL, err := toolgateotel.InitTracer(toolgateotel.OTELConfig{
		Enabled:     cfg.Observability.Enabled,
		Endpoint:    cfg.Observability.Endpoint,
		ServiceName: cfg.Server.Name,
		Insecure:    cfg.Observability.Insecure,
		SampleRate:  cfg.Observability.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	metrics, err := toolgateotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	resourceCache, err := cache.New(cfg.Cache.MaxCostBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer resourceCache.Close()

	engine := policy.NewEngine(&cfg, policy.NewRateLimiter(), policy.NewBudgetTracker(), log)
	gate := policy.NewConcurrencyGate()

	reg := registry.New(log)
	reg.LoadPlugins(cfg.EnabledPlugins, registry.Dependencies{Config: &cfg})

	if len(cfg.LLM.Providers) > 0 {
		router, err := llmrouter.New(&cfg, engine, metrics, log)
		if err != nil {
			return fmt.Errorf("llmrouter: %w", err)
		}
		reg.AddTool(router)
	}

	auth := policy.NewAuthResolver(authEntries(&cfg))
	wrap := wrapper.New(engine, gate, metrics, log)

	srv := cfmcp.NewServer(cfmcp.ServerConfig{
		Addr:        cfg.Server.Host + ":" + fmt.Sprint(cfg.Server.Port),
		Name:        cfg.Server.Name,
		Version:     cfg.Server.Version,
		ResourceTTL: time.Duration(cfg.Cache.TTLSeconds) * time.Second,
	}, reg, auth, wrap, resourceCache, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Host+":"+fmt.Sprint(cfg.Server.Port))
		errCh <- srv.Start(ctx)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutdown: signal received")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := shutdownOTEL(shutdownCtx); err != nil {
		log.Error("otel shutdown error", "error", err)
	}

	log.Info("shutdown complete")
	return nil
}

// authEntries flattens the agent table into the token/tenant pairs
// AuthResolver indexes.
func authEntries(cfg *config.Config) map[string]struct {
	Token    string
	TenantID string
} {
	out := make(map[string]struct {
		Token    string
		TenantID string
	}, len(cfg.Agents))
	for id, a := range cfg.Agents {
		out[id] = struct {
			Token    string
			TenantID string
		}{Token: a.Token, TenantID: a.TenantID}
	}
	return out
}
