package policy

import (
	"testing"
	"time"

	"github.com/Strob0t/toolgate/internal/config"
	"github.com/Strob0t/toolgate/internal/domain/gateway"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Agents["agent-alpha"] = &config.AgentConfig{
		Token:               "secret-alpha",
		TenantID:            "default",
		AllowedTools:        []string{"core.echo"},
		AllowedCapabilities: []gateway.Capability{},
		EgressAllowlist:     []string{"api.openai.com"},
		MaxPayloadBytes:     1024,
		RateLimit:           2,
		MaxCostPerDay:       5.0,
	}
	return &cfg
}

func newTestEngine(cfg *config.Config) *Engine {
	return NewEngine(cfg, NewRateLimiter(), NewBudgetTracker(), nil)
}

func TestCheckToolCall_UnknownAgentIsTerminal(t *testing.T) {
	e := newTestEngine(testConfig())
	manifest := gateway.NewManifest("core.echo", "Echo", "", )
	decision := e.CheckToolCall(gateway.AgentIdentity{AgentID: "nobody"}, manifest, 10)
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if len(decision.Reasons) != 1 || decision.Reasons[0] != "Unknown agent: nobody" {
		t.Errorf("expected single unknown-agent reason, got %v", decision.Reasons)
	}
}

func TestCheckToolCall_AccumulatesReasons(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(cfg)
	manifest := gateway.NewManifest("other.tool", "Other", "", gateway.CapabilityNetworkOutbound)

	decision := e.CheckToolCall(gateway.AgentIdentity{AgentID: "agent-alpha"}, manifest, 2048)
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if len(decision.Reasons) != 3 {
		t.Fatalf("expected 3 accumulated reasons (tool, capability, payload), got %v", decision.Reasons)
	}
}

func TestCheckToolCall_AllowRecordsRateWindow(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(cfg)
	manifest := gateway.NewManifest("core.echo", "Echo", "")
	identity := gateway.AgentIdentity{AgentID: "agent-alpha"}

	d1 := e.CheckToolCall(identity, manifest, 10)
	if !d1.Allowed {
		t.Fatalf("expected allow, got %v", d1.Reasons)
	}
	d2 := e.CheckToolCall(identity, manifest, 10)
	if !d2.Allowed {
		t.Fatalf("expected second allow (limit 2), got %v", d2.Reasons)
	}
	d3 := e.CheckToolCall(identity, manifest, 10)
	if d3.Allowed {
		t.Fatal("expected third call to be rate limited")
	}
}

func TestCheckToolCall_DeniedCallDoesNotRecordRateWindow(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(cfg)
	// Unknown tool denies every call; rate limiter must never record.
	manifest := gateway.NewManifest("unknown.tool", "Unknown", "")
	identity := gateway.AgentIdentity{AgentID: "agent-alpha"}

	for i := 0; i < 5; i++ {
		d := e.CheckToolCall(identity, manifest, 10)
		if d.Allowed {
			t.Fatal("expected deny")
		}
	}
	if !e.rate.Check("agent-alpha", 2) {
		t.Fatal("rate window should remain empty after only-denied calls")
	}
}

func TestCheckToolCall_BudgetExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Agents["agent-alpha"].AllowedTools = []string{"llm.query"}
	cfg.Agents["agent-alpha"].MaxCostPerDay = 1.0
	e := newTestEngine(cfg)
	e.budget.Record("agent-alpha", 1.0)

	manifest := gateway.NewManifest("llm.query", "LLM", "", gateway.CapabilityLLMQuery)
	decision := e.CheckToolCall(gateway.AgentIdentity{AgentID: "agent-alpha"}, manifest, 10)
	if decision.Allowed {
		t.Fatal("expected deny for exhausted budget")
	}
	want := "Daily LLM budget exhausted (limit: $1.00)"
	found := false
	for _, r := range decision.Reasons {
		if r == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected reason %q, got %v", want, decision.Reasons)
	}
}

func TestCheckEgress_Allowed(t *testing.T) {
	cfg := testConfig()
	cfg.Agents["agent-alpha"].AllowedCapabilities = []gateway.Capability{gateway.CapabilityNetworkOutbound}
	e := newTestEngine(cfg)

	decision := e.CheckEgress(gateway.AgentIdentity{AgentID: "agent-alpha"}, "API.OPENAI.COM")
	if !decision.Allowed {
		t.Fatalf("expected allow (case-insensitive exact match), got %v", decision.Reasons)
	}
}

func TestCheckEgress_MissingCapabilityAndHost(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(cfg)

	decision := e.CheckEgress(gateway.AgentIdentity{AgentID: "agent-alpha"}, "evil.example.com")
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if len(decision.Reasons) != 2 {
		t.Fatalf("expected 2 reasons (missing capability, host not allowed), got %v", decision.Reasons)
	}
}

func TestCheckEgress_NoSuffixMatching(t *testing.T) {
	cfg := testConfig()
	cfg.Agents["agent-alpha"].AllowedCapabilities = []gateway.Capability{gateway.CapabilityNetworkOutbound}
	e := newTestEngine(cfg)

	decision := e.CheckEgress(gateway.AgentIdentity{AgentID: "agent-alpha"}, "evil.api.openai.com")
	if decision.Allowed {
		t.Fatal("suffix match must not be honored")
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	b := NewBudgetTracker()
	day1 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return day1 }
	b.Record("a", 5.0)
	if got := b.SpentToday("a"); got != 5.0 {
		t.Fatalf("expected 5.0 spent, got %v", got)
	}

	day2 := day1.Add(24 * time.Hour)
	b.now = func() time.Time { return day2 }
	if got := b.SpentToday("a"); got != 0 {
		t.Fatalf("expected rollover to reset spend, got %v", got)
	}
}
