package policy

import "testing"

func testAgents() map[string]struct {
	Token    string
	TenantID string
} {
	return map[string]struct {
		Token    string
		TenantID string
	}{
		"agent-a": {Token: "tok-a", TenantID: "tenant-a"},
		"agent-b": {Token: "tok-b", TenantID: "tenant-b"},
		"agent-c": {Token: "", TenantID: "tenant-c"},
	}
}

func TestResolve_MatchesKnownToken(t *testing.T) {
	r := NewAuthResolver(testAgents())

	id, ok := r.Resolve("tok-a")
	if !ok {
		t.Fatal("expected tok-a to resolve")
	}
	if id.AgentID != "agent-a" || id.TenantID != "tenant-a" {
		t.Errorf("unexpected identity: %+v", id)
	}
}

func TestResolve_UnknownTokenFails(t *testing.T) {
	r := NewAuthResolver(testAgents())

	if _, ok := r.Resolve("not-a-real-token"); ok {
		t.Error("expected unknown token to fail resolution")
	}
}

func TestResolve_EmptyTokenNeverMatches(t *testing.T) {
	r := NewAuthResolver(testAgents())

	if _, ok := r.Resolve(""); ok {
		t.Error("expected empty token to never match, even against an agent with an empty configured token")
	}
}

func TestResolve_DifferentLengthTokenFails(t *testing.T) {
	r := NewAuthResolver(testAgents())

	if _, ok := r.Resolve("tok-a-but-longer"); ok {
		t.Error("expected a longer probe token to fail resolution")
	}
}
