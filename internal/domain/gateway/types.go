// Package gateway defines the immutable value objects shared across the
// tool-serving gateway: agent identity, capability tags, plugin manifests,
// and policy decisions. Nothing in this package holds mutable state.
package gateway

import "sort"

// Capability is a coarse-grained permission tag gating tool invocation.
// The set is closed: extend it only by adding a constant below.
type Capability string

const (
	CapabilityNetworkOutbound Capability = "network:outbound"
	CapabilityLLMQuery        Capability = "llm:query"
	CapabilityFSRead          Capability = "fs:read"
	CapabilityFSWrite         Capability = "fs:write"
	CapabilityDBRead          Capability = "db:read"
	CapabilityDBWrite         Capability = "db:write"
)

// AgentIdentity is the resolved principal behind a request. It is immutable
// once constructed and carries no secrets.
type AgentIdentity struct {
	AgentID  string
	TenantID string
}

// PluginManifest is the static self-description a tool, resource, or prompt
// plugin supplies at registration time.
type PluginManifest struct {
	Name         string
	Title        string
	Description  string
	Capabilities map[Capability]struct{}
}

// RequiresCapability reports whether the manifest declares cap as required.
func (m PluginManifest) RequiresCapability(cap Capability) bool {
	_, ok := m.Capabilities[cap]
	return ok
}

// MissingCapabilities returns, in sorted order, the capabilities m requires
// that are absent from allowed.
func (m PluginManifest) MissingCapabilities(allowed map[Capability]struct{}) []Capability {
	var missing []Capability
	for c := range m.Capabilities {
		if _, ok := allowed[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// NewManifest builds a PluginManifest from a variadic capability list.
func NewManifest(name, title, description string, caps ...Capability) PluginManifest {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return PluginManifest{Name: name, Title: title, Description: description, Capabilities: set}
}

// PolicyDecision is the result of a single policy evaluation: either allowed
// with no reasons, or denied with one or more reasons. allowed ⇒ reasons
// is empty is the invariant constructors preserve.
type PolicyDecision struct {
	Allowed bool
	Reasons []string
}

// Allow returns the single allowed decision.
func Allow() PolicyDecision {
	return PolicyDecision{Allowed: true}
}

// Deny returns a denied decision carrying reasons. reasons must be non-empty
// by convention, though callers aggregating checks enforce that.
func Deny(reasons []string) PolicyDecision {
	return PolicyDecision{Allowed: false, Reasons: reasons}
}

// Merge combines two decisions: denied if either is denied, concatenating
// reasons in a then b order; allowed only if both are allowed.
func (d PolicyDecision) Merge(other PolicyDecision) PolicyDecision {
	if d.Allowed && other.Allowed {
		return Allow()
	}
	reasons := make([]string, 0, len(d.Reasons)+len(other.Reasons))
	reasons = append(reasons, d.Reasons...)
	reasons = append(reasons, other.Reasons...)
	return PolicyDecision{Allowed: false, Reasons: reasons}
}
