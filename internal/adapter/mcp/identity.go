package mcp

import (
	"github.com/Strob0t/toolgate/internal/domain/gateway"
	"github.com/Strob0t/toolgate/internal/policy"
)

func gatewayIdentity(identity policy.Identity) gateway.AgentIdentity {
	return gateway.AgentIdentity{AgentID: identity.AgentID, TenantID: identity.TenantID}
}
