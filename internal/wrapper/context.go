package wrapper

import (
	"context"

	"github.com/Strob0t/toolgate/internal/domain/gateway"
)

type identityKey struct{}

// WithIdentity attaches the resolved caller identity to ctx. Called by the
// auth middleware after a successful token resolution.
func WithIdentity(ctx context.Context, identity gateway.AgentIdentity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// Identity extracts the caller identity attached by the auth middleware.
// The bool is false if the request context carries none.
func Identity(ctx context.Context) (gateway.AgentIdentity, bool) {
	identity, ok := ctx.Value(identityKey{}).(gateway.AgentIdentity)
	return identity, ok
}
