package auth

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

type identityContextKey struct{}

// WithIdentity attaches the authenticated identity to ctx.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity attached by the authorization middleware.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(models.Identity)
	if !ok || identity.AccountID == "" {
		return models.Identity{}, false
	}
	return identity, true
}
