package auth

import "context"

// Identity is the verified admin caller.
type Identity struct {
	Subject string
	Roles   []string
	Issuer  string
}

type contextKey string

const identityKey contextKey = "admin_identity"

// WithIdentity attaches identity to request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext retrieves identity from request context.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
