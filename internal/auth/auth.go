// Package auth is the identity boundary: who is calling, and what are they
// allowed to destroy. The concrete identity source is injected; the service
// only ever sees the Provider interface and a Policy predicate.
package auth

import (
	"context"
	"strings"
)

//go:generate mockgen -source=auth.go -destination=mock/auth.go -package=mock_auth

type Identity struct {
	ID    string
	Email string
}

// Provider resolves the caller's identity. A nil identity with a nil error
// means "no authenticated user", which is not an error by itself; the caller
// decides whether that hard-fails or soft-degrades.
type Provider interface {
	CurrentUser(ctx context.Context) (*Identity, error)
}

// Policy decides whether an identity may perform destructive or
// administrative operations.
type Policy func(identity Identity) bool

// AdminEmailPolicy authorizes exactly one email, case-insensitively. An
// empty configured email authorizes every authenticated identity.
func AdminEmailPolicy(adminEmail string) Policy {
	return func(identity Identity) bool {
		if adminEmail == "" {
			return true
		}
		return strings.EqualFold(identity.Email, adminEmail)
	}
}

type contextKey string

const identityKey contextKey = "auth_identity"

// WithIdentity stores the resolved identity on the context; the HTTP
// middleware is the writer, ContextProvider the reader.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// ContextProvider reads the identity the transport layer attached to the
// request context.
type ContextProvider struct{}

func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

func (p *ContextProvider) CurrentUser(ctx context.Context) (*Identity, error) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok || (identity.ID == "" && identity.Email == "") {
		return nil, nil
	}
	return &identity, nil
}
