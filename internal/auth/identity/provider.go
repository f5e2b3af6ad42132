// Package identity talks to the external identity provider.
package identity

import (
	"context"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

// Provider signs users in with email/password and verifies the tokens it
// hands out.
//
// SignIn returns domain.ErrInvalidCredentials when the provider rejects the
// pair and domain.ErrUnavailable when it cannot be reached. Verify returns
// domain.ErrNotSignedIn for invalid, expired or revoked tokens.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*domain.IdentityState, error)
	Verify(ctx context.Context, idToken string) (*domain.Session, error)
	SignOut(ctx context.Context, uid string) error
}

// Disabled is used when no identity provider is configured.
type Disabled struct{}

func (Disabled) SignIn(ctx context.Context, email, password string) (*domain.IdentityState, error) {
	return nil, domain.ErrUnavailable
}

func (Disabled) Verify(ctx context.Context, idToken string) (*domain.Session, error) {
	return nil, domain.ErrNotSignedIn
}

func (Disabled) SignOut(ctx context.Context, uid string) error {
	return nil
}
