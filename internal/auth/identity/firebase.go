package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

// Firebase signs in through the Identity Toolkit REST API and verifies ID
// tokens with the Admin SDK.
type Firebase struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

// NewFirebase builds the provider. apiKey is the project's web API key.
func NewFirebase(ctx context.Context, authClient *auth.Client, apiKey string, opts ...option.ClientOption) (*Firebase, error) {
	if authClient == nil {
		return nil, fmt.Errorf("firebase auth client is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is required for email sign-in")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}

	return &Firebase{auth: authClient, toolkit: svc}, nil
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*domain.IdentityState, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	return &domain.IdentityState{
		UID:     resp.LocalId,
		Email:   resp.Email,
		IDToken: resp.IdToken,
	}, nil
}

func (f *Firebase) Verify(ctx context.Context, idToken string) (*domain.Session, error) {
	tok, err := f.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenRevoked(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenInvalid(err) || auth.IsUserDisabled(err) {
			return nil, domain.ErrNotSignedIn
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	s := &domain.Session{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		s.Email = email
	}
	return s, nil
}

// SignOut revokes the user's refresh tokens so outstanding ID tokens fail
// the revocation check.
func (f *Firebase) SignOut(ctx context.Context, uid string) error {
	if err := f.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}
