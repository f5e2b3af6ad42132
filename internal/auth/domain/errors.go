package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("authentication service unavailable")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrAdminNotFound      = errors.New("admin record not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrNoClient           = errors.New("missing client key")
)
