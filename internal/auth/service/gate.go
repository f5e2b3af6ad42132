package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
	"github.com/portfolio-site/portfolio-backend/internal/auth/identity"
	"github.com/portfolio-site/portfolio-backend/internal/auth/repository"
	"github.com/portfolio-site/portfolio-backend/internal/auth/sessions"
	"github.com/portfolio-site/portfolio-backend/internal/logger"
)

const (
	adminUIDPrefix = "admin-"
	adminKeyPrefix = "admin:"
	idpKeyPrefix   = "idp:"

	maxPasswordBytes = 72
)

// Options tunes the Gate.
type Options struct {
	SessionTTL      time.Duration
	LoginRatePerMin int
}

// Gate decides who the current user of a client context is. A local admin
// session always takes precedence over the identity provider.
type Gate struct {
	admins   repository.AdminRepository
	idp      identity.Provider
	sessions sessions.Store
	ttl      time.Duration
	limiter  *loginLimiter
	log      *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(*domain.Session)
}

func NewGate(admins repository.AdminRepository, idp identity.Provider, store sessions.Store, opts Options, log *zap.Logger) *Gate {
	if idp == nil {
		idp = identity.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{
		admins:   admins,
		idp:      idp,
		sessions: store,
		ttl:      opts.SessionTTL,
		limiter:  newLoginLimiter(opts.LoginRatePerMin),
		log:      log,
		subs:     make(map[string]map[int]func(*domain.Session)),
	}
}

// HashPassword produces the stored form of an admin password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return "", fmt.Errorf("password longer than %d bytes", maxPasswordBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// LoginAdmin checks the pair against the admin record and persists an admin
// session for the client.
func (g *Gate) LoginAdmin(ctx context.Context, client, email, password string) (*domain.Session, error) {
	if client == "" {
		return nil, domain.ErrNoClient
	}
	if !g.limiter.Allow(client, email) {
		return nil, domain.ErrRateLimited
	}
	log := logger.NewLogger(ctx, g.log)

	cred, err := g.admins.Get(ctx)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		log.LogError("auth.login_admin", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if cred.PasswordHash == "" {
		log.LogWarn("auth.login_admin", "admin record has no password hash")
		return nil, domain.ErrUnavailable
	}

	// bcrypt only reads the first 72 bytes, longer input could match a
	// shorter stored password.
	if len(password) > maxPasswordBytes {
		return nil, domain.ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(cred.Email)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password))
	if pwErr != nil && !errors.Is(pwErr, bcrypt.ErrMismatchedHashAndPassword) {
		log.LogError("auth.login_admin", pwErr)
		return nil, domain.ErrUnavailable
	}
	if !emailOK || pwErr != nil {
		return nil, domain.ErrInvalidCredentials
	}

	s := domain.Session{UID: adminUIDPrefix + cred.DocID, Email: cred.Email, IsAdmin: true}
	if err := g.sessions.Put(ctx, adminKeyPrefix+client, s, g.ttl); err != nil {
		log.LogError("auth.login_admin", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	log.LogInfof("auth.login_admin", "admin signed in as %s", s.UID)
	g.broadcast(client, &s)
	return &s, nil
}

// LoginWithEmail signs in through the identity provider and remembers the
// resulting token for the client.
func (g *Gate) LoginWithEmail(ctx context.Context, client, email, password string) (*domain.Session, error) {
	if client == "" {
		return nil, domain.ErrNoClient
	}
	if !g.limiter.Allow(client, email) {
		return nil, domain.ErrRateLimited
	}
	log := logger.NewLogger(ctx, g.log)

	st, err := g.idp.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			log.LogError("auth.login_email", err)
		}
		return nil, err
	}

	if err := g.sessions.Put(ctx, idpKeyPrefix+client, st, g.ttl); err != nil {
		log.LogError("auth.login_email", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	s := st.Session()
	g.emit(ctx, client, s)
	return s, nil
}

// Current returns the client's session, or nil when nobody is signed in.
// The admin session is consulted first, then the identity provider state,
// then an explicit bearer token.
func (g *Gate) Current(ctx context.Context, client, bearer string) (*domain.Session, error) {
	log := logger.NewLogger(ctx, g.log)

	if client != "" {
		if s, err := g.adminSession(ctx, client); err == nil {
			return s, nil
		} else if !errors.Is(err, domain.ErrSessionNotFound) {
			log.LogError("auth.current", err)
		}

		var st domain.IdentityState
		err := g.sessions.Get(ctx, idpKeyPrefix+client, &st)
		switch {
		case err == nil:
			s, verr := g.idp.Verify(ctx, st.IDToken)
			if verr == nil {
				return s, nil
			}
			if !errors.Is(verr, domain.ErrNotSignedIn) {
				return nil, verr
			}
			if derr := g.sessions.Delete(ctx, idpKeyPrefix+client); derr != nil {
				log.LogError("auth.current", derr)
			}
		case !errors.Is(err, domain.ErrSessionNotFound):
			log.LogError("auth.current", err)
		}
	}

	if bearer != "" {
		s, err := g.idp.Verify(ctx, bearer)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, domain.ErrNotSignedIn) {
			return nil, err
		}
	}

	return nil, nil
}

// Resolve maps Current onto the three-state view.
func (g *Gate) Resolve(ctx context.Context, client, bearer string) domain.View {
	s, err := g.Current(ctx, client, bearer)
	switch {
	case err != nil:
		return domain.View{State: domain.StateUnknown}
	case s == nil:
		return domain.View{State: domain.StateAnonymous}
	default:
		return domain.View{State: domain.StateAuthenticated, Session: s}
	}
}

// IsAuthenticated is true iff a session exists.
func (g *Gate) IsAuthenticated(s *domain.Session) bool {
	return domain.IsAuthenticated(s)
}

// Logout clears both session kinds for the client. Local state is always
// cleared; the result is false when the identity provider sign-out failed.
func (g *Gate) Logout(ctx context.Context, client string) bool {
	if client == "" {
		return true
	}
	log := logger.NewLogger(ctx, g.log)

	_, adminErr := g.adminSession(ctx, client)
	hadAdmin := adminErr == nil
	var st domain.IdentityState
	hadIdentity := g.sessions.Get(ctx, idpKeyPrefix+client, &st) == nil

	if err := g.sessions.Delete(ctx, adminKeyPrefix+client, idpKeyPrefix+client); err != nil {
		log.LogError("auth.logout", err)
	}

	ok := true
	if hadIdentity && st.UID != "" {
		if err := g.idp.SignOut(ctx, st.UID); err != nil {
			log.LogError("auth.logout", err)
			ok = false
		}
	}
	if hadAdmin || hadIdentity {
		g.broadcast(client, nil)
	}
	return ok
}

// Subscribe registers fn for session changes on the client.
func (g *Gate) Subscribe(client string, fn func(*domain.Session)) (cancel func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	if g.subs[client] == nil {
		g.subs[client] = make(map[int]func(*domain.Session))
	}
	g.subs[client][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.subs[client], id)
			if len(g.subs[client]) == 0 {
				delete(g.subs, client)
			}
		})
	}
}

// emit notifies subscribers, unless an admin session is present for the
// client: the admin identity must not be replaced by a provider event.
func (g *Gate) emit(ctx context.Context, client string, s *domain.Session) {
	if _, err := g.adminSession(ctx, client); err == nil {
		return
	}
	g.broadcast(client, s)
}

func (g *Gate) broadcast(client string, s *domain.Session) {
	g.mu.Lock()
	fns := make([]func(*domain.Session), 0, len(g.subs[client]))
	for _, fn := range g.subs[client] {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (g *Gate) adminSession(ctx context.Context, client string) (*domain.Session, error) {
	var s domain.Session
	if err := g.sessions.Get(ctx, adminKeyPrefix+client, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
