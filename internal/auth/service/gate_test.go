package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
	"github.com/portfolio-site/portfolio-backend/internal/auth/repository"
	"github.com/portfolio-site/portfolio-backend/internal/auth/sessions"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret!"
)

// fakeIdP accepts one user and tracks revocations.
type fakeIdP struct {
	mu         sync.Mutex
	down       bool
	revoked    map[string]bool
	signOuts   int
	signOutErr error
}

func newFakeIdP() *fakeIdP {
	return &fakeIdP{revoked: make(map[string]bool)}
}

func (f *fakeIdP) SignIn(ctx context.Context, email, password string) (*domain.IdentityState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, domain.ErrUnavailable
	}
	if email != "user@example.com" || password != "pw" {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.IdentityState{UID: "uid-1", Email: email, IDToken: "token-uid-1"}, nil
}

func (f *fakeIdP) Verify(ctx context.Context, idToken string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, domain.ErrUnavailable
	}
	if idToken != "token-uid-1" || f.revoked["uid-1"] {
		return nil, domain.ErrNotSignedIn
	}
	return &domain.Session{UID: "uid-1", Email: "user@example.com"}, nil
}

func (f *fakeIdP) SignOut(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.revoked[uid] = true
	return nil
}

func (f *fakeIdP) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func hashFor(t *testing.T, pw string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newTestGate(t *testing.T, rate int) (*Gate, *fakeIdP) {
	admins := repository.NewStaticAdminRepository("Sankalp-Dawada", adminEmail, hashFor(t, adminPassword))
	idp := newFakeIdP()
	g := NewGate(admins, idp, sessions.NewMemoryStore(), Options{SessionTTL: time.Hour, LoginRatePerMin: rate}, nil)
	return g, idp
}

func TestGate_LoginAdmin(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 0)

	s, err := g.LoginAdmin(ctx, "client-1", adminEmail, adminPassword)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{UID: "admin-Sankalp-Dawada", Email: adminEmail, IsAdmin: true}, *s)

	cur, err := g.Current(ctx, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, s, cur)
	assert.True(t, g.IsAuthenticated(cur))

	other, err := g.Current(ctx, "client-2", "")
	require.NoError(t, err)
	assert.Nil(t, other, "sessions are scoped to the client")
	assert.False(t, g.IsAuthenticated(other))
}

func TestGate_LoginAdminRejects(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 0)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", adminEmail, "nope"},
		{"wrong email", "other@example.com", adminPassword},
		{"empty password", adminEmail, ""},
		{"leading space in email", " " + adminEmail, adminPassword},
		{"trailing tab in email", adminEmail + "\t", adminPassword},
		{"upper-case email", "Admin@example.com", adminPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.LoginAdmin(ctx, "client-1", tt.email, tt.password)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}

	cur, err := g.Current(ctx, "client-1", "")
	require.NoError(t, err)
	assert.Nil(t, cur, "failed logins leave no session")

	_, err = g.LoginAdmin(ctx, "", adminEmail, adminPassword)
	assert.ErrorIs(t, err, domain.ErrNoClient)
}

func TestGate_LoginAdminWithoutHashIsUnavailable(t *testing.T) {
	admins := repository.NewStaticAdminRepository("doc", adminEmail, "")
	g := NewGate(admins, nil, sessions.NewMemoryStore(), Options{SessionTTL: time.Hour}, nil)

	_, err := g.LoginAdmin(context.Background(), "c", adminEmail, adminPassword)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestGate_LoginRateLimited(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 2)

	for i := 0; i < 2; i++ {
		_, err := g.LoginAdmin(ctx, "c", adminEmail, "wrong")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	_, err := g.LoginAdmin(ctx, "c", adminEmail, adminPassword)
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	_, err = g.LoginAdmin(ctx, "c", "someone-else@example.com", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "limits are per email")

	s, err := g.LoginAdmin(ctx, "other-client", adminEmail, adminPassword)
	require.NoError(t, err, "another client is not locked out")
	assert.True(t, s.IsAdmin)
}

func TestGate_LoginAdminLongPassword(t *testing.T) {
	ctx := context.Background()
	long := strings.Repeat("a", 72)
	admins := repository.NewStaticAdminRepository("d", adminEmail, hashFor(t, long))
	g := NewGate(admins, nil, sessions.NewMemoryStore(), Options{SessionTTL: time.Hour}, nil)

	_, err := g.LoginAdmin(ctx, "c", adminEmail, long+"X")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	s, err := g.LoginAdmin(ctx, "c", adminEmail, long)
	require.NoError(t, err)
	assert.Equal(t, "admin-d", s.UID)
}

func TestGate_LoginWithEmail(t *testing.T) {
	ctx := context.Background()
	g, idp := newTestGate(t, 0)

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	s, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", s.UID)
	assert.False(t, s.IsAdmin)

	cur, err := g.Current(ctx, "c", "")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "uid-1", cur.UID)

	idp.setDown(true)
	_, err = g.LoginWithEmail(ctx, "c2", "user@example.com", "pw")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestGate_AdminSessionWins(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 0)

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	_, err = g.LoginAdmin(ctx, "c", adminEmail, adminPassword)
	require.NoError(t, err)

	cur, err := g.Current(ctx, "c", "")
	require.NoError(t, err)
	assert.True(t, cur.IsAdmin)

	var seen []*domain.Session
	cancel := g.Subscribe("c", func(s *domain.Session) { seen = append(seen, s) })
	defer cancel()

	_, err = g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	assert.Empty(t, seen, "provider events must not replace the admin view")

	cur, err = g.Current(ctx, "c", "")
	require.NoError(t, err)
	assert.True(t, cur.IsAdmin)
}

func TestGate_Resolve(t *testing.T) {
	ctx := context.Background()
	g, idp := newTestGate(t, 0)

	assert.Equal(t, domain.View{State: domain.StateAnonymous}, g.Resolve(ctx, "c", ""))

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	v := g.Resolve(ctx, "c", "")
	assert.Equal(t, domain.StateAuthenticated, v.State)
	assert.True(t, v.Authenticated())

	idp.setDown(true)
	v = g.Resolve(ctx, "c", "")
	assert.Equal(t, domain.StateUnknown, v.State)
	assert.Nil(t, v.Session)
	assert.False(t, v.Authenticated())
}

func TestGate_BearerToken(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 0)

	cur, err := g.Current(ctx, "", "token-uid-1")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "uid-1", cur.UID)

	cur, err = g.Current(ctx, "", "forged")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestGate_Logout(t *testing.T) {
	ctx := context.Background()
	g, idp := newTestGate(t, 0)

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	_, err = g.LoginAdmin(ctx, "c", adminEmail, adminPassword)
	require.NoError(t, err)

	var seen []*domain.Session
	defer g.Subscribe("c", func(s *domain.Session) { seen = append(seen, s) })()

	assert.True(t, g.Logout(ctx, "c"))
	assert.Equal(t, 1, idp.signOuts)
	assert.Equal(t, []*domain.Session{nil}, seen)

	cur, err := g.Current(ctx, "c", "")
	require.NoError(t, err)
	assert.Nil(t, cur)

	assert.True(t, g.Logout(ctx, "c"), "logout without a session is a no-op")
	assert.Equal(t, 1, idp.signOuts)
}

func TestGate_LogoutClearsLocalStateWhenProviderFails(t *testing.T) {
	ctx := context.Background()
	g, idp := newTestGate(t, 0)

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)

	idp.signOutErr = errors.New("network")
	assert.False(t, g.Logout(ctx, "c"))

	cur, err := g.Current(ctx, "c", "")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestGate_RevokedTokenEndsSession(t *testing.T) {
	ctx := context.Background()
	g, idp := newTestGate(t, 0)

	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)

	idp.mu.Lock()
	idp.revoked["uid-1"] = true
	idp.mu.Unlock()

	cur, err := g.Current(ctx, "c", "")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestGate_SubscribeCancel(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(t, 0)

	calls := 0
	cancel := g.Subscribe("c", func(*domain.Session) { calls++ })
	_, err := g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	cancel()
	cancel()
	_, err = g.LoginWithEmail(ctx, "c", "user@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("pw")))

	_, err = HashPassword("")
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("b", 73))
	assert.Error(t, err)
}
