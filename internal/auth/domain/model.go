package domain

// Session identifies the signed-in user of one client context.
type Session struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// IsAuthenticated is true iff a session exists.
func IsAuthenticated(s *Session) bool {
	return s != nil
}

// State is the resolution of a client's authentication.
type State string

const (
	// StateUnknown means the check could not complete, e.g. the identity
	// provider was unreachable.
	StateUnknown       State = "unknown"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// View is what the presentation layer needs to decide which controls to show.
type View struct {
	State   State    `json:"state"`
	Session *Session `json:"user"`
}

// Authenticated reports the derived predicate for the view.
func (v View) Authenticated() bool {
	return v.State == StateAuthenticated && IsAuthenticated(v.Session)
}

// AdminCredential is the single stored admin record.
type AdminCredential struct {
	DocID        string
	Email        string
	PasswordHash string
}

// IdentityState is what a client keeps after signing in with the identity
// provider.
type IdentityState struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

func (s IdentityState) Session() *Session {
	return &Session{UID: s.UID, Email: s.Email}
}
