package domain

import "strings"

// Kind tags an entity as a Project or a Certificate.
type Kind string

const (
	KindProject     Kind = "project"
	KindCertificate Kind = "certificate"
)

// Kinds lists every entity kind in display order.
var Kinds = []Kind{KindProject, KindCertificate}

const (
	projectPlaceholderImage     = "https://images.pexels.com/photos/546819/pexels-photo-546819.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=1"
	certificatePlaceholderImage = "https://images.pexels.com/photos/326576/pexels-photo-326576.jpeg?auto=compress&cs=tinysrgb&w=800"
)

// ParseKind accepts singular or plural forms ("project", "projects").
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "project", "projects":
		return KindProject, true
	case "certificate", "certificates":
		return KindCertificate, true
	}
	return "", false
}

// Collection is the remote collection / table partition name for the kind.
func (k Kind) Collection() string {
	switch k {
	case KindCertificate:
		return "certificates"
	default:
		return "projects"
	}
}

// StorageKey is the key holding the serialized array in a key-value store.
func (k Kind) StorageKey() string {
	return "portfolio_" + k.Collection()
}

// PlaceholderImage is shown when an entity has no image of its own.
func (k Kind) PlaceholderImage() string {
	if k == KindCertificate {
		return certificatePlaceholderImage
	}
	return projectPlaceholderImage
}

// Fields is everything a caller supplies when adding an entity.
type Fields struct {
	Kind          Kind   `json:"kind" firestore:"kind" yaml:"kind" validate:"required,oneof=project certificate"`
	Title         string `json:"title" firestore:"title" yaml:"title" validate:"required"`
	Description   string `json:"description" firestore:"description" yaml:"description" validate:"required"`
	Date          string `json:"date" firestore:"date" yaml:"date"`
	ImageURL      string `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty" yaml:"imageUrl" validate:"omitempty,url"`
	GithubURL     string `json:"githubUrl,omitempty" firestore:"githubUrl,omitempty" yaml:"githubUrl" validate:"omitempty,url"`
	LiveDemoURL   string `json:"liveDemoUrl,omitempty" firestore:"liveDemoUrl,omitempty" yaml:"liveDemoUrl" validate:"omitempty,url"`
	IssuedBy      string `json:"issuedBy,omitempty" firestore:"issuedBy,omitempty" yaml:"issuedBy"`
	CredentialURL string `json:"credentialUrl,omitempty" firestore:"credentialUrl,omitempty" yaml:"credentialUrl" validate:"omitempty,url"`
}

// Entity is a stored Project or Certificate. Entities are never updated in
// place; they are only added or deleted.
type Entity struct {
	ID string `json:"id" firestore:"-"`
	Fields
	CreatedAt int64 `json:"createdAt" firestore:"createdAt"`
}

// DisplayImageURL returns the entity image or the kind's placeholder.
func (e Entity) DisplayImageURL() string {
	if strings.TrimSpace(e.ImageURL) != "" {
		return e.ImageURL
	}
	return e.Kind.PlaceholderImage()
}

// Matches reports whether title or description contains q, ignoring case.
func (e Entity) Matches(q string) bool {
	lq := strings.ToLower(q)
	return strings.Contains(strings.ToLower(e.Title), lq) ||
		strings.Contains(strings.ToLower(e.Description), lq)
}
