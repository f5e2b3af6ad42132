// Package fsstore keeps one Firestore document per entity in a collection
// named after the kind. Document ids are assigned by Firestore.
package fsstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store"
)

type Option func(*Store)

// WithClock overrides the time source used for createdAt.
func WithClock(now store.Clock) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	client *firestore.Client
	kind   domain.Kind
	coll   string
	now    store.Clock
}

func New(client *firestore.Client, kind domain.Kind, opts ...Option) *Store {
	s := &Store{
		client: client,
		kind:   kind,
		coll:   kind.Collection(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func NewFactory(client *firestore.Client, opts ...Option) store.Factory {
	return func(kind domain.Kind) store.Store {
		return New(client, kind, opts...)
	}
}

// document is the stored shape; the id lives in the document name.
type document struct {
	Kind          string `firestore:"kind"`
	Title         string `firestore:"title"`
	Description   string `firestore:"description"`
	Date          string `firestore:"date"`
	ImageURL      string `firestore:"imageUrl,omitempty"`
	GithubURL     string `firestore:"githubUrl,omitempty"`
	LiveDemoURL   string `firestore:"liveDemoUrl,omitempty"`
	IssuedBy      string `firestore:"issuedBy,omitempty"`
	CredentialURL string `firestore:"credentialUrl,omitempty"`
	CreatedAt     int64  `firestore:"createdAt"`
}

func toDocument(e domain.Entity) document {
	return document{
		Kind:          string(e.Kind),
		Title:         e.Title,
		Description:   e.Description,
		Date:          e.Date,
		ImageURL:      e.ImageURL,
		GithubURL:     e.GithubURL,
		LiveDemoURL:   e.LiveDemoURL,
		IssuedBy:      e.IssuedBy,
		CredentialURL: e.CredentialURL,
		CreatedAt:     e.CreatedAt,
	}
}

func (d document) entity(id string, fallback domain.Kind) domain.Entity {
	kind := domain.Kind(d.Kind)
	if kind == "" {
		kind = fallback
	}
	return domain.Entity{
		ID: id,
		Fields: domain.Fields{
			Kind:          kind,
			Title:         d.Title,
			Description:   d.Description,
			Date:          d.Date,
			ImageURL:      d.ImageURL,
			GithubURL:     d.GithubURL,
			LiveDemoURL:   d.LiveDemoURL,
			IssuedBy:      d.IssuedBy,
			CredentialURL: d.CredentialURL,
		},
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) List(ctx context.Context) ([]domain.Entity, error) {
	snaps, err := s.client.Collection(s.coll).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.coll, err)
	}

	out := make([]domain.Entity, 0, len(snaps))
	for _, snap := range snaps {
		var d document
		// documents written by hand with the wrong field types are skipped
		if err := snap.DataTo(&d); err != nil {
			continue
		}
		out = append(out, d.entity(snap.Ref.ID, s.kind))
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, f domain.Fields) (domain.Entity, error) {
	f.Kind = s.kind
	e := domain.Entity{
		Fields:    f,
		CreatedAt: s.now().UnixMilli(),
	}

	ref, _, err := s.client.Collection(s.coll).Add(ctx, toDocument(e))
	if err != nil {
		return domain.Entity{}, fmt.Errorf("add to %s: %w", s.coll, err)
	}
	e.ID = ref.ID
	return e, nil
}

// Delete removes the document with an existence precondition, so deleting
// an unknown id reports false like the other backends.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return false, nil
	}

	_, err := s.client.Collection(s.coll).Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", s.coll, id, err)
	}
	return true, nil
}
