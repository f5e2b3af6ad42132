package repository

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

// AdminRepository reads the single admin credential record.
type AdminRepository interface {
	Get(ctx context.Context) (*domain.AdminCredential, error)
}

// adminRecord mirrors the stored document. Password holds the legacy
// plaintext value and is only read to detect records that were never migrated.
type adminRecord struct {
	Email        string `firestore:"Email"`
	PasswordHash string `firestore:"PasswordHash"`
	Password     string `firestore:"Password,omitempty"`
}

// FirestoreAdminRepository keeps the admin record at <collection>/<docID>.
type FirestoreAdminRepository struct {
	client     *firestore.Client
	collection string
	docID      string
}

func NewFirestoreAdminRepository(client *firestore.Client, collection, docID string) *FirestoreAdminRepository {
	return &FirestoreAdminRepository{client: client, collection: collection, docID: docID}
}

func (r *FirestoreAdminRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(r.docID)
}

func (r *FirestoreAdminRepository) Get(ctx context.Context) (*domain.AdminCredential, error) {
	snap, err := r.doc().Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get admin record: %w", err)
	}

	var rec adminRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode admin record: %w", err)
	}
	if rec.PasswordHash == "" && rec.Password != "" {
		return nil, fmt.Errorf("admin record %s/%s stores a plaintext password, run portfolioctl set-admin", r.collection, r.docID)
	}

	return &domain.AdminCredential{
		DocID:        r.docID,
		Email:        strings.TrimSpace(rec.Email),
		PasswordHash: rec.PasswordHash,
	}, nil
}

// Put writes the credential and drops any legacy plaintext field.
func (r *FirestoreAdminRepository) Put(ctx context.Context, email, passwordHash string) error {
	_, err := r.doc().Set(ctx, map[string]interface{}{
		"Email":        email,
		"PasswordHash": passwordHash,
		"Password":     firestore.Delete,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to write admin record: %w", err)
	}
	return nil
}

// StaticAdminRepository serves a credential taken from configuration.
type StaticAdminRepository struct {
	cred domain.AdminCredential
}

func NewStaticAdminRepository(docID, email, passwordHash string) *StaticAdminRepository {
	return &StaticAdminRepository{cred: domain.AdminCredential{
		DocID:        docID,
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
	}}
}

func (r *StaticAdminRepository) Get(ctx context.Context) (*domain.AdminCredential, error) {
	if r.cred.Email == "" {
		return nil, domain.ErrAdminNotFound
	}
	cred := r.cred
	return &cred, nil
}
