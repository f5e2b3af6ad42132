package fsstore

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

// setupEmulator connects to the Firestore emulator.
// Skips test if FIRESTORE_EMULATOR_HOST is not set.
func setupEmulator(t *testing.T) *firestore.Client {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set, skipping Firestore test")
	}
	client, err := firestore.NewClient(context.Background(), "portfolio-test-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDocumentRoundTrip(t *testing.T) {
	e := domain.Entity{
		ID: "ignored",
		Fields: domain.Fields{
			Kind:        domain.KindCertificate,
			Title:       "Go",
			Description: "d",
			IssuedBy:    "Org",
		},
		CreatedAt: 42,
	}

	got := toDocument(e).entity("doc-1", domain.KindProject)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, e.Fields, got.Fields)
	assert.Equal(t, int64(42), got.CreatedAt)

	legacy := document{Title: "Old"}.entity("doc-2", domain.KindProject)
	assert.Equal(t, domain.KindProject, legacy.Kind)
}

func TestStore_Emulator(t *testing.T) {
	client := setupEmulator(t)
	ctx := context.Background()

	ms := int64(1000)
	s := New(client, domain.KindProject, WithClock(func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}))

	a, err := s.Add(ctx, domain.Fields{Title: "A", Description: "d", GithubURL: "https://github.com/x/a"})
	require.NoError(t, err)
	b, err := s.Add(ctx, domain.Fields{Title: "B", Description: "d", GithubURL: "https://github.com/x/b"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	items, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)

	removed, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.Delete(ctx, "a/b")
	require.NoError(t, err)
	assert.False(t, removed)
}
