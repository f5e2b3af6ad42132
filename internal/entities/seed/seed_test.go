package seed

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/service"
	"github.com/portfolio-site/portfolio-backend/internal/entities/store/kvstore"
	"github.com/portfolio-site/portfolio-backend/internal/storage/kv"
)

const fixtures = `
projects:
  - title: Weather App
    description: Shows forecasts
    date: "2024-03"
    githubUrl: https://github.com/example/weather
  - title: Chess Engine
    description: Plays chess
    githubUrl: https://github.com/example/chess
certificates:
  - title: Go Fundamentals
    description: Completed the course
    issuedBy: Example Academy
`

func newCatalogs(t *testing.T) service.Catalogs {
	t.Helper()
	db, err := kv.NewFile(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return service.NewCatalogs(kvstore.NewFactory(db), nil, nil)
}

func TestLoad(t *testing.T) {
	fx, err := Load(strings.NewReader(fixtures))
	require.NoError(t, err)

	require.Len(t, fx.Projects, 2)
	require.Len(t, fx.Certificates, 1)
	assert.Equal(t, domain.KindProject, fx.Projects[0].Kind)
	assert.Equal(t, "2024-03", fx.Projects[0].Date)
	assert.Equal(t, domain.KindCertificate, fx.Certificates[0].Kind)
	assert.Equal(t, "Example Academy", fx.Certificates[0].IssuedBy)
}

func TestLoad_EmptyAndUnknownFields(t *testing.T) {
	fx, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Projects)

	_, err = Load(strings.NewReader("projects:\n  - title: x\n    stars: 5\n"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	cs := newCatalogs(t)
	fx, err := Load(strings.NewReader(fixtures))
	require.NoError(t, err)

	res, err := Apply(ctx, cs, fx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added[domain.KindProject])
	assert.Equal(t, 1, res.Added[domain.KindCertificate])

	projects := cs[domain.KindProject].List(ctx)
	require.Len(t, projects, 2)
	assert.Equal(t, "Chess Engine", projects[0].Title)
}

func TestApply_StopsAtInvalidFixture(t *testing.T) {
	ctx := context.Background()
	cs := newCatalogs(t)
	fx, err := Load(strings.NewReader("projects:\n  - title: Good\n    description: ok\n    githubUrl: https://github.com/example/good\n  - title: Missing description\n    githubUrl: https://github.com/example/bad\n"))
	require.NoError(t, err)

	res, err := Apply(ctx, cs, fx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), `projects #2 ("Missing description")`)
	assert.Equal(t, 1, res.Added[domain.KindProject])
}
