// Package seed loads gallery fixtures from YAML.
package seed

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/service"
)

// Fixtures is the document shape:
//
//	projects:
//	  - title: ...
//	certificates:
//	  - title: ...
type Fixtures struct {
	Projects     []domain.Fields `yaml:"projects"`
	Certificates []domain.Fields `yaml:"certificates"`
}

func Load(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	for i := range fx.Projects {
		fx.Projects[i].Kind = domain.KindProject
	}
	for i := range fx.Certificates {
		fx.Certificates[i].Kind = domain.KindCertificate
	}
	return &fx, nil
}

// Result counts what Apply added.
type Result struct {
	Added map[domain.Kind]int
}

// Apply adds every fixture in file order and stops at the first failure.
// Catalogs keep newest first, so the last fixture ends up on top.
func Apply(ctx context.Context, cs service.Catalogs, fx *Fixtures) (Result, error) {
	res := Result{Added: make(map[domain.Kind]int)}
	groups := []struct {
		kind  domain.Kind
		items []domain.Fields
	}{
		{domain.KindProject, fx.Projects},
		{domain.KindCertificate, fx.Certificates},
	}

	for _, g := range groups {
		c, ok := cs.Get(g.kind)
		if !ok {
			return res, fmt.Errorf("no catalog for %s", g.kind)
		}
		for i, f := range g.items {
			if _, err := c.Add(ctx, f); err != nil {
				return res, fmt.Errorf("%s #%d (%q): %w", g.kind.Collection(), i+1, f.Title, err)
			}
			res.Added[g.kind]++
		}
	}
	return res, nil
}
