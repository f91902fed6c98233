// Package search finds products by name, either in the relational store or in
// an Elasticsearch index.
package search

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const DefaultLimit = 50

type Searcher interface {
	Search(ctx context.Context, term string) ([]models.Product, error)
	Index(ctx context.Context, p *models.Product) error
}

// SQLSearcher runs LIKE matches against the products table. Index is a no-op
// because the table is the index.
type SQLSearcher struct {
	Repo  *repo.GormRepo
	Limit int
}

func (s *SQLSearcher) Search(ctx context.Context, term string) ([]models.Product, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.Repo.SearchByName(ctx, term, limit)
}

func (s *SQLSearcher) Index(context.Context, *models.Product) error { return nil }
