package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type ESSearcher struct {
	Client    *elasticsearch.Client
	IndexName string
	Limit     int
}

type document struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Image     string          `json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewESSearcher(cfg ESConfig) (*ESSearcher, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return &ESSearcher{Client: client, IndexName: cfg.Index, Limit: DefaultLimit}, nil
}

// Ping checks the cluster is reachable.
func (s *ESSearcher) Ping(ctx context.Context) error {
	res, err := s.Client.Info(s.Client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return nil
}

func (s *ESSearcher) Search(ctx context.Context, term string) ([]models.Product, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	// Substring match on the whole name, the same semantics as the SQL LIKE search.
	body := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"name.keyword": map[string]any{
					"value":            "*" + escapeWildcard(term) + "*",
					"case_insensitive": true,
				},
			},
		},
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.IndexName),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		d := hit.Source
		prods[i] = models.Product{
			ID: d.ID, Name: d.Name, Category: d.Category, Price: d.Price,
			Stock: d.Stock, Image: d.Image, CreatedAt: d.CreatedAt,
		}
	}
	return prods, nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(term string) string {
	return wildcardEscaper.Replace(term)
}

// indexMapping keeps a keyword copy of the name for wildcard queries.
const indexMapping = `{"mappings":{"properties":{` +
	`"name":{"type":"text","fields":{"keyword":{"type":"keyword","ignore_above":256}}},` +
	`"category":{"type":"keyword"},"image":{"type":"keyword","index":false}}}}`

// EnsureIndex creates the product index with its mapping unless it already exists.
func (s *ESSearcher) EnsureIndex(ctx context.Context) error {
	res, err := s.Client.Indices.Exists([]string{s.IndexName}, s.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("index exists: %s", res.Status())
	}

	res, err = s.Client.Indices.Create(
		s.IndexName,
		s.Client.Indices.Create.WithContext(ctx),
		s.Client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("create index: %s: %s", res.Status(), msg)
	}
	return nil
}

func (s *ESSearcher) Index(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(document{
		ID: p.ID, Name: p.Name, Category: p.Category, Price: p.Price,
		Stock: p.Stock, Image: p.Image, CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	res, err := s.Client.Index(
		s.IndexName,
		bytes.NewReader(data),
		s.Client.Index.WithContext(ctx),
		s.Client.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product: %s", res.Status())
	}
	return nil
}
