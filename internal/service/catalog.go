package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Search   search.Searcher
	Images   *storage.ImageStore
	Notifier *Notifier
}

func (s *CatalogService) List(ctx context.Context, category string) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *CatalogService) Page(ctx context.Context, category string, page, size int) ([]models.Product, transport.PageMeta, error) {
	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.PageProducts(ctx, category, offset, limit)
	if err != nil {
		return nil, transport.PageMeta{}, fmt.Errorf("page products: %w", err)
	}
	return items, util.Meta(page, offset, limit, total), nil
}

func (s *CatalogService) Product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, fmt.Errorf("product %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// SearchProducts matches product names. The store is queried directly when the
// configured searcher fails or finds nothing, since the index may lag the store.
func (s *CatalogService) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("search term: %w", ErrMissingParameter)
	}
	if s.Search != nil {
		items, err := s.Search.Search(ctx, term)
		switch {
		case err != nil:
			logging.FromContext(ctx).Warn("search_backend_failed", "error", err)
		case len(items) > 0:
			return items, nil
		}
	}
	items, err := s.Repo.SearchByName(ctx, term, search.DefaultLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return items, nil
}

// Reindex pushes every stored product into the searcher. It stops at the first
// failure and reports how many products were indexed before it.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Search == nil {
		return 0, nil
	}
	items, err := s.Repo.ListProducts(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	for i := range items {
		if err := s.Search.Index(ctx, &items[i]); err != nil {
			return i, fmt.Errorf("index product %s: %w", items[i].ID, err)
		}
	}
	return len(items), nil
}

// AddProduct validates the add-item form, stores the image and inserts the
// product. The stored image is removed again if the insert fails.
func (s *CatalogService) AddProduct(ctx context.Context, uploader uuid.UUID, form transport.ProductForm, image *multipart.FileHeader) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.add_product")

	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.Price = strings.TrimSpace(form.Price)
	form.Stock = strings.TrimSpace(form.Stock)

	ve := validateStruct(form)
	var (
		price decimal.Decimal
		stock int
	)
	if !ve.has("itemPrice") {
		p, err := decimal.NewFromString(form.Price)
		switch {
		case err != nil:
			ve.Add("itemPrice", "must be a number")
		case !p.IsPositive():
			ve.Add("itemPrice", "must be greater than 0")
		default:
			price = p.Round(2)
		}
	}
	if !ve.has("stock") {
		n, err := strconv.Atoi(form.Stock)
		if err != nil || n < 0 {
			ve.Add("stock", "must be a non-negative integer")
		}
		stock = n
	}
	if image == nil {
		ve.Add("image", storage.ErrNoImage.Error())
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	name, err := s.Images.Save(uploader, image)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrImageTooLarge) {
			ve.Add("image", err.Error())
			return nil, ve
		}
		return nil, fmt.Errorf("save image: %w", err)
	}

	p := models.Product{
		Name:     form.Name,
		Category: form.Category,
		Price:    price,
		Stock:    stock,
		Image:    name,
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		if rmErr := s.Images.Remove(name); rmErr != nil {
			l.Error("image_cleanup_failed", "image", name, "error", rmErr)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	if s.Search != nil {
		if err := s.Search.Index(ctx, &p); err != nil {
			l.Warn("index_product_failed", "product_id", p.ID, "error", err)
		}
	}
	l.Info("product_created", "product_id", p.ID, "uploader", uploader)
	s.Notifier.publish(ctx, l, events.TopicProducts, p.ID.String(), events.Event{
		Type:   events.ProductCreated,
		ID:     p.ID.String(),
		UserID: uploader.String(),
		Data:   map[string]any{"name": p.Name, "category": p.Category, "price": p.Price.StringFixed(2)},
	})
	return &p, nil
}
