package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/backend-percetakan/internal/common"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Repo loads products from the backing store.
type Repo interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
}

// Service serves catalog reads, with an optional Redis cache in front of the
// repository. All catalog I/O happens here, before the pricing core runs.
type Service struct {
	Repo  Repo
	Cache *Cache
}

// List returns all catalog products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached []Product
	if hit, err := s.Cache.getJSON(ctx, productListKey, &cached); err == nil && hit {
		return cached, nil
	}
	rows, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	_ = s.Cache.setJSON(ctx, productListKey, rows)
	return rows, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	if s == nil || s.Repo == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	if id == "" {
		return Product{}, common.NewAppError("INVALID_PRODUCT", "product id is required", http.StatusBadRequest, nil)
	}
	var cached Product
	if hit, err := s.Cache.getJSON(ctx, productKeyPrefix+id, &cached); err == nil && hit {
		return cached, nil
	}
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, common.NewAppError("PRODUCT_NOT_FOUND", fmt.Sprintf("product %s not found", id), http.StatusNotFound, err)
		}
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	_ = s.Cache.setJSON(ctx, productKeyPrefix+id, p)
	return p, nil
}
