package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

type fakeRepo struct {
	products []Product
	listHits int
	getHits  int
}

func (r *fakeRepo) ListProducts(context.Context) ([]Product, error) {
	r.listHits++
	return r.products, nil
}

func (r *fakeRepo) GetProduct(_ context.Context, id string) (Product, error) {
	r.getHits++
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, time.Minute)
}

func TestListUsesCacheOnSecondRead(t *testing.T) {
	repo := &fakeRepo{products: []Product{{ID: "p1", Name: "Spanduk", Mode: pricing.ModeArea, BasePrice: 50000}}}
	svc := &Service{Repo: repo, Cache: testCache(t)}
	ctx := context.Background()

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.listHits)
}

func TestGetCachesProduct(t *testing.T) {
	repo := &fakeRepo{products: []Product{{ID: "p1", Name: "Spanduk", Mode: pricing.ModeArea}}}
	svc := &Service{Repo: repo, Cache: testCache(t)}
	ctx := context.Background()

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, pricing.ModeArea, p.Mode)

	_, err = svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.getHits)
}

func TestGetWithoutCacheStillWorks(t *testing.T) {
	repo := &fakeRepo{products: []Product{{ID: "p1", Name: "Spanduk"}}}
	svc := &Service{Repo: repo}

	p, err := svc.Get(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "p1", p.ID)
}

func TestGetUnknownProduct(t *testing.T) {
	svc := &Service{Repo: &fakeRepo{}, Cache: testCache(t)}

	_, err := svc.Get(context.Background(), "missing")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "PRODUCT_NOT_FOUND", appErr.Code)
	require.Equal(t, 404, appErr.HTTPStatus)
}

func TestResolveFinishings(t *testing.T) {
	p := Product{
		ID: "p1",
		FinishingGroups: []FinishingGroup{
			{
				ID:        "fg-edge",
				Title:     "Finishing Tepi",
				Type:      "checkbox",
				PriceMode: pricing.PerUnit,
				Options: []FinishingOption{
					{ID: "f-eyelet", Label: "Mata Ayam", Price: 5000},
				},
			},
		},
	}

	fins, err := p.ResolveFinishings([]string{"f-eyelet"})
	require.NoError(t, err)
	require.Len(t, fins, 1)
	require.Equal(t, "Mata Ayam", fins[0].Name)
	require.Equal(t, pricing.PerUnit, fins[0].PriceMode)

	_, err = p.ResolveFinishings([]string{"f-missing"})
	require.Error(t, err)

	fins, err = p.ResolveFinishings(nil)
	require.NoError(t, err)
	require.Nil(t, fins)
}

func TestCacheInvalidate(t *testing.T) {
	repo := &fakeRepo{products: []Product{{ID: "p1", Name: "Spanduk"}}}
	cache := testCache(t)
	svc := &Service{Repo: repo, Cache: cache}
	ctx := context.Background()

	_, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, "p1"))

	_, err = svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, repo.getHits)
}
