package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/lock"
	"github.com/noah-isme/backend-percetakan/internal/order"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

type stubStore struct {
	saved []order.Order
	fail  error
}

func (s *stubStore) SaveOrder(_ context.Context, o order.Order) error {
	if s.fail != nil {
		return s.fail
	}
	s.saved = append(s.saved, o)
	return nil
}

func setup(t *testing.T) (*cart.Service, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &cart.Service{Client: client, TTL: time.Hour}, client
}

func seedCart(t *testing.T, carts *cart.Service, cartID string) {
	t.Helper()
	item, err := cart.Builder{NewID: func() string { return "item-1" }}.Build(cart.RawInput{
		Product: pricing.Product{ID: "p-banner", Name: "Spanduk Flexi 280gr", BasePrice: 50000},
		Mode:    pricing.ModeArea,
		Spec:    pricing.AreaSpec{Length: 2, Width: 1},
		Qty:     1,
	})
	require.NoError(t, err)
	_, err = carts.Append(context.Background(), cartID, item)
	require.NoError(t, err)
}

func TestCommitPersistsAndClearsCart(t *testing.T) {
	carts, client := setup(t)
	seedCart(t, carts, "kasir-1")

	st := &stubStore{}
	svc := &order.Service{
		Store: st,
		Carts: carts,
		Locks: &lock.Locker{Client: client, Retry: 5 * time.Millisecond},
		NewID: func() string { return "order-1" },
	}

	o, err := svc.Commit(context.Background(), order.CommitInput{
		CartID:       "kasir-1",
		CustomerName: "Budi",
		OperatorID:   "op-1",
		Paid:         100000,
	})
	require.NoError(t, err)
	require.Equal(t, "order-1", o.ID)
	require.Equal(t, order.StatusPaid, o.PaymentStatus)
	require.Len(t, st.saved, 1)

	_, err = carts.Get(context.Background(), "kasir-1")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestCommitLeavesCartOnValidationFailure(t *testing.T) {
	carts, _ := setup(t)
	seedCart(t, carts, "kasir-2")

	st := &stubStore{}
	svc := &order.Service{Store: st, Carts: carts}

	_, err := svc.Commit(context.Background(), order.CommitInput{
		CartID:     "kasir-2",
		OperatorID: "op-1",
	})
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, order.CodeMissingCustomer, appErr.Code)
	require.Empty(t, st.saved)

	c, err := carts.Get(context.Background(), "kasir-2")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
}

func TestCommitLeavesCartOnStorageFailure(t *testing.T) {
	carts, _ := setup(t)
	seedCart(t, carts, "kasir-3")

	st := &stubStore{fail: errors.New("db down")}
	svc := &order.Service{Store: st, Carts: carts}

	_, err := svc.Commit(context.Background(), order.CommitInput{
		CartID:       "kasir-3",
		CustomerName: "Budi",
		OperatorID:   "op-1",
	})
	require.Error(t, err)

	c, err := carts.Get(context.Background(), "kasir-3")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
}

func TestCommitUnknownCart(t *testing.T) {
	carts, _ := setup(t)
	svc := &order.Service{Store: &stubStore{}, Carts: carts}

	_, err := svc.Commit(context.Background(), order.CommitInput{
		CartID:       "missing",
		CustomerName: "Budi",
		OperatorID:   "op-1",
	})
	require.ErrorIs(t, err, cart.ErrNotFound)
}
