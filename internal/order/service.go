package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/lock"
	"github.com/noah-isme/backend-percetakan/internal/obs"
)

// Store persists committed orders. Implementations receive the finalized,
// immutable payload and must write it atomically.
type Store interface {
	SaveOrder(ctx context.Context, o Order) error
}

// Service commits POS transactions: finalize the cart, persist the order,
// then discard the working cart.
type Service struct {
	Store Store
	Carts *cart.Service
	Locks *lock.Locker
	Now   func() time.Time
	NewID func() string
}

// CommitInput is the order metadata supplied at checkout.
type CommitInput struct {
	CartID        string
	CustomerName  string
	CustomerPhone string
	OperatorID    string
	Paid          float64
	Discount      float64
	Notes         string
}

// Commit validates and persists one order. On any validation or storage
// failure the cart is left untouched so the operator can correct and retry.
// When a Locker is configured, commits for the same cart are serialized so
// concurrent operators cannot finalize one cart twice.
func (s *Service) Commit(ctx context.Context, in CommitInput) (Order, error) {
	if s == nil || s.Store == nil || s.Carts == nil {
		return Order{}, errors.New("order service not configured")
	}
	if s.Locks != nil {
		var o Order
		err := s.Locks.WithLock(ctx, lock.CartKey(in.CartID), 10*time.Second, func(ctx context.Context) error {
			var err error
			o, err = s.commit(ctx, in)
			return err
		})
		return o, err
	}
	return s.commit(ctx, in)
}

func (s *Service) commit(ctx context.Context, in CommitInput) (Order, error) {
	c, err := s.Carts.Get(ctx, in.CartID)
	if err != nil {
		return Order{}, err
	}
	o, err := Finalize(FinalizeInput{
		Items:         c.Items,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		OperatorID:    in.OperatorID,
		Paid:          in.Paid,
		Discount:      in.Discount,
		Notes:         in.Notes,
		Now:           s.now(),
		NewID:         s.newID,
	})
	if err != nil {
		if obs.OrdersRejected != nil {
			obs.OrdersRejected.WithLabelValues(rejectionCode(err)).Inc()
		}
		return Order{}, err
	}
	if err := s.Store.SaveOrder(ctx, o); err != nil {
		return Order{}, fmt.Errorf("persist order: %w", err)
	}
	// The order is committed; a lingering cart only costs its TTL.
	_ = s.Carts.Clear(ctx, in.CartID)
	if obs.OrdersCommitted != nil {
		obs.OrdersCommitted.WithLabelValues(string(o.PaymentStatus)).Inc()
	}
	return o, nil
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s != nil && s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}
