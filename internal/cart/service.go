package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrItemNotFound indicates the requested line item is not in the cart.
var ErrItemNotFound = errors.New("cart item not found")

// Service stores in-progress POS carts in Redis. A cart lives only while the
// transaction is being configured; committed and abandoned carts expire with
// the TTL.
type Service struct {
	Client *redis.Client
	TTL    time.Duration
	Now    func() time.Time
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 12 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cartKey(cartID string) string {
	return "pos:cart:" + cartID
}

// EnsureCart loads the cart with the given id, creating an empty one when the
// id is blank or unknown.
func (s *Service) EnsureCart(ctx context.Context, cartID string) (Cart, error) {
	if s == nil || s.Client == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if cartID != "" {
		c, err := s.Get(ctx, cartID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Cart{}, err
		}
	}
	if cartID == "" {
		cartID = uuid.NewString()
	}
	c := Cart{ID: cartID, UpdatedAt: s.now()}
	if err := s.save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart by id.
func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	if s == nil || s.Client == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	data, err := s.Client.Get(ctx, cartKey(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Append adds a validated item to the cart and returns the updated cart.
func (s *Service) Append(ctx context.Context, cartID string, item CartItem) (Cart, error) {
	c, err := s.EnsureCart(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = s.now()
	if err := s.save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// RemoveItem deletes one line item from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID string) (Cart, error) {
	c, err := s.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	kept := c.Items[:0]
	removed := false
	for _, it := range c.Items {
		if it.ID == itemID {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return Cart{}, ErrItemNotFound
	}
	c.Items = kept
	c.UpdatedAt = s.now()
	if err := s.save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Clear discards the cart entirely, e.g. on transaction reset.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart service not configured")
	}
	if err := s.Client.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Service) save(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, cartKey(c.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}
