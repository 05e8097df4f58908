package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/barbearia-premium/engine/internal/catalog"
	"github.com/barbearia-premium/engine/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// Store keeps one cart per client in redis. The cart is working state, not
// a system of record: orders only exist once finalize commits.
type Store struct{ RDB *redis.Client }

func (s *Store) key(clientID int64) string {
	return fmt.Sprintf(redisx.KeyCart, clientID)
}

func (s *Store) Get(ctx context.Context, clientID int64) (Cart, error) {
	b, err := s.RDB.Get(ctx, s.key(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) put(ctx context.Context, clientID int64, c Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, s.key(clientID), b, redisx.TTLCart).Err()
}

// Add merges the quantity into an existing line or appends a new one.
func (s *Store) Add(ctx context.Context, clientID int64, item Item) (Cart, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c = Merge(c, Cart{item})
	if err := s.put(ctx, clientID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, clientID int64, kind catalog.Kind, id int64, qty int) (Cart, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	i := c.find(kind, id)
	if i < 0 {
		return nil, ErrLineNotFound
	}
	if qty == 0 {
		c = append(c[:i], c[i+1:]...)
	} else {
		c[i].Quantity = qty
	}
	if err := s.put(ctx, clientID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) Remove(ctx context.Context, clientID int64, kind catalog.Kind, id int64) (Cart, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if i := c.find(kind, id); i >= 0 {
		c = append(c[:i], c[i+1:]...)
	}
	if err := s.put(ctx, clientID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// MergeIn folds a device-local cart into the stored one.
func (s *Store) MergeIn(ctx context.Context, clientID int64, local Cart) (Cart, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	c = Merge(c, local)
	if err := s.put(ctx, clientID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) Clear(ctx context.Context, clientID int64) error {
	return s.RDB.Del(ctx, s.key(clientID)).Err()
}

var ErrLineNotFound = errors.New("cart: line not found")
