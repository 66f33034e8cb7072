// Package collection persists the user's saved ideas and custom recipes.
//
// Each collection is one JSON array under a fixed key, newest first.
// Every mutation rewrites the whole array.
package collection

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hpungsan/pantry/internal/errors"
	"github.com/hpungsan/pantry/internal/kv"
)

// Item is anything stored in a Collection.
type Item interface {
	GetID() string
}

// Collection is an insertion-ordered list of T persisted under key.
type Collection[T Item] struct {
	mu     sync.Mutex
	key    string
	store  kv.Store
	logger *zap.Logger
	items  []T
}

// New returns an empty, unloaded collection.
func New[T Item](store kv.Store, key string, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{key: key, store: store, logger: logger}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load replaces the in-memory items with the persisted array.
// A missing key yields an empty collection. Unparseable data also yields
// an empty collection and is logged, never returned.
// Only a failing store is reported as an error.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return err
	}
	if !ok {
		c.items = nil
		return nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("stored collection unreadable, starting empty",
			zap.String("key", c.key),
			zap.Error(errors.NewMalformedStoredData(c.key, err)))
		c.items = nil
		return nil
	}
	c.items = items
	return nil
}

// Items returns a copy of the items, newest first.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Get returns the item with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.GetID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Append puts item at the front and persists the whole collection.
// On a write failure the in-memory state is left unchanged.
func (c *Collection[T]) Append(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items)+1)
	next = append(next, item)
	next = append(next, c.items...)

	if err := c.persist(ctx, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

// DeleteByID removes every item with id and persists the result.
// Reports false, without writing, when nothing matched.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if it.GetID() != id {
			next = append(next, it)
		}
	}
	if len(next) == len(c.items) {
		return false, nil
	}

	if err := c.persist(ctx, next); err != nil {
		return false, err
	}
	c.items = next
	return true, nil
}

// persist writes items as a JSON array. Callers hold mu.
func (c *Collection[T]) persist(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return errors.NewInternal(err)
	}
	return c.store.Set(ctx, c.key, data)
}
