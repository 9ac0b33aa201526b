package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/bookstore-service/internal/domain"
)

// CartRepository stores per-cart item quantities. Quantities are plain
// non-negative counters keyed by item id.
type CartRepository interface {
	Items(ctx context.Context, cartID string) ([]domain.CartLine, error)
	Increment(ctx context.Context, cartID, itemID string) (int64, error)
	SetQuantity(ctx context.Context, cartID, itemID string, quantity int64) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
	Clear(ctx context.Context, cartID string) error
}

const cartKeyPrefix = "cart:"

type redisCartRepository struct {
	client *redis.Client
}

// NewRedisCartRepository returns a Redis-backed implementation using one hash
// per cart, so increments are atomic on the server side.
func NewRedisCartRepository(client *redis.Client) CartRepository {
	return &redisCartRepository{client: client}
}

func (r *redisCartRepository) Items(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	fields, err := r.client.HGetAll(ctx, cartKeyPrefix+cartID).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(fields))
	for itemID, raw := range fields {
		quantity, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		lines = append(lines, domain.CartLine{ItemID: itemID, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines, nil
}

func (r *redisCartRepository) Increment(ctx context.Context, cartID, itemID string) (int64, error) {
	return r.client.HIncrBy(ctx, cartKeyPrefix+cartID, itemID, 1).Result()
}

func (r *redisCartRepository) SetQuantity(ctx context.Context, cartID, itemID string, quantity int64) error {
	if quantity == 0 {
		return r.RemoveItem(ctx, cartID, itemID)
	}
	return r.client.HSet(ctx, cartKeyPrefix+cartID, itemID, quantity).Err()
}

func (r *redisCartRepository) RemoveItem(ctx context.Context, cartID, itemID string) error {
	return r.client.HDel(ctx, cartKeyPrefix+cartID, itemID).Err()
}

func (r *redisCartRepository) Clear(ctx context.Context, cartID string) error {
	return r.client.Del(ctx, cartKeyPrefix+cartID).Err()
}

type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]map[string]int64
}

// NewMemoryCartRepository returns an in-process implementation used in tests
// and when Redis is not configured.
func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{carts: make(map[string]map[string]int64)}
}

func (r *memoryCartRepository) Items(_ context.Context, cartID string) ([]domain.CartLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]domain.CartLine, 0, len(r.carts[cartID]))
	for itemID, quantity := range r.carts[cartID] {
		lines = append(lines, domain.CartLine{ItemID: itemID, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })
	return lines, nil
}

func (r *memoryCartRepository) Increment(_ context.Context, cartID, itemID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[cartID]
	if cart == nil {
		cart = make(map[string]int64)
		r.carts[cartID] = cart
	}
	cart[itemID]++
	return cart[itemID], nil
}

func (r *memoryCartRepository) SetQuantity(_ context.Context, cartID, itemID string, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[cartID]
	if quantity == 0 {
		delete(cart, itemID)
		return nil
	}
	if cart == nil {
		cart = make(map[string]int64)
		r.carts[cartID] = cart
	}
	cart[itemID] = quantity
	return nil
}

func (r *memoryCartRepository) RemoveItem(_ context.Context, cartID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts[cartID], itemID)
	return nil
}

func (r *memoryCartRepository) Clear(_ context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, cartID)
	return nil
}
