package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/afrolatino/storefront/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// keyPrefix is the fixed namespace every persisted cart lives under,
// regardless of backend.
const keyPrefix = "afrolatino_cart:"

// Repository persists full cart snapshots keyed by cart id. Writes are
// whole-cart and last-writer-wins: two clients racing on the same cart
// do not merge, the later Save replaces the earlier one. That is the
// documented consistency contract, not something callers may rely on
// for correctness beyond it.
type Repository interface {
	// Load returns the cart for id, or ErrCartNotFound.
	Load(ctx context.Context, id string) (*domain.Cart, error)
	// Save overwrites the stored snapshot for cart.ID.
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete removes the snapshot; deleting an absent cart is not an
	// error.
	Delete(ctx context.Context, id string) error
}

// MemoryRepository is an in-process Repository used in tests and as a
// fallback when no durable backend is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*domain.Cart)}
}

func (r *MemoryRepository) Load(_ context.Context, id string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[keyPrefix+id]
	if !ok {
		return nil, ErrCartNotFound
	}

	copied := *cart
	copied.Items = append([]domain.CartLineItem(nil), cart.Items...)
	return &copied, nil
}

func (r *MemoryRepository) Save(_ context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *cart
	copied.Items = append([]domain.CartLineItem(nil), cart.Items...)
	r.carts[keyPrefix+cart.ID] = &copied
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, keyPrefix+id)
	return nil
}
