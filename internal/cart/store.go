// Package cart owns the persisted shopping cart: one ordered list of
// priced line items per cart key, mutated through the Store and
// written back as a full snapshot after every change.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/afrolatino/storefront/internal/domain"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Subscriber is notified after every persisted cart mutation.
type Subscriber func(event domain.CartChangedEvent)

// Store is the single source of truth for what is in a cart until
// checkout. Every mutation loads the snapshot, applies the change,
// persists the whole cart back, and then notifies subscribers. This
// replaces the global "cart updated" broadcast with an explicit
// observer list.
type Store struct {
	repo   Repository
	logger *slog.Logger

	mu      sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

func NewStore(repo Repository, logger *slog.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
		subs:   make(map[int]Subscriber),
	}
}

// Subscribe registers fn for cart-changed notifications and returns
// its unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify(cart *domain.Cart, op, productID string) {
	event := domain.CartChangedEvent{
		CartID:    cart.ID,
		Op:        op,
		ProductID: productID,
		Count:     cart.Count(),
		Subtotal:  cart.Subtotal(),
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(event)
	}
}

// Get returns the cart for id. A cart that was never written is an
// empty cart, not an error.
func (s *Store) Get(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.repo.Load(ctx, id)
	if errors.Is(err, ErrCartNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{ID: id, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity units of product into the cart. If the product
// is already present its quantity is incremented; a second add never
// creates a second row. The line item snapshots the product's name,
// price and image as they are right now. Non-positive quantities clamp
// to 1.
func (s *Store) AddItem(ctx context.Context, id string, product domain.Product, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing := cart.Find(product.ID); existing != nil {
		existing.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, product.Snapshot(quantity))
	}

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info("item added to cart", "cart_id", id, "product_id", product.ID, "quantity", quantity)
	s.notify(cart, "add", product.ID)
	return cart, nil
}

// RemoveItem drops the line item for productID. Removing an absent
// product is a no-op.
func (s *Store) RemoveItem(ctx context.Context, id, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, li := range cart.Items {
		if li.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, li)
	}
	cart.Items = kept

	if !removed {
		return cart, nil
	}

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Info("item removed from cart", "cart_id", id, "product_id", productID)
	s.notify(cart, "remove", productID)
	return cart, nil
}

// UpdateQuantity sets the quantity for productID. Quantities below 1
// are rejected with ErrInvalidQuantity and leave the stored cart
// unchanged; removal is its own operation. Updating an absent product
// is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	li := cart.Find(productID)
	if li == nil {
		return cart, nil
	}
	li.Quantity = quantity

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	s.notify(cart, "update_quantity", productID)
	return cart, nil
}

// Clear empties the cart, deleting the persisted snapshot entirely.
func (s *Store) Clear(ctx context.Context, id string) (*domain.Cart, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cart := &domain.Cart{ID: id, CreatedAt: now, UpdatedAt: now}

	s.logger.Info("cart cleared", "cart_id", id)
	s.notify(cart, "clear", "")
	return cart, nil
}

// Subtotal returns the cart's price-times-quantity sum in cents.
func (s *Store) Subtotal(ctx context.Context, id string) (int64, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return cart.Subtotal(), nil
}

// Count returns the total unit count across the cart.
func (s *Store) Count(ctx context.Context, id string) (int, error) {
	cart, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *Store) persist(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	return s.repo.Save(ctx, cart)
}
