package repositories

import (
	"sync"

	"kedai/internal/models"
)

// CartRepository holds the lines a user intends to check out. Checkout only
// ever reads a cart and clears it; building the cart belongs to the UI layer.
type CartRepository interface {
	Get(userID string) ([]models.CartItem, error)
	Replace(userID string, items []models.CartItem) error
	Clear(userID string) error
}

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string][]models.CartItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string][]models.CartItem),
	}
}

// Get returns the user's current cart lines. An absent cart is just empty.
func (r *MockCartRepository) Get(userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]models.CartItem, len(r.carts[userID]))
	copy(items, r.carts[userID])
	return items, nil
}

// Replace swaps the user's cart contents wholesale.
func (r *MockCartRepository) Replace(userID string, items []models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	r.carts[userID] = stored
	return nil
}

// Clear empties the user's cart.
func (r *MockCartRepository) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, userID)
	return nil
}
