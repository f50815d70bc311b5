package repositories

import (
	"fmt"
	"sync"
	"time"

	"kedai/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	byRef  map[string]string // reference -> id
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		byRef:  make(map[string]string),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetByReference returns an order by its payment reference.
func (r *MockOrderRepository) GetByReference(reference string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRef[reference]
	if !ok {
		return nil, fmt.Errorf("order with reference %s: %w", reference, ErrNotFound)
	}
	order := r.orders[id]
	return &order, nil
}

// ListByUser returns all orders placed by the given user.
func (r *MockOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// Create adds a new order. The reference must be unique; a duplicate is a
// correctness bug upstream, so it is rejected rather than overwritten.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if _, exists := r.byRef[order.Reference]; exists {
		return fmt.Errorf("order reference %s already exists", order.Reference)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	r.byRef[order.Reference] = order.ID
	return nil
}

// TransitionIfPending applies the statuses only if the order is still in its
// initial pending/pending state.
func (r *MockOrderRepository) TransitionIfPending(id string, status models.OrderStatus, paymentStatus models.PaymentStatus, gatewayMessage string) (*models.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, false, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if !order.AwaitingPayment() {
		return &order, false, nil
	}
	order.Status = status
	order.PaymentStatus = paymentStatus
	if gatewayMessage != "" {
		order.GatewayMessage = gatewayMessage
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return &order, true, nil
}
