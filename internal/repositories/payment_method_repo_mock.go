package repositories

import (
	"fmt"
	"sync"

	"kedai/internal/models"
)

// MockPaymentMethodRepository is an in-memory implementation of
// PaymentMethodRepository.
type MockPaymentMethodRepository struct {
	methods map[string]models.PaymentMethod
	mu      sync.RWMutex
}

// NewMockPaymentMethodRepository creates a new instance of
// MockPaymentMethodRepository.
func NewMockPaymentMethodRepository() *MockPaymentMethodRepository {
	return &MockPaymentMethodRepository{
		methods: make(map[string]models.PaymentMethod),
	}
}

// GetAll returns all configured payment methods.
func (r *MockPaymentMethodRepository) GetAll() ([]models.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methodList := make([]models.PaymentMethod, 0, len(r.methods))
	for _, m := range r.methods {
		methodList = append(methodList, m)
	}
	return methodList, nil
}

// GetByCode returns a payment method by its code.
func (r *MockPaymentMethodRepository) GetByCode(code string) (*models.PaymentMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	method, ok := r.methods[code]
	if !ok {
		return nil, fmt.Errorf("payment method with code %s: %w", code, ErrNotFound)
	}
	return &method, nil
}

// Create adds a new payment method.
func (r *MockPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods[method.Code] = *method
	return nil
}

// Update modifies an existing payment method.
func (r *MockPaymentMethodRepository) Update(method *models.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.methods[method.Code]; !ok {
		return fmt.Errorf("payment method with code %s: %w", method.Code, ErrNotFound)
	}
	r.methods[method.Code] = *method
	return nil
}
