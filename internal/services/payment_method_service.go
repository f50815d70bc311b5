package services

import (
	"errors"
	"fmt"

	"kedai/internal/models"
	"kedai/internal/repositories"
)

// PaymentMethodService is the read-only catalog of ways to pay.
type PaymentMethodService struct {
	repo repositories.PaymentMethodRepository
}

// NewPaymentMethodService creates a new PaymentMethodService.
func NewPaymentMethodService(repo repositories.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{
		repo: repo,
	}
}

// ListActive returns the methods a customer may currently choose from.
func (s *PaymentMethodService) ListActive() ([]models.PaymentMethod, error) {
	methods, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}

	active := make([]models.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

// GetByCode resolves a method code. Unknown and inactive codes both fail with
// ErrMethodNotFound: checkout must hard-stop rather than fall back to some
// default method.
func (s *PaymentMethodService) GetByCode(code string) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("payment method %s: %w", code, ErrMethodNotFound)
		}
		return nil, fmt.Errorf("failed to resolve payment method %s: %w", code, err)
	}
	if !method.Active {
		return nil, fmt.Errorf("payment method %s is inactive: %w", code, ErrMethodNotFound)
	}
	return method, nil
}
