package repositories

import (
	"errors"
	"fmt"

	"kedai/internal/models"

	"gorm.io/gorm"
)

// GORMPaymentMethodRepository is a GORM implementation of
// PaymentMethodRepository.
type GORMPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGORMPaymentMethodRepository creates a new instance of
// GORMPaymentMethodRepository.
func NewGORMPaymentMethodRepository(db *gorm.DB) *GORMPaymentMethodRepository {
	return &GORMPaymentMethodRepository{
		db: db,
	}
}

// GetAll retrieves all payment methods from the database.
func (r *GORMPaymentMethodRepository) GetAll() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get all payment methods: %w", err)
	}
	return methods, nil
}

// GetByCode retrieves a single payment method by its code.
func (r *GORMPaymentMethodRepository) GetByCode(code string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.First(&method, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment method with code %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment method by code %s: %w", code, err)
	}
	return &method, nil
}

// Create creates a new payment method in the database.
func (r *GORMPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	if err := r.db.Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

// Update updates an existing payment method in the database.
func (r *GORMPaymentMethodRepository) Update(method *models.PaymentMethod) error {
	res := r.db.Save(method)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment method with code %s: %w", method.Code, ErrNotFound)
	}
	return nil
}
