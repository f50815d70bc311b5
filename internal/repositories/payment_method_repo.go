package repositories

import (
	"kedai/internal/models"
)

// PaymentMethodRepository defines the interface for payment-method
// configuration access. Methods are read-mostly settings rows; the service
// layer decides what "inactive" means.
type PaymentMethodRepository interface {
	GetAll() ([]models.PaymentMethod, error)
	GetByCode(code string) (*models.PaymentMethod, error)
	Create(method *models.PaymentMethod) error
	Update(method *models.PaymentMethod) error
}
