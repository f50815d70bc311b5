package repositories

import (
	"kedai/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// independent aggregates, so all mutations are single-order operations keyed
// by id or reference.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByReference(reference string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	Create(order *models.Order) error

	// TransitionIfPending applies the given statuses (and gateway message, if
	// non-empty) only when the order is still pending/pending, and reports
	// whether the update was applied. The returned order reflects the stored
	// row either way, so a lost race still yields the winner's state. This is
	// what makes duplicate verification callbacks harmless.
	TransitionIfPending(id string, status models.OrderStatus, paymentStatus models.PaymentStatus, gatewayMessage string) (*models.Order, bool, error)
}
