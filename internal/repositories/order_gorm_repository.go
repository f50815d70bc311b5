package repositories

import (
	"errors"
	"fmt"

	"kedai/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByReference retrieves a single order by its payment reference.
func (r *GORMOrderRepository) GetByReference(reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with reference %s: %w", reference, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by reference %s: %w", reference, err)
	}
	return &order, nil
}

// ListByUser retrieves all orders placed by the given user.
func (r *GORMOrderRepository) ListByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// Create creates a new order and its item snapshots. The unique index on
// reference makes a duplicate reference a hard error.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// TransitionIfPending performs the compare-and-set transition as a single
// conditional UPDATE, so concurrent callbacks cannot both apply.
func (r *GORMOrderRepository) TransitionIfPending(id string, status models.OrderStatus, paymentStatus models.PaymentStatus, gatewayMessage string) (*models.Order, bool, error) {
	updates := map[string]interface{}{
		"status":         status,
		"payment_status": paymentStatus,
	}
	if gatewayMessage != "" {
		updates["gateway_message"] = gatewayMessage
	}

	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, models.OrderPending, models.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to transition order %s: %w", id, res.Error)
	}

	order, err := r.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return order, res.RowsAffected > 0, nil
}
