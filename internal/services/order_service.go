package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/pkg/rabbitmq"
)

// OrderService exposes order lookups and the operator-side confirmation of
// bank-transfer payments. Terminal orders are never deleted; they are kept
// for audit.
type OrderService struct {
	orders    repositories.OrderRepository
	publisher EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orders repositories.OrderRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orders.GetAll()
}

// GetOrdersForUser retrieves the orders placed by one user.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.orders.ListByUser(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
		}
		return nil, err
	}
	return order, nil
}

// GetOrderByReference retrieves a single order by its payment reference.
func (s *OrderService) GetOrderByReference(reference string) (*models.Order, error) {
	order, err := s.orders.GetByReference(reference)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("reference %s: %w", reference, ErrOrderNotFound)
		}
		return nil, err
	}
	return order, nil
}

// ConfirmBankTransfer is the operator action that settles a bank-transfer
// order once the money shows up. It goes through the same compare-and-set
// transition as gateway verification, so it cannot regress an order that
// already settled, and confirming twice is a no-op that fails loudly.
func (s *OrderService) ConfirmBankTransfer(id string) (*models.Order, error) {
	order, err := s.GetOrderByID(id)
	if err != nil {
		return nil, err
	}
	if !order.AwaitingPayment() {
		return order, fmt.Errorf("order %s: %w", id, ErrInvalidTransition)
	}

	confirmed, applied, err := s.orders.TransitionIfPending(id, models.OrderProcessing, models.PaymentPaid, "bank transfer confirmed by operator")
	if err != nil {
		return nil, fmt.Errorf("failed to confirm bank transfer for order %s: %w", id, err)
	}
	if !applied {
		return confirmed, fmt.Errorf("order %s: %w", id, ErrInvalidTransition)
	}

	if s.publisher != nil {
		body, err := json.Marshal(map[string]interface{}{
			"orderID":       confirmed.ID,
			"reference":     confirmed.Reference,
			"status":        confirmed.Status,
			"paymentStatus": confirmed.PaymentStatus,
			"total":         confirmed.Total,
		})
		if err != nil {
			log.Printf("Failed to marshal paid event for order %s: %v", confirmed.ID, err)
		} else if err := s.publisher.Publish(rabbitmq.EventOrderPaid, body); err != nil {
			log.Printf("Warning: failed to publish paid event for order %s: %v", confirmed.ID, err)
		}
	}
	return confirmed, nil
}
