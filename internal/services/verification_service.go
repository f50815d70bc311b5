package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/pkg/rabbitmq"
)

// VerificationService handles the gateway's return callback. It is the only
// component allowed to settle a redirect-path order.
type VerificationService struct {
	orders    repositories.OrderRepository
	gateway   PaymentGateway
	publisher EventPublisher
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(orders repositories.OrderRepository, gw PaymentGateway, publisher EventPublisher) *VerificationService {
	return &VerificationService{
		orders:    orders,
		gateway:   gw,
		publisher: publisher,
	}
}

// HandleReturn resolves the order for a callback reference, verifies the
// transaction with the gateway, and applies the terminal transition.
//
// It is idempotent: an order that already left pending/pending is returned
// unchanged without re-verifying, and the underlying transition is
// compare-and-set, so duplicate or concurrent callbacks apply at most once.
// If the gateway is unreachable the order stays pending and the error is
// surfaced so the caller can retry verification later.
func (s *VerificationService) HandleReturn(ctx context.Context, reference string) (*models.Order, error) {
	if reference == "" {
		return nil, fmt.Errorf("missing reference: %w", ErrOrderNotFound)
	}

	order, err := s.orders.GetByReference(reference)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Verification callback for unknown reference %s", reference)
			return nil, fmt.Errorf("reference %s: %w", reference, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to resolve reference %s: %w", reference, err)
	}

	if !order.AwaitingPayment() {
		return order, nil
	}

	result, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		// Order deliberately left pending so verification can be retried.
		return order, err
	}

	if result.Succeeded() {
		paid, applied, err := s.orders.TransitionIfPending(order.ID, models.OrderCompleted, models.PaymentPaid, result.GatewayResponse)
		if err != nil {
			return order, fmt.Errorf("failed to settle order %s: %w", order.ID, err)
		}
		if applied {
			s.publish(rabbitmq.EventOrderPaid, paid)
		}
		return paid, nil
	}

	failed, applied, err := s.orders.TransitionIfPending(order.ID, models.OrderFailed, models.PaymentFailed, result.GatewayResponse)
	if err != nil {
		return order, fmt.Errorf("failed to fail order %s: %w", order.ID, err)
	}
	if applied {
		s.publish(rabbitmq.EventOrderFailed, failed)
	}
	return failed, nil
}

func (s *VerificationService) publish(routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"orderID":       order.ID,
		"reference":     order.Reference,
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
		"total":         order.Total,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", routingKey, order.ID, err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s for order %s: %v", routingKey, order.ID, err)
	}
}
