package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"kedai/internal/models"
	"kedai/internal/repositories"
	"kedai/pkg/gateway"
	"kedai/pkg/rabbitmq"

	"github.com/google/uuid"
)

// PaymentGateway is the hosted-redirect provider seen from checkout. Initialize
// opens a payment session; Verify reads the outcome for a reference.
type PaymentGateway interface {
	Initialize(ctx context.Context, email string, amountMinor int64, reference, callbackURL string) (*gateway.InitResult, error)
	Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error)
}

// EventPublisher emits order lifecycle events. A nil publisher disables
// publishing; publish failures are logged, never fatal to the checkout.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// BankAccount is the account shown to customers paying by manual transfer.
type BankAccount struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// CheckoutInput carries everything the customer chose at checkout.
type CheckoutInput struct {
	Items              []models.CartItem
	MethodCode         string
	DeliveryAddressRef string
	DeliveryMethod     string
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
}

// CheckoutResult is the orchestrator's answer. Order is always set once one
// was created, including on the failure path so the caller can route the
// customer back to retry. The other fields depend on the payment branch:
// RedirectURL/AccessCode for the hosted gateway, BankAccount/PaymentMemo for
// manual transfer.
type CheckoutResult struct {
	Order       *models.Order `json:"order"`
	RedirectURL string        `json:"redirect_url,omitempty"`
	AccessCode  string        `json:"access_code,omitempty"`
	BankAccount *BankAccount  `json:"bank_account,omitempty"`
	PaymentMemo string        `json:"payment_memo,omitempty"`
}

// CheckoutService is the state machine that turns a cart into an order and
// drives it through one of the three payment branches.
type CheckoutService struct {
	orders      repositories.OrderRepository
	carts       repositories.CartRepository
	methods     *PaymentMethodService
	gateway     PaymentGateway
	refs        *ReferenceGenerator
	publisher   EventPublisher
	callbackURL string
	bankAccount BankAccount
}

// NewCheckoutService creates a new CheckoutService. callbackURL is where the
// gateway sends the customer back, carrying the reference as a query
// parameter.
func NewCheckoutService(
	orders repositories.OrderRepository,
	carts repositories.CartRepository,
	methods *PaymentMethodService,
	gw PaymentGateway,
	refs *ReferenceGenerator,
	publisher EventPublisher,
	callbackURL string,
	bankAccount BankAccount,
) *CheckoutService {
	return &CheckoutService{
		orders:      orders,
		carts:       carts,
		methods:     methods,
		gateway:     gw,
		refs:        refs,
		publisher:   publisher,
		callbackURL: callbackURL,
		bankAccount: bankAccount,
	}
}

// Submit validates the cart against the chosen payment method, creates the
// order in pending/pending, and branches by method kind:
//
//   - card_redirect: opens a gateway session and returns the redirect URL; the
//     order stays pending/pending until the return callback is verified. If
//     the gateway call fails the order is marked failed/failed immediately.
//   - bank_transfer: the order stays pending/pending; the result carries the
//     bank account and the reference to quote as payment memo.
//   - cash_on_delivery: the order is confirmed to processing/pending right
//     away and the cart is cleared.
//
// The order row is durably created before the gateway ever learns the
// reference, so a fast callback can always find its order.
func (s *CheckoutService) Submit(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	method, err := s.methods.GetByCode(in.MethodCode)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		subtotal += line.UnitPrice * int64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	if !method.AllowsAmount(subtotal) {
		return nil, fmt.Errorf("subtotal %d not allowed by method %s: %w", subtotal, method.Code, ErrAmountOutOfRange)
	}

	fee := ComputeFee(method, subtotal)

	order := &models.Order{
		ID:                 uuid.New().String(),
		Reference:          s.refs.Generate(),
		UserID:             userID,
		Items:              items,
		Subtotal:           subtotal,
		ProcessingFee:      fee,
		Total:              subtotal + fee,
		PaymentMethodCode:  method.Code,
		Status:             models.OrderPending,
		PaymentStatus:      models.PaymentPending,
		DeliveryAddressRef: in.DeliveryAddressRef,
		DeliveryMethod:     in.DeliveryMethod,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
	}

	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.publish(rabbitmq.EventOrderCreated, order)

	switch method.Kind {
	case models.KindCardRedirect:
		return s.submitRedirect(ctx, order)
	case models.KindBankTransfer:
		account := s.bankAccount
		return &CheckoutResult{
			Order:       order,
			BankAccount: &account,
			PaymentMemo: order.Reference,
		}, nil
	case models.KindCashOnDelivery:
		return s.submitCashOnDelivery(userID, order)
	default:
		return &CheckoutResult{Order: order}, fmt.Errorf("unsupported payment method kind %q", method.Kind)
	}
}

// submitRedirect opens the hosted-payment session. No lock is held across the
// gateway call; the order is already durably pending/pending.
func (s *CheckoutService) submitRedirect(ctx context.Context, order *models.Order) (*CheckoutResult, error) {
	init, err := s.gateway.Initialize(ctx, order.CustomerEmail, order.Total, order.Reference, s.callbackURL)
	if err != nil {
		// Never leave the order pending with no redirect session to complete
		// it; the customer retries payment by checking out again.
		failed, _, ferr := s.orders.TransitionIfPending(order.ID, models.OrderFailed, models.PaymentFailed, err.Error())
		if ferr != nil {
			log.Printf("Warning: failed to mark order %s failed after gateway error: %v", order.ID, ferr)
			failed = order
		} else {
			s.publish(rabbitmq.EventOrderFailed, failed)
		}
		return &CheckoutResult{Order: failed}, err
	}

	return &CheckoutResult{
		Order:       order,
		RedirectURL: init.AuthorizationURL,
		AccessCode:  init.AccessCode,
	}, nil
}

// submitCashOnDelivery confirms the order at checkout time; payment happens at
// the door, outside this service.
func (s *CheckoutService) submitCashOnDelivery(userID string, order *models.Order) (*CheckoutResult, error) {
	confirmed, applied, err := s.orders.TransitionIfPending(order.ID, models.OrderProcessing, models.PaymentPending, "")
	if err != nil {
		return &CheckoutResult{Order: order}, fmt.Errorf("failed to confirm order %s: %w", order.ID, err)
	}
	if applied {
		s.publish(rabbitmq.EventOrderConfirmed, confirmed)
	}

	if err := s.carts.Clear(userID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s: %v", userID, err)
	}
	return &CheckoutResult{Order: confirmed}, nil
}

func (s *CheckoutService) publish(routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"orderID":       order.ID,
		"reference":     order.Reference,
		"userID":        order.UserID,
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
