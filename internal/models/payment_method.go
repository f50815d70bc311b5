package models

import "time"

// PaymentMethodKind selects which branch of the checkout state machine owns an
// order. Adding a kind means extending the switch in the checkout service.
type PaymentMethodKind string

const (
	KindCardRedirect   PaymentMethodKind = "card_redirect"
	KindBankTransfer   PaymentMethodKind = "bank_transfer"
	KindCashOnDelivery PaymentMethodKind = "cash_on_delivery"
)

// FeeType selects how a method's processing fee is computed.
type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
)

// PaymentMethod is inert configuration for one way of paying. FeeValue is a
// percent (e.g. 1.5) for percentage fees and minor currency units for fixed
// fees. Min/MaxAmount bound the order subtotal in minor units; zero means
// unbounded.
type PaymentMethod struct {
	Code        string            `json:"code" gorm:"primaryKey;type:varchar(32)" validate:"required"`
	Name        string            `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Description string            `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Kind        PaymentMethodKind `json:"kind" gorm:"type:varchar(32)" validate:"required,oneof=card_redirect bank_transfer cash_on_delivery"`
	FeeType     FeeType           `json:"fee_type" gorm:"type:varchar(16)" validate:"required,oneof=percentage fixed"`
	FeeValue    float64           `json:"fee_value" validate:"gte=0"`
	MinAmount   int64             `json:"min_amount" validate:"gte=0"`
	MaxAmount   int64             `json:"max_amount" validate:"gte=0"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// RequiresRedirect reports whether paying with this method sends the customer
// to the hosted gateway page.
func (m *PaymentMethod) RequiresRedirect() bool {
	return m.Kind == KindCardRedirect
}

// AllowsAmount checks the subtotal against the method's configured bounds.
func (m *PaymentMethod) AllowsAmount(subtotal int64) bool {
	if subtotal < m.MinAmount {
		return false
	}
	if m.MaxAmount > 0 && subtotal > m.MaxAmount {
		return false
	}
	return true
}
