package models

import "time"

// OrderStatus tracks fulfillment state. It only ever moves forward.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
)

// PaymentStatus tracks money state, independently of fulfillment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// CartItem is a line as submitted at checkout. Prices are minor currency units.
type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// OrderItem is the persisted snapshot of a cart line at the moment the order
// was created. It is never updated afterwards.
type OrderItem struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	OrderID   string `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Name      string `json:"name" gorm:"type:varchar(100)"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Order is a single checkout transaction. Amounts are minor currency units and
// are computed once at creation: Total == Subtotal + ProcessingFee, always.
type Order struct {
	ID                 string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Reference          string        `json:"reference" gorm:"uniqueIndex;type:varchar(64)"`
	UserID             string        `json:"user_id" gorm:"index;type:varchar(36)"`
	Items              []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal           int64         `json:"subtotal"`
	ProcessingFee      int64         `json:"processing_fee"`
	Total              int64         `json:"total"`
	PaymentMethodCode  string        `json:"payment_method_code" gorm:"type:varchar(32)"`
	Status             OrderStatus   `json:"status" gorm:"type:varchar(16);index"`
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"type:varchar(16);index"`
	DeliveryAddressRef string        `json:"delivery_address_ref" gorm:"type:varchar(64)"`
	DeliveryMethod     string        `json:"delivery_method" gorm:"type:varchar(32)"`
	CustomerName       string        `json:"customer_name" gorm:"type:varchar(100)"`
	CustomerEmail      string        `json:"customer_email" gorm:"type:varchar(255)"`
	CustomerPhone      string        `json:"customer_phone" gorm:"type:varchar(32)"`
	GatewayMessage     string        `json:"gateway_message,omitempty" gorm:"type:varchar(255)"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// AwaitingPayment reports whether the order is still in its initial
// pending/pending state, i.e. no payment outcome has been applied yet.
func (o *Order) AwaitingPayment() bool {
	return o.Status == OrderPending && o.PaymentStatus == PaymentPending
}
