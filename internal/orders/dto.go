package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/enums"
)

// CreateInput captures a new service listing.
type CreateInput struct {
	WorkTitle   string          `json:"work_title" validate:"required"`
	Description string          `json:"description"`
	Rate        decimal.Decimal `json:"rate" validate:"required"`
	Category    string          `json:"category"`
	SellerID    uuid.UUID       `json:"-"`
}

// ListFilters describe the inputs supported by the open listings query.
type ListFilters struct {
	Category string
	Query    string
}

// UserSummary is the compact participant view embedded in order payloads.
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PaymentSummary is the compact payment view embedded in OrderView.
type PaymentSummary struct {
	ID              uuid.UUID       `json:"id"`
	TransactionCode string          `json:"transaction_code"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAt          time.Time       `json:"paid_at"`
}

// OrderSummary is a row in list responses.
type OrderSummary struct {
	ID        uuid.UUID         `json:"id"`
	WorkTitle string            `json:"work_title"`
	Rate      decimal.Decimal   `json:"rate"`
	Category  string            `json:"category,omitempty"`
	Status    enums.OrderStatus `json:"status"`
	Seller    UserSummary       `json:"seller"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderList wraps paginated listings plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderView merges the order, its participants, and the authoritative
// purchase state. The shape is the same regardless of lookup path.
type OrderView struct {
	ID             uuid.UUID              `json:"id"`
	WorkTitle      string                 `json:"work_title"`
	Description    string                 `json:"description"`
	Rate           decimal.Decimal        `json:"rate"`
	Category       string                 `json:"category,omitempty"`
	Status         enums.OrderStatus      `json:"status"`
	Seller         UserSummary            `json:"seller"`
	Buyer          *UserSummary           `json:"buyer,omitempty"`
	PurchaseID     *uuid.UUID             `json:"purchase_id,omitempty"`
	PurchaseStatus enums.PurchaseStatus   `json:"purchase_status,omitempty"`
	Decision       enums.PurchaseDecision `json:"decision,omitempty"`
	PaymentStatus  enums.PaymentStatus    `json:"payment_status,omitempty"`
	Payment        *PaymentSummary        `json:"payment,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// TransitionInput carries the data required to advance a purchase.
type TransitionInput struct {
	Role        enums.OrderRole
	OrderID     uuid.UUID
	PurchaseID  *uuid.UUID
	ActorUserID uuid.UUID
	NewStatus   enums.PurchaseStatus
}

// SellerDecision is the verdict a seller renders on a purchase request.
type SellerDecision string

const (
	SellerDecisionAccept  SellerDecision = "accept"
	SellerDecisionDecline SellerDecision = "decline"
)

// DecisionInput carries the data required to decide a purchase request.
type DecisionInput struct {
	OrderID     uuid.UUID
	PurchaseID  *uuid.UUID
	Decision    SellerDecision
	ActorUserID uuid.UUID
}

// PurchaseDecidedEvent is emitted when a seller decides a purchase request.
type PurchaseDecidedEvent struct {
	PurchaseID uuid.UUID              `json:"purchase_id"`
	OrderID    uuid.UUID              `json:"order_id"`
	BuyerID    uuid.UUID              `json:"buyer_id"`
	SellerID   uuid.UUID              `json:"seller_id"`
	WorkTitle  string                 `json:"work_title"`
	Decision   enums.PurchaseDecision `json:"decision"`
}

// PurchaseProgressedEvent is emitted when a purchase advances status.
type PurchaseProgressedEvent struct {
	PurchaseID uuid.UUID            `json:"purchase_id"`
	OrderID    uuid.UUID            `json:"order_id"`
	BuyerID    uuid.UUID            `json:"buyer_id"`
	SellerID   uuid.UUID            `json:"seller_id"`
	WorkTitle  string               `json:"work_title"`
	From       enums.PurchaseStatus `json:"from"`
	To         enums.PurchaseStatus `json:"to"`
}
