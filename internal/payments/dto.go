package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/db/models"
	"github.com/skillbazaar/backend/pkg/esewa"
)

// InitiateResult returns the created purchase plus the signed gateway form.
type InitiateResult struct {
	Purchase *models.Purchase  `json:"purchase"`
	Form     esewa.PaymentForm `json:"form"`
}

// PurchaseRequestedEvent is emitted when a buyer opens a purchase.
type PurchaseRequestedEvent struct {
	PurchaseID uuid.UUID       `json:"purchase_id"`
	OrderID    uuid.UUID       `json:"order_id"`
	BuyerID    uuid.UUID       `json:"buyer_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	WorkTitle  string          `json:"work_title"`
	Amount     decimal.Decimal `json:"amount"`
}

// PaymentSucceededEvent is emitted when a gateway callback is confirmed.
type PaymentSucceededEvent struct {
	PaymentID       uuid.UUID       `json:"payment_id"`
	PurchaseID      uuid.UUID       `json:"purchase_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	WorkTitle       string          `json:"work_title"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionCode string          `json:"transaction_code"`
}
