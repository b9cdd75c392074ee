package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/enums"
)

// Purchase is a buyer's purchase attempt against an order. It owns the
// authoritative status machine for the transaction; the purchase ID doubles
// as the gateway transaction UUID.
type Purchase struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	BuyerID       uuid.UUID              `gorm:"column:buyer_id;type:uuid;not null"`
	Status        enums.PurchaseStatus   `gorm:"column:status;type:purchase_status;not null;default:'pending'"`
	Decision      enums.PurchaseDecision `gorm:"column:decision;type:purchase_decision;not null;default:'pending'"`
	PaymentStatus enums.PaymentStatus    `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	Amount        decimal.Decimal        `gorm:"column:amount;type:numeric(14,2);not null"`
	PurchaseDate  time.Time              `gorm:"column:purchase_date;not null"`
	PaidAt        *time.Time             `gorm:"column:paid_at"`
	Payment       *Payment               `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
