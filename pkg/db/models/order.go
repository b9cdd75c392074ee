package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/enums"
)

// Order is a service listing turned transaction. Status is a read-only
// projection derived from the owning purchase; handlers never write it
// directly.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WorkTitle   string            `gorm:"column:work_title;not null"`
	Description string            `gorm:"column:description;type:text;not null"`
	Rate        decimal.Decimal   `gorm:"column:rate;type:numeric(14,2);not null"`
	Category    string            `gorm:"column:category;not null"`
	SellerID    uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	BuyerID     *uuid.UUID        `gorm:"column:buyer_id;type:uuid"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'open'"`
	Seller      *User             `gorm:"foreignKey:SellerID"`
	Buyer       *User             `gorm:"foreignKey:BuyerID"`
	Purchases   []Purchase        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
