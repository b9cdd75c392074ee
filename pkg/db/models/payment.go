package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/skillbazaar/backend/pkg/enums"
)

// GatewayEsewa is the only gateway recorded today.
const GatewayEsewa = "ESEWA"

// Payment is an append-only record of a verified gateway transaction. The
// unique index on purchase_id is what makes confirmation idempotent.
type Payment struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseID      uuid.UUID               `gorm:"column:purchase_id;type:uuid;not null;uniqueIndex:ux_payments_purchase_id"`
	TransactionCode string                  `gorm:"column:transaction_code;not null"`
	Amount          decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	Gateway         string                  `gorm:"column:gateway;not null;default:'ESEWA'"`
	Status          enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null"`
	RawPayload      json.RawMessage         `gorm:"column:raw_payload;type:jsonb"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
}
