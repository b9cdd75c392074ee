package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/skillbazaar/backend/pkg/db/types"
)

// User represents the canonical identity entity. A user can act as buyer and
// seller at the same time; nothing here is role scoped.
type User struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string              `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash  string              `gorm:"column:password_hash;not null"`
	Name          string              `gorm:"column:name;not null"`
	Location      *string             `gorm:"column:location"`
	Phone         *string             `gorm:"column:phone"`
	Skills        dbtypes.StringArray `gorm:"type:text[];column:skills;not null;default:'{}'"`
	Interests     dbtypes.StringArray `gorm:"type:text[];column:interests;not null;default:'{}'"`
	TotalEarnings decimal.Decimal     `gorm:"column:total_earnings;type:numeric(14,2);not null;default:0"`
	TotalSpending decimal.Decimal     `gorm:"column:total_spending;type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
