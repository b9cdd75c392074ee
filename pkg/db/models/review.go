package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a buyer's rating of a completed order. One review per
// (order, reviewer) pair, enforced by the composite unique index.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_reviews_order_reviewer"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;uniqueIndex:ux_reviews_order_reviewer"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    string    `gorm:"column:comment;type:text;not null"`
	Reviewer   *User     `gorm:"foreignKey:ReviewerID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
